package models

import (
	"encoding/json"
	"fmt"
)

// SummaryKey is the reserved store key holding the aggregate summary record.
const SummaryKey = "summary"

// Summary holds the aggregate time series maintained on every experiment
// creation. All cumulative series share the same length; the day series
// grows only when a new calendar day is first seen.
type Summary struct {
	Time     []string         `json:"time"`
	TotalExp map[string][]int `json:"total_exp"`
	Day      []string         `json:"day"`
	DayExp   map[string][]int `json:"day_exp"`
}

// SummaryFromFields reconstructs the typed summary from a store record.
func SummaryFromFields(fields map[string]any) (*Summary, error) {
	raw, err := json.Marshal(fields)
	if err != nil {
		return nil, fmt.Errorf("failed to encode summary fields: %w", err)
	}
	var sum Summary
	if err := json.Unmarshal(raw, &sum); err != nil {
		return nil, fmt.Errorf("failed to decode summary record: %w", err)
	}
	return &sum, nil
}
