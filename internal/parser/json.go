package parser

import (
	"encoding/json"
	"fmt"
	"io"
)

// ParseJSONConfig decodes a JSON configuration file into a generic map for
// snapshotting into an experiment record.
func ParseJSONConfig(reader io.Reader) (map[string]any, error) {
	var data map[string]any
	decoder := json.NewDecoder(reader)

	if err := decoder.Decode(&data); err != nil {
		return nil, fmt.Errorf("failed to parse JSON config: %w", err)
	}

	return data, nil
}
