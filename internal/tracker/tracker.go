// Package tracker keeps a bounded history of relative CPU and memory
// utilization for the dashboard's usage panel.
package tracker

import (
	"encoding/json"
	"fmt"
	"os"
)

// windowLimit caps the stored history (roughly a day of samples at the
// default polling cadence).
const windowLimit = 100000

// Sample is one utilization reading from a resource poller.
type Sample struct {
	TimeDate  string
	TimeHour  string
	Mem       float64
	MemUtil   float64
	Cores     float64
	CoresUtil float64
}

// History is the retained utilization time series, relative to capacity.
type History struct {
	TimesDate  []string  `json:"times_date"`
	TimesHour  []string  `json:"times_hour"`
	RelMemUtil []float64 `json:"rel_mem_util"`
	RelCPUUtil []float64 `json:"rel_cpu_util"`
}

// Tracker accumulates utilization history and persists it to a hidden file.
type Tracker struct {
	fname   string
	history History
}

// New loads prior history from fname; a missing or corrupt file starts a
// fresh history.
func New(fname string) *Tracker {
	t := &Tracker{fname: fname}
	t.load()
	return t
}

// Update appends one sample, truncates to the moving window and persists.
// The returned history is a snapshot view for rendering.
func (t *Tracker) Update(s Sample) (History, error) {
	t.history.TimesDate = append(t.history.TimesDate, s.TimeDate)
	t.history.TimesHour = append(t.history.TimesHour, s.TimeHour)
	t.history.RelMemUtil = append(t.history.RelMemUtil, ratio(s.MemUtil, s.Mem))
	t.history.RelCPUUtil = append(t.history.RelCPUUtil, ratio(s.CoresUtil, s.Cores))
	t.truncate()
	if err := t.save(); err != nil {
		return t.history, err
	}
	return t.history, nil
}

// Len returns the number of retained samples.
func (t *Tracker) Len() int {
	return len(t.history.TimesDate)
}

// truncate keeps only the most recent windowLimit samples.
func (t *Tracker) truncate() {
	n := len(t.history.TimesDate)
	if n <= windowLimit {
		return
	}
	cut := n - windowLimit
	t.history.TimesDate = t.history.TimesDate[cut:]
	t.history.TimesHour = t.history.TimesHour[cut:]
	t.history.RelMemUtil = t.history.RelMemUtil[cut:]
	t.history.RelCPUUtil = t.history.RelCPUUtil[cut:]
}

func (t *Tracker) load() {
	data, err := os.ReadFile(t.fname)
	if err != nil {
		return
	}
	var h History
	if err := json.Unmarshal(data, &h); err != nil {
		// Corrupt history is discarded; usage data is rebuilt over time.
		return
	}
	t.history = h
}

func (t *Tracker) save() error {
	data, err := json.Marshal(t.history)
	if err != nil {
		return fmt.Errorf("failed to serialize tracker history: %w", err)
	}
	if err := os.WriteFile(t.fname, data, 0o644); err != nil {
		return fmt.Errorf("failed to write tracker history: %w", err)
	}
	return nil
}

func ratio(used, total float64) float64 {
	if total == 0 {
		return 0
	}
	return used / total
}
