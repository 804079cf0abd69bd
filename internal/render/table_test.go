package render

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mle-tools/mle-monitor/internal/models"
	"github.com/mle-tools/mle-monitor/internal/protocol"
	"github.com/mle-tools/mle-monitor/internal/tracker"
)

func TestSummaryTableColumns(t *testing.T) {
	rows := []protocol.SummaryRow{
		{
			ID: "1", Date: "03/01/24 10:00", Project: "vision",
			Purpose: "baseline", Type: "single", Status: models.StatusRunning,
			Resource: "Local", Seeds: 3, CPUs: 2, GPUs: 1, Jobs: 6,
		},
	}

	compact := SummaryTable(rows, false)
	assert.Contains(t, compact, "E-ID")
	assert.Contains(t, compact, "baseline")
	assert.Contains(t, compact, "vision")
	assert.NotContains(t, compact, "#Jobs")

	full := SummaryTable(rows, true)
	assert.Contains(t, full, "#Jobs")
	assert.Contains(t, full, "#Seeds")
	assert.Contains(t, full, "6")
}

func TestUsagePanel(t *testing.T) {
	empty := UsagePanel(tracker.History{})
	assert.Contains(t, empty, "no samples yet")

	panel := UsagePanel(tracker.History{
		TimesDate:  []string{"03/01/24"},
		TimesHour:  []string{"10:00"},
		RelMemUtil: []float64{0.5},
		RelCPUUtil: []float64{0.25},
	})
	assert.Contains(t, panel, "50%")
	assert.Contains(t, panel, "25%")
	assert.Contains(t, panel, "10:00")
}

func TestDashboardIncludesPanels(t *testing.T) {
	data := &protocol.MonitorData{
		Total: protocol.TotalData{Total: "0", Running: "0", Done: "0", Aborted: "0",
			SGE: "0", Slurm: "0", GCP: "0", Local: "0",
			ReportGen: "0", Stored: "0", Retrieved: "0"},
		Last: protocol.LastData{ID: "-", Status: "-", Dir: "-", Type: "-",
			Script: "-", Config: "-", ReportGen: "-", Resource: "-"},
		Time: protocol.TimeData{Status: "-", TotalJobs: 1, TotalBatches: 1,
			JobsPerBatch: "-", TimePerBatch: "-",
			StartTime: "-", StopTime: "-", Duration: "-", NumSeeds: 1},
	}

	out := Dashboard(data, "")
	assert.Contains(t, out, "Experiments")
	assert.Contains(t, out, "Last Experiment")
	assert.Contains(t, out, "Progress")
	assert.NotContains(t, out, "Usage")

	out = Dashboard(data, UsagePanel(tracker.History{}))
	assert.Contains(t, out, "Usage")
}
