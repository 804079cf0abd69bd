package protocol

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mle-tools/mle-monitor/internal/models"
)

func TestSummaryRowsEmptyStore(t *testing.T) {
	p := newTestProtocol(t)
	rows, err := p.SummaryRows(5)
	require.NoError(t, err)
	assert.NotNil(t, rows)
	assert.Empty(t, rows)
}

func TestSummaryRowsNewestFirst(t *testing.T) {
	p := newTestProtocol(t)
	addExperiment(t, p, ExperimentSpec{Purpose: "first"})
	addExperiment(t, p, ExperimentSpec{Purpose: "second"})
	addExperiment(t, p, ExperimentSpec{Purpose: "third"})

	rows, err := p.SummaryRows(2)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "3", rows[0].ID)
	assert.Equal(t, "third", rows[0].Purpose)
	assert.Equal(t, "2", rows[1].ID)
	assert.Equal(t, "second", rows[1].Purpose)
}

func TestSummaryRowsTailBounds(t *testing.T) {
	p := newTestProtocol(t)
	addExperiment(t, p, ExperimentSpec{})
	addExperiment(t, p, ExperimentSpec{})

	// Oversized or non-positive tail selects everything
	rows, err := p.SummaryRows(100)
	require.NoError(t, err)
	assert.Len(t, rows, 2)

	rows, err = p.SummaryRows(0)
	require.NoError(t, err)
	assert.Len(t, rows, 2)
}

func TestSummaryRowsTruncatesAndLabels(t *testing.T) {
	p := newTestProtocol(t)
	longPurpose := strings.Repeat("p", 40)
	longProject := strings.Repeat("q", 40)
	addExperiment(t, p, ExperimentSpec{
		Purpose:        longPurpose,
		ProjectName:    longProject,
		ExperimentType: models.TypeHyperparameterSearch,
		ExecResource:   models.ResourceSlurmCluster,
	})

	rows, err := p.SummaryRows(1)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, longPurpose[:purposeWidth], rows[0].Purpose)
	assert.Equal(t, longProject[:projectWidth], rows[0].Project)
	assert.Equal(t, "search", rows[0].Type)
	assert.Equal(t, "Slurm", rows[0].Resource)
	assert.Equal(t, models.StatusRunning, rows[0].Status)
}

func TestMonitorEmptyStorePlaceholders(t *testing.T) {
	p := newTestProtocol(t)
	data, err := p.Monitor(10)
	require.NoError(t, err)

	assert.Equal(t, "0", data.Total.Total)
	assert.Equal(t, "0", data.Total.Running)
	assert.Equal(t, "-", data.Last.ID)
	assert.Equal(t, "-", data.Time.StartTime)
	assert.Equal(t, 1, data.Time.TotalJobs)
	assert.Equal(t, 1, data.Time.TotalBatches)
	assert.Equal(t, 1, data.Time.NumSeeds)
	assert.Empty(t, data.Table)
}

func TestMonitorCounts(t *testing.T) {
	p := newTestProtocol(t)
	first := addExperiment(t, p, ExperimentSpec{ExecResource: models.ResourceSGECluster})
	second := addExperiment(t, p, ExperimentSpec{ExecResource: models.ResourceGCPCloud})
	addExperiment(t, p, ExperimentSpec{TimePerJob: "00:02:00", NumJobBatches: 2})

	require.NoError(t, p.Complete(first, true))
	require.NoError(t, p.Abort(second, true))

	data, err := p.Monitor(10)
	require.NoError(t, err)

	assert.Equal(t, "3", data.Total.Total)
	assert.Equal(t, "1", data.Total.Running)
	assert.Equal(t, "1", data.Total.Done)
	assert.Equal(t, "1", data.Total.Aborted)
	assert.Equal(t, "1", data.Total.SGE)
	assert.Equal(t, "1", data.Total.GCP)
	assert.Equal(t, "1", data.Total.Local)
	assert.Equal(t, "0", data.Total.Slurm)

	// Last panel tracks the most recently created experiment
	assert.Equal(t, "3", data.Last.ID)
	assert.Equal(t, string(models.StatusRunning), data.Last.Status)
	assert.Equal(t, "00:02:00", data.Time.TimePerBatch)
	assert.Equal(t, 2, data.Time.TotalBatches)
	assert.Equal(t, "00:04:00", data.Time.Duration)
	assert.Len(t, data.Table, 3)
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "exactlyten", truncate("exactlyten", 10))
	assert.Equal(t, "longer str", truncate("longer string", 10))
}
