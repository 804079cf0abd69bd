package tracker

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUpdateAppendsRelativeUtilization(t *testing.T) {
	tr := New(filepath.Join(t.TempDir(), ".usage.json"))

	h, err := tr.Update(Sample{
		TimeDate:  "03/01/24",
		TimeHour:  "10:00",
		Mem:       16,
		MemUtil:   8,
		Cores:     8,
		CoresUtil: 2,
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"03/01/24"}, h.TimesDate)
	assert.Equal(t, []string{"10:00"}, h.TimesHour)
	assert.Equal(t, []float64{0.5}, h.RelMemUtil)
	assert.Equal(t, []float64{0.25}, h.RelCPUUtil)
	assert.Equal(t, 1, tr.Len())
}

func TestHistoryPersistsAcrossInstances(t *testing.T) {
	fname := filepath.Join(t.TempDir(), ".usage.json")

	tr := New(fname)
	_, err := tr.Update(Sample{TimeDate: "03/01/24", TimeHour: "10:00", Mem: 1, MemUtil: 1, Cores: 1, CoresUtil: 1})
	require.NoError(t, err)
	_, err = tr.Update(Sample{TimeDate: "03/01/24", TimeHour: "10:01", Mem: 1, MemUtil: 0, Cores: 1, CoresUtil: 0})
	require.NoError(t, err)

	reopened := New(fname)
	assert.Equal(t, 2, reopened.Len())
	h, err := reopened.Update(Sample{TimeDate: "03/01/24", TimeHour: "10:02", Mem: 1, CoresUtil: 0, Cores: 1})
	require.NoError(t, err)
	assert.Equal(t, []string{"10:00", "10:01", "10:02"}, h.TimesHour)
}

func TestCorruptHistoryStartsFresh(t *testing.T) {
	fname := filepath.Join(t.TempDir(), ".usage.json")
	require.NoError(t, os.WriteFile(fname, []byte("{not json"), 0o644))

	tr := New(fname)
	assert.Equal(t, 0, tr.Len())
}

func TestTruncateKeepsMostRecentWindow(t *testing.T) {
	tr := New(filepath.Join(t.TempDir(), ".usage.json"))
	tr.history = History{
		TimesDate:  make([]string, windowLimit+2),
		TimesHour:  make([]string, windowLimit+2),
		RelMemUtil: make([]float64, windowLimit+2),
		RelCPUUtil: make([]float64, windowLimit+2),
	}
	tr.history.TimesHour[windowLimit+1] = "newest"

	tr.truncate()
	assert.Equal(t, windowLimit, tr.Len())
	assert.Equal(t, "newest", tr.history.TimesHour[windowLimit-1])
}

func TestRatioGuardsZeroCapacity(t *testing.T) {
	assert.Equal(t, 0.0, ratio(5, 0))
	assert.Equal(t, 0.5, ratio(2, 4))
}
