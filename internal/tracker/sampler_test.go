package tracker

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSnapshot(t *testing.T) {
	if _, err := os.Stat("/proc/meminfo"); err != nil {
		t.Skip("procfs not available")
	}

	s, err := Snapshot()
	require.NoError(t, err)
	assert.Greater(t, s.Mem, 0.0)
	assert.GreaterOrEqual(t, s.Mem, s.MemUtil)
	assert.Greater(t, s.Cores, 0.0)
	assert.NotEmpty(t, s.TimeDate)
	assert.NotEmpty(t, s.TimeHour)
}
