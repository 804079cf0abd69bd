package protocol

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mle-tools/mle-monitor/internal/models"
)

func assertCumulativeInvariant(t *testing.T, sum *models.Summary) {
	t.Helper()
	all := sum.TotalExp["all"]
	for i := range all {
		total := 0
		for _, expType := range models.AllExperimentTypes {
			total += sum.TotalExp[string(expType)][i]
		}
		assert.Equal(t, all[i], total, "index %d", i)
	}
}

func TestRecordCreationInitializesSummary(t *testing.T) {
	now := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	sum := recordCreation(nil, models.TypeSingleConfig, now)

	require.Len(t, sum.Time, 1)
	assert.Equal(t, []int{1}, sum.TotalExp["all"])
	assert.Equal(t, []int{1}, sum.TotalExp[string(models.TypeSingleConfig)])
	assert.Equal(t, []int{0}, sum.TotalExp[string(models.TypeHyperparameterSearch)])
	assert.Equal(t, []int{0}, sum.TotalExp[string(models.TypeMultipleConfigs)])
	assert.Equal(t, []string{now.Format(models.DayLayout)}, sum.Day)
	assert.Equal(t, []int{1}, sum.DayExp["all"])
	assertCumulativeInvariant(t, sum)
}

func TestRecordCreationExtendsAllSeriesEqually(t *testing.T) {
	now := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	var sum *models.Summary
	creations := []models.ExperimentType{
		models.TypeSingleConfig,
		models.TypeHyperparameterSearch,
		models.TypeSingleConfig,
		models.TypeMultipleConfigs,
		models.TypeHyperparameterSearch,
	}
	for i, expType := range creations {
		sum = recordCreation(sum, expType, now.Add(time.Duration(i)*time.Minute))
	}

	n := len(creations)
	assert.Len(t, sum.Time, n)
	assert.Len(t, sum.TotalExp["all"], n)
	for _, expType := range models.AllExperimentTypes {
		assert.Len(t, sum.TotalExp[string(expType)], n, expType)
	}
	// Cumulative series are monotonically non-decreasing
	for _, series := range sum.TotalExp {
		for i := 1; i < len(series); i++ {
			assert.GreaterOrEqual(t, series[i], series[i-1])
		}
	}
	assert.Equal(t, []int{1, 2, 3, 4, 5}, sum.TotalExp["all"])
	assert.Equal(t, []int{0, 1, 1, 1, 2}, sum.TotalExp[string(models.TypeHyperparameterSearch)])
	assert.Equal(t, []int{1, 1, 2, 2, 2}, sum.TotalExp[string(models.TypeSingleConfig)])
	assertCumulativeInvariant(t, sum)
}

func TestRecordCreationSameDayIncrementsBucket(t *testing.T) {
	morning := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	evening := time.Date(2024, 3, 1, 21, 0, 0, 0, time.UTC)

	sum := recordCreation(nil, models.TypeSingleConfig, morning)
	sum = recordCreation(sum, models.TypeSingleConfig, evening)

	// Same calendar day: no new day entry, bucket incremented in place
	assert.Len(t, sum.Day, 1)
	assert.Equal(t, []int{2}, sum.DayExp[string(models.TypeSingleConfig)])
	assert.Equal(t, []int{2}, sum.DayExp["all"])
}

func TestRecordCreationNewDayAppendsBuckets(t *testing.T) {
	day1 := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	day2 := time.Date(2024, 3, 2, 9, 0, 0, 0, time.UTC)

	sum := recordCreation(nil, models.TypeSingleConfig, day1)
	sum = recordCreation(sum, models.TypeHyperparameterSearch, day2)

	require.Len(t, sum.Day, 2)
	for _, expType := range models.AllExperimentTypes {
		assert.Len(t, sum.DayExp[string(expType)], 2, expType)
	}
	assert.Equal(t, []int{1, 0}, sum.DayExp[string(models.TypeSingleConfig)])
	assert.Equal(t, []int{0, 1}, sum.DayExp[string(models.TypeHyperparameterSearch)])
	assert.Equal(t, []int{1, 1}, sum.DayExp["all"])
}

func TestAddMaintainsSummaryInvariant(t *testing.T) {
	p := newTestProtocol(t)
	for _, expType := range []models.ExperimentType{
		models.TypeSingleConfig,
		models.TypeSingleConfig,
		models.TypeHyperparameterSearch,
		models.TypeMultipleConfigs,
	} {
		addExperiment(t, p, ExperimentSpec{ExperimentType: expType})
	}

	require.NotNil(t, p.summary)
	assert.Len(t, p.summary.Time, 4)
	assertCumulativeInvariant(t, p.summary)

	// Summary record survives reloads
	require.NoError(t, p.Reload())
	require.NotNil(t, p.summary)
	assert.Equal(t, []int{1, 2, 2, 2}, p.summary.TotalExp[string(models.TypeSingleConfig)])
}

func TestDeleteKeepsSummary(t *testing.T) {
	p := newTestProtocol(t)
	id := addExperiment(t, p, ExperimentSpec{})
	require.NoError(t, p.Delete(id, true))

	require.NoError(t, p.Reload())
	assert.NotNil(t, p.summary)
	assert.Len(t, p.summary.Time, 1)
}
