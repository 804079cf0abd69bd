package protocol

import (
	"time"

	"github.com/mle-tools/mle-monitor/internal/models"
	"github.com/mle-tools/mle-monitor/internal/store"
)

// recordCreation appends one experiment creation to the aggregate summary.
// Every cumulative series is extended by exactly one entry so the series
// lengths stay equal; the daily series increments an existing day bucket
// in place instead of appending when the day was already seen. Appends
// work on the decoded summary held by the caller, so the common case does
// not rescan experiment history.
func recordCreation(sum *models.Summary, expType models.ExperimentType, now time.Time) *models.Summary {
	timestamp := now.Format(models.TimeLayout)
	day := now.Format(models.DayLayout)

	if sum == nil {
		sum = &models.Summary{
			Time:     []string{timestamp},
			TotalExp: map[string][]int{"all": {1}},
			Day:      []string{day},
			DayExp:   map[string][]int{"all": {1}},
		}
		for _, t := range models.AllExperimentTypes {
			sum.TotalExp[string(t)] = []int{0}
			sum.DayExp[string(t)] = []int{0}
		}
		series := sum.TotalExp[string(expType)]
		series[len(series)-1]++
		series = sum.DayExp[string(expType)]
		series[len(series)-1]++
		return sum
	}

	sum.Time = append(sum.Time, timestamp)
	all := sum.TotalExp["all"]
	sum.TotalExp["all"] = append(all, all[len(all)-1]+1)
	for _, t := range models.AllExperimentTypes {
		series := sum.TotalExp[string(t)]
		last := series[len(series)-1]
		if t == expType {
			last++
		}
		sum.TotalExp[string(t)] = append(series, last)
	}

	dayIdx := -1
	for i, d := range sum.Day {
		if d == day {
			dayIdx = i
			break
		}
	}
	if dayIdx >= 0 {
		sum.DayExp[string(expType)][dayIdx]++
		sum.DayExp["all"][dayIdx]++
	} else {
		sum.Day = append(sum.Day, day)
		sum.DayExp["all"] = append(sum.DayExp["all"], 1)
		for _, t := range models.AllExperimentTypes {
			sum.DayExp[string(t)] = append(sum.DayExp[string(t)], 0)
		}
		series := sum.DayExp[string(expType)]
		series[len(series)-1]++
	}
	return sum
}

// writeSummary persists the summary record into the store, creating the
// reserved key on first use.
func writeSummary(s *store.Store, sum *models.Summary) error {
	if !s.Has(models.SummaryKey) {
		if err := s.Create(models.SummaryKey); err != nil {
			return err
		}
	}
	if err := s.SetField(models.SummaryKey, "time", sum.Time); err != nil {
		return err
	}
	if err := s.SetField(models.SummaryKey, "total_exp", sum.TotalExp); err != nil {
		return err
	}
	if err := s.SetField(models.SummaryKey, "day", sum.Day); err != nil {
		return err
	}
	return s.SetField(models.SummaryKey, "day_exp", sum.DayExp)
}
