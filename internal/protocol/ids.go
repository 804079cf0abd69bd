package protocol

import (
	"sort"
	"strconv"

	"github.com/mle-tools/mle-monitor/internal/models"
)

// experimentIDs filters the store keys down to numeric experiment IDs
// (the summary record and any non-numeric keys are excluded) and sorts
// them in ascending numeric order.
func experimentIDs(keys []string) []string {
	ids := make([]string, 0, len(keys))
	for _, key := range keys {
		if key == models.SummaryKey {
			continue
		}
		if _, err := strconv.Atoi(key); err != nil {
			continue
		}
		ids = append(ids, key)
	}
	sort.Slice(ids, func(i, j int) bool {
		a, _ := strconv.Atoi(ids[i])
		b, _ := strconv.Atoi(ids[j])
		return a < b
	})
	return ids
}

// lastExperimentID returns the maximum ID of the sorted set, or 0 when no
// experiments exist. Recomputing from the remaining set after a delete
// deliberately allows ID reuse when the highest record was removed.
func lastExperimentID(ids []string) int {
	if len(ids) == 0 {
		return 0
	}
	last, _ := strconv.Atoi(ids[len(ids)-1])
	return last
}
