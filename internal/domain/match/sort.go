package match

import (
	"math"
	"sort"
)

func statusRank(s Status) int {
	switch s {
	case StatusNotStarted:
		return 0
	case StatusRunning:
		return 1
	default:
		return 2
	}
}

// Sort orders a merged list for display: upcoming first (soonest start
// leading, unknown start last), then live, then finished with the most
// recent activity leading.
func Sort(in []Summary) {
	sort.SliceStable(in, func(i, j int) bool {
		ri, rj := statusRank(in[i].Status), statusRank(in[j].Status)
		if ri != rj {
			return ri < rj
		}
		if ri == 0 {
			return scheduledMillis(in[i]) < scheduledMillis(in[j])
		}
		return beginMillis(in[i]) > beginMillis(in[j])
	})
}

func scheduledMillis(m Summary) float64 {
	if m.ScheduledAt == nil {
		return math.Inf(1)
	}
	return float64(m.ScheduledAt.UnixMilli())
}

func beginMillis(m Summary) float64 {
	if m.BeginAt == nil {
		return 0
	}
	return float64(m.BeginAt.UnixMilli())
}
