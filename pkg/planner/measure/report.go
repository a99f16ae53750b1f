package measure

import (
	"sort"
	"time"
)

// StageReport is a snapshot of the metric of one stage.
type StageReport struct {
	Stage  string           `json:"stage"`
	Calls  int64            `json:"calls"`
	AVG    time.Duration    `json:"avg_ns"`
	Total  time.Duration    `json:"total_ns,omitempty"`
	Counts map[string]int64 `json:"counts,omitempty"`
}

// Report returns the snapshot of every stage of msr, ordered by stage name.
func Report(msr Measure) []StageReport {
	metrics := msr.AllMetrics()

	out := make([]StageReport, 0, len(metrics))
	for name, mt := range metrics {
		out = append(out, StageReport{
			Stage:  name,
			Calls:  mt.Calls(),
			AVG:    mt.AVGDuration(),
			Total:  mt.GetTotalDuration(),
			Counts: mt.AllCounts(),
		})
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Stage < out[j].Stage })

	return out
}
