package measure

import "time"

// Stages of a planning request, used as metric names.
const (
	StageScope        = "scope"
	StageRequirements = "requirements"
	StagePaths        = "paths"
	StageValidate     = "validate"
	StageRepair       = "repair"
	StageScore        = "score"
	StageReplace      = "replace"
	StagePlanCheck    = "plan_check"
)

type Measure interface {
	AddMetric(name string, concurrent int) Metric
	GetMetric(name string) Metric
	AllMetrics() map[string]Metric
}

type Metric interface {
	AddDuration(elapsed time.Duration)
	AVGDuration() time.Duration
	AddCount(label string, n int)
	AllCounts() map[string]int64
	SetTotalDuration(endDuration time.Duration)
	GetTotalDuration() time.Duration
	Calls() int64
}
