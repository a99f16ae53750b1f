package measure

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// PrometheusMeasure keeps the in-memory metrics of DefaultMeasure and also
// exports them to a Prometheus registry.
type PrometheusMeasure struct {
	*DefaultMeasure
	duration *prometheus.HistogramVec
	items    *prometheus.CounterVec
}

// NewPrometheusMeasure registers the planner collectors on reg.
func NewPrometheusMeasure(reg prometheus.Registerer) *PrometheusMeasure {
	factory := promauto.With(reg)

	return &PrometheusMeasure{
		DefaultMeasure: NewDefaultMeasure(),
		duration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "toolplan",
			Subsystem: "planner",
			Name:      "stage_duration_seconds",
			Help:      "Duration of the planner stages.",
			Buckets:   []float64{.0005, .001, .005, .01, .05, .1, .5, 1, 5, 30},
		}, []string{"stage"}),
		items: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "toolplan",
			Subsystem: "planner",
			Name:      "stage_items_total",
			Help:      "Items counted by the planner stages.",
		}, []string{"stage", "label"}),
	}
}

func (m *PrometheusMeasure) AddMetric(name string, concurrent int) Metric {
	return &prometheusMetric{
		Metric:   m.DefaultMeasure.AddMetric(name, concurrent),
		stage:    name,
		duration: m.duration,
		items:    m.items,
	}
}

func (m *PrometheusMeasure) GetMetric(name string) Metric {
	mt := m.DefaultMeasure.GetMetric(name)
	if mt == nil {
		return nil
	}

	return &prometheusMetric{Metric: mt, stage: name, duration: m.duration, items: m.items}
}

type prometheusMetric struct {
	Metric
	stage    string
	duration *prometheus.HistogramVec
	items    *prometheus.CounterVec
}

func (mt *prometheusMetric) AddDuration(elapsed time.Duration) {
	mt.Metric.AddDuration(elapsed)
	mt.duration.WithLabelValues(mt.stage).Observe(elapsed.Seconds())
}

func (mt *prometheusMetric) AddCount(label string, n int) {
	mt.Metric.AddCount(label, n)
	mt.items.WithLabelValues(mt.stage, label).Add(float64(n))
}

var _ Measure = (*PrometheusMeasure)(nil)
