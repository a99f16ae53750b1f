package measure

import (
	"sync"
	"time"
)

type DefaultMetric struct {
	counts      map[string]int64
	mu          *sync.Mutex
	EndDuration time.Duration
	elapsed     time.Duration
	total       int64
	concurrent  int
}

func newDefaultMetric(concurrent int) *DefaultMetric {
	if concurrent <= 0 {
		concurrent = 1
	}

	return &DefaultMetric{
		mu:         &sync.Mutex{},
		counts:     make(map[string]int64),
		concurrent: concurrent,
	}
}

func (mt *DefaultMetric) AddDuration(elapsed time.Duration) {
	mt.mu.Lock()
	defer mt.mu.Unlock()
	mt.total++
	mt.elapsed += elapsed
}

func (mt *DefaultMetric) SetTotalDuration(endDuration time.Duration) {
	mt.mu.Lock()
	defer mt.mu.Unlock()
	mt.EndDuration = endDuration
}

func (mt *DefaultMetric) GetTotalDuration() time.Duration {
	mt.mu.Lock()
	defer mt.mu.Unlock()

	return mt.EndDuration
}

// AddCount adds n items to the counter called label, e.g. the number of
// paths found or kept by a stage.
func (mt *DefaultMetric) AddCount(label string, n int) {
	mt.mu.Lock()
	defer mt.mu.Unlock()
	mt.counts[label] += int64(n)
}

func (mt *DefaultMetric) AllCounts() map[string]int64 {
	mt.mu.Lock()
	defer mt.mu.Unlock()

	out := make(map[string]int64, len(mt.counts))
	for label, n := range mt.counts {
		out[label] = n
	}

	return out
}

func (mt *DefaultMetric) Calls() int64 {
	mt.mu.Lock()
	defer mt.mu.Unlock()

	return mt.total
}

// AVGDuration is the mean duration of a call, divided by the number of
// workers the stage runs on.
func (mt *DefaultMetric) AVGDuration() time.Duration {
	mt.mu.Lock()
	defer mt.mu.Unlock()
	if mt.total == 0 {
		return time.Duration(0)
	}

	return round(time.Duration(float64(mt.elapsed) / float64(mt.total) / float64(mt.concurrent)))
}

func round(d time.Duration) time.Duration {
	switch {
	case d > time.Hour:
		d = d.Round(time.Hour)
	case d > time.Minute:
		d = d.Round(time.Minute)
	case d > time.Second:
		d = d.Round(time.Second)
	case d > time.Millisecond:
		d = d.Round(time.Millisecond)
	case d > time.Microsecond:
		d = d.Round(time.Microsecond)
	}

	return d
}
