package planner

import (
	"log/slog"
	"time"

	"github.com/askiada/go-toolplan/pkg/planner/measure"
)

const (
	DefaultQueryTimeout     = 30 * time.Second
	DefaultMaxPathEdges     = 7
	DefaultTopK             = 5
	DefaultMaxInsertions    = 4
	DefaultTargetCitation   = 10000
	DefaultReplacementLimit = 10
	DefaultConcurrency      = 4
)

type Option func(p *Planner)

// WithQueryTimeout bounds every catalog call.
func WithQueryTimeout(timeout time.Duration) Option {
	return func(p *Planner) {
		p.queryTimeout = timeout
	}
}

// WithMaxPathEdges bounds the length, in graph edges, of the searched paths.
func WithMaxPathEdges(edges int) Option {
	return func(p *Planner) {
		p.maxPathEdges = edges
	}
}

// WithTopK sets how many pipelines ResolvePipelines returns at most.
func WithTopK(k int) Option {
	return func(p *Planner) {
		p.topK = k
	}
}

// WithMaxInsertions caps the number of missing targets the gap filler inserts.
func WithMaxInsertions(n int) Option {
	return func(p *Planner) {
		p.maxInsertions = n
	}
}

// WithTargetCitation sets the citation given to requested targets when scoring.
func WithTargetCitation(citation float64) Option {
	return func(p *Planner) {
		p.targetCitation = citation
	}
}

// WithReplacementLimit sets how many replacements SuggestReplacements returns at most.
func WithReplacementLimit(limit int) Option {
	return func(p *Planner) {
		p.replacementLimit = limit
	}
}

// WithConcurrency sets the number of workers validating candidate paths.
func WithConcurrency(concurrent int) Option {
	return func(p *Planner) {
		p.concurrency = concurrent
	}
}

func WithMeasure(msr measure.Measure) Option {
	return func(p *Planner) {
		p.measure = msr
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(p *Planner) {
		p.logger = logger
	}
}
