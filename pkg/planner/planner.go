package planner

import (
	"context"
	"log/slog"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/askiada/go-toolplan/internal/ctxlog"
	"github.com/askiada/go-toolplan/pkg/planner/catalog"
	"github.com/askiada/go-toolplan/pkg/planner/measure"
	"github.com/askiada/go-toolplan/pkg/planner/model"
)

type Planner struct {
	catalog          catalog.Catalog
	queryTimeout     time.Duration
	maxPathEdges     int
	topK             int
	maxInsertions    int
	targetCitation   float64
	replacementLimit int
	concurrency      int
	measure          measure.Measure
	logger           *slog.Logger
}

// New creates a planner reading cat.
func New(cat catalog.Catalog, opts ...Option) (*Planner, error) {
	if cat == nil {
		return nil, ErrCatalogMustBeSet
	}

	p := &Planner{
		catalog:          cat,
		queryTimeout:     DefaultQueryTimeout,
		maxPathEdges:     DefaultMaxPathEdges,
		topK:             DefaultTopK,
		maxInsertions:    DefaultMaxInsertions,
		targetCitation:   DefaultTargetCitation,
		replacementLimit: DefaultReplacementLimit,
		concurrency:      DefaultConcurrency,
	}

	for _, opt := range opts {
		opt(p)
	}

	switch {
	case p.queryTimeout <= 0:
		return nil, errors.Wrap(ErrInvalidOption, "query timeout must be positive")
	case p.maxPathEdges < 0:
		return nil, errors.Wrap(ErrInvalidOption, "max path edges cannot be negative")
	case p.topK <= 0:
		return nil, errors.Wrap(ErrInvalidOption, "top k must be positive")
	case p.maxInsertions < 0:
		return nil, errors.Wrap(ErrInvalidOption, "max insertions cannot be negative")
	case p.replacementLimit <= 0:
		return nil, errors.Wrap(ErrInvalidOption, "replacement limit must be positive")
	case p.concurrency <= 0:
		return nil, errors.Wrap(ErrInvalidOption, "concurrency must be positive")
	}

	return p, nil
}

// Resolution is the answer of ResolvePipelines. When Success is false,
// MissingRequirements names the blocking target and the states it lacks.
// Exceeding the repair budget is never folded into a Resolution: it comes
// back as ErrRepairBudgetExceeded.
type Resolution struct {
	Success             bool                `json:"success"`
	Pipelines           []ScoredPipeline    `json:"possible_pipelines"`
	MissingRequirements map[string][]string `json:"missing_requirements"`
}

// ResolvePipelines returns the best pipelines leading from the preloaded
// states to every target tool visible from project. Unsatisfiable targets
// are reported through the resolution, not as an error. The one planning
// failure returned as an error is ErrRepairBudgetExceeded; catalog and
// argument errors are returned as well.
func (p *Planner) ResolvePipelines(ctx context.Context, targets, preloaded []string, project string) (*Resolution, error) {
	if len(targets) == 0 {
		return nil, ErrTargetsMustBeSet
	}

	ctx = p.withLogger(ctx, "resolve")
	logger := ctxlog.FromContext(ctx)
	preloading := model.NewStateSet(preloaded...)

	pipes, en, err := p.resolve(ctx, targets, preloading, model.ProjectID(project))
	if err != nil {
		var unsat *UnsatisfiableError
		if errors.As(err, &unsat) {
			logger.InfoContext(ctx, "target cannot be reached", "target", unsat.Target, "missing", unsat.Missing, "error", err)

			return &Resolution{
				Pipelines:           []ScoredPipeline{},
				MissingRequirements: map[string][]string{unsat.Target: unsat.Missing},
			}, nil
		}

		return nil, err
	}

	scoring := p.stage(measure.StageScore, 1)
	ranked := rank(pipes, citations(en.scope.tools, en.targets, p.targetCitation), en.scope.names, p.topK)
	scoring.count("ranked", len(ranked))
	scoring.done()

	logger.DebugContext(ctx, "pipelines resolved", "repaired", len(pipes), "returned", len(ranked))

	return &Resolution{
		Success:             true,
		Pipelines:           ranked,
		MissingRequirements: map[string][]string{},
	}, nil
}

func (p *Planner) resolve(ctx context.Context, targets []string, preloading model.StateSet, project model.ProjectID) ([]model.Pipeline, *enumeration, error) {
	en, err := p.enumerate(ctx, targets, preloading, project)
	if err != nil {
		return nil, nil, err
	}

	valid, err := en.selectValid(targets, preloading)
	if err != nil {
		return nil, nil, err
	}

	repairing := p.stage(measure.StageRepair, 1)
	defer repairing.done()

	filler := gapFiller{in: en.scope.in, out: en.scope.out, preloading: preloading, maxInsertions: p.maxInsertions}

	pipes, fewest, err := filler.fill(valid, en.targets)
	if err != nil {
		return nil, nil, err
	}

	repairing.count("inserted", fewest)
	repairing.count("repaired", len(pipes))

	if len(pipes) == 0 {
		return nil, nil, en.repairFailure(valid, preloading)
	}

	return pipes, en, nil
}

// CandidatePaths returns every path found towards the targets along with
// the states each one is missing, before grouping and repair.
func (p *Planner) CandidatePaths(ctx context.Context, targets, preloaded []string, project string) ([]model.Candidate, error) {
	if len(targets) == 0 {
		return nil, ErrTargetsMustBeSet
	}

	ctx = p.withLogger(ctx, "paths")

	en, err := p.enumerate(ctx, targets, model.NewStateSet(preloaded...), model.ProjectID(project))
	if err != nil {
		return nil, err
	}

	return en.candidates, nil
}

func (p *Planner) withLogger(ctx context.Context, operation string) context.Context {
	logger := p.logger
	if logger == nil {
		logger = ctxlog.FromContext(ctx)
	}

	return ctxlog.WithLogger(ctx, logger.With("operation", operation))
}

// call runs a catalog operation under the query timeout. Any failure other
// than a missing entity makes the graph unavailable.
func call[T any](ctx context.Context, p *Planner, op string, fn func(context.Context) (T, error)) (T, error) {
	qctx, cancel := context.WithTimeout(ctx, p.queryTimeout)
	defer cancel()

	res, err := fn(qctx)
	if err != nil {
		var zero T

		if errors.Is(err, catalog.ErrNotFound) {
			return zero, errors.Wrap(err, op)
		}

		return zero, &unavailableError{op: op, err: err}
	}

	return res, nil
}

// requirements fetches the input and output states of ids concurrently.
func (p *Planner) requirements(ctx context.Context, ids []model.ToolID) (model.Requirements, model.Requirements, error) {
	var in, out model.Requirements

	errGrp, gctx := errgroup.WithContext(ctx)

	errGrp.Go(func() error {
		var err error
		in, err = call(gctx, p, "input requirements", func(ctx context.Context) (model.Requirements, error) {
			return p.catalog.InputRequirements(ctx, ids)
		})

		return err
	})

	errGrp.Go(func() error {
		var err error
		out, err = call(gctx, p, "output formats", func(ctx context.Context) (model.Requirements, error) {
			return p.catalog.OutputFormats(ctx, ids)
		})

		return err
	})

	err := errGrp.Wait()
	if err != nil {
		return nil, nil, err
	}

	return in, out, nil
}

type stageTimer struct {
	metric measure.Metric
	start  time.Time
}

func (p *Planner) stage(name string, concurrent int) *stageTimer {
	st := &stageTimer{start: time.Now()}
	if p.measure != nil {
		st.metric = p.measure.AddMetric(name, concurrent)
	}

	return st
}

func (s *stageTimer) count(label string, n int) {
	if s.metric != nil {
		s.metric.AddCount(label, n)
	}
}

func (s *stageTimer) done() {
	if s.metric != nil {
		s.metric.AddDuration(time.Since(s.start))
	}
}
