package planner

import (
	"context"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/askiada/go-toolplan/internal/ctxlog"
	"github.com/askiada/go-toolplan/pkg/planner/catalog"
	"github.com/askiada/go-toolplan/pkg/planner/measure"
	"github.com/askiada/go-toolplan/pkg/planner/model"
)

// scope holds the tools visible to a request, copy duplicates removed.
type scope struct {
	tools []model.Tool
	names map[model.ToolID]string
	in    model.Requirements
	out   model.Requirements
}

type enumeration struct {
	scope *scope
	// targets are the resolved target ids, in request order.
	targets    []model.ToolID
	candidates []model.Candidate
}

func (p *Planner) loadScope(ctx context.Context, project model.ProjectID) (*scope, error) {
	scoping := p.stage(measure.StageScope, 1)
	defer scoping.done()

	tools, err := call(ctx, p, "scope tools", func(ctx context.Context) ([]model.Tool, error) {
		return p.catalog.ScopeTools(ctx, project)
	})
	if err != nil {
		return nil, err
	}

	dups, err := call(ctx, p, "copy duplicates", func(ctx context.Context) ([]model.ToolID, error) {
		return p.catalog.CopyDuplicates(ctx, model.ToolIDs(tools))
	})
	if err != nil {
		return nil, err
	}

	excluded := make(map[model.ToolID]struct{}, len(dups))
	for _, id := range dups {
		excluded[id] = struct{}{}
	}

	sc := &scope{tools: make([]model.Tool, 0, len(tools)), names: make(map[model.ToolID]string, len(tools))}

	for _, tool := range tools {
		if _, ok := excluded[tool.ID]; ok {
			continue
		}

		sc.tools = append(sc.tools, tool)
		sc.names[tool.ID] = tool.Name
	}

	scoping.count("tools", len(sc.tools))
	scoping.count("duplicates", len(tools)-len(sc.tools))

	if len(sc.tools) == 0 {
		return sc, nil
	}

	fetching := p.stage(measure.StageRequirements, 2)
	defer fetching.done()

	sc.in, sc.out, err = p.requirements(ctx, model.ToolIDs(sc.tools))
	if err != nil {
		return nil, err
	}

	return sc, nil
}

// enumerate finds every path of the catalog ending at a target and
// validates it against the preloading.
func (p *Planner) enumerate(ctx context.Context, targetNames []string, preloading model.StateSet, project model.ProjectID) (*enumeration, error) {
	logger := ctxlog.FromContext(ctx)

	sc, err := p.loadScope(ctx, project)
	if err != nil {
		return nil, err
	}

	if len(sc.tools) == 0 {
		return nil, &UnsatisfiableError{Target: targetNames[0], Missing: []string{}, Err: ErrEmptyScope}
	}

	en := &enumeration{scope: sc}
	resolved := map[model.ToolID]struct{}{}

	for _, name := range targetNames {
		id, ambiguous, err := catalog.ResolveName(sc.tools, name)
		if err != nil {
			return nil, &UnsatisfiableError{Target: name, Missing: []string{}, Err: errors.Wrap(ErrToolNotFound, err.Error())}
		}

		if ambiguous {
			logger.DebugContext(ctx, "several tools share the target name, keeping the most cited", "target", name, "id", id)
		}

		if _, ok := resolved[id]; ok {
			continue
		}

		resolved[id] = struct{}{}
		en.targets = append(en.targets, id)
	}

	allowed := reduceVertices(sc, targetNames, preloading)

	searching := p.stage(measure.StagePaths, 1)

	paths, err := call(ctx, p, "paths", func(ctx context.Context) ([]model.Pipeline, error) {
		return p.catalog.Paths(ctx, catalog.PathQuery{TargetNames: targetNames, Allowed: allowed, MaxEdges: p.maxPathEdges})
	})
	if err != nil {
		return nil, err
	}

	unique := dedupe(paths)

	searching.count("found", len(paths))
	searching.count("unique", len(unique))
	searching.done()

	en.candidates, err = p.validateAll(ctx, unique, sc.in, sc.out, preloading)
	if err != nil {
		return nil, err
	}

	logger.DebugContext(ctx, "paths enumerated", "allowed", len(allowed), "paths", len(unique))

	return en, nil
}

// reduceVertices keeps the tools producing a state absent from the
// preloading, plus the tools named after a target.
func reduceVertices(sc *scope, targetNames []string, preloading model.StateSet) []model.ToolID {
	allowed := []model.ToolID{}
	kept := map[model.ToolID]struct{}{}

	for _, tool := range sc.tools {
		if sc.out.Of(tool.ID).Minus(preloading).Len() > 0 {
			allowed = append(allowed, tool.ID)
			kept[tool.ID] = struct{}{}
		}
	}

	for _, id := range catalog.IDsNamed(sc.tools, targetNames) {
		if _, ok := kept[id]; !ok {
			allowed = append(allowed, id)
		}
	}

	return allowed
}

// dedupe drops the tool sequences already seen. Paths differing only by
// their data state nodes yield the same sequence.
func dedupe(paths []model.Pipeline) []model.Pipeline {
	out := make([]model.Pipeline, 0, len(paths))
	seen := make(map[string]struct{}, len(paths))

	for _, path := range paths {
		if len(path) == 0 {
			continue
		}

		if _, ok := seen[path.Key()]; ok {
			continue
		}

		seen[path.Key()] = struct{}{}
		out = append(out, path)
	}

	return out
}

// validateAll validates the paths on a bounded pool of workers. Candidates
// keep the order of paths.
func (p *Planner) validateAll(ctx context.Context, paths []model.Pipeline, in, out model.Requirements, preloading model.StateSet) ([]model.Candidate, error) {
	validating := p.stage(measure.StageValidate, p.concurrency)
	defer validating.done()

	candidates := make([]model.Candidate, len(paths))

	errGrp, dCtx := errgroup.WithContext(ctx)
	errGrp.SetLimit(p.concurrency)

	for i, path := range paths {
		errGrp.Go(func() error {
			if err := dCtx.Err(); err != nil {
				return errors.Wrapf(err, "path %d", i)
			}

			res := Validate(path, in, out, preloading)
			candidates[i] = model.Candidate{Pipeline: path, Unmet: res.Missing, End: path.End()}

			return nil
		})
	}

	err := errGrp.Wait()
	if err != nil {
		return nil, errors.Wrap(err, "unable to validate paths")
	}

	valid := 0

	for _, candidate := range candidates {
		if candidate.Valid() {
			valid++
		}
	}

	validating.count("valid", valid)
	validating.count("invalid", len(candidates)-valid)

	return candidates, nil
}

// selectValid groups the candidates by terminal tool. Every group of a tool
// named after a target must hold a valid pipeline, and every resolved target
// must have a group. The first failing target, in request order, is reported.
// Otherwise all valid pipelines are returned, in enumeration order.
func (en *enumeration) selectValid(targetNames []string, preloading model.StateSet) ([]model.Pipeline, error) {
	groups := map[model.ToolID]int{}
	validByEnd := map[model.ToolID]int{}

	for _, candidate := range en.candidates {
		groups[candidate.End]++

		if candidate.Valid() {
			validByEnd[candidate.End]++
		}
	}

	resolved := make(map[model.ToolID]struct{}, len(en.targets))
	for _, id := range en.targets {
		resolved[id] = struct{}{}
	}

	for _, name := range targetNames {
		for _, end := range catalog.IDsNamed(en.scope.tools, []string{name}) {
			_, isTarget := resolved[end]
			_, hasGroup := groups[end]

			if !hasGroup && !isTarget {
				continue
			}

			if validByEnd[end] == 0 {
				return nil, &UnsatisfiableError{
					Target:  name,
					Missing: en.scope.in.Of(end).Minus(preloading).Strings(),
				}
			}
		}
	}

	valid := []model.Pipeline{}

	for _, candidate := range en.candidates {
		if candidate.Valid() {
			valid = append(valid, candidate.Pipeline)
		}
	}

	return valid, nil
}

// repairFailure reports the first target that no insertion could add to the
// pipelines missing the fewest targets.
func (en *enumeration) repairFailure(valid []model.Pipeline, preloading model.StateSet) error {
	var blocking model.ToolID

	fewest := -1

	for _, pipe := range valid {
		missing := missingTargets(pipe, en.targets)
		if len(missing) > 0 && (fewest < 0 || len(missing) < fewest) {
			fewest = len(missing)
			blocking = missing[0]
		}
	}

	return &UnsatisfiableError{
		Target:  en.scope.names[blocking],
		Missing: en.scope.in.Of(blocking).Minus(preloading).Strings(),
	}
}
