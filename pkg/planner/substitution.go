package planner

import (
	"context"
	"sort"

	"github.com/pkg/errors"

	"github.com/askiada/go-toolplan/pkg/planner/catalog"
	"github.com/askiada/go-toolplan/pkg/planner/measure"
	"github.com/askiada/go-toolplan/pkg/planner/model"
)

// Replacement is a tool that could stand in for another one.
type Replacement struct {
	ID         model.ToolID    `json:"id"`
	Name       string          `json:"name"`
	Project    model.ProjectID `json:"project"`
	Citation   float64         `json:"citation"`
	Similarity float64         `json:"similarity"`
	Score      float64         `json:"score"`
}

// Replacements groups the replacements by owning project, best first.
type Replacements map[model.ProjectID][]Replacement

// InputSimilarity measures how much of the candidate inputs the original
// tool also requires: 1 when they all are, 0.5 when none is. A candidate
// without inputs always scores 1.
func InputSimilarity(candidate, original model.StateSet) float64 {
	if candidate.Len() == 0 {
		return 1
	}

	return 1 - float64(candidate.Minus(original).Len())/float64(2*candidate.Len())
}

// SuggestReplacements ranks the tools of the same task, visible from the
// project of the tool, by citation weighted by input similarity.
func (p *Planner) SuggestReplacements(ctx context.Context, id model.ToolID) (Replacements, error) {
	ctx = p.withLogger(ctx, "replace")

	replacing := p.stage(measure.StageReplace, 1)
	defer replacing.done()

	placement, err := call(ctx, p, "placement", func(ctx context.Context) (catalog.Placement, error) {
		return p.catalog.Placement(ctx, id)
	})
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			return nil, errors.Wrapf(ErrToolNotFound, "tool %s", id)
		}

		return nil, err
	}

	rows, err := call(ctx, p, "task tools", func(ctx context.Context) ([]catalog.ScopedTool, error) {
		return p.catalog.TaskTools(ctx, placement.Project, placement.Task)
	})
	if err != nil {
		return nil, err
	}

	ids := []model.ToolID{id}
	listed := map[model.ToolID]struct{}{id: {}}

	for _, row := range rows {
		if _, ok := listed[row.Tool.ID]; !ok {
			listed[row.Tool.ID] = struct{}{}
			ids = append(ids, row.Tool.ID)
		}
	}

	dups, err := call(ctx, p, "copy duplicates", func(ctx context.Context) ([]model.ToolID, error) {
		return p.catalog.CopyDuplicates(ctx, ids)
	})
	if err != nil {
		return nil, err
	}

	excluded := map[model.ToolID]struct{}{id: {}}
	for _, dup := range dups {
		excluded[dup] = struct{}{}
	}

	in, err := call(ctx, p, "input requirements", func(ctx context.Context) (model.Requirements, error) {
		return p.catalog.InputRequirements(ctx, ids)
	})
	if err != nil {
		return nil, err
	}

	original := in.Of(id)
	candidates := []Replacement{}

	for _, row := range rows {
		if _, ok := excluded[row.Tool.ID]; ok {
			continue
		}

		similarity := InputSimilarity(in.Of(row.Tool.ID), original)
		candidates = append(candidates, Replacement{
			ID:         row.Tool.ID,
			Name:       row.Tool.Name,
			Project:    row.Project,
			Citation:   row.Tool.Citation,
			Similarity: similarity,
			Score:      row.Tool.Citation * similarity,
		})
	}

	sort.SliceStable(candidates, func(i, j int) bool { return candidates[i].Score > candidates[j].Score })

	if len(candidates) > p.replacementLimit {
		candidates = candidates[:p.replacementLimit]
	}

	replacing.count("candidates", len(candidates))

	out := Replacements{}
	for _, candidate := range candidates {
		out[candidate.Project] = append(out[candidate.Project], candidate)
	}

	return out, nil
}
