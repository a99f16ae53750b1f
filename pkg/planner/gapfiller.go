package planner

import (
	"github.com/pkg/errors"

	"github.com/askiada/go-toolplan/pkg/planner/model"
)

// gapFiller inserts the targets a valid pipeline misses.
type gapFiller struct {
	in, out       model.Requirements
	preloading    model.StateSet
	maxInsertions int
}

// missingTargets returns the targets absent from p, in targets order.
func missingTargets(p model.Pipeline, targets []model.ToolID) []model.ToolID {
	missing := []model.ToolID{}

	for _, id := range targets {
		if !p.Contains(id) {
			missing = append(missing, id)
		}
	}

	return missing
}

// fill returns the pipelines covering every target with the fewest
// insertions. Only the pipelines missing the fewest targets are repaired.
// Missing targets are inserted one level at a time, in targets order, at
// every position of every survivor of the previous level. A candidate
// survives when the whole pipeline stays valid.
func (g gapFiller) fill(valid []model.Pipeline, targets []model.ToolID) ([]model.Pipeline, int, error) {
	if len(valid) == 0 {
		return []model.Pipeline{}, 0, nil
	}

	missing := make([][]model.ToolID, len(valid))
	fewest := len(targets)

	for i, pipe := range valid {
		missing[i] = missingTargets(pipe, targets)
		if len(missing[i]) < fewest {
			fewest = len(missing[i])
		}
	}

	if fewest > g.maxInsertions {
		return nil, fewest, errors.Wrapf(ErrRepairBudgetExceeded, "%d missing, at most %d", fewest, g.maxInsertions)
	}

	result := []model.Pipeline{}
	seen := map[string]struct{}{}

	for i, pipe := range valid {
		if len(missing[i]) != fewest {
			continue
		}

		for _, repaired := range g.repair(pipe, missing[i]) {
			if _, ok := seen[repaired.Key()]; ok {
				continue
			}

			seen[repaired.Key()] = struct{}{}
			result = append(result, repaired)
		}
	}

	return result, fewest, nil
}

func (g gapFiller) repair(pipe model.Pipeline, missing []model.ToolID) []model.Pipeline {
	survivors := []model.Pipeline{pipe}

	for _, id := range missing {
		next := []model.Pipeline{}
		seen := map[string]struct{}{}

		for _, survivor := range survivors {
			for pos := 0; pos <= len(survivor); pos++ {
				candidate := survivor.Insert(pos, id)
				if _, ok := seen[candidate.Key()]; ok {
					continue
				}

				seen[candidate.Key()] = struct{}{}

				if Validate(candidate, g.in, g.out, g.preloading).OK {
					next = append(next, candidate)
				}
			}
		}

		survivors = next
		if len(survivors) == 0 {
			break
		}
	}

	return survivors
}
