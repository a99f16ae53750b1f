package catalog

import (
	"github.com/pkg/errors"

	"github.com/askiada/go-toolplan/pkg/planner/model"
)

// ResolveName returns the id of the tool called name. Several tools may share
// a name: the one with the highest citation wins, and on equal citations the
// first one in tools order. ambiguous reports whether a collision happened.
func ResolveName(tools []model.Tool, name string) (id model.ToolID, ambiguous bool, err error) {
	found := false

	var best model.Tool

	for _, tool := range tools {
		if tool.Name != name {
			continue
		}

		if !found {
			best = tool
			found = true

			continue
		}

		ambiguous = true

		if tool.Citation > best.Citation {
			best = tool
		}
	}

	if !found {
		return "", false, errors.Wrapf(ErrNotFound, "tool %q", name)
	}

	return best.ID, ambiguous, nil
}

// IDsNamed returns the ids of every tool called after one of names, in tools order.
func IDsNamed(tools []model.Tool, names []string) []model.ToolID {
	wanted := make(map[string]struct{}, len(names))
	for _, name := range names {
		wanted[name] = struct{}{}
	}

	ids := []model.ToolID{}

	for _, tool := range tools {
		if _, ok := wanted[tool.Name]; ok {
			ids = append(ids, tool.ID)
		}
	}

	return ids
}
