package catalog

import "github.com/askiada/go-toolplan/pkg/planner/model"

// copyLink is one copy_from relationship: tool was copied from source.
type copyLink struct {
	tool   model.ToolID
	source model.ToolID
}

// copiedSources returns, in ids order, the sources of links whose two ends
// are both in ids. When two tools copy each other only the later one in ids
// is reported, so one of them always stays in scope.
func copiedSources(ids []model.ToolID, links []copyLink) []model.ToolID {
	position := make(map[model.ToolID]int, len(ids))
	for i, id := range ids {
		if _, ok := position[id]; !ok {
			position[id] = i
		}
	}

	linked := make(map[copyLink]struct{}, len(links))
	for _, l := range links {
		linked[l] = struct{}{}
	}

	copied := map[model.ToolID]struct{}{}

	for _, l := range links {
		toolAt, ok := position[l.tool]
		if !ok {
			continue
		}

		sourceAt, ok := position[l.source]
		if !ok || l.tool == l.source {
			continue
		}

		if _, mutual := linked[copyLink{tool: l.source, source: l.tool}]; mutual && sourceAt < toolAt {
			continue
		}

		copied[l.source] = struct{}{}
	}

	out := []model.ToolID{}

	for _, id := range ids {
		if _, ok := copied[id]; ok {
			out = append(out, id)
			delete(copied, id)
		}
	}

	return out
}
