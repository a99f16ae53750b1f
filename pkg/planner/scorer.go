package planner

import (
	"math"
	"sort"

	"github.com/askiada/go-toolplan/pkg/planner/model"
)

// ScoredPipeline is a ranked pipeline.
type ScoredPipeline struct {
	Tools model.Pipeline `json:"tools"`
	Names []string       `json:"names"`
	Score float64        `json:"score"`
}

// Score is the mean citation of the pipeline tools divided by the square root
// of its length. Unknown tools count as 0 and an empty pipeline scores 0.
func Score(p model.Pipeline, citations map[model.ToolID]float64) float64 {
	if len(p) == 0 {
		return 0
	}

	var sum float64
	for _, id := range p {
		sum += citations[id]
	}

	return sum / float64(len(p)) / math.Sqrt(float64(len(p)))
}

// citations returns the citation of every scope tool, with the targets
// raised to targetCitation.
func citations(tools []model.Tool, targets []model.ToolID, targetCitation float64) map[model.ToolID]float64 {
	out := make(map[model.ToolID]float64, len(tools))
	for _, tool := range tools {
		out[tool.ID] = tool.Citation
	}

	for _, id := range targets {
		out[id] = targetCitation
	}

	return out
}

// rank keeps the topK best pipelines. Pipelines with equal scores keep their
// relative order.
func rank(pipes []model.Pipeline, cites map[model.ToolID]float64, names map[model.ToolID]string, topK int) []ScoredPipeline {
	scored := make([]ScoredPipeline, len(pipes))
	for i, pipe := range pipes {
		scored[i] = ScoredPipeline{Tools: pipe, Names: pipelineNames(pipe, names), Score: Score(pipe, cites)}
	}

	sort.SliceStable(scored, func(i, j int) bool { return scored[i].Score > scored[j].Score })

	if len(scored) > topK {
		scored = scored[:topK]
	}

	return scored
}

func pipelineNames(p model.Pipeline, names map[model.ToolID]string) []string {
	out := make([]string, len(p))
	for i, id := range p {
		out[i] = names[id]
		if out[i] == "" {
			out[i] = string(id)
		}
	}

	return out
}
