package planner

import "github.com/askiada/go-toolplan/pkg/planner/model"

// ValidationResult is the outcome of threading the state set through a pipeline.
type ValidationResult struct {
	OK bool
	// FailingIndex is the position of the first tool whose requirements are
	// not met, -1 when OK.
	FailingIndex int
	FailingTool  model.ToolID
	// Missing holds the requirements of the failing tool absent from the state set.
	Missing model.StateSet
	// Final is the state set after the last applied tool.
	Final model.StateSet
}

// Validate threads preloading through p. Each tool must find its input
// requirements in the current state set, which then gains the tool outputs
// and is collapsed. Validation stops at the first failing tool.
func Validate(p model.Pipeline, in, out model.Requirements, preloading model.StateSet) ValidationResult {
	state := preloading.Clone()

	for i, id := range p {
		missing := in.Of(id).Minus(state)
		if missing.Len() > 0 {
			return ValidationResult{
				FailingIndex: i,
				FailingTool:  id,
				Missing:      missing,
				Final:        state,
			}
		}

		state = state.Union(out.Of(id)).Collapse()
	}

	return ValidationResult{
		OK:           true,
		FailingIndex: -1,
		Missing:      model.StateSet{},
		Final:        state,
	}
}
