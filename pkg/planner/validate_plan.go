package planner

import (
	"context"
	"fmt"
	"strings"

	"github.com/askiada/go-toolplan/internal/ctxlog"
	"github.com/askiada/go-toolplan/pkg/planner/measure"
	"github.com/askiada/go-toolplan/pkg/planner/model"
)

// PlanValidation is the answer of ValidatePlan.
type PlanValidation struct {
	Valid bool `json:"valid"`
	// FailingStep is the index of the failing step, -1 when Valid.
	FailingStep     int      `json:"failing_step"`
	FailingStepName string   `json:"failing_step_name,omitempty"`
	MissingStates   []string `json:"missing_states"`
}

// Describe returns a sentence explaining why the plan cannot run, or an
// empty string for a valid plan.
func (v *PlanValidation) Describe() string {
	if v.Valid {
		return ""
	}

	noun := "data state"
	if len(v.MissingStates) > 1 {
		noun = "data states"
	}

	return fmt.Sprintf("%s requires the %s %s, which neither the input data nor the previous steps provide",
		v.FailingStepName, noun, strings.Join(v.MissingStates, ", "))
}

// ValidatePlan checks that steps can run in order from the preloaded states.
func (p *Planner) ValidatePlan(ctx context.Context, steps []model.PlanStep, preloaded []string) (*PlanValidation, error) {
	ctx = p.withLogger(ctx, "validate")

	checking := p.stage(measure.StagePlanCheck, 1)
	defer checking.done()

	preloading := model.NewStateSet(preloaded...)
	if len(steps) == 0 {
		return &PlanValidation{Valid: true, FailingStep: -1, MissingStates: []string{}}, nil
	}

	pipe := make(model.Pipeline, len(steps))
	for i, step := range steps {
		pipe[i] = step.ID
	}

	in, out, err := p.requirements(ctx, pipe)
	if err != nil {
		return nil, err
	}

	res := Validate(pipe, in, out, preloading)
	checking.count("steps", len(steps))

	if res.OK {
		return &PlanValidation{Valid: true, FailingStep: -1, MissingStates: []string{}}, nil
	}

	names, err := call(ctx, p, "tool names", func(ctx context.Context) (map[model.ToolID]string, error) {
		return p.catalog.ToolNames(ctx, []model.ToolID{res.FailingTool})
	})
	if err != nil {
		return nil, err
	}

	name, ok := names[res.FailingTool]
	if !ok || name == "" {
		name = steps[res.FailingIndex].Label()
	}

	validation := &PlanValidation{
		FailingStep:     res.FailingIndex,
		FailingStepName: name,
		MissingStates:   res.Missing.Strings(),
	}

	ctxlog.FromContext(ctx).InfoContext(ctx, "plan rejected", "step", res.FailingIndex, "tool", res.FailingTool, "missing", validation.MissingStates)

	return validation, nil
}
