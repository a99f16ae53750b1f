package main

import (
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/askiada/go-toolplan/pkg/planner"
	"github.com/askiada/go-toolplan/pkg/planner/model"
)

type validationView struct {
	*planner.PlanValidation
	Description string `json:"description,omitempty"`
}

func newValidateCmd(a *app) *cobra.Command {
	var (
		steps     []string
		preloaded []string
	)

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Check that an authored plan can run from the preloaded states",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			plan := make([]model.PlanStep, len(steps))
			for i, id := range steps {
				plan[i] = model.PlanStep{ID: model.ToolID(id)}
			}

			validation, err := a.planner.ValidatePlan(cmd.Context(), plan, preloaded)
			if err != nil {
				return errors.Wrap(err, "unable to validate plan")
			}

			return writeJSON(cmd.OutOrStdout(), validationView{
				PlanValidation: validation,
				Description:    validation.Describe(),
			})
		},
	}

	cmd.Flags().StringArrayVar(&steps, "step", nil, "Tool id of the next plan step, repeatable")
	cmd.Flags().StringArrayVar(&preloaded, "preload", nil, "Data state available before the first step, repeatable")

	return cmd
}
