package main

import (
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/askiada/go-toolplan/pkg/planner/drawer"
)

var ErrNothingToDraw = errors.New("no pipeline to draw")

func newDrawCmd(a *app) *cobra.Command {
	var req requestFlags

	cmd := &cobra.Command{
		Use:   "draw",
		Short: "Print the ranked pipelines as a DOT graph",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			res, err := a.planner.ResolvePipelines(cmd.Context(), req.targets, req.preloaded, req.project)
			if err != nil {
				return errors.Wrap(err, "unable to resolve pipelines")
			}

			if !res.Success {
				return errors.Wrapf(ErrNothingToDraw, "missing requirements %v", res.MissingRequirements)
			}

			d := drawer.NewDOTDrawer()

			err = drawer.DrawPipelines(d, res.Pipelines)
			if err != nil {
				return errors.Wrap(err, "unable to draw pipelines")
			}

			return d.Draw(cmd.OutOrStdout())
		},
	}

	req.register(cmd)

	return cmd
}
