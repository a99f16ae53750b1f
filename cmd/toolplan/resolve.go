package main

import (
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/askiada/go-toolplan/pkg/planner"
	"github.com/askiada/go-toolplan/pkg/planner/drawer"
	"github.com/askiada/go-toolplan/pkg/planner/model"
)

// requestFlags are shared by the commands planning towards targets.
type requestFlags struct {
	targets   []string
	preloaded []string
	project   string
}

func (f *requestFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringArrayVar(&f.targets, "target", nil, "Name of a target tool, repeatable")
	cmd.Flags().StringArrayVar(&f.preloaded, "preload", nil, "Data state available before the first step, repeatable")
	cmd.Flags().StringVar(&f.project, "project", string(model.PublicProject), "Project the planning is scoped to")

	_ = cmd.MarkFlagRequired("target")
}

func newResolveCmd(a *app) *cobra.Command {
	var (
		req     requestFlags
		dotPath string
	)

	cmd := &cobra.Command{
		Use:   "resolve",
		Short: "Find the best pipelines reaching the target tools",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			res, err := a.planner.ResolvePipelines(cmd.Context(), req.targets, req.preloaded, req.project)
			if err != nil {
				return errors.Wrap(err, "unable to resolve pipelines")
			}

			if dotPath != "" && res.Success {
				err = drawToFile(dotPath, res.Pipelines)
				if err != nil {
					return err
				}
			}

			return writeJSON(cmd.OutOrStdout(), res)
		},
	}

	req.register(cmd)
	cmd.Flags().StringVar(&dotPath, "dot", "", "Also write the ranked pipelines as a DOT graph to this file")

	return cmd
}

func drawToFile(path string, pipes []planner.ScoredPipeline) error {
	file, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "unable to create %s", path)
	}
	defer file.Close()

	d := drawer.NewDOTDrawer()

	err = drawer.DrawPipelines(d, pipes)
	if err != nil {
		return errors.Wrap(err, "unable to draw pipelines")
	}

	err = d.Draw(file)
	if err != nil {
		return errors.Wrapf(err, "unable to write %s", path)
	}

	return nil
}
