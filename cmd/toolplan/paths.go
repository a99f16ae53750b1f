package main

import (
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/askiada/go-toolplan/pkg/planner/model"
)

// candidateView is the printed form of a candidate path.
type candidateView struct {
	Pipeline model.Pipeline `json:"pipeline"`
	End      model.ToolID   `json:"end"`
	Unmet    []string       `json:"unmet"`
	Valid    bool           `json:"valid"`
}

func newPathsCmd(a *app) *cobra.Command {
	var req requestFlags

	cmd := &cobra.Command{
		Use:   "paths",
		Short: "List every candidate path towards the targets with its unmet states",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			candidates, err := a.planner.CandidatePaths(cmd.Context(), req.targets, req.preloaded, req.project)
			if err != nil {
				return errors.Wrap(err, "unable to list candidate paths")
			}

			views := make([]candidateView, len(candidates))
			for i, candidate := range candidates {
				views[i] = candidateView{
					Pipeline: candidate.Pipeline,
					End:      candidate.End,
					Unmet:    candidate.Unmet.Strings(),
					Valid:    candidate.Valid(),
				}
			}

			return writeJSON(cmd.OutOrStdout(), views)
		},
	}

	req.register(cmd)

	return cmd
}
