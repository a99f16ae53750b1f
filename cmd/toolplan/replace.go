package main

import (
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/askiada/go-toolplan/pkg/planner/model"
)

func newReplaceCmd(a *app) *cobra.Command {
	var id string

	cmd := &cobra.Command{
		Use:   "replace",
		Short: "Suggest tools that could stand in for a tool",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			replacements, err := a.planner.SuggestReplacements(cmd.Context(), model.ToolID(id))
			if err != nil {
				return errors.Wrap(err, "unable to suggest replacements")
			}

			return writeJSON(cmd.OutOrStdout(), replacements)
		},
	}

	cmd.Flags().StringVar(&id, "tool", "", "Id of the tool to replace")
	_ = cmd.MarkFlagRequired("tool")

	return cmd
}
