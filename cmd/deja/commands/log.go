package commands

import (
	"github.com/spf13/cobra"
	"go.trai.ch/deja/internal/app"
)

func (c *CLI) newLogCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "log",
		Short: "List recorded executions, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			plans, _ := cmd.Flags().GetBool("plans")

			records, err := c.app.Log(cmd.Context(), app.LogOptions{Plans: plans})
			if err != nil {
				return err
			}

			// Activities reference plans by version id; resolve the names once
			// for presentation.
			versions, err := c.app.Plans(cmd.Context(), app.PlanListOptions{All: true})
			if err != nil {
				return err
			}
			names := make(map[string]string, len(versions))
			for _, p := range versions {
				names[p.ID] = p.Name.String()
			}

			renderLog(cmd.OutOrStdout(), records, names)
			return nil
		},
	}

	cmd.Flags().Bool("plans", false, "Include plan creations in the timeline")

	return cmd
}
