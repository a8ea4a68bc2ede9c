package commands

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.trai.ch/deja/internal/app"
)

func (c *CLI) newRevertCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "revert <activity-id>",
		Short: "Retract a recorded execution",
		Long: "Revert marks the execution invalid, so status, rerun and update " +
			"no longer consider it. The record itself stays in the log. The " +
			"activity id may be abbreviated to the prefix printed by deja log. " +
			"With --restore, its outputs are rewritten from the snapshot of " +
			"the previous recording.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			restore, _ := cmd.Flags().GetBool("restore")

			activity, err := c.app.Revert(cmd.Context(), args[0], app.RevertOptions{Restore: restore})
			if err != nil {
				return err
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "reverted %s\n", shortID(activity.ID))
			return nil
		},
	}

	cmd.Flags().Bool("restore", false, "Rewrite the outputs from the previous recording's snapshot")

	return cmd
}
