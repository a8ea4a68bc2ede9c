package commands

import (
	"github.com/spf13/cobra"
	"go.trai.ch/deja/internal/app"
)

func (c *CLI) newCleanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clean",
		Short: "Remove recorded provenance state",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			logs, _ := cmd.Flags().GetBool("logs")
			all, _ := cmd.Flags().GetBool("all")

			// Without flags, drop the history and its snapshots but keep
			// the debug log.
			opts := app.CleanOptions{Store: !logs, Blobs: !logs, Logs: logs}
			if all {
				opts = app.CleanOptions{Store: true, Blobs: true, Logs: true}
			}

			return c.app.Clean(cmd.Context(), opts)
		},
	}

	cmd.Flags().BoolP("logs", "l", false, "Remove only the debug log")
	cmd.Flags().BoolP("all", "a", false, "Remove the history, snapshots and debug log")

	return cmd
}
