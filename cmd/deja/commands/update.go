package commands

import (
	"github.com/spf13/cobra"
	"go.trai.ch/deja/internal/app"
)

func (c *CLI) newUpdateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "update [paths...]",
		Short: "Recompute stale outputs in place",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ignoreDeleted, _ := cmd.Flags().GetBool("ignore-deleted")
			outputMode, _ := cmd.Flags().GetString("output-mode")
			ci, _ := cmd.Flags().GetBool("ci")

			if ci {
				outputMode = "plain"
			}

			report, err := c.app.Update(cmd.Context(), app.UpdateOptions{
				Paths:         args,
				IgnoreDeleted: ignoreDeleted,
				OutputMode:    outputMode,
			})
			if err != nil {
				return err
			}

			renderUpdate(cmd.OutOrStdout(), report)
			return nil
		},
	}

	cmd.Flags().Bool("ignore-deleted", false, "Skip activities with deleted inputs instead of failing")
	cmd.Flags().String("output-mode", "auto", "Output mode: auto, pretty, or plain")
	cmd.Flags().Bool("ci", false, "Use plain output mode (shorthand for --output-mode=plain)")

	return cmd
}
