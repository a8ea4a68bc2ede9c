package commands

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.trai.ch/deja/internal/app"
	"go.trai.ch/deja/internal/core/domain"
)

func (c *CLI) newStatusCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status [paths...]",
		Short: "Show which recorded outputs are out of date",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ignoreDeleted, _ := cmd.Flags().GetBool("ignore-deleted")
			watch, _ := cmd.Flags().GetBool("watch")

			opts := app.StatusOptions{
				Paths:         args,
				IgnoreDeleted: ignoreDeleted,
			}

			if watch {
				first := true
				return c.app.Watch(cmd.Context(), opts, func(report *domain.StatusReport) {
					if !first {
						_, _ = fmt.Fprintln(cmd.OutOrStdout())
					}
					first = false
					renderStatus(cmd.OutOrStdout(), report)
				})
			}

			report, err := c.app.Status(cmd.Context(), opts)
			if err != nil {
				return err
			}
			renderStatus(cmd.OutOrStdout(), report)

			if !report.Clean() {
				// The report already went out; this only sets the exit status.
				return domain.ErrStaleDetected
			}
			return nil
		},
	}

	cmd.Flags().Bool("ignore-deleted", false, "Do not treat deleted inputs as stale")
	cmd.Flags().BoolP("watch", "w", false, "Keep running and refresh on workspace changes")

	return cmd
}
