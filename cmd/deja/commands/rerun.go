package commands

import (
	"strings"

	"github.com/spf13/cobra"
	"go.trai.ch/deja/internal/app"
	"go.trai.ch/deja/internal/core/domain"
	"go.trai.ch/zerr"
)

func (c *CLI) newRerunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rerun <target>...",
		Short: "Show or replay the chain that produced a target",
		Long: "Rerun resolves the minimal ordered set of recorded plans that " +
			"regenerates the target paths. By default it only prints the chain; " +
			"--execute replays it and records fresh executions.",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sources, _ := cmd.Flags().GetStringArray("source")
			execute, _ := cmd.Flags().GetBool("execute")
			outputMode, _ := cmd.Flags().GetString("output-mode")
			ci, _ := cmd.Flags().GetBool("ci")

			if ci {
				outputMode = "plain"
			}

			report, err := c.app.Rerun(cmd.Context(), app.RerunOptions{
				Targets:    args,
				Sources:    sources,
				Execute:    execute,
				OutputMode: outputMode,
			})
			if err != nil {
				return err
			}

			renderRerun(cmd.OutOrStdout(), report, execute)

			if report.Empty() && len(report.Missing) > 0 {
				return zerr.With(domain.ErrNoGeneratingActivity,
					"paths", strings.Join(report.Missing, ", "))
			}
			return nil
		},
	}

	cmd.Flags().StringArrayP("source", "s", nil, "Keep only chains rooted in this source path (repeatable)")
	cmd.Flags().BoolP("execute", "e", false, "Replay the chain instead of printing it")
	cmd.Flags().String("output-mode", "auto", "Output mode: auto, pretty, or plain")
	cmd.Flags().Bool("ci", false, "Use plain output mode (shorthand for --output-mode=plain)")

	return cmd
}
