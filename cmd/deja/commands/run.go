package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.trai.ch/deja/internal/app"
)

func (c *CLI) newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run --plan <name> [flags] -- <command> [args...]",
		Short: "Execute a command and record its provenance",
		Long: "Run executes the command, checksums the declared inputs before and " +
			"the declared outputs after, and appends the execution to the " +
			"provenance log. Repeating a run with an unchanged command reuses " +
			"the recorded plan; a changed command records a new plan version.",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			plan, _ := cmd.Flags().GetString("plan")
			inputs, _ := cmd.Flags().GetStringArray("input")
			outputs, _ := cmd.Flags().GetStringArray("output")
			params, _ := cmd.Flags().GetStringArray("param")
			outputMode, _ := cmd.Flags().GetString("output-mode")
			ci, _ := cmd.Flags().GetBool("ci")

			// If --ci is set, force undecorated output
			if ci {
				outputMode = "plain"
			}

			parameters, err := parseParameters(params)
			if err != nil {
				return err
			}

			activity, err := c.app.Run(cmd.Context(), app.RunOptions{
				Plan:       plan,
				Command:    args,
				Inputs:     inputs,
				Outputs:    outputs,
				Parameters: parameters,
				OutputMode: outputMode,
			})
			if err != nil {
				return err
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "recorded %s (%s)\n", plan, shortID(activity.ID))
			return nil
		},
	}

	// The wrapped command keeps its own flags: parsing stops at the first
	// non-flag argument.
	cmd.Flags().SetInterspersed(false)

	cmd.Flags().StringP("plan", "p", "", "Name of the plan to record the execution under")
	cmd.Flags().StringArrayP("input", "i", nil, "Declared input path (repeatable)")
	cmd.Flags().StringArrayP("output", "o", nil, "Declared output path (repeatable)")
	cmd.Flags().StringArrayP("param", "P", nil, "Parameter value as key=value (repeatable)")
	cmd.Flags().String("output-mode", "auto", "Output mode: auto, pretty, or plain")
	cmd.Flags().Bool("ci", false, "Use plain output mode (shorthand for --output-mode=plain)")
	_ = cmd.MarkFlagRequired("plan")

	return cmd
}

// parseParameters splits repeated key=value flags into a map.
func parseParameters(pairs []string) (map[string]string, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	params := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid parameter %q, expected key=value", pair)
		}
		params[key] = value
	}
	return params, nil
}
