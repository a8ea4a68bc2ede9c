package commands

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.trai.ch/deja/internal/app"
)

func (c *CLI) newPlanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Inspect and manage recorded plans",
	}

	cmd.AddCommand(c.newPlanListCmd())
	cmd.AddCommand(c.newPlanShowCmd())
	cmd.AddCommand(c.newPlanRemoveCmd())

	return cmd
}

func (c *CLI) newPlanListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recorded plan versions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			all, _ := cmd.Flags().GetBool("all")

			plans, err := c.app.Plans(cmd.Context(), app.PlanListOptions{All: all})
			if err != nil {
				return err
			}

			renderPlans(cmd.OutOrStdout(), plans)
			return nil
		},
	}

	cmd.Flags().BoolP("all", "a", false, "Include removed plan versions")

	return cmd
}

func (c *CLI) newPlanShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <name-or-id>",
		Short: "Show one plan version and its recorded executions",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			plan, activities, err := c.app.PlanShow(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			renderPlanShow(cmd.OutOrStdout(), plan, activities)
			return nil
		},
	}
}

func (c *CLI) newPlanRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remove <name>",
		Short: "Remove all versions of a plan",
		Long: "Remove soft-deletes every live version of the named plan. It " +
			"refuses while a valid execution still references one of the " +
			"versions; revert those executions first.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			removed, err := c.app.PlanRemove(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "removed %s (%d version(s))\n", args[0], len(removed))
			return nil
		},
	}
}
