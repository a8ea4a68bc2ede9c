// Package commands implements the CLI commands for the deja provenance
// manager.
package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.trai.ch/deja/internal/app"
	"go.trai.ch/deja/internal/build"
	"go.trai.ch/deja/internal/core/domain"
)

// CLI wires the cobra command tree to the application layer.
type CLI struct {
	app     Application
	rootCmd *cobra.Command
}

// Application is the surface of the application layer the commands call.
type Application interface {
	Init(ctx context.Context) (string, error)
	Run(ctx context.Context, opts app.RunOptions) (*domain.Activity, error)
	Status(ctx context.Context, opts app.StatusOptions) (*domain.StatusReport, error)
	Watch(ctx context.Context, opts app.StatusOptions, onReport func(*domain.StatusReport)) error
	Update(ctx context.Context, opts app.UpdateOptions) (*domain.UpdateReport, error)
	Rerun(ctx context.Context, opts app.RerunOptions) (*domain.RerunReport, error)
	Log(ctx context.Context, opts app.LogOptions) ([]domain.Record, error)
	Plans(ctx context.Context, opts app.PlanListOptions) ([]*domain.Plan, error)
	PlanShow(ctx context.Context, ref string) (*domain.Plan, []*domain.Activity, error)
	PlanRemove(ctx context.Context, name string) ([]*domain.Plan, error)
	Revert(ctx context.Context, activityID string, opts app.RevertOptions) (*domain.Activity, error)
	Clean(ctx context.Context, opts app.CleanOptions) error
}

// New builds the deja command tree around the given application.
func New(a Application) *CLI {
	root := &cobra.Command{
		Use:           "deja",
		Short:         "A provenance manager for computed files",
		Version:       build.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.SetVersionTemplate(fmt.Sprintf(
		"{{.Name}} version {{.Version}} (commit: %s, date: %s)\n",
		build.Commit, build.Date,
	))
	root.InitDefaultVersionFlag()
	root.Flags().Lookup("version").Usage = "Print the application version"
	root.InitDefaultHelpFlag()
	root.Flags().Lookup("help").Usage = "Show help for command"

	c := &CLI{app: a, rootCmd: root}
	root.AddCommand(
		c.newInitCmd(),
		c.newRunCmd(),
		c.newStatusCmd(),
		c.newUpdateCmd(),
		c.newRerunCmd(),
		c.newLogCmd(),
		c.newPlanCmd(),
		c.newRevertCmd(),
		c.newCleanCmd(),
		c.newVersionCmd(),
	)
	return c
}

// Execute runs the selected command under ctx.
func (c *CLI) Execute(ctx context.Context) error {
	c.rootCmd.SetContext(ctx)
	return c.rootCmd.Execute()
}

// SetArgs overrides os.Args for the next Execute call.
func (c *CLI) SetArgs(args []string) {
	c.rootCmd.SetArgs(args)
}

// SetOutput redirects the command tree's output and error streams.
func (c *CLI) SetOutput(out, err io.Writer) {
	c.rootCmd.SetOut(out)
	c.rootCmd.SetErr(err)
}
