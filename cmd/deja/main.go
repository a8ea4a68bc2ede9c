// Package main is the entry point for the deja provenance manager.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/grindlemire/graft"
	"go.trai.ch/deja/cmd/deja/commands"
	"go.trai.ch/deja/internal/app"
	"go.trai.ch/deja/internal/core/domain"
	_ "go.trai.ch/deja/internal/wiring"
)

// ComponentProvider supplies the assembled application components.
type ComponentProvider func(context.Context) (*app.Components, func(), error)

func main() {
	os.Exit(run(context.Background(), os.Args[1:], os.Stderr, graftComponents))
}

// graftComponents resolves the component graph the wiring package
// registered.
func graftComponents(ctx context.Context) (*app.Components, func(), error) {
	c, _, err := graft.ExecuteFor[*app.Components](ctx)
	return c, func() {}, err
}

func run(
	ctx context.Context,
	args []string,
	stderr io.Writer,
	provider ComponentProvider,
	opts ...func(*app.App),
) int {
	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	components, cleanup, err := provider(ctx)
	if err != nil {
		// No logger exists yet when assembly fails.
		_, _ = fmt.Fprintln(stderr, "Error: "+err.Error())
		return 1
	}
	defer cleanup()

	for _, opt := range opts {
		opt(components.App)
	}

	cli := commands.New(components.App)
	cli.SetArgs(args)
	cli.SetOutput(os.Stdout, stderr)

	if err := cli.Execute(ctx); err != nil {
		// Stale findings and failed plan commands were already rendered;
		// they only carry the exit status.
		if !errors.Is(err, domain.ErrStaleDetected) && !errors.Is(err, domain.ErrExecutionFailed) {
			components.Logger.Error(err)
		}
		return 1
	}
	return 0
}
