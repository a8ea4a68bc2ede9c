package app

import (
	"context"
	"errors"

	"go.trai.ch/deja/internal/adapters/telemetry"
	"go.trai.ch/deja/internal/core/domain"
	"go.trai.ch/deja/internal/core/ports"
	"go.trai.ch/deja/internal/engine/query"
)

// UpdateOptions configuration for the Update method.
type UpdateOptions struct {
	// Paths restricts recomputation to matching outputs plus the stale
	// activities they depend on.
	Paths []string
	// IgnoreDeleted downgrades deleted inputs from fatal to a per-activity
	// skip with a warning.
	IgnoreDeleted bool
	OutputMode    string
}

// Update re-executes every stale activity in dependency order and records
// the fresh runs. Nothing stale means an empty report and no execution.
func (a *App) Update(ctx context.Context, opts UpdateOptions) (*domain.UpdateReport, error) {
	sess, err := a.openSession()
	if err != nil {
		return nil, err
	}
	defer func() { _ = sess.Close() }()

	paths, err := relativize(sess.workspace, opts.Paths)
	if err != nil {
		return nil, err
	}

	var report *domain.UpdateReport
	err = a.execute(ctx, opts.OutputMode, func(ctx context.Context, tracer ports.Tracer) error {
		engine := a.engine(sess, tracer, a.blobs(sess.root))
		res, err := engine.Update(ctx, query.UpdateRequest{Paths: paths, IgnoreDeleted: opts.IgnoreDeleted})
		if err != nil {
			return errors.Join(domain.ErrUpdateFailed, err)
		}
		report = res
		return nil
	})
	if err != nil {
		return nil, err
	}
	return report, nil
}

// RerunOptions configuration for the Rerun method.
type RerunOptions struct {
	// Targets are the output paths to regenerate.
	Targets []string
	// Sources keeps only chains whose leaf activities read at least one of
	// these paths.
	Sources []string
	// Execute runs the computed chain instead of just reporting it.
	Execute    bool
	OutputMode string
}

// Rerun computes the ordered chain of plan invocations that regenerates the
// requested targets. With Execute set the chain also runs, stopping at the
// first failure; everything executed before the failure stays recorded.
func (a *App) Rerun(ctx context.Context, opts RerunOptions) (*domain.RerunReport, error) {
	sess, err := a.openSession()
	if err != nil {
		return nil, err
	}
	defer func() { _ = sess.Close() }()

	targets, err := relativize(sess.workspace, opts.Targets)
	if err != nil {
		return nil, err
	}
	sources, err := relativize(sess.workspace, opts.Sources)
	if err != nil {
		return nil, err
	}
	req := query.RerunRequest{Targets: targets, Sources: sources}

	if !opts.Execute {
		engine := a.engine(sess, telemetry.NewNoOpTracer(), nil)
		return engine.Rerun(ctx, req)
	}

	var report *domain.RerunReport
	err = a.execute(ctx, opts.OutputMode, func(ctx context.Context, tracer ports.Tracer) error {
		engine := a.engine(sess, tracer, a.blobs(sess.root))
		res, err := engine.Rerun(ctx, req)
		if err != nil {
			return err
		}
		report = res
		_, err = engine.ExecuteRerun(ctx, res, targets)
		return err
	})
	if err != nil {
		return nil, err
	}
	return report, nil
}
