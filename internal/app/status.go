package app

import (
	"context"
	"strings"

	"go.trai.ch/deja/internal/adapters/telemetry"
	"go.trai.ch/deja/internal/adapters/watcher"
	"go.trai.ch/deja/internal/core/domain"
	"go.trai.ch/deja/internal/engine/query"
)

// StatusOptions configuration for the Status and Watch methods.
type StatusOptions struct {
	// Paths restricts the report to outputs matching these paths or
	// directory prefixes. Empty means the whole workspace.
	Paths []string
	// IgnoreDeleted suppresses staleness caused only by deleted inputs.
	IgnoreDeleted bool
}

// Status reports which recorded outputs are out of date with respect to the
// current workspace content. It is a read-only query.
func (a *App) Status(ctx context.Context, opts StatusOptions) (*domain.StatusReport, error) {
	sess, err := a.openSession()
	if err != nil {
		return nil, err
	}
	defer func() { _ = sess.Close() }()

	paths, err := relativize(sess.workspace, opts.Paths)
	if err != nil {
		return nil, err
	}

	engine := a.engine(sess, telemetry.NewNoOpTracer(), nil)
	return engine.Status(ctx, query.StatusRequest{Paths: paths, IgnoreDeleted: opts.IgnoreDeleted})
}

// Watch re-runs the status query whenever the workspace changes, feeding
// each fresh report to onReport. The first report is delivered before any
// file event. Watch blocks until ctx is canceled or a query fails.
func (a *App) Watch(ctx context.Context, opts StatusOptions, onReport func(*domain.StatusReport)) error {
	sess, err := a.openSession()
	if err != nil {
		return err
	}
	defer func() { _ = sess.Close() }()

	paths, err := relativize(sess.workspace, opts.Paths)
	if err != nil {
		return err
	}

	// Cache checksums between queries; each event batch invalidates only
	// the files it names, so a refresh rehashes what actually changed.
	cached := watcher.NewCachedWorkspace(sess.workspace)
	sess.workspace = cached

	engine := a.engine(sess, telemetry.NewNoOpTracer(), nil)
	refresh := func() error {
		report, err := engine.Status(ctx, query.StatusRequest{Paths: paths, IgnoreDeleted: opts.IgnoreDeleted})
		if err != nil {
			return err
		}
		onReport(report)
		return nil
	}

	if err := refresh(); err != nil {
		return err
	}

	w, err := a.newWatcher(a.logger)
	if err != nil {
		return err
	}
	if err := w.Start(ctx, sess.root); err != nil {
		_ = w.Stop()
		return err
	}
	defer func() { _ = w.Stop() }()

	batches := make(chan []string)
	debouncer := watcher.NewDebouncer(watcher.DefaultDebounceWindow, func(changed []string) {
		select {
		case batches <- changed:
		case <-ctx.Done():
		}
	})

	go func() {
		for path := range w.Changes() {
			debouncer.Add(path)
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case changed := <-batches:
			targets := a.watchTargets(sess, changed)
			if len(targets) == 0 {
				continue
			}
			cached.Invalidate(targets)
			if err := refresh(); err != nil {
				return err
			}
		}
	}
}

// watchTargets filters an event batch down to workspace-relative paths
// worth refreshing for. Metadata and ignored paths never trigger a query.
func (a *App) watchTargets(s *session, paths []string) []string {
	var targets []string
	for _, path := range paths {
		rel, err := s.workspace.Rel(path)
		if err != nil {
			continue
		}
		if rel == "." || s.settings.Ignored(rel) {
			continue
		}
		if rel == domain.DejaDirName || strings.HasPrefix(rel, domain.DejaDirName+"/") {
			continue
		}
		if rel == domain.ConfigFileName {
			a.logger.Warn("workspace configuration changed, restart watch to pick it up")
			continue
		}
		targets = append(targets, rel)
	}
	return targets
}
