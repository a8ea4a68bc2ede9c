// Package app implements the application layer for deja. Each operation
// discovers the enclosing workspace, opens the provenance store, and runs
// one engine query or append against it.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/muesli/termenv"
	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.trai.ch/deja/internal/adapters/cas"
	"go.trai.ch/deja/internal/adapters/config"
	"go.trai.ch/deja/internal/adapters/detector"
	"go.trai.ch/deja/internal/adapters/fs"
	"go.trai.ch/deja/internal/adapters/linear"
	"go.trai.ch/deja/internal/adapters/provstore"
	"go.trai.ch/deja/internal/adapters/telemetry"
	"go.trai.ch/deja/internal/adapters/watcher"
	"go.trai.ch/deja/internal/core/domain"
	"go.trai.ch/deja/internal/core/ports"
	"go.trai.ch/deja/internal/engine/query"
	"go.trai.ch/zerr"
	"golang.org/x/sync/errgroup"
)

// App represents the main application logic.
type App struct {
	loader   ports.ConfigLoader
	executor ports.Executor
	logger   ports.Logger

	stdout io.Writer
	stderr io.Writer

	openStore  func(root string) (ports.ProvenanceStore, error)
	newWatcher func(log ports.Logger) (ports.Watcher, error)
	clock      func() time.Time
	newID      func() string
}

// New creates a new App instance.
func New(loader ports.ConfigLoader, executor ports.Executor, log ports.Logger) *App {
	return &App{
		loader:   loader,
		executor: executor,
		logger:   log,
		stdout:   os.Stdout,
		stderr:   os.Stderr,
		openStore: func(root string) (ports.ProvenanceStore, error) {
			return provstore.Open(filepath.Join(root, domain.DefaultDatabasePath()))
		},
		newWatcher: func(log ports.Logger) (ports.Watcher, error) {
			return watcher.NewWatcher(log)
		},
		clock: time.Now,
		newID: uuid.NewString,
	}
}

// WithStreams redirects execution output. This is primarily used for
// testing to capture or discard renderer output.
func (a *App) WithStreams(stdout, stderr io.Writer) *App {
	a.stdout = stdout
	a.stderr = stderr
	return a
}

// WithStoreFactory overrides how the provenance store is opened.
// This is primarily used for testing with a mocked store.
func (a *App) WithStoreFactory(open func(root string) (ports.ProvenanceStore, error)) *App {
	a.openStore = open
	return a
}

// WithWatcherFactory overrides how the file watcher is built.
// This is primarily used for testing watch mode without fsnotify.
func (a *App) WithWatcherFactory(build func(log ports.Logger) (ports.Watcher, error)) *App {
	a.newWatcher = build
	return a
}

// WithClock overrides the time source used for recorded timestamps.
func (a *App) WithClock(clock func() time.Time) *App {
	a.clock = clock
	return a
}

// WithIDGenerator overrides the plan and activity id source.
func (a *App) WithIDGenerator(gen func() string) *App {
	a.newID = gen
	return a
}

// session holds the per-operation workspace state. Every operation opens
// its own session so the store handle never outlives the command.
type session struct {
	root      string
	settings  *domain.Settings
	workspace ports.Workspace
	store     ports.ProvenanceStore
}

func (s *session) Close() error {
	return s.store.Close()
}

// openSession discovers the enclosing workspace from the working directory
// and opens its configuration, file access and provenance store.
func (a *App) openSession() (*session, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, zerr.Wrap(err, "failed to resolve working directory")
	}

	root, err := a.loader.DiscoverRoot(cwd)
	if err != nil {
		return nil, err
	}

	settings, err := a.loader.Load(root)
	if err != nil {
		return nil, err
	}

	workspace, err := fs.NewWorkspace(root, settings)
	if err != nil {
		return nil, err
	}

	store, err := a.openStore(root)
	if err != nil {
		return nil, err
	}

	return &session{
		root:      root,
		settings:  settings,
		workspace: workspace,
		store:     store,
	}, nil
}

// engine builds a query engine over the session with the given tracer and
// blob store.
func (a *App) engine(s *session, tracer ports.Tracer, blobs ports.BlobStore) *query.Engine {
	return query.NewEngine(
		s.store, s.workspace, a.executor, tracer, blobs, s.settings,
		query.WithClock(a.clock), query.WithIDGenerator(a.newID),
	)
}

// blobs opens the content snapshot store under the workspace metadata
// directory.
func (a *App) blobs(root string) ports.BlobStore {
	return cas.NewStore(filepath.Join(root, domain.DefaultBlobsPath()))
}

// relativize maps user-supplied paths onto workspace-relative form. Paths
// are resolved against the working directory, so naming a file from a
// subdirectory works the way the shell user expects.
func relativize(workspace ports.Workspace, paths []string) ([]string, error) {
	if len(paths) == 0 {
		return nil, nil
	}
	rels := make([]string, len(paths))
	for i, path := range paths {
		rel, err := workspace.Rel(path)
		if err != nil {
			return nil, err
		}
		rels[i] = rel
	}
	return rels, nil
}

// newRenderer resolves the output mode and builds the progress renderer.
// Plain mode forces an uncolored profile regardless of the environment.
func (a *App) newRenderer(outputMode string) ports.Renderer {
	mode := detector.ResolveMode(detector.DetectEnvironment(), outputMode)
	renderer := linear.NewRenderer(a.stdout, a.stderr)
	if mode == detector.ModePlain {
		return renderer.WithProfile(termenv.Ascii)
	}
	return renderer
}

// execute runs work that spawns plan commands. The renderer and the work
// run concurrently; spans reach the renderer through the OTel bridge.
func (a *App) execute(
	ctx context.Context,
	outputMode string,
	work func(ctx context.Context, tracer ports.Tracer) error,
) error {
	renderer := a.newRenderer(outputMode)

	// Create a bridge that forwards OTel spans to the renderer and register
	// it as the global span processor, so spans started anywhere in the
	// engine reach the progress output.
	bridge := telemetry.NewBridge(renderer)
	setupOTel(bridge)

	tracer := telemetry.NewOTelTracer("deja").WithRenderer(renderer)
	defer func() {
		_ = tracer.Shutdown(ctx)
	}()

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := renderer.Start(ctx); err != nil {
			return err
		}
		// Wait blocks until the renderer has terminated.
		return renderer.Wait()
	})

	g.Go(func() error {
		defer func() {
			if r := recover(); r != nil {
				fmt.Fprintf(a.stderr, "engine panic: %v\n", r)
			}
			_ = renderer.Stop()
		}()
		return work(ctx, tracer)
	})

	return g.Wait()
}

// setupOTel configures the OpenTelemetry SDK with the renderer bridge.
func setupOTel(bridge *telemetry.Bridge) {
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithSpanProcessor(bridge),
	)
	otel.SetTracerProvider(tp)
}

// Init marks the working directory as a workspace root: a starter
// configuration file plus the internal state directory. Running inside an
// existing workspace fails, including in a subdirectory of one.
func (a *App) Init(_ context.Context) (string, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return "", zerr.Wrap(err, "failed to resolve working directory")
	}

	if root, err := a.loader.DiscoverRoot(cwd); err == nil {
		return "", zerr.With(domain.ErrWorkspaceExists, "root", root)
	}

	configPath := filepath.Join(cwd, domain.ConfigFileName)
	if err := os.WriteFile(configPath, []byte(config.StarterConfig), domain.FilePerm); err != nil {
		return "", zerr.Wrap(err, "failed to write the workspace configuration")
	}
	if err := os.MkdirAll(filepath.Join(cwd, domain.DefaultDejaPath()), domain.DirPerm); err != nil {
		return "", zerr.Wrap(err, "failed to create the internal directory")
	}

	return cwd, nil
}

// CleanOptions configuration for the Clean method.
type CleanOptions struct {
	Store bool
	Blobs bool
	Logs  bool
}

// Clean removes recorded state from the workspace metadata directory based
// on the provided options. The provenance history is gone afterwards; the
// workspace files themselves are never touched.
func (a *App) Clean(_ context.Context, options CleanOptions) error {
	cwd, err := os.Getwd()
	if err != nil {
		return zerr.Wrap(err, "failed to resolve working directory")
	}
	root, err := a.loader.DiscoverRoot(cwd)
	if err != nil {
		return err
	}

	var errs error

	// Helper to remove a path and log the action
	remove := func(path string, name string) {
		a.logger.Info(fmt.Sprintf("removing %s...", name))
		if err := os.RemoveAll(path); err != nil {
			errs = errors.Join(errs, zerr.Wrap(err, fmt.Sprintf("failed to remove %s", name)))
			return
		}
		a.logger.Info(fmt.Sprintf("removed %s", name))
	}

	if options.Store {
		dbPath := filepath.Join(root, domain.DefaultDatabasePath())
		remove(dbPath, "provenance database")
		// WAL sidecars left behind by SQLite.
		_ = os.Remove(dbPath + "-wal")
		_ = os.Remove(dbPath + "-shm")
	}

	if options.Blobs {
		remove(filepath.Join(root, domain.DefaultBlobsPath()), "content snapshots")
	}

	if options.Logs {
		remove(filepath.Join(root, domain.DefaultDebugLogPath()), "debug log")
	}

	return errs
}
