// Package query answers the provenance questions over the recorded log:
// which outputs are stale, which activity chain must re-execute to rebuild
// a target, and recomputing stale outputs in place.
package query

import (
	"context"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.trai.ch/deja/internal/core/domain"
	"go.trai.ch/deja/internal/core/ports"
	"go.trai.ch/deja/internal/engine/detect"
	"go.trai.ch/deja/internal/engine/graph"
	"go.trai.ch/zerr"
)

// baseEnv lists the environment variables always passed through to plan
// executions. Everything else must be allow-listed via Settings.Env.
var baseEnv = []string{"HOME", "PATH", "TERM", "USER", "LANG", "TMPDIR"}

// Engine implements the status, rerun and update queries plus the execute
// and record flow they share with plain runs.
type Engine struct {
	store     ports.ProvenanceStore
	workspace ports.Workspace
	executor  ports.Executor
	tracer    ports.Tracer
	blobs     ports.BlobStore
	settings  *domain.Settings

	clock func() time.Time
	newID func() string
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock overrides the time source used for recorded timestamps.
func WithClock(clock func() time.Time) Option {
	return func(e *Engine) {
		e.clock = clock
	}
}

// WithIDGenerator overrides the activity id source.
func WithIDGenerator(gen func() string) Option {
	return func(e *Engine) {
		e.newID = gen
	}
}

// NewEngine creates a query engine over the given collaborators. The blob
// store may be nil; output snapshots are then not retained.
func NewEngine(
	store ports.ProvenanceStore,
	workspace ports.Workspace,
	executor ports.Executor,
	tracer ports.Tracer,
	blobs ports.BlobStore,
	settings *domain.Settings,
	opts ...Option,
) *Engine {
	e := &Engine{
		store:     store,
		workspace: workspace,
		executor:  executor,
		tracer:    tracer,
		blobs:     blobs,
		settings:  settings,
		clock:     time.Now,
		newID:     uuid.NewString,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// buildNormalized assembles the graph form all queries traverse: overridden
// activities pruned, supersession linearized, topologically sorted.
func buildNormalized(activities []*domain.Activity) (*domain.ActivityGraph, error) {
	return graph.Build(activities, graph.RemoveOverriddenParents())
}

// snapshot loads the live activity log, builds the normalized graph, and
// diffs the workspace against the recorded checksums.
func (e *Engine) snapshot(ctx context.Context) (*domain.ActivityGraph, *domain.ChangeSet, error) {
	activities, err := e.store.LiveActivities(ctx)
	if err != nil {
		return nil, nil, zerr.Wrap(err, "failed to load the activity log")
	}

	g, err := buildNormalized(activities)
	if err != nil {
		return nil, nil, err
	}

	changes, err := detect.NewDetector(e.workspace, e.settings).Detect(g)
	if err != nil {
		return nil, nil, zerr.Wrap(err, "failed to diff the workspace")
	}

	return g, changes, nil
}

// downstream returns from plus every node reachable over outgoing edges.
func downstream(g *domain.ActivityGraph, from domain.NodeID) []domain.NodeID {
	visited := map[domain.NodeID]struct{}{from: {}}
	order := []domain.NodeID{from}
	queue := []domain.NodeID{from}

	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		for _, edge := range g.Out(id) {
			if _, ok := visited[edge.To]; ok {
				continue
			}
			visited[edge.To] = struct{}{}
			order = append(order, edge.To)
			queue = append(queue, edge.To)
		}
	}
	return order
}

// upstream returns from plus every node reachable over incoming edges.
func upstream(g *domain.ActivityGraph, from domain.NodeID) []domain.NodeID {
	visited := map[domain.NodeID]struct{}{from: {}}
	order := []domain.NodeID{from}
	queue := []domain.NodeID{from}

	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		for _, edge := range g.In(id) {
			if _, ok := visited[edge.From]; ok {
				continue
			}
			visited[edge.From] = struct{}{}
			order = append(order, edge.From)
			queue = append(queue, edge.From)
		}
	}
	return order
}

// pathFilter narrows a query to exact paths or directory prefixes.
type pathFilter []string

func (f pathFilter) Empty() bool {
	return len(f) == 0
}

func (f pathFilter) Matches(path string) bool {
	for _, p := range f {
		if path == p {
			return true
		}
		if strings.HasPrefix(path, p) && len(path) > len(p) && path[len(p)] == '/' {
			return true
		}
	}
	return false
}

// environment builds the allow-listed environment for plan executions.
func (e *Engine) environment() []string {
	allowed := make(map[string]struct{}, len(baseEnv))
	for _, name := range baseEnv {
		allowed[name] = struct{}{}
	}
	if e.settings != nil {
		for _, name := range e.settings.Env {
			allowed[name] = struct{}{}
		}
	}

	var env []string
	for _, kv := range os.Environ() {
		name, _, ok := strings.Cut(kv, "=")
		if !ok {
			continue
		}
		if _, ok := allowed[name]; ok {
			env = append(env, kv)
		}
	}
	return env
}
