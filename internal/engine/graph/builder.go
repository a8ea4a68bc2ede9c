// Package graph assembles the activity dependency graph from the recorded
// provenance log: generator-before-user edges, supersession ordering among
// activities that wrote the same path, and optional pruning of activities
// whose every output was superseded.
package graph

import (
	"slices"

	"go.trai.ch/deja/internal/core/domain"
	"go.trai.ch/zerr"
)

// Option configures a Build call.
type Option func(*options)

type options struct {
	removeOverriddenParents bool
}

// RemoveOverriddenParents drops activities whose every generated path was
// superseded by a later activity, re-examining their parents until a fixed
// point. Queries about the current workspace state want this; historical
// inspection does not.
func RemoveOverriddenParents() Option {
	return func(o *options) {
		o.removeOverriddenParents = true
	}
}

// Build assembles the dependency graph over the given activities.
// Invalidated activities are excluded. The returned graph is validated
// acyclic and topologically sorted; a cycle or an ambiguous supersession
// order aborts construction with no partial graph.
func Build(activities []*domain.Activity, opts ...Option) (*domain.ActivityGraph, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	g := domain.NewActivityGraph()

	// Arena order is ended_at ascending so traversal output is stable no
	// matter how the store ordered its result.
	ordered := slices.Clone(activities)
	slices.SortStableFunc(ordered, func(a, b *domain.Activity) int {
		return a.EndedAt.Compare(b.EndedAt)
	})

	for _, a := range ordered {
		if a.Invalidated() {
			continue
		}
		if _, err := g.Add(a); err != nil {
			return nil, err
		}
	}

	wireUsageEdges(g)

	if err := resolveGenerationConflicts(g); err != nil {
		return nil, err
	}

	if err := g.Validate(); err != nil {
		return nil, err
	}

	if o.removeOverriddenParents {
		pruneOverridden(g)
		if err := g.Validate(); err != nil {
			return nil, err
		}
	}

	return g, nil
}

// wireUsageEdges connects every generator of a path to every activity that
// used it. The edge direction encodes "generator completes before user".
func wireUsageEdges(g *domain.ActivityGraph) {
	for _, user := range g.Nodes() {
		for _, usage := range g.Activity(user).Usages {
			path := usage.Entity.Path
			for _, generator := range g.Generators(path) {
				g.Connect(generator, user, path)
			}
		}
	}
}

// resolveGenerationConflicts linearizes multiple generators of the same path
// by ended_at. Consecutive generators are chained with an edge unless a path
// between them already exists in either direction, and every generator but
// the last has the path marked overridden. An ended_at tie leaves the order
// undefined and is a hard error.
func resolveGenerationConflicts(g *domain.ActivityGraph) error {
	for _, path := range g.GeneratedPaths() {
		generators := g.Generators(path)
		if len(generators) < 2 {
			continue
		}

		slices.SortStableFunc(generators, func(a, b domain.NodeID) int {
			return g.Activity(a).EndedAt.Compare(g.Activity(b).EndedAt)
		})

		for i := 0; i < len(generators)-1; i++ {
			earlier := g.Activity(generators[i])
			later := g.Activity(generators[i+1])

			if earlier.EndedAt.Equal(later.EndedAt) {
				return zerr.With(zerr.With(zerr.With(
					domain.ErrAmbiguousGenerationOrder,
					"path", path.String()),
					"activity_a", earlier.ID),
					"activity_b", later.ID)
			}

			if !g.HasPath(generators[i], generators[i+1]) && !g.HasPath(generators[i+1], generators[i]) {
				g.Connect(generators[i], generators[i+1], path)
			}
			g.MarkOverridden(generators[i], path)
		}
	}
	return nil
}

// pruneOverridden removes fully overridden activities with an explicit
// worklist over node ids. When a node is removed, each parent inherits the
// connecting path into its overridden set only if no other live consumer of
// that path remains, then is re-examined.
func pruneOverridden(g *domain.ActivityGraph) {
	var queue []domain.NodeID
	for _, id := range g.Nodes() {
		if g.FullyOverridden(id) {
			queue = append(queue, id)
		}
	}

	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]

		incoming := g.Remove(id)
		for _, e := range incoming {
			if hasConsumer(g, e.From, e.Path) {
				continue
			}
			if _, generated := g.Activity(e.From).Generates(e.Path); !generated {
				continue
			}
			g.MarkOverridden(e.From, e.Path)
			if g.FullyOverridden(e.From) {
				queue = append(queue, e.From)
			}
		}
	}
}

func hasConsumer(g *domain.ActivityGraph, id domain.NodeID, path domain.InternedString) bool {
	for _, e := range g.Out(id) {
		if e.Path == path {
			return true
		}
	}
	return false
}
