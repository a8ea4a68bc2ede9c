package domain

import (
	"iter"
	"slices"
	"strings"

	"go.trai.ch/zerr"
)

// NodeID indexes an activity node in the graph arena.
type NodeID int32

// InvalidNode marks the absence of a node.
const InvalidNode NodeID = -1

// Edge connects a generating activity to a consuming activity. Path is the
// file that induced the dependency: From generated it, To used it. Conflict
// edges between two generators of the same path carry that path as label.
type Edge struct {
	From NodeID
	To   NodeID
	Path InternedString
}

// ActivityGraph is the dependency graph over recorded activities. Nodes live
// in an arena and are addressed by integer id, so conflict resolution and
// override pruning mutate adjacency by index without invalidating anything
// a caller holds.
type ActivityGraph struct {
	nodes []graphNode
	byID  map[string]NodeID

	byUsage      map[InternedString][]NodeID
	byGeneration map[InternedString][]NodeID

	sorted []NodeID
}

type graphNode struct {
	activity   *Activity
	out        []Edge
	in         []Edge
	overridden map[InternedString]struct{}
	removed    bool
}

// NewActivityGraph creates an empty graph.
func NewActivityGraph() *ActivityGraph {
	return &ActivityGraph{
		byID:         make(map[string]NodeID),
		byUsage:      make(map[InternedString][]NodeID),
		byGeneration: make(map[InternedString][]NodeID),
	}
}

// Add appends an activity to the arena and indexes its usage and generation
// paths. Adding the same activity id twice is an error.
func (g *ActivityGraph) Add(a *Activity) (NodeID, error) {
	if _, ok := g.byID[a.ID]; ok {
		return InvalidNode, zerr.With(ErrActivityAlreadyAdded, "activity", a.ID)
	}

	id := NodeID(len(g.nodes))
	g.nodes = append(g.nodes, graphNode{activity: a})
	g.byID[a.ID] = id

	for _, u := range a.Usages {
		g.byUsage[u.Entity.Path] = append(g.byUsage[u.Entity.Path], id)
	}
	for _, gen := range a.Generations {
		g.byGeneration[gen.Entity.Path] = append(g.byGeneration[gen.Entity.Path], id)
	}
	return id, nil
}

// Len returns the number of live nodes.
func (g *ActivityGraph) Len() int {
	n := 0
	for i := range g.nodes {
		if !g.nodes[i].removed {
			n++
		}
	}
	return n
}

// Nodes returns the live node ids in arena order.
func (g *ActivityGraph) Nodes() []NodeID {
	res := make([]NodeID, 0, len(g.nodes))
	for i := range g.nodes {
		if !g.nodes[i].removed {
			res = append(res, NodeID(i))
		}
	}
	return res
}

// GeneratedPaths returns every path with at least one live generator, in
// lexicographic order.
func (g *ActivityGraph) GeneratedPaths() []InternedString {
	paths := make([]InternedString, 0, len(g.byGeneration))
	for p, ids := range g.byGeneration {
		if len(g.live(ids)) > 0 {
			paths = append(paths, p)
		}
	}
	slices.SortFunc(paths, func(a, b InternedString) int {
		return strings.Compare(a.String(), b.String())
	})
	return paths
}

// Activity returns the activity stored at the given node.
func (g *ActivityGraph) Activity(id NodeID) *Activity {
	return g.nodes[id].activity
}

// Lookup resolves an activity id to its node.
func (g *ActivityGraph) Lookup(activityID string) (NodeID, bool) {
	id, ok := g.byID[activityID]
	if ok && g.nodes[id].removed {
		return InvalidNode, false
	}
	return id, ok
}

// Generators returns the live nodes that generated the given path, in
// insertion order.
func (g *ActivityGraph) Generators(path InternedString) []NodeID {
	return g.live(g.byGeneration[path])
}

// Users returns the live nodes that used the given path, in insertion order.
func (g *ActivityGraph) Users(path InternedString) []NodeID {
	return g.live(g.byUsage[path])
}

func (g *ActivityGraph) live(ids []NodeID) []NodeID {
	res := make([]NodeID, 0, len(ids))
	for _, id := range ids {
		if !g.nodes[id].removed {
			res = append(res, id)
		}
	}
	return res
}

// Connect adds the edge from → to labeled with the inducing path. Self edges
// are ignored: an activity that rewrites one of its own inputs does not
// depend on itself.
func (g *ActivityGraph) Connect(from, to NodeID, path InternedString) {
	if from == to {
		return
	}
	e := Edge{From: from, To: to, Path: path}
	g.nodes[from].out = append(g.nodes[from].out, e)
	g.nodes[to].in = append(g.nodes[to].in, e)
}

// Out returns the live outgoing edges of a node.
func (g *ActivityGraph) Out(id NodeID) []Edge {
	return g.nodes[id].out
}

// In returns the live incoming edges of a node.
func (g *ActivityGraph) In(id NodeID) []Edge {
	return g.nodes[id].in
}

// HasPath reports whether to is reachable from from over directed edges.
func (g *ActivityGraph) HasPath(from, to NodeID) bool {
	if from == to {
		return true
	}
	seen := make(map[NodeID]struct{})
	stack := []NodeID{from}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, e := range g.nodes[cur].out {
			if e.To == to {
				return true
			}
			if _, ok := seen[e.To]; ok {
				continue
			}
			seen[e.To] = struct{}{}
			stack = append(stack, e.To)
		}
	}
	return false
}

// MarkOverridden records that a later activity superseded this node's
// generation of the given path.
func (g *ActivityGraph) MarkOverridden(id NodeID, path InternedString) {
	n := &g.nodes[id]
	if n.overridden == nil {
		n.overridden = make(map[InternedString]struct{})
	}
	n.overridden[path] = struct{}{}
}

// Overridden reports whether this node's generation of the given path has
// been superseded.
func (g *ActivityGraph) Overridden(id NodeID, path InternedString) bool {
	_, ok := g.nodes[id].overridden[path]
	return ok
}

// FullyOverridden reports whether every path the node generated has been
// superseded. Nodes without generations are never fully overridden, they
// contribute no outputs that could be superseded in the first place.
func (g *ActivityGraph) FullyOverridden(id NodeID) bool {
	n := &g.nodes[id]
	if !n.activity.HasGenerations() {
		return false
	}
	for _, gen := range n.activity.Generations {
		if _, ok := n.overridden[gen.Entity.Path]; !ok {
			return false
		}
	}
	return true
}

// Remove detaches a node from the graph and returns the incoming edges it
// held, so callers can re-examine the parents that fed it.
func (g *ActivityGraph) Remove(id NodeID) []Edge {
	n := &g.nodes[id]
	if n.removed {
		return nil
	}
	n.removed = true

	incoming := n.in
	for _, e := range incoming {
		parent := &g.nodes[e.From]
		parent.out = slices.DeleteFunc(parent.out, func(o Edge) bool { return o.To == id })
	}
	for _, e := range n.out {
		child := &g.nodes[e.To]
		child.in = slices.DeleteFunc(child.in, func(o Edge) bool { return o.From == id })
	}
	n.in = nil
	n.out = nil
	return incoming
}

// Validate checks that the graph is acyclic and computes the topological
// order used by Walk and Sorted. A cycle aborts with ErrCycleDetected naming
// the activity ids along the cycle; no partial order is retained.
func (g *ActivityGraph) Validate() error {
	const (
		unvisited = 0
		visiting  = 1
		done      = 2
	)

	state := make([]int, len(g.nodes))
	sorted := make([]NodeID, 0, len(g.nodes))
	var path []string

	var visit func(id NodeID) error
	visit = func(id NodeID) error {
		switch state[id] {
		case done:
			return nil
		case visiting:
			return buildCycleError(path, g.nodes[id].activity.ID)
		}

		state[id] = visiting
		path = append(path, g.nodes[id].activity.ID)

		for _, e := range g.nodes[id].in {
			if err := visit(e.From); err != nil {
				return err
			}
		}

		path = path[:len(path)-1]
		state[id] = done
		sorted = append(sorted, id)
		return nil
	}

	for id := range g.nodes {
		if g.nodes[id].removed {
			state[id] = done
			continue
		}
		if err := visit(NodeID(id)); err != nil {
			g.sorted = nil
			return err
		}
	}

	g.sorted = sorted
	return nil
}

// Sorted returns the node ids in topological order, generators before the
// activities that consume their outputs. Validate must have succeeded.
func (g *ActivityGraph) Sorted() []NodeID {
	return g.sorted
}

// Walk yields the activities in topological order. Validate must have
// succeeded.
func (g *ActivityGraph) Walk() iter.Seq[*Activity] {
	return func(yield func(*Activity) bool) {
		for _, id := range g.sorted {
			if !yield(g.nodes[id].activity) {
				return
			}
		}
	}
}

// buildCycleError renders the cycle portion of the visit path as
// "a -> b -> a" so the failing activities are identifiable in the log.
func buildCycleError(path []string, repeated string) error {
	start := 0
	for i, id := range path {
		if id == repeated {
			start = i
			break
		}
	}
	cycle := make([]string, 0, len(path)-start+1)
	cycle = append(cycle, path[start:]...)
	cycle = append(cycle, repeated)
	return zerr.With(ErrCycleDetected, "cycle", strings.Join(cycle, " -> "))
}
