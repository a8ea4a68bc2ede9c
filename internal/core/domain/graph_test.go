package domain_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/deja/internal/core/domain"
)

func newActivity(id string, uses, generates []string) *domain.Activity {
	a := &domain.Activity{
		ID:      id,
		PlanID:  "plan-" + id,
		EndedAt: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	for _, p := range uses {
		a.Usages = append(a.Usages, domain.Usage{Entity: domain.NewEntity(p, "c0")})
	}
	for _, p := range generates {
		a.Generations = append(a.Generations, domain.Generation{Entity: domain.NewEntity(p, "c0")})
	}
	return a
}

func TestActivityGraph_Cycle(t *testing.T) {
	path := domain.NewInternedString

	tests := []struct {
		name        string
		setup       func(t *testing.T, g *domain.ActivityGraph)
		wantErr     bool
		errContains string
	}{
		{
			name: "Two Node Cycle A->B->A",
			setup: func(t *testing.T, g *domain.ActivityGraph) {
				t.Helper()
				a, err := g.Add(newActivity("A", []string{"q"}, []string{"p"}))
				require.NoError(t, err)
				b, err := g.Add(newActivity("B", []string{"p"}, []string{"q"}))
				require.NoError(t, err)
				g.Connect(a, b, path("p"))
				g.Connect(b, a, path("q"))
			},
			wantErr:     true,
			errContains: "cycle detected",
		},
		{
			name: "Three Node Cycle A->B->C->A",
			setup: func(t *testing.T, g *domain.ActivityGraph) {
				t.Helper()
				a, err := g.Add(newActivity("A", nil, []string{"p"}))
				require.NoError(t, err)
				b, err := g.Add(newActivity("B", []string{"p"}, []string{"q"}))
				require.NoError(t, err)
				c, err := g.Add(newActivity("C", []string{"q"}, []string{"r"}))
				require.NoError(t, err)
				g.Connect(a, b, path("p"))
				g.Connect(b, c, path("q"))
				g.Connect(c, a, path("r"))
			},
			wantErr:     true,
			errContains: "cycle detected",
		},
		{
			name: "No Cycle A->B->C",
			setup: func(t *testing.T, g *domain.ActivityGraph) {
				t.Helper()
				a, err := g.Add(newActivity("A", nil, []string{"p"}))
				require.NoError(t, err)
				b, err := g.Add(newActivity("B", []string{"p"}, []string{"q"}))
				require.NoError(t, err)
				c, err := g.Add(newActivity("C", []string{"q"}, nil))
				require.NoError(t, err)
				g.Connect(a, b, path("p"))
				g.Connect(b, c, path("q"))
			},
			wantErr: false,
		},
		{
			name: "Self Edge Is Ignored",
			setup: func(t *testing.T, g *domain.ActivityGraph) {
				t.Helper()
				a, err := g.Add(newActivity("A", []string{"p"}, []string{"p"}))
				require.NoError(t, err)
				g.Connect(a, a, path("p"))
			},
			wantErr: false,
		},
		{
			name: "Disconnected Components No Cycle",
			setup: func(t *testing.T, g *domain.ActivityGraph) {
				t.Helper()
				a, err := g.Add(newActivity("A", nil, []string{"p"}))
				require.NoError(t, err)
				b, err := g.Add(newActivity("B", []string{"p"}, nil))
				require.NoError(t, err)
				c, err := g.Add(newActivity("C", nil, []string{"q"}))
				require.NoError(t, err)
				d, err := g.Add(newActivity("D", []string{"q"}, nil))
				require.NoError(t, err)
				g.Connect(a, b, path("p"))
				g.Connect(c, d, path("q"))
			},
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := domain.NewActivityGraph()
			tt.setup(t, g)
			err := g.Validate()
			if tt.wantErr {
				require.Error(t, err)
				require.ErrorIs(t, err, domain.ErrCycleDetected)
				assert.Contains(t, err.Error(), tt.errContains)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestActivityGraph_TopologicalSort(t *testing.T) {
	// D generates the source both B and C consume, A consumes what B and C
	// generate. Execution order must be D first, A last.
	g := domain.NewActivityGraph()
	path := domain.NewInternedString

	a, err := g.Add(newActivity("A", []string{"b.out", "c.out"}, nil))
	require.NoError(t, err)
	b, err := g.Add(newActivity("B", []string{"d.out"}, []string{"b.out"}))
	require.NoError(t, err)
	c, err := g.Add(newActivity("C", []string{"d.out"}, []string{"c.out"}))
	require.NoError(t, err)
	d, err := g.Add(newActivity("D", nil, []string{"d.out"}))
	require.NoError(t, err)

	g.Connect(d, b, path("d.out"))
	g.Connect(d, c, path("d.out"))
	g.Connect(b, a, path("b.out"))
	g.Connect(c, a, path("c.out"))

	require.NoError(t, g.Validate())

	var order []string
	for act := range g.Walk() {
		order = append(order, act.ID)
	}

	require.Len(t, order, 4)
	assert.Equal(t, "D", order[0])
	assert.Equal(t, "A", order[3])
	assert.Contains(t, order[1:3], "B")
	assert.Contains(t, order[1:3], "C")
}

func TestActivityGraph_AddDuplicate(t *testing.T) {
	g := domain.NewActivityGraph()

	_, err := g.Add(newActivity("A", nil, []string{"p"}))
	require.NoError(t, err)

	_, err = g.Add(newActivity("A", nil, []string{"q"}))
	require.ErrorIs(t, err, domain.ErrActivityAlreadyAdded)
}

func TestActivityGraph_Remove(t *testing.T) {
	g := domain.NewActivityGraph()
	path := domain.NewInternedString

	a, err := g.Add(newActivity("A", nil, []string{"p"}))
	require.NoError(t, err)
	b, err := g.Add(newActivity("B", []string{"p"}, []string{"q"}))
	require.NoError(t, err)
	c, err := g.Add(newActivity("C", []string{"q"}, nil))
	require.NoError(t, err)

	g.Connect(a, b, path("p"))
	g.Connect(b, c, path("q"))

	incoming := g.Remove(b)
	require.Len(t, incoming, 1)
	assert.Equal(t, a, incoming[0].From)
	assert.Equal(t, path("p"), incoming[0].Path)

	assert.Empty(t, g.Out(a), "parent should lose the edge to the removed node")
	assert.Empty(t, g.In(c), "child should lose the edge from the removed node")
	assert.Empty(t, g.Generators(path("q")), "removed node should vanish from path indexes")
	assert.Equal(t, 2, g.Len())

	_, ok := g.Lookup("B")
	assert.False(t, ok)
}

func TestActivityGraph_HasPath(t *testing.T) {
	g := domain.NewActivityGraph()
	path := domain.NewInternedString

	a, err := g.Add(newActivity("A", nil, []string{"p"}))
	require.NoError(t, err)
	b, err := g.Add(newActivity("B", []string{"p"}, []string{"q"}))
	require.NoError(t, err)
	c, err := g.Add(newActivity("C", []string{"q"}, nil))
	require.NoError(t, err)
	lone, err := g.Add(newActivity("L", nil, []string{"r"}))
	require.NoError(t, err)

	g.Connect(a, b, path("p"))
	g.Connect(b, c, path("q"))

	assert.True(t, g.HasPath(a, c))
	assert.True(t, g.HasPath(a, a))
	assert.False(t, g.HasPath(c, a))
	assert.False(t, g.HasPath(a, lone))
}

func TestActivityGraph_FullyOverridden(t *testing.T) {
	g := domain.NewActivityGraph()
	path := domain.NewInternedString

	multi, err := g.Add(newActivity("multi", nil, []string{"p", "q"}))
	require.NoError(t, err)
	noOutputs, err := g.Add(newActivity("sink", []string{"p"}, nil))
	require.NoError(t, err)

	assert.False(t, g.FullyOverridden(multi))

	g.MarkOverridden(multi, path("p"))
	assert.False(t, g.FullyOverridden(multi), "one surviving generation keeps the node live")
	assert.True(t, g.Overridden(multi, path("p")))

	g.MarkOverridden(multi, path("q"))
	assert.True(t, g.FullyOverridden(multi))

	// An activity without generations has nothing to supersede.
	assert.False(t, g.FullyOverridden(noOutputs))
}
