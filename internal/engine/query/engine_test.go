package query_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"go.trai.ch/deja/internal/core/domain"
	"go.trai.ch/deja/internal/core/ports"
	"go.trai.ch/deja/internal/core/ports/mocks"
	"go.trai.ch/deja/internal/engine/query"
	"go.uber.org/mock/gomock"
)

type engineTestMocks struct {
	store    *mocks.MockProvenanceStore
	ws       *mocks.MockWorkspace
	executor *mocks.MockExecutor
	tracer   *mocks.MockTracer
}

// fakeTree drives the workspace mock from a mutable path to checksum map,
// so executor stubs can change the tree mid-run the way real commands do.
type fakeTree map[string]string

// setupEngineTest wires an engine against a fake workspace tree. Timestamps
// and activity ids are deterministic.
func setupEngineTest(t *testing.T, tree fakeTree) (*query.Engine, engineTestMocks) {
	t.Helper()
	ctrl := gomock.NewController(t)
	m := engineTestMocks{
		store:    mocks.NewMockProvenanceStore(ctrl),
		ws:       mocks.NewMockWorkspace(ctrl),
		executor: mocks.NewMockExecutor(ctrl),
		tracer:   mocks.NewMockTracer(ctrl),
	}

	m.ws.EXPECT().Root().Return("/workspace").AnyTimes()
	m.ws.EXPECT().Exists(gomock.Any()).DoAndReturn(func(path string) bool {
		_, ok := tree[path]
		return ok
	}).AnyTimes()
	m.ws.EXPECT().Checksum(gomock.Any()).DoAndReturn(func(path string) (string, error) {
		return tree[path], nil
	}).AnyTimes()
	m.ws.EXPECT().Lock().DoAndReturn(func() (func() error, error) {
		return func() error { return nil }, nil
	}).AnyTimes()

	span := mocks.NewMockSpan(ctrl)
	span.EXPECT().End().AnyTimes()
	span.EXPECT().RecordError(gomock.Any()).AnyTimes()
	span.EXPECT().SetAttribute(gomock.Any(), gomock.Any()).AnyTimes()
	span.EXPECT().Write(gomock.Any()).DoAndReturn(func(p []byte) (int, error) {
		return len(p), nil
	}).AnyTimes()

	m.tracer.EXPECT().Start(gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(
		func(ctx context.Context, _ string, _ ...ports.SpanOption) (context.Context, ports.Span) {
			return ctx, span
		},
	).AnyTimes()
	m.tracer.EXPECT().EmitQueue(gomock.Any(), gomock.Any(), gomock.Any()).AnyTimes()

	next := 0
	e := query.NewEngine(m.store, m.ws, m.executor, m.tracer, nil, nil,
		query.WithClock(stepClock()),
		query.WithIDGenerator(func() string {
			next++
			return fmt.Sprintf("new-%d", next)
		}),
	)
	return e, m
}

// stepClock returns a time source that advances one second per reading.
func stepClock() func() time.Time {
	base := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	n := 0
	return func() time.Time {
		n++
		return base.Add(time.Duration(n) * time.Second)
	}
}

var logEpoch = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

type ent struct {
	path string
	sum  string
}

func recorded(id, planID string, seq int, uses, generates []ent) *domain.Activity {
	a := &domain.Activity{
		ID:      id,
		PlanID:  planID,
		EndedAt: logEpoch.Add(time.Duration(seq) * time.Minute),
	}
	for _, e := range uses {
		a.Usages = append(a.Usages, domain.Usage{Entity: domain.NewEntity(e.path, e.sum)})
	}
	for _, e := range generates {
		a.Generations = append(a.Generations, domain.Generation{Entity: domain.NewEntity(e.path, e.sum)})
	}
	return a
}

func testPlan(id, name string, command ...string) *domain.Plan {
	if len(command) == 0 {
		command = []string{"true"}
	}
	return &domain.Plan{
		ID:        id,
		Name:      domain.NewInternedString(name),
		Command:   command,
		CreatedAt: logEpoch,
	}
}

// stubPlans answers PlanByID from a fixed map.
func stubPlans(m engineTestMocks, plans map[string]*domain.Plan) {
	m.store.EXPECT().PlanByID(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, id string) (*domain.Plan, error) {
			return plans[id], nil
		},
	).AnyTimes()
}

// twoStepChain is the canonical fixture: source.txt feeds act-convert which
// writes intermediate.txt, feeding act-report which writes output.txt.
func twoStepChain() []*domain.Activity {
	return []*domain.Activity{
		recorded("act-convert", "plan-convert", 1,
			[]ent{{"source.txt", "s1"}},
			[]ent{{"intermediate.txt", "i1"}},
		),
		recorded("act-report", "plan-report", 2,
			[]ent{{"intermediate.txt", "i1"}},
			[]ent{{"output.txt", "o1"}},
		),
	}
}

func twoStepPlans() map[string]*domain.Plan {
	return map[string]*domain.Plan{
		"plan-convert": testPlan("plan-convert", "convert"),
		"plan-report":  testPlan("plan-report", "report"),
	}
}

// cleanTree is the workspace state matching twoStepChain's recordings.
func cleanTree() fakeTree {
	return fakeTree{
		"source.txt":       "s1",
		"intermediate.txt": "i1",
		"output.txt":       "o1",
	}
}
