package query_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/deja/internal/core/domain"
	"go.trai.ch/deja/internal/engine/query"
	"go.uber.org/mock/gomock"
)

func TestStatus_Clean(t *testing.T) {
	e, m := setupEngineTest(t, cleanTree())
	m.store.EXPECT().LiveActivities(gomock.Any()).Return(twoStepChain(), nil)

	report, err := e.Status(context.Background(), query.StatusRequest{})
	require.NoError(t, err)
	assert.True(t, report.Clean())
}

func TestStatus_ModifiedSource(t *testing.T) {
	// The canonical single-step scenario: source.txt changed from s1, so
	// output.txt of the recording that consumed it is stale.
	tree := fakeTree{"source.txt": "s3", "output.txt": "o1"}
	e, m := setupEngineTest(t, tree)
	m.store.EXPECT().LiveActivities(gomock.Any()).Return([]*domain.Activity{
		recorded("R1", "plan-r1", 1, []ent{{"source.txt", "s1"}}, []ent{{"output.txt", "o1"}}),
	}, nil)

	report, err := e.Status(context.Background(), query.StatusRequest{})
	require.NoError(t, err)

	require.Equal(t, []string{"output.txt"}, report.SortedStaleOutputs())
	assert.Equal(t, []string{"source.txt"}, report.StaleOutputs[domain.NewInternedString("output.txt")].Sorted())
	assert.Equal(t, []string{"source.txt"}, report.ModifiedInputs.Sorted())
	assert.Empty(t, report.DeletedInputs)
	assert.Empty(t, report.StaleActivities)
}

func TestStatus_PropagatesDownChain(t *testing.T) {
	tree := cleanTree()
	tree["source.txt"] = "s2"
	e, m := setupEngineTest(t, tree)
	m.store.EXPECT().LiveActivities(gomock.Any()).Return(twoStepChain(), nil)

	report, err := e.Status(context.Background(), query.StatusRequest{})
	require.NoError(t, err)

	assert.Equal(t, []string{"intermediate.txt", "output.txt"}, report.SortedStaleOutputs())
	assert.Equal(t, []string{"source.txt"}, report.StaleOutputs[domain.NewInternedString("output.txt")].Sorted())
	assert.Equal(t, []string{"source.txt"}, report.ModifiedInputs.Sorted())
	assert.Empty(t, report.DeletedInputs)
}

func TestStatus_DeletedIntermediate(t *testing.T) {
	tree := cleanTree()
	delete(tree, "intermediate.txt")
	e, m := setupEngineTest(t, tree)
	m.store.EXPECT().LiveActivities(gomock.Any()).Return(twoStepChain(), nil)

	report, err := e.Status(context.Background(), query.StatusRequest{})
	require.NoError(t, err)

	assert.Equal(t, []string{"intermediate.txt", "output.txt"}, report.SortedStaleOutputs())
	assert.Equal(t, []string{"intermediate.txt"}, report.StaleOutputs[domain.NewInternedString("output.txt")].Sorted())
	assert.Equal(t, []string{"intermediate.txt"}, report.DeletedInputs.Sorted())
	assert.Empty(t, report.ModifiedInputs)
}

func TestStatus_IgnoreDeleted(t *testing.T) {
	tree := cleanTree()
	delete(tree, "intermediate.txt")
	e, m := setupEngineTest(t, tree)
	m.store.EXPECT().LiveActivities(gomock.Any()).Return(twoStepChain(), nil)

	report, err := e.Status(context.Background(), query.StatusRequest{IgnoreDeleted: true})
	require.NoError(t, err)
	assert.True(t, report.Clean(), "deletion-triggered staleness must be suppressed")
}

func TestStatus_ActivityWithoutOutputs(t *testing.T) {
	tree := fakeTree{"source.txt": "s2", "report.pdf": "r1"}
	e, m := setupEngineTest(t, tree)
	m.store.EXPECT().LiveActivities(gomock.Any()).Return([]*domain.Activity{
		recorded("act-build", "plan-build", 1, []ent{{"source.txt", "s1"}}, []ent{{"report.pdf", "r1"}}),
		recorded("act-notify", "plan-notify", 2, []ent{{"report.pdf", "r1"}}, nil),
	}, nil)

	report, err := e.Status(context.Background(), query.StatusRequest{})
	require.NoError(t, err)

	assert.Equal(t, []string{"report.pdf"}, report.SortedStaleOutputs())
	assert.Equal(t, []string{"act-notify"}, report.SortedStaleActivities())
	assert.Equal(t, []string{"source.txt"}, report.StaleActivities["act-notify"].Sorted())
	assert.NotContains(t, report.StaleOutputs, domain.NewInternedString("act-notify"))
}

func TestStatus_PathsFilter(t *testing.T) {
	// Two independent chains off one modified source; the filter keeps only
	// the requested output and drops the untouched branch from the report.
	tree := fakeTree{
		"source.txt": "s2",
		"a.out":      "a1",
		"b.out":      "b1",
	}
	e, m := setupEngineTest(t, tree)
	activities := []*domain.Activity{
		recorded("act-a", "plan-a", 1, []ent{{"source.txt", "s1"}}, []ent{{"a.out", "a1"}}),
		recorded("act-b", "plan-b", 2, []ent{{"source.txt", "s1"}}, []ent{{"b.out", "b1"}}),
	}
	m.store.EXPECT().LiveActivities(gomock.Any()).Return(activities, nil)

	report, err := e.Status(context.Background(), query.StatusRequest{Paths: []string{"a.out"}})
	require.NoError(t, err)

	assert.Equal(t, []string{"a.out"}, report.SortedStaleOutputs())
	assert.Equal(t, []string{"source.txt"}, report.ModifiedInputs.Sorted())
}

func TestStatus_Idempotent(t *testing.T) {
	tree := cleanTree()
	tree["source.txt"] = "s2"
	e, m := setupEngineTest(t, tree)
	m.store.EXPECT().LiveActivities(gomock.Any()).Return(twoStepChain(), nil).Times(2)

	first, err := e.Status(context.Background(), query.StatusRequest{})
	require.NoError(t, err)
	second, err := e.Status(context.Background(), query.StatusRequest{})
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestStatus_AmbiguousOrderIsFatal(t *testing.T) {
	tree := fakeTree{"p": "h1"}
	e, m := setupEngineTest(t, tree)
	m.store.EXPECT().LiveActivities(gomock.Any()).Return([]*domain.Activity{
		recorded("A", "plan-a", 1, nil, []ent{{"p", "h1"}}),
		recorded("B", "plan-b", 1, nil, []ent{{"p", "h2"}}),
	}, nil)

	_, err := e.Status(context.Background(), query.StatusRequest{})
	require.ErrorIs(t, err, domain.ErrAmbiguousGenerationOrder)
}
