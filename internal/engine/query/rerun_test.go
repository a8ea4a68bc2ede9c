package query_test

import (
	"context"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/deja/internal/core/domain"
	"go.trai.ch/deja/internal/engine/query"
	"go.uber.org/mock/gomock"
)

func invocationNames(report *domain.RerunReport) []string {
	names := make([]string, len(report.Invocations))
	for i, inv := range report.Invocations {
		names[i] = inv.Plan.Name.String()
	}
	return names
}

func TestRerun_SelectsChainInOrder(t *testing.T) {
	e, m := setupEngineTest(t, cleanTree())
	m.store.EXPECT().LiveActivities(gomock.Any()).Return(twoStepChain(), nil)
	stubPlans(m, twoStepPlans())

	report, err := e.Rerun(context.Background(), query.RerunRequest{Targets: []string{"output.txt"}})
	require.NoError(t, err)

	assert.Empty(t, report.Missing)
	assert.Equal(t, []string{"convert", "report"}, invocationNames(report),
		"the upstream activity must come before the one generating the target")
}

func TestRerun_MissingTarget(t *testing.T) {
	e, m := setupEngineTest(t, cleanTree())
	m.store.EXPECT().LiveActivities(gomock.Any()).Return(twoStepChain(), nil)
	stubPlans(m, twoStepPlans())

	report, err := e.Rerun(context.Background(), query.RerunRequest{
		Targets: []string{"unknown.bin", "output.txt"},
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"unknown.bin"}, report.Missing)
	assert.Equal(t, []string{"convert", "report"}, invocationNames(report),
		"other targets must still be answered")
}

func TestRerun_SourceFilter(t *testing.T) {
	e, m := setupEngineTest(t, fakeTree{})
	m.store.EXPECT().LiveActivities(gomock.Any()).Return([]*domain.Activity{
		recorded("act-a", "plan-a", 1, []ent{{"a.src", "h1"}}, []ent{{"a.out", "h2"}}),
		recorded("act-b", "plan-b", 2, []ent{{"b.src", "h3"}}, []ent{{"b.out", "h4"}}),
	}, nil)
	stubPlans(m, map[string]*domain.Plan{
		"plan-a": testPlan("plan-a", "build-a"),
		"plan-b": testPlan("plan-b", "build-b"),
	})

	report, err := e.Rerun(context.Background(), query.RerunRequest{
		Targets: []string{"a.out", "b.out"},
		Sources: []string{"b.src"},
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"build-b"}, invocationNames(report),
		"chains not fed by the requested source must be dropped")
	assert.Empty(t, report.Missing)
}

func TestRerun_RepeatedRecordingsCollapse(t *testing.T) {
	// The same recipe recorded twice for the same output: only the latest
	// recording is selected for re-execution.
	e, m := setupEngineTest(t, fakeTree{})
	m.store.EXPECT().LiveActivities(gomock.Any()).Return([]*domain.Activity{
		recorded("act-old", "plan-copy", 1, []ent{{"in.txt", "h1"}}, []ent{{"out.txt", "h2"}}),
		recorded("act-new", "plan-copy", 2, []ent{{"in.txt", "h1"}}, []ent{{"out.txt", "h5"}}),
	}, nil)
	stubPlans(m, map[string]*domain.Plan{"plan-copy": testPlan("plan-copy", "copy")})

	report, err := e.Rerun(context.Background(), query.RerunRequest{Targets: []string{"out.txt"}})
	require.NoError(t, err)

	assert.Equal(t, []string{"copy"}, invocationNames(report))
}

func TestRerun_ParameterizationsStaySeparate(t *testing.T) {
	// One plan, two parameter sets, two distinct outputs: both invocations
	// must survive deduplication.
	euAct := recorded("act-eu", "plan-render", 1, []ent{{"data.csv", "h1"}}, []ent{{"eu.pdf", "h2"}})
	euAct.Parameters = map[string]string{"region": "eu"}
	usAct := recorded("act-us", "plan-render", 2, []ent{{"data.csv", "h1"}}, []ent{{"us.pdf", "h3"}})
	usAct.Parameters = map[string]string{"region": "us"}

	e, m := setupEngineTest(t, fakeTree{})
	m.store.EXPECT().LiveActivities(gomock.Any()).Return([]*domain.Activity{euAct, usAct}, nil)
	stubPlans(m, map[string]*domain.Plan{"plan-render": testPlan("plan-render", "render")})

	report, err := e.Rerun(context.Background(), query.RerunRequest{
		Targets: []string{"eu.pdf", "us.pdf"},
	})
	require.NoError(t, err)

	require.Len(t, report.Invocations, 2)
	regions := []string{
		report.Invocations[0].Parameters["region"],
		report.Invocations[1].Parameters["region"],
	}
	assert.ElementsMatch(t, []string{"eu", "us"}, regions)
}

func TestRerun_LatestGeneratorWins(t *testing.T) {
	// out.txt was written by act-old and later by act-new, which depends on
	// mid.txt from act-mid. The rerun chain follows the surviving generator.
	e, m := setupEngineTest(t, fakeTree{})
	m.store.EXPECT().LiveActivities(gomock.Any()).Return([]*domain.Activity{
		recorded("act-old", "plan-old", 1, nil, []ent{{"out.txt", "h1"}}),
		recorded("act-mid", "plan-mid", 2, nil, []ent{{"mid.txt", "h2"}}),
		recorded("act-new", "plan-new", 3, []ent{{"mid.txt", "h2"}}, []ent{{"out.txt", "h3"}}),
	}, nil)
	stubPlans(m, map[string]*domain.Plan{
		"plan-mid": testPlan("plan-mid", "mid"),
		"plan-new": testPlan("plan-new", "new"),
		"plan-old": testPlan("plan-old", "old"),
	})

	report, err := e.Rerun(context.Background(), query.RerunRequest{Targets: []string{"out.txt"}})
	require.NoError(t, err)

	assert.Equal(t, []string{"mid", "new"}, invocationNames(report))
}

func TestExecuteRerun_RecordsEachInvocation(t *testing.T) {
	convert := testPlan("plan-convert", "convert", "gen-intermediate")
	convert.Inputs = []string{"source.txt"}
	convert.Outputs = []string{"intermediate.txt"}
	reportPlan := testPlan("plan-report", "report", "gen-output")
	reportPlan.Inputs = []string{"intermediate.txt"}
	reportPlan.Outputs = []string{"output.txt"}

	tree := cleanTree()
	e, m := setupEngineTest(t, tree)

	m.executor.EXPECT().Execute(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, inv *domain.Invocation, _ []string, _, _ io.Writer) error {
			switch inv.Plan.ID {
			case "plan-convert":
				tree["intermediate.txt"] = "i2"
			case "plan-report":
				tree["output.txt"] = "o2"
			}
			return nil
		},
	).Times(2)

	var appended []*domain.Activity
	m.store.EXPECT().AppendActivity(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, act *domain.Activity) error {
			appended = append(appended, act)
			return nil
		},
	).Times(2)

	rerun := &domain.RerunReport{Invocations: []domain.Invocation{
		{Plan: convert},
		{Plan: reportPlan},
	}}

	acts, err := e.ExecuteRerun(context.Background(), rerun, nil)
	require.NoError(t, err)
	require.Len(t, acts, 2)
	require.Len(t, appended, 2)

	assert.Equal(t, "new-1", appended[0].ID)
	assert.Equal(t, "plan-convert", appended[0].PlanID)
	require.Len(t, appended[0].Generations, 1)
	assert.Equal(t, "i2", appended[0].Generations[0].Entity.Checksum)

	require.Len(t, appended[1].Usages, 1)
	assert.Equal(t, "i2", appended[1].Usages[0].Entity.Checksum,
		"the second step must consume the regenerated intermediate")
	assert.True(t, appended[1].EndedAt.After(appended[0].EndedAt))
}
