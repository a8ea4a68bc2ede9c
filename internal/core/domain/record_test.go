package domain_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.trai.ch/deja/internal/core/domain"
)

func TestRecordKinds(t *testing.T) {
	ended := time.Date(2026, 2, 3, 10, 0, 0, 0, time.UTC)
	created := time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC)

	records := []domain.Record{
		&domain.Activity{ID: "a1", EndedAt: ended},
		&domain.Plan{ID: "p1", CreatedAt: created},
	}

	for _, r := range records {
		switch r.Kind() {
		case domain.RecordActivity:
			assert.Equal(t, "activity", r.Kind().String())
			assert.Equal(t, ended, r.RecordedAt())
		case domain.RecordPlan:
			assert.Equal(t, "plan", r.Kind().String())
			assert.Equal(t, created, r.RecordedAt())
		default:
			t.Fatalf("unexpected record kind %v", r.Kind())
		}
	}
}

func TestActivity_SamePathSets(t *testing.T) {
	a := newActivity("a", []string{"in1", "in2"}, []string{"out"})
	b := newActivity("b", []string{"in2", "in1"}, []string{"out"})
	c := newActivity("c", []string{"in1"}, []string{"out"})

	assert.True(t, domain.SamePathSets(a, b), "ordering must not matter")
	assert.False(t, domain.SamePathSets(a, c))
}

func TestActivity_Invalidated(t *testing.T) {
	a := newActivity("a", nil, []string{"out"})
	assert.False(t, a.Invalidated())

	a.InvalidatedAt = time.Now()
	assert.True(t, a.Invalidated())
}

func TestPlan_SameRecipe(t *testing.T) {
	base := &domain.Plan{
		Name:       domain.NewInternedString("compile"),
		Command:    []string{"cc", "-o", "{output}", "{input}"},
		Inputs:     []string{"main.c"},
		Outputs:    []string{"main"},
		Parameters: map[string]string{"opt": "-O2"},
	}

	same := &domain.Plan{
		Name:       domain.NewInternedString("compile"),
		Command:    []string{"cc", "-o", "{output}", "{input}"},
		Inputs:     []string{"main.c"},
		Outputs:    []string{"main"},
		Parameters: map[string]string{"opt": "-O2"},
	}
	assert.True(t, base.SameRecipe(same))

	changedCommand := *same
	changedCommand.Command = []string{"cc", "-O3", "-o", "{output}", "{input}"}
	assert.False(t, base.SameRecipe(&changedCommand))

	changedParams := *same
	changedParams.Parameters = map[string]string{"opt": "-O3"}
	assert.False(t, base.SameRecipe(&changedParams))
}

func TestPlan_Deleted(t *testing.T) {
	p := &domain.Plan{ID: "p1"}
	assert.False(t, p.Deleted())

	p.DeletedAt = time.Now()
	assert.True(t, p.Deleted())
}
