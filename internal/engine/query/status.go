package query

import (
	"context"

	"go.trai.ch/deja/internal/core/domain"
)

// StatusRequest narrows a status query. Paths restricts the report to
// matching outputs and inputs; IgnoreDeleted suppresses staleness triggered
// by deleted files so only content changes count.
type StatusRequest struct {
	Paths         []string
	IgnoreDeleted bool
}

// Status reports which recorded outputs are out of date and why. A clean
// report means every recorded entity matches the workspace.
func (e *Engine) Status(ctx context.Context, req StatusRequest) (*domain.StatusReport, error) {
	g, changes, err := e.snapshot(ctx)
	if err != nil {
		return nil, err
	}

	report := domain.NewStatusReport()
	if changes.Empty() {
		return report, nil
	}

	filter := pathFilter(req.Paths)

	for _, seed := range changes.Modified {
		if e.propagate(g, seed, filter, report) {
			report.ModifiedInputs.Add(seed.Entity.Path)
		}
	}

	if req.IgnoreDeleted {
		return report, nil
	}

	for _, seed := range changes.Deleted {
		reported := e.propagate(g, seed, filter, report)
		if reported || filter.Empty() || filter.Matches(seed.Entity.Path.String()) {
			report.DeletedInputs.Add(seed.Entity.Path)
		}
	}

	return report, nil
}

// propagate walks the downstream closure of one changed entity and collects
// the affected outputs and output-less activities into the report. It
// reports whether anything was recorded under the active filter.
func (e *Engine) propagate(
	g *domain.ActivityGraph,
	seed domain.ActivityEntity,
	filter pathFilter,
	report *domain.StatusReport,
) bool {
	node, ok := g.Lookup(seed.Activity.ID)
	if !ok {
		return false
	}

	cause := seed.Entity.Path
	causeMatches := filter.Matches(cause.String())
	recorded := false

	for _, member := range downstream(g, node) {
		act := g.Activity(member)

		if !act.HasGenerations() {
			if filter.Empty() || causeMatches {
				addCause(report.StaleActivities, act.ID, cause)
				recorded = true
			}
			continue
		}

		for _, gen := range act.Generations {
			if g.Overridden(member, gen.Entity.Path) {
				continue
			}
			if filter.Empty() || causeMatches || filter.Matches(gen.Entity.Path.String()) {
				addCause(report.StaleOutputs, gen.Entity.Path, cause)
				recorded = true
			}
		}
	}

	return recorded
}

func addCause[K comparable](m map[K]domain.PathSet, key K, cause domain.InternedString) {
	if m[key] == nil {
		m[key] = make(domain.PathSet)
	}
	m[key].Add(cause)
}
