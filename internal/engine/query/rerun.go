package query

import (
	"context"
	"slices"

	"go.trai.ch/deja/internal/core/domain"
	"go.trai.ch/zerr"
)

// RerunRequest names the outputs to regenerate. A non-empty Sources keeps
// only chains whose leaf activities read at least one of the source paths.
type RerunRequest struct {
	Targets []string
	Sources []string
}

// Rerun computes the minimal ordered set of plan invocations that
// regenerates the requested target paths. Targets nothing ever generated
// are collected under Missing rather than failing the call.
func (e *Engine) Rerun(ctx context.Context, req RerunRequest) (*domain.RerunReport, error) {
	activities, err := e.store.LiveActivities(ctx)
	if err != nil {
		return nil, zerr.Wrap(err, "failed to load the activity log")
	}

	g, err := buildNormalized(activities)
	if err != nil {
		return nil, err
	}

	report := &domain.RerunReport{}
	selected := make(map[domain.NodeID]struct{})

	for _, target := range req.Targets {
		generators := g.Generators(domain.NewInternedString(target))
		if len(generators) == 0 {
			report.Missing = append(report.Missing, target)
			continue
		}

		latest := generators[0]
		for _, id := range generators[1:] {
			if g.Activity(id).EndedAt.After(g.Activity(latest).EndedAt) {
				latest = id
			}
		}

		chain := upstream(g, latest)
		if len(req.Sources) > 0 && !chainTouches(g, chain, req.Sources) {
			continue
		}
		for _, id := range chain {
			selected[id] = struct{}{}
		}
	}
	slices.Sort(report.Missing)

	retained, err := e.dedupe(ctx, g, selected)
	if err != nil {
		return nil, err
	}

	for _, id := range g.Sorted() {
		c, ok := retained[id]
		if !ok {
			continue
		}
		report.Invocations = append(report.Invocations, domain.Invocation{
			Plan:       c.plan,
			Parameters: c.act.Parameters,
		})
	}

	return report, nil
}

// ExecuteRerun runs the report's invocations in order under the workspace
// write lock, recording each execution. It stops at the first failure; the
// activities recorded before the failure stay recorded. targets is the
// original request, announced alongside the queue.
func (e *Engine) ExecuteRerun(ctx context.Context, report *domain.RerunReport, targets []string) ([]*domain.Activity, error) {
	if report.Empty() {
		return nil, nil
	}

	unlock, err := e.workspace.Lock()
	if err != nil {
		return nil, err
	}
	defer func() { _ = unlock() }()

	names := make([]string, len(report.Invocations))
	for i, inv := range report.Invocations {
		names[i] = inv.Plan.Name.String()
	}
	e.tracer.EmitQueue(ctx, names, targets)

	var recorded []*domain.Activity
	for i := range report.Invocations {
		activity, err := e.invoke(ctx, &report.Invocations[i])
		if err != nil {
			return recorded, err
		}
		recorded = append(recorded, activity)
	}
	return recorded, nil
}

// chainTouches reports whether any leaf of the chain reads one of the
// source paths. Leaves are the members without upstream dependencies.
func chainTouches(g *domain.ActivityGraph, chain []domain.NodeID, sources []string) bool {
	filter := pathFilter(sources)
	for _, id := range chain {
		if len(g.In(id)) > 0 {
			continue
		}
		for _, usage := range g.Activity(id).Usages {
			if filter.Matches(usage.Entity.Path.String()) {
				return true
			}
		}
	}
	return false
}

type candidate struct {
	act  *domain.Activity
	plan *domain.Plan
}

// dedupe drops older recordings of the same recipe: within one plan name,
// when two selected activities touched identical usage and generation path
// sets, only the one with the later ended_at survives.
func (e *Engine) dedupe(
	ctx context.Context,
	g *domain.ActivityGraph,
	selected map[domain.NodeID]struct{},
) (map[domain.NodeID]candidate, error) {
	byName := make(map[domain.InternedString][]domain.NodeID)
	plans := make(map[domain.NodeID]*domain.Plan, len(selected))

	for id := range selected {
		act := g.Activity(id)
		plan, err := e.store.PlanByID(ctx, act.PlanID)
		if err != nil {
			return nil, zerr.Wrap(err, "failed to load a plan")
		}
		if plan == nil {
			return nil, zerr.With(zerr.With(domain.ErrPlanNotFound, "plan", act.PlanID), "activity", act.ID)
		}
		plans[id] = plan
		byName[plan.Name] = append(byName[plan.Name], id)
	}

	retained := make(map[domain.NodeID]candidate, len(selected))
	for _, ids := range byName {
		slices.SortFunc(ids, func(a, b domain.NodeID) int {
			return g.Activity(b).EndedAt.Compare(g.Activity(a).EndedAt)
		})

		for i, id := range ids {
			act := g.Activity(id)
			superseded := false
			for _, newer := range ids[:i] {
				if _, kept := retained[newer]; !kept {
					continue
				}
				if domain.SamePathSets(g.Activity(newer), act) {
					superseded = true
					break
				}
			}
			if !superseded {
				retained[id] = candidate{act: act, plan: plans[id]}
			}
		}
	}
	return retained, nil
}

