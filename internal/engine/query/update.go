package query

import (
	"context"
	"slices"
	"strings"

	"go.trai.ch/deja/internal/core/domain"
	"go.trai.ch/zerr"
)

// UpdateRequest narrows an update run. Paths restricts recomputation to
// matching outputs plus the stale activities they depend on; IgnoreDeleted
// downgrades missing inputs from fatal to a per-activity skip.
type UpdateRequest struct {
	Paths         []string
	IgnoreDeleted bool
}

type updateStep struct {
	act  *domain.Activity
	plan *domain.Plan
}

// Update re-executes the stale activities in dependency order and records
// the fresh executions. The workspace write lock is held for the whole run
// so no concurrent append can collide on a generated path.
func (e *Engine) Update(ctx context.Context, req UpdateRequest) (*domain.UpdateReport, error) {
	unlock, err := e.workspace.Lock()
	if err != nil {
		return nil, err
	}
	defer func() { _ = unlock() }()

	g, changes, err := e.snapshot(ctx)
	if err != nil {
		return nil, err
	}

	report := &domain.UpdateReport{}
	if changes.Empty() {
		return report, nil
	}

	scheduled := schedule(g, staleSet(g, changes), pathFilter(req.Paths))
	if len(scheduled) == 0 {
		return report, nil
	}

	deleted := changes.DeletedPaths()
	var steps []updateStep

	for _, id := range g.Sorted() {
		if _, ok := scheduled[id]; !ok {
			continue
		}
		act := g.Activity(id)

		plan, err := e.store.PlanByID(ctx, act.PlanID)
		if err != nil {
			return nil, zerr.Wrap(err, "failed to load a plan")
		}
		if plan == nil {
			return nil, zerr.With(zerr.With(domain.ErrPlanNotFound, "plan", act.PlanID), "activity", act.ID)
		}

		if missing := missingInputs(act, deleted); len(missing) > 0 {
			if !req.IgnoreDeleted {
				return nil, zerr.With(zerr.With(
					domain.ErrInputDeleted,
					"activity", act.ID),
					"paths", strings.Join(missing, ", "))
			}
			report.Skipped = append(report.Skipped, domain.UpdateSkip{
				PlanName:      plan.Name,
				ActivityID:    act.ID,
				MissingInputs: missing,
			})
			continue
		}

		steps = append(steps, updateStep{act: act, plan: plan})
	}

	if len(steps) == 0 {
		return report, nil
	}

	names := make([]string, len(steps))
	for i, s := range steps {
		names[i] = s.plan.Name.String()
	}
	e.tracer.EmitQueue(ctx, names, req.Paths)

	for _, s := range steps {
		activity, err := e.execute(ctx, s.plan, s.act.Parameters, usageTargets(s.act), generationTargets(s.act))
		if err != nil {
			return nil, err
		}

		outputs := generationTargets(activity)
		slices.Sort(outputs)
		report.Executed = append(report.Executed, domain.UpdateResult{
			PlanName:   s.plan.Name,
			ActivityID: activity.ID,
			Outputs:    outputs,
		})
	}

	return report, nil
}

// staleSet is the union of the downstream closures of every changed entity,
// restricted to activities that generate something. Activities without
// outputs have nothing to recompute in place.
func staleSet(g *domain.ActivityGraph, changes *domain.ChangeSet) map[domain.NodeID]struct{} {
	stale := make(map[domain.NodeID]struct{})

	mark := func(seed domain.ActivityEntity) {
		node, ok := g.Lookup(seed.Activity.ID)
		if !ok {
			return
		}
		for _, member := range downstream(g, node) {
			if g.Activity(member).HasGenerations() {
				stale[member] = struct{}{}
			}
		}
	}

	for _, seed := range changes.Modified {
		mark(seed)
	}
	for _, seed := range changes.Deleted {
		mark(seed)
	}
	return stale
}

// schedule narrows the stale set to activities generating a filtered path,
// pulled together with their stale prerequisites so the chain re-executes
// in a consistent state.
func schedule(g *domain.ActivityGraph, stale map[domain.NodeID]struct{}, filter pathFilter) map[domain.NodeID]struct{} {
	if filter.Empty() {
		return stale
	}

	scheduled := make(map[domain.NodeID]struct{})
	for id := range stale {
		act := g.Activity(id)
		match := false
		for _, gen := range act.Generations {
			if g.Overridden(id, gen.Entity.Path) {
				continue
			}
			if filter.Matches(gen.Entity.Path.String()) {
				match = true
				break
			}
		}
		if !match {
			continue
		}
		for _, ancestor := range upstream(g, id) {
			if _, ok := stale[ancestor]; ok {
				scheduled[ancestor] = struct{}{}
			}
		}
	}
	return scheduled
}

// missingInputs returns the activity's usage paths that no longer exist,
// sorted for stable reporting.
func missingInputs(act *domain.Activity, deleted domain.PathSet) []string {
	var missing []string
	for _, usage := range act.Usages {
		if deleted.Contains(usage.Entity.Path) {
			missing = append(missing, usage.Entity.Path.String())
		}
	}
	slices.Sort(missing)
	return slices.Compact(missing)
}

// usageTargets returns the activity's input paths in recorded order.
func usageTargets(act *domain.Activity) []string {
	res := make([]string, len(act.Usages))
	for i, usage := range act.Usages {
		res[i] = usage.Entity.Path.String()
	}
	return res
}

// generationTargets returns the activity's output paths in recorded order.
func generationTargets(act *domain.Activity) []string {
	res := make([]string, len(act.Generations))
	for i, gen := range act.Generations {
		res[i] = gen.Entity.Path.String()
	}
	return res
}
