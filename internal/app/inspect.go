package app

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"go.trai.ch/deja/internal/core/domain"
	"go.trai.ch/deja/internal/core/ports"
	"go.trai.ch/zerr"
)

// LogOptions configuration for the Log method.
type LogOptions struct {
	// Plans includes plan records in the timeline.
	Plans bool
}

// Log returns the recorded timeline, newest first. Invalidated activities
// and deleted plans stay in the timeline; presentation marks them.
func (a *App) Log(ctx context.Context, opts LogOptions) ([]domain.Record, error) {
	sess, err := a.openSession()
	if err != nil {
		return nil, err
	}
	defer func() { _ = sess.Close() }()

	records, err := sess.store.Records(ctx)
	if err != nil {
		return nil, err
	}

	if !opts.Plans {
		records = slices.DeleteFunc(records, func(r domain.Record) bool {
			return r.Kind() == domain.RecordPlan
		})
	}
	slices.Reverse(records)
	return records, nil
}

// PlanListOptions configuration for the Plans method.
type PlanListOptions struct {
	// All includes soft-deleted plan versions.
	All bool
}

// Plans returns the recorded plan versions, oldest first.
func (a *App) Plans(ctx context.Context, opts PlanListOptions) ([]*domain.Plan, error) {
	sess, err := a.openSession()
	if err != nil {
		return nil, err
	}
	defer func() { _ = sess.Close() }()

	return sess.store.ListPlans(ctx, opts.All)
}

// PlanShow resolves a plan by name or version id and returns it together
// with the activities recorded against that version.
func (a *App) PlanShow(ctx context.Context, ref string) (*domain.Plan, []*domain.Activity, error) {
	sess, err := a.openSession()
	if err != nil {
		return nil, nil, err
	}
	defer func() { _ = sess.Close() }()

	plan, err := sess.store.PlanHead(ctx, ref)
	if err != nil {
		return nil, nil, err
	}
	if plan == nil {
		plan, err = sess.store.PlanByID(ctx, ref)
		if err != nil {
			return nil, nil, err
		}
	}
	if plan == nil {
		return nil, nil, zerr.With(domain.ErrPlanNotFound, "plan", ref)
	}

	activities, err := sess.store.ActivitiesByPlan(ctx, plan.ID)
	if err != nil {
		return nil, nil, err
	}
	return plan, activities, nil
}

// PlanRemove soft-deletes every live version of the named plan. Removal is
// refused while any valid activity still references one of the versions;
// revert those activities first.
func (a *App) PlanRemove(ctx context.Context, name string) ([]*domain.Plan, error) {
	sess, err := a.openSession()
	if err != nil {
		return nil, err
	}
	defer func() { _ = sess.Close() }()

	live, err := sess.store.ListPlans(ctx, false)
	if err != nil {
		return nil, err
	}

	interned := domain.NewInternedString(name)
	var versions []*domain.Plan
	for _, plan := range live {
		if plan.Name == interned {
			versions = append(versions, plan)
		}
	}
	if len(versions) == 0 {
		return nil, zerr.With(domain.ErrPlanNotFound, "plan", name)
	}

	for _, plan := range versions {
		activities, err := sess.store.ActivitiesByPlan(ctx, plan.ID)
		if err != nil {
			return nil, err
		}
		for _, act := range activities {
			if !act.Invalidated() {
				return nil, zerr.With(zerr.With(domain.ErrPlanReferenced, "plan", name), "activity", act.ID)
			}
		}
	}

	at := a.clock()
	for _, plan := range versions {
		if err := sess.store.RemovePlan(ctx, plan.ID, at); err != nil {
			return nil, err
		}
		plan.DeletedAt = at
	}
	return versions, nil
}

// RevertOptions configuration for the Revert method.
type RevertOptions struct {
	// Restore rewrites each reverted output from the newest remaining
	// snapshot of that path.
	Restore bool
}

// Revert marks an activity invalid, taking it out of every future query.
// Reverting an already invalid activity is a no-op. With Restore set, the
// activity's outputs are rewritten from the blob snapshots of whatever
// live activity generated them last.
func (a *App) Revert(ctx context.Context, activityID string, opts RevertOptions) (*domain.Activity, error) {
	sess, err := a.openSession()
	if err != nil {
		return nil, err
	}
	defer func() { _ = sess.Close() }()

	act, err := resolveActivity(ctx, sess.store, activityID)
	if err != nil {
		return nil, err
	}
	if act == nil {
		return nil, zerr.With(domain.ErrActivityNotFound, "activity", activityID)
	}

	unlock, err := sess.workspace.Lock()
	if err != nil {
		return nil, err
	}
	defer func() { _ = unlock() }()

	at := a.clock()
	if err := sess.store.InvalidateActivity(ctx, act.ID, at); err != nil {
		return nil, err
	}
	if act.InvalidatedAt.IsZero() {
		act.InvalidatedAt = at
	}

	if opts.Restore {
		if err := a.restoreOutputs(ctx, sess, act); err != nil {
			return nil, err
		}
	}
	return act, nil
}

// restoreOutputs rewrites the reverted activity's outputs from snapshots.
// Paths with no remaining generator or no retained snapshot are left in
// place with a warning; restore is best effort.
func (a *App) restoreOutputs(ctx context.Context, s *session, act *domain.Activity) error {
	live, err := s.store.LiveActivities(ctx)
	if err != nil {
		return err
	}

	blobs := a.blobs(s.root)
	for _, gen := range act.Generations {
		path := gen.Entity.Path
		prev, ok := latestGeneration(live, path)
		if !ok {
			a.logger.Warn(fmt.Sprintf("no remaining version of %s recorded, leaving the file in place", path))
			continue
		}

		current, err := s.workspace.Checksum(path.String())
		if err != nil {
			return err
		}
		if current == prev.Checksum {
			continue
		}

		blob, err := blobs.Open(prev.Checksum)
		if err != nil {
			return err
		}
		if blob == nil {
			a.logger.Warn(fmt.Sprintf("no snapshot retained for %s, leaving the file in place", path))
			continue
		}

		err = s.workspace.WriteFile(path.String(), blob)
		_ = blob.Close()
		if err != nil {
			return err
		}
		a.logger.Info(fmt.Sprintf("restored %s", path))
	}
	return nil
}

// resolveActivity finds an activity by its full id, falling back to the
// short id prefix the listings print. An ambiguous prefix is an error, a
// prefix without a match resolves to nil.
func resolveActivity(ctx context.Context, store ports.ProvenanceStore, ref string) (*domain.Activity, error) {
	act, err := store.ActivityByID(ctx, ref)
	if err != nil || act != nil {
		return act, err
	}

	records, err := store.Records(ctx)
	if err != nil {
		return nil, err
	}

	var match *domain.Activity
	for _, record := range records {
		candidate, ok := record.(*domain.Activity)
		if !ok || !strings.HasPrefix(candidate.ID, ref) {
			continue
		}
		if match != nil {
			return nil, zerr.With(domain.ErrAmbiguousActivityRef, "activity", ref)
		}
		match = candidate
	}
	return match, nil
}

// latestGeneration returns the newest live generation of path.
func latestGeneration(live []*domain.Activity, path domain.InternedString) (domain.Entity, bool) {
	var (
		best   domain.Entity
		bestAt time.Time
		found  bool
	)
	for _, act := range live {
		gen, ok := act.Generates(path)
		if !ok {
			continue
		}
		if !found || act.EndedAt.After(bestAt) {
			best = gen.Entity
			bestAt = act.EndedAt
			found = true
		}
	}
	return best, found
}
