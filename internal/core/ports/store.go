// Package ports defines the core interfaces for the application.
package ports

import (
	"context"
	"time"

	"go.trai.ch/deja/internal/core/domain"
)

// ProvenanceStore is the append-only log of plans and activities. Records are
// never mutated in place: plan edits insert a new version, retractions set
// the invalidated/deleted timestamp and nothing else.
//
//go:generate mockgen -source=store.go -destination=mocks/mock_store.go -package=mocks
type ProvenanceStore interface {
	// SavePlan inserts a plan version and points the head for its name at it.
	SavePlan(ctx context.Context, plan *domain.Plan) error

	// PlanHead returns the latest live version of the named plan.
	// Returns nil, nil if not found.
	PlanHead(ctx context.Context, name string) (*domain.Plan, error)

	// PlanByID returns the plan version with the given id, deleted or not.
	// Returns nil, nil if not found.
	PlanByID(ctx context.Context, id string) (*domain.Plan, error)

	// ListPlans returns all plan versions, oldest first. Soft-deleted plans
	// are included only when includeDeleted is set.
	ListPlans(ctx context.Context, includeDeleted bool) ([]*domain.Plan, error)

	// RemovePlan soft-deletes a plan version. The version stays readable for
	// activities that reference it.
	RemovePlan(ctx context.Context, id string, at time.Time) error

	// AppendActivity records an activity with its usages and generations in
	// one atomic write. It fails with domain.ErrDuplicateGeneration when a
	// generation collides with a recorded generation of the same path at the
	// same ended_at timestamp.
	AppendActivity(ctx context.Context, activity *domain.Activity) error

	// ActivityByID returns the activity with the given id, invalidated or not.
	// Returns nil, nil if not found.
	ActivityByID(ctx context.Context, id string) (*domain.Activity, error)

	// LiveActivities returns all non-invalidated activities with their usages
	// and generations, ordered by ended_at ascending.
	LiveActivities(ctx context.Context) ([]*domain.Activity, error)

	// ActivitiesByGeneration returns the non-invalidated activities that
	// generated the given path, ordered by ended_at ascending. A non-empty
	// checksum restricts the result to generations of that exact content.
	ActivitiesByGeneration(ctx context.Context, path, checksum string) ([]*domain.Activity, error)

	// ActivitiesByPlan returns the non-invalidated activities recorded
	// against the given plan version, ordered by ended_at ascending.
	ActivitiesByPlan(ctx context.Context, planID string) ([]*domain.Activity, error)

	// InvalidateActivity marks an activity as retracted.
	InvalidateActivity(ctx context.Context, id string, at time.Time) error

	// Records returns the full timeline of plans and activities, oldest
	// first, including invalidated and deleted records.
	Records(ctx context.Context) ([]domain.Record, error)

	// Close releases the underlying storage.
	Close() error
}
