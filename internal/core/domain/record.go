package domain

import "time"

// RecordKind discriminates the record types stored in the provenance log.
type RecordKind int

const (
	RecordActivity RecordKind = iota
	RecordPlan
)

// String returns the lowercase name of the record kind.
func (k RecordKind) String() string {
	switch k {
	case RecordActivity:
		return "activity"
	case RecordPlan:
		return "plan"
	default:
		return "unknown"
	}
}

// Record is the closed set of provenance record types. Both implementations
// live in this package; consumers switch on Kind to recover the concrete type.
type Record interface {
	Kind() RecordKind
	// RecordedAt is the timestamp the record entered the log: ended_at for
	// activities, created_at for plans.
	RecordedAt() time.Time
}

func (a *Activity) Kind() RecordKind { return RecordActivity }

func (a *Activity) RecordedAt() time.Time { return a.EndedAt }

func (p *Plan) Kind() RecordKind { return RecordPlan }

func (p *Plan) RecordedAt() time.Time { return p.CreatedAt }
