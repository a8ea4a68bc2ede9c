package domain

import "time"

// Activity is the immutable record of one executed computation: which plan
// ran, when, with which parameters, what it consumed and what it produced.
// Activities are append-only. A superseded or retracted activity is never
// edited or deleted, it is invalidated and skipped by queries from then on.
type Activity struct {
	ID          string            `json:"id"`
	PlanID      string            `json:"plan_id"`
	StartedAt   time.Time         `json:"started_at"`
	EndedAt     time.Time         `json:"ended_at"`
	Parameters  map[string]string `json:"parameters,omitempty"`
	Usages      []Usage           `json:"usages,omitempty"`
	Generations []Generation      `json:"generations,omitempty"`

	// InvalidatedAt is set when the activity is retracted. Zero means live.
	InvalidatedAt time.Time `json:"invalidated_at,omitzero"`
}

// Invalidated reports whether the activity has been retracted.
func (a *Activity) Invalidated() bool {
	return !a.InvalidatedAt.IsZero()
}

// HasGenerations reports whether the activity produced any outputs.
func (a *Activity) HasGenerations() bool {
	return len(a.Generations) > 0
}

// Uses reports whether the activity consumed the given path, and returns the
// matching usage when it did.
func (a *Activity) Uses(path InternedString) (Usage, bool) {
	for _, u := range a.Usages {
		if u.Entity.Path == path {
			return u, true
		}
	}
	return Usage{}, false
}

// Generates reports whether the activity produced the given path, and returns
// the matching generation when it did.
func (a *Activity) Generates(path InternedString) (Generation, bool) {
	for _, g := range a.Generations {
		if g.Entity.Path == path {
			return g, true
		}
	}
	return Generation{}, false
}

// UsagePathSet returns the set of paths the activity consumed.
func (a *Activity) UsagePathSet() map[InternedString]struct{} {
	set := make(map[InternedString]struct{}, len(a.Usages))
	for _, u := range a.Usages {
		set[u.Entity.Path] = struct{}{}
	}
	return set
}

// GenerationPathSet returns the set of paths the activity produced.
func (a *Activity) GenerationPathSet() map[InternedString]struct{} {
	set := make(map[InternedString]struct{}, len(a.Generations))
	for _, g := range a.Generations {
		set[g.Entity.Path] = struct{}{}
	}
	return set
}

// SamePathSets reports whether two activities consumed and produced exactly
// the same sets of paths, ignoring checksums and ordering.
func SamePathSets(a, b *Activity) bool {
	return equalPathSets(a.UsagePathSet(), b.UsagePathSet()) &&
		equalPathSets(a.GenerationPathSet(), b.GenerationPathSet())
}

func equalPathSets(a, b map[InternedString]struct{}) bool {
	if len(a) != len(b) {
		return false
	}
	for p := range a {
		if _, ok := b[p]; !ok {
			return false
		}
	}
	return true
}
