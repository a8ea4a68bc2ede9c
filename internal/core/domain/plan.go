package domain

import "time"

// Plan is the versioned recipe an activity executes: a command template plus
// declared input and output paths. Plans are immutable. Editing a plan
// creates a new version that records its predecessor in DerivedFrom, so old
// activities keep pointing at the exact recipe that produced them.
type Plan struct {
	ID          string            `json:"id"`
	Name        InternedString    `json:"name"`
	Command     []string          `json:"command"`
	Inputs      []string          `json:"inputs"`
	Outputs     []string          `json:"outputs"`
	Parameters  map[string]string `json:"parameters,omitempty"`
	DerivedFrom string            `json:"derived_from,omitempty"`
	CreatedAt   time.Time         `json:"created_at"`

	// DeletedAt is set when the plan is removed. Soft delete only: activities
	// recorded against a deleted plan remain readable.
	DeletedAt time.Time `json:"deleted_at,omitzero"`
}

// Deleted reports whether the plan has been soft-deleted.
func (p *Plan) Deleted() bool {
	return !p.DeletedAt.IsZero()
}

// SameRecipe reports whether two plan versions describe the same command
// template and declared paths. Used to decide whether a run can reuse the
// current head version or must derive a new one.
func (p *Plan) SameRecipe(o *Plan) bool {
	if p.Name != o.Name {
		return false
	}
	if !equalStringSlices(p.Command, o.Command) {
		return false
	}
	if !equalStringSlices(p.Inputs, o.Inputs) {
		return false
	}
	if !equalStringSlices(p.Outputs, o.Outputs) {
		return false
	}
	return equalStringMaps(p.Parameters, o.Parameters)
}

func equalStringMaps(a, b map[string]string) bool {
	if len(a) != len(b) {
		return false
	}
	for k, v := range a {
		if ov, ok := b[k]; !ok || ov != v {
			return false
		}
	}
	return true
}

func equalStringSlices(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// Invocation pairs a plan with the parameter values to execute it with.
// Rerun produces invocations, update and run consume them. Dir is the
// directory the command runs in; empty means the current directory.
type Invocation struct {
	Plan       *Plan
	Parameters map[string]string
	Dir        string
}
