package domain

import "slices"

// PathSet is a set of workspace-relative paths.
type PathSet map[InternedString]struct{}

// NewPathSet creates a set from the given paths.
func NewPathSet(paths ...string) PathSet {
	s := make(PathSet, len(paths))
	for _, p := range paths {
		s.Add(NewInternedString(p))
	}
	return s
}

// Add inserts a path into the set.
func (s PathSet) Add(p InternedString) {
	s[p] = struct{}{}
}

// Contains reports whether the set holds the path.
func (s PathSet) Contains(p InternedString) bool {
	_, ok := s[p]
	return ok
}

// Sorted returns the paths in lexicographic order.
func (s PathSet) Sorted() []string {
	res := make([]string, 0, len(s))
	for p := range s {
		res = append(res, p.String())
	}
	slices.Sort(res)
	return res
}

// ActivityEntity pairs an activity with one of its recorded entities. The
// change detector emits these for entities whose workspace state diverged
// from the recorded checksum.
type ActivityEntity struct {
	Activity *Activity
	Entity   Entity
}

// ChangeSet is the change detector's result: recorded inputs whose content
// changed, and recorded paths that no longer exist.
type ChangeSet struct {
	Modified []ActivityEntity
	Deleted  []ActivityEntity
}

// Empty reports whether nothing changed.
func (c *ChangeSet) Empty() bool {
	return len(c.Modified) == 0 && len(c.Deleted) == 0
}

// ModifiedPaths returns the distinct paths behind the modified entries.
func (c *ChangeSet) ModifiedPaths() PathSet {
	s := make(PathSet, len(c.Modified))
	for _, ae := range c.Modified {
		s.Add(ae.Entity.Path)
	}
	return s
}

// DeletedPaths returns the distinct paths behind the deleted entries.
func (c *ChangeSet) DeletedPaths() PathSet {
	s := make(PathSet, len(c.Deleted))
	for _, ae := range c.Deleted {
		s.Add(ae.Entity.Path)
	}
	return s
}

// StatusReport is the structured answer to "what is stale". Keys and values
// are paths except StaleActivities, which is keyed by activity id because the
// affected activities generated nothing that could name them.
type StatusReport struct {
	// StaleOutputs maps each outdated generated path to the changed input
	// paths that made it outdated.
	StaleOutputs map[InternedString]PathSet

	// StaleActivities maps activities without generations, downstream of a
	// change, to the changed input paths that affect them.
	StaleActivities map[string]PathSet

	// ModifiedInputs are recorded input paths whose content changed.
	ModifiedInputs PathSet

	// DeletedInputs are recorded paths that no longer exist in the workspace.
	DeletedInputs PathSet
}

// NewStatusReport creates an empty report.
func NewStatusReport() *StatusReport {
	return &StatusReport{
		StaleOutputs:    make(map[InternedString]PathSet),
		StaleActivities: make(map[string]PathSet),
		ModifiedInputs:  make(PathSet),
		DeletedInputs:   make(PathSet),
	}
}

// Clean reports whether nothing is stale.
func (r *StatusReport) Clean() bool {
	return len(r.StaleOutputs) == 0 &&
		len(r.StaleActivities) == 0 &&
		len(r.ModifiedInputs) == 0 &&
		len(r.DeletedInputs) == 0
}

// SortedStaleOutputs returns the stale output paths in lexicographic order.
func (r *StatusReport) SortedStaleOutputs() []string {
	res := make([]string, 0, len(r.StaleOutputs))
	for p := range r.StaleOutputs {
		res = append(res, p.String())
	}
	slices.Sort(res)
	return res
}

// SortedStaleActivities returns the ids of stale activities without outputs
// in lexicographic order.
func (r *StatusReport) SortedStaleActivities() []string {
	res := make([]string, 0, len(r.StaleActivities))
	for id := range r.StaleActivities {
		res = append(res, id)
	}
	slices.Sort(res)
	return res
}

// RerunReport is the structured answer to "what must be re-executed". The
// invocations are in execution order. Missing lists requested target paths
// that no recorded activity ever generated; they are warnings, not failures.
type RerunReport struct {
	Invocations []Invocation
	Missing     []string
}

// Empty reports whether there is nothing to re-execute.
func (r *RerunReport) Empty() bool {
	return len(r.Invocations) == 0
}

// UpdateResult describes one successfully recomputed activity.
type UpdateResult struct {
	PlanName   InternedString
	ActivityID string
	Outputs    []string
}

// UpdateSkip describes a stale activity that update left alone because one
// of its inputs no longer exists.
type UpdateSkip struct {
	PlanName      InternedString
	ActivityID    string
	MissingInputs []string
}

// UpdateReport summarizes an update run.
type UpdateReport struct {
	Executed []UpdateResult
	Skipped  []UpdateSkip
}

// Empty reports whether the update had nothing to do.
func (r *UpdateReport) Empty() bool {
	return len(r.Executed) == 0 && len(r.Skipped) == 0
}
