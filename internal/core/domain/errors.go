package domain

import "go.trai.ch/zerr"

var (
	// ErrCycleDetected is returned when the activity graph contains a cycle.
	// A cycle means the recorded history is structurally invalid, so every
	// query over the graph fails with it.
	ErrCycleDetected = zerr.New("cycle detected in activity graph")

	// ErrAmbiguousGenerationOrder is returned when two activities generated
	// the same path at the same ended_at timestamp, making the supersession
	// order undecidable.
	ErrAmbiguousGenerationOrder = zerr.New("ambiguous generation order")

	// ErrNoGeneratingActivity is returned when a requested path was never
	// generated by any recorded activity.
	ErrNoGeneratingActivity = zerr.New("path was not generated by any activity")

	// ErrInputDeleted is returned when an activity scheduled for re-execution
	// consumes a path that no longer exists in the workspace.
	ErrInputDeleted = zerr.New("input no longer exists in workspace")

	// ErrExecutionFailed is returned when re-executing a plan command fails.
	ErrExecutionFailed = zerr.New("plan execution failed")

	// ErrUpdateFailed is returned when an update run aborts before all stale
	// outputs were recomputed.
	ErrUpdateFailed = zerr.New("update failed")

	// ErrStaleDetected signals that a status query found stale outputs. The
	// CLI maps it to a non-zero exit status, grep style; it is never a failure.
	ErrStaleDetected = zerr.New("stale outputs detected")

	// ErrPlanNotFound is returned when a requested plan is not recorded.
	ErrPlanNotFound = zerr.New("plan not found")

	// ErrPlanDeleted is returned when an operation targets a soft-deleted plan.
	ErrPlanDeleted = zerr.New("plan has been deleted")

	// ErrPlanReferenced is returned when removing a plan that a valid
	// activity still references.
	ErrPlanReferenced = zerr.New("plan is still referenced by a valid activity")

	// ErrActivityNotFound is returned when a requested activity is not recorded.
	ErrActivityNotFound = zerr.New("activity not found")

	// ErrAmbiguousActivityRef is returned when a short activity id prefix
	// matches more than one recorded activity.
	ErrAmbiguousActivityRef = zerr.New("activity id prefix is ambiguous")

	// ErrActivityAlreadyAdded is returned when the same activity id is added
	// to a graph twice.
	ErrActivityAlreadyAdded = zerr.New("activity already in graph")

	// ErrDuplicateGeneration is returned when appending an activity whose
	// generation collides with an already recorded generation of the same
	// path at the same ended_at timestamp.
	ErrDuplicateGeneration = zerr.New("generation collides with recorded activity")

	// ErrInvalidPlanName is returned when a plan name contains invalid characters.
	ErrInvalidPlanName = zerr.New("plan name can only contain alphanumeric characters, hyphens and underscores")

	// ErrMissingCommand is returned when a plan declares no command to execute.
	ErrMissingCommand = zerr.New("plan has no command")

	// ErrUnboundParameter is returned when a command template references a
	// parameter with no declared default and no value supplied.
	ErrUnboundParameter = zerr.New("parameter has no value")

	// ErrOutputNotProduced is returned when a plan run completes without
	// producing one of its declared outputs.
	ErrOutputNotProduced = zerr.New("declared output was not produced")

	// ErrPathOutsideWorkspace is returned when a declared path escapes the
	// workspace root.
	ErrPathOutsideWorkspace = zerr.New("path is outside workspace root")

	// ErrWorkspaceNotFound is returned when no enclosing workspace marker can
	// be found from the working directory upward.
	ErrWorkspaceNotFound = zerr.New("could not find deja.yaml in this or any parent directory")

	// ErrWorkspaceExists is returned when init runs in an already initialized
	// workspace.
	ErrWorkspaceExists = zerr.New("workspace already initialized")

	// ErrWorkspaceLocked is returned when another process holds the workspace
	// write lock.
	ErrWorkspaceLocked = zerr.New("workspace is locked by another process")

	// ErrConfigReadFailed is returned when the workspace config cannot be read.
	ErrConfigReadFailed = zerr.New("failed to read config file")

	// ErrConfigParseFailed is returned when the workspace config cannot be parsed.
	ErrConfigParseFailed = zerr.New("failed to parse config file")

	// ErrStoreOpenFailed is returned when the provenance database cannot be opened.
	ErrStoreOpenFailed = zerr.New("failed to open provenance store")

	// ErrStoreReadFailed is returned when reading from the provenance store fails.
	ErrStoreReadFailed = zerr.New("failed to read from provenance store")

	// ErrStoreWriteFailed is returned when writing to the provenance store fails.
	ErrStoreWriteFailed = zerr.New("failed to write to provenance store")

	// ErrFileOpenFailed is returned when a workspace file cannot be opened.
	ErrFileOpenFailed = zerr.New("failed to open file")

	// ErrFileHashFailed is returned when checksumming a workspace file fails.
	ErrFileHashFailed = zerr.New("failed to hash file content")

	// ErrPathStatFailed is returned when stating a workspace path fails.
	ErrPathStatFailed = zerr.New("failed to stat path")
)
