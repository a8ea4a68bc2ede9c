package ports

import (
	"context"
	"time"
)

// Renderer is the abstraction for execution progress output.
// It decouples telemetry collection from presentation logic, so the same
// event stream can drive interactive output or linear CI logs.
//
//go:generate mockgen -source=renderer.go -destination=mocks/mock_renderer.go -package=mocks
type Renderer interface {
	// Start initializes the renderer and begins its lifecycle.
	// Asynchronous renderers may launch background goroutines here.
	Start(ctx context.Context) error

	// Stop signals the renderer to stop accepting new events and prepare for
	// shutdown. It should flush any buffered output.
	Stop() error

	// Wait blocks until the renderer has fully terminated.
	// For synchronous renderers, this may return immediately.
	Wait() error

	// OnQueueEmit is called when the engine has computed the execution queue.
	// steps: the plan names to execute, in execution order
	// targets: the user-requested target paths, empty for a full update
	OnQueueEmit(steps, targets []string)

	// OnStepStart is called when a plan execution begins.
	// spanID: unique identifier for this execution
	// parentID: spanID of the enclosing span (empty if root)
	// name: the plan name
	// startTime: when the execution started
	OnStepStart(spanID, parentID, name string, startTime time.Time)

	// OnStepLog is called when an execution emits output.
	// spanID: identifier for the execution
	// data: raw log bytes (may contain partial lines or ANSI sequences)
	OnStepLog(spanID string, data []byte)

	// OnStepComplete is called when a plan execution finishes.
	// spanID: identifier for the execution
	// endTime: when the execution completed
	// err: nil if successful, error otherwise
	OnStepComplete(spanID string, endTime time.Time, err error)
}
