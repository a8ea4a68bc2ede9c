package ports

import (
	"context"
	"io"

	"go.trai.ch/deja/internal/core/domain"
)

// Executor defines the interface for executing plan invocations.
//
//go:generate mockgen -source=executor.go -destination=mocks/mock_executor.go -package=mocks
type Executor interface {
	// Execute renders the invocation's command template with its parameter
	// values and runs it in the invocation's directory.
	//
	// The env parameter contains environment variables in "KEY=VALUE" format.
	// Process output is streamed to stdout and stderr as it is produced.
	//
	// It returns domain.ErrExecutionFailed when the process exits non-zero.
	Execute(ctx context.Context, invocation *domain.Invocation, env []string, stdout, stderr io.Writer) error
}
