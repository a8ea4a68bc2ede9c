package ports

import (
	"context"
	"io"
)

// SpanConfig holds configuration applied by SpanOptions.
type SpanConfig struct {
	Attributes map[string]any
}

// SpanOption configures a span at creation time.
type SpanOption func(*SpanConfig)

// WithAttribute attaches a key-value pair to the span at creation time.
func WithAttribute(key string, value any) SpanOption {
	return func(c *SpanConfig) {
		if c.Attributes == nil {
			c.Attributes = make(map[string]any)
		}
		c.Attributes[key] = value
	}
}

// Tracer creates spans around engine operations and plan executions. The
// telemetry adapter bridges finished spans to the active Renderer.
//
//go:generate mockgen -source=tracer.go -destination=mocks/mock_tracer.go -package=mocks
type Tracer interface {
	// Start creates a new span. The returned context carries the span so
	// nested operations attach as children.
	Start(ctx context.Context, name string, opts ...SpanOption) (context.Context, Span)

	// EmitQueue announces the computed execution queue before the first
	// step runs. targets carries the paths the caller asked for, empty for
	// a full update.
	EmitQueue(ctx context.Context, steps, targets []string)

	// Shutdown flushes and stops the tracer.
	Shutdown(ctx context.Context) error
}

// Span is one traced operation. It implements io.Writer so process output
// can be attached to the span that produced it.
type Span interface {
	io.Writer

	// End completes the span.
	End()

	// RecordError records an error and marks the span failed.
	RecordError(err error)

	// SetAttribute adds a key-value pair to the span.
	SetAttribute(key string, value any)
}
