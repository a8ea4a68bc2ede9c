package telemetry

import (
	"context"
	"errors"

	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
	"go.trai.ch/deja/internal/core/ports"
)

// Bridge implements sdktrace.SpanProcessor and forwards span boundaries to
// a renderer. A nil renderer turns every callback into a no-op.
type Bridge struct {
	renderer ports.Renderer
}

// NewBridge returns a new Bridge.
func NewBridge(renderer ports.Renderer) *Bridge {
	return &Bridge{renderer: renderer}
}

// OnStart forwards the span opening to the renderer.
func (b *Bridge) OnStart(parent context.Context, s sdktrace.ReadWriteSpan) {
	sc := s.SpanContext()
	if b.renderer == nil || !sc.IsValid() {
		return
	}

	b.renderer.OnStepStart(sc.SpanID().String(), parentSpanID(parent), s.Name(), s.StartTime())
}

// OnEnd forwards the span completion, converting an error status back into
// an error value.
func (b *Bridge) OnEnd(s sdktrace.ReadOnlySpan) {
	sc := s.SpanContext()
	if b.renderer == nil || !sc.IsValid() {
		return
	}

	b.renderer.OnStepComplete(sc.SpanID().String(), s.EndTime(), statusError(s))
}

// ForceFlush does nothing.
func (b *Bridge) ForceFlush(_ context.Context) error {
	return nil
}

// Shutdown does nothing.
func (b *Bridge) Shutdown(_ context.Context) error {
	return nil
}

// parentSpanID extracts the enclosing span's id from ctx, empty when the
// span is a root.
func parentSpanID(ctx context.Context) string {
	if parent := trace.SpanFromContext(ctx); parent.SpanContext().IsValid() {
		return parent.SpanContext().SpanID().String()
	}
	return ""
}

// statusError converts a span's error status into an error value, nil for
// spans that completed cleanly.
func statusError(s sdktrace.ReadOnlySpan) error {
	if s.Status().Code != codes.Error {
		return nil
	}

	desc := s.Status().Description
	if desc == "" {
		desc = "step failed"
	}
	return errors.New(desc)
}
