// Package telemetry implements the tracing port on OpenTelemetry and feeds
// span lifecycles to a renderer. The bridge forwards span boundaries, the
// tracer batches process output per span and relays it on a single channel
// so renderer calls stay ordered.
package telemetry

import (
	"context"
	"fmt"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.trai.ch/deja/internal/core/ports"
)

// relayBufferSize is the capacity of the async output channel. Bursts
// beyond it drop rather than stall the running plan.
const relayBufferSize = 4096

// spanOutput carries one batch of process output from a span to the
// renderer.
type spanOutput struct {
	spanID string
	data   []byte
}

// OTelTracer implements ports.Tracer on OpenTelemetry.
type OTelTracer struct {
	tracer trace.Tracer
	relay  chan spanOutput
	done   chan struct{}

	mu       sync.RWMutex
	renderer ports.Renderer
}

// NewOTelTracer creates a tracer with the given instrumentation name.
func NewOTelTracer(name string) *OTelTracer {
	t := &OTelTracer{
		tracer: otel.Tracer(name),
		relay:  make(chan spanOutput, relayBufferSize),
		done:   make(chan struct{}),
	}
	go t.run()
	return t
}

// WithRenderer attaches the renderer that receives step output.
func (t *OTelTracer) WithRenderer(r ports.Renderer) *OTelTracer {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.renderer = r
	return t
}

func (t *OTelTracer) current() ports.Renderer {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.renderer
}

func (t *OTelTracer) run() {
	defer close(t.done)
	for entry := range t.relay {
		if r := t.current(); r != nil {
			r.OnStepLog(entry.spanID, entry.data)
		}
	}
}

// Shutdown stops the background relay and waits for queued output to reach
// the renderer.
func (t *OTelTracer) Shutdown(ctx context.Context) error {
	close(t.relay)
	select {
	case <-t.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Start creates a new span. With a renderer attached the span gets an
// output batcher feeding the relay channel.
func (t *OTelTracer) Start(ctx context.Context, name string, opts ...ports.SpanOption) (context.Context, ports.Span) {
	cfg := &ports.SpanConfig{}
	for _, opt := range opts {
		opt(cfg)
	}

	attrs := make([]attribute.KeyValue, 0, len(cfg.Attributes))
	for key, value := range cfg.Attributes {
		attrs = append(attrs, toAttribute(key, value))
	}
	ctx, span := t.tracer.Start(ctx, name, trace.WithAttributes(attrs...))

	var b *batcher
	if t.current() != nil {
		spanID := span.SpanContext().SpanID().String()
		b = newBatcher(0, 0, func(data []byte) {
			select {
			case t.relay <- spanOutput{spanID: spanID, data: data}:
			default:
			}
		})
	}

	return ctx, &OTelSpan{span: span, batcher: b}
}

// EmitQueue records the computed execution queue as an event on the current
// span and announces it to the renderer.
func (t *OTelTracer) EmitQueue(ctx context.Context, steps, targets []string) {
	span := trace.SpanFromContext(ctx)
	if span.IsRecording() {
		span.AddEvent("queue_emitted", trace.WithAttributes(
			attribute.StringSlice("steps", steps),
			attribute.StringSlice("targets", targets),
		))
	}

	if r := t.current(); r != nil {
		r.OnQueueEmit(steps, targets)
	}
}

// OTelSpan implements ports.Span on an OpenTelemetry span.
type OTelSpan struct {
	span    trace.Span
	batcher *batcher
}

// End flushes pending output and completes the span.
func (s *OTelSpan) End() {
	if s.batcher != nil {
		_ = s.batcher.Close()
	}
	s.span.End()
}

// RecordError records an error and marks the span failed.
func (s *OTelSpan) RecordError(err error) {
	s.span.RecordError(err)
	s.span.SetStatus(codes.Error, err.Error())
}

// SetAttribute adds a key-value pair to the span.
func (s *OTelSpan) SetAttribute(key string, value any) {
	s.span.SetAttributes(toAttribute(key, value))
}

// toAttribute maps a dynamically typed value onto the closest OTel
// attribute type, falling back to its printed form.
func toAttribute(key string, value any) attribute.KeyValue {
	switch v := value.(type) {
	case string:
		return attribute.String(key, v)
	case int:
		return attribute.Int(key, v)
	case int64:
		return attribute.Int64(key, v)
	case float64:
		return attribute.Float64(key, v)
	case bool:
		return attribute.Bool(key, v)
	case []string:
		return attribute.StringSlice(key, v)
	default:
		return attribute.String(key, fmt.Sprint(v))
	}
}

// Write attaches process output to the span. With a renderer attached the
// bytes go through the batcher, otherwise they become a span event.
func (s *OTelSpan) Write(p []byte) (n int, err error) {
	if s.batcher != nil {
		return s.batcher.Write(p)
	}
	s.span.AddEvent("log", trace.WithAttributes(attribute.String("message", string(p))))
	return len(p), nil
}
