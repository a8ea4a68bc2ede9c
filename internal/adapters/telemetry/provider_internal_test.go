package telemetry

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type discardRenderer struct{}

func (discardRenderer) Start(context.Context) error                   { return nil }
func (discardRenderer) Stop() error                                   { return nil }
func (discardRenderer) Wait() error                                   { return nil }
func (discardRenderer) OnQueueEmit(_, _ []string)                     {}
func (discardRenderer) OnStepStart(_, _, _ string, _ time.Time)       {}
func (discardRenderer) OnStepLog(_ string, _ []byte)                  {}
func (discardRenderer) OnStepComplete(_ string, _ time.Time, _ error) {}

// Batching only pays off when someone consumes the relay, so spans started
// without a renderer must write straight to the span instead.
func TestStart_BatcherRequiresRenderer(t *testing.T) {
	tracer := NewOTelTracer("deja")
	defer func() { _ = tracer.Shutdown(context.Background()) }()

	_, bare := tracer.Start(context.Background(), "render")
	span, ok := bare.(*OTelSpan)
	require.True(t, ok)
	assert.Nil(t, span.batcher)
	bare.End()

	tracer.WithRenderer(discardRenderer{})

	_, fed := tracer.Start(context.Background(), "render")
	span, ok = fed.(*OTelSpan)
	require.True(t, ok)
	assert.NotNil(t, span.batcher)
	fed.End()
}
