package telemetry_test

import (
	"context"
	"sync"
	"time"
)

// captureRenderer records every renderer callback it receives so tests can
// assert on the event stream. All accessors are safe to call while the
// tracer's relay goroutine is still delivering.
type captureRenderer struct {
	mu         sync.Mutex
	queues     [][]string
	queueDests [][]string
	started    []string
	names      map[string]string
	parents    map[string]string
	output     map[string][]byte
	done       map[string]error
}

func newCaptureRenderer() *captureRenderer {
	return &captureRenderer{
		names:   make(map[string]string),
		parents: make(map[string]string),
		output:  make(map[string][]byte),
		done:    make(map[string]error),
	}
}

func (c *captureRenderer) Start(context.Context) error { return nil }
func (c *captureRenderer) Stop() error                 { return nil }
func (c *captureRenderer) Wait() error                 { return nil }

func (c *captureRenderer) OnQueueEmit(steps, targets []string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.queues = append(c.queues, steps)
	c.queueDests = append(c.queueDests, targets)
}

func (c *captureRenderer) OnStepStart(spanID, parentID, name string, _ time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.started = append(c.started, spanID)
	c.names[spanID] = name
	c.parents[spanID] = parentID
}

func (c *captureRenderer) OnStepLog(spanID string, data []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.output[spanID] = append(c.output[spanID], data...)
}

func (c *captureRenderer) OnStepComplete(spanID string, _ time.Time, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.done[spanID] = err
}

func (c *captureRenderer) lastQueue() (steps, targets []string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.queues) == 0 {
		return nil, nil
	}
	return c.queues[len(c.queues)-1], c.queueDests[len(c.queueDests)-1]
}

func (c *captureRenderer) queueCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.queues)
}

func (c *captureRenderer) startCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.started)
}

func (c *captureRenderer) name(spanID string) string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.names[spanID]
}

func (c *captureRenderer) parent(spanID string) string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.parents[spanID]
}

// allOutput concatenates the log bytes of every span, for tests that do not
// know the span ids the tracer generated.
func (c *captureRenderer) allOutput() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	var buf []byte
	for _, data := range c.output {
		buf = append(buf, data...)
	}
	return string(buf)
}

func (c *captureRenderer) completions() map[string]error {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make(map[string]error, len(c.done))
	for id, err := range c.done {
		out[id] = err
	}
	return out
}
