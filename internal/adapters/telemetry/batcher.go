package telemetry

import (
	"bytes"
	"errors"
	"sync"
	"time"
)

const (
	// defaultBatchSize is the buffer size that forces a flush when a limit
	// of zero is given.
	defaultBatchSize = 4096
	// defaultFlushInterval is the flush interval used when a limit of zero
	// is given.
	defaultFlushInterval = 50 * time.Millisecond
)

var errBatcherClosed = errors.New("output batcher is closed")

// batcher coalesces span output until a size or time limit is reached, then
// hands the accumulated bytes to the flush callback. Safe for concurrent
// use.
type batcher struct {
	size     int
	interval time.Duration
	emit     func([]byte)

	mu     sync.Mutex
	buf    bytes.Buffer
	ticker *time.Ticker
	stop   chan struct{}
	closed bool
}

// newBatcher starts a batcher emitting at size bytes or every interval,
// whichever comes first. Zero limits pick the defaults. Call Close to stop
// the background ticker.
func newBatcher(size int, interval time.Duration, emit func([]byte)) *batcher {
	if size <= 0 {
		size = defaultBatchSize
	}
	if interval <= 0 {
		interval = defaultFlushInterval
	}

	b := &batcher{
		size:     size,
		interval: interval,
		emit:     emit,
		ticker:   time.NewTicker(interval),
		stop:     make(chan struct{}),
	}
	go b.loop()
	return b
}

func (b *batcher) loop() {
	for {
		select {
		case <-b.ticker.C:
			b.Flush()
		case <-b.stop:
			b.ticker.Stop()
			return
		}
	}
}

// Write appends p to the pending batch, emitting once the size limit is
// reached.
func (b *batcher) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return 0, errBatcherClosed
	}

	n, err := b.buf.Write(p)
	if err != nil {
		return n, err
	}

	if b.buf.Len() >= b.size {
		b.emitLocked()
		// Restart the interval so a size flush is not followed by an
		// immediate time flush.
		b.ticker.Reset(b.interval)
	}
	return n, nil
}

// Flush hands any pending bytes to the callback.
func (b *batcher) Flush() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}
	b.emitLocked()
}

// Close stops the background flusher after a final flush. Writes after
// Close fail.
func (b *batcher) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil
	}
	b.closed = true
	close(b.stop)
	b.emitLocked()
	return nil
}

// emitLocked must be called with mu held. The callback runs under the lock
// to keep batches ordered, so it must not block.
func (b *batcher) emitLocked() {
	if b.buf.Len() == 0 {
		return
	}

	batch := make([]byte, b.buf.Len())
	copy(batch, b.buf.Bytes())
	b.buf.Reset()

	if b.emit != nil {
		b.emit(batch)
	}
}
