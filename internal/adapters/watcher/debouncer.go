package watcher

import (
	"sync"
	"time"
	"unique"
)

// DefaultDebounceWindow is the default window for coalescing file events.
const DefaultDebounceWindow = 50 * time.Millisecond

// Debouncer coalesces rapid file system events into one batched delivery.
// Editors and build tools emit several events per save; one batch means one
// checksum invalidation and one status refresh.
type Debouncer struct {
	window  time.Duration
	deliver func(paths []string)

	mu      sync.Mutex
	pending map[unique.Handle[string]]struct{}
	timer   *time.Timer
}

// NewDebouncer creates a debouncer that collects paths until window passes
// without a new event, then hands the batch to deliver.
func NewDebouncer(window time.Duration, deliver func(paths []string)) *Debouncer {
	return &Debouncer{
		window:  window,
		deliver: deliver,
		pending: make(map[unique.Handle[string]]struct{}),
	}
}

// Add records a changed path and restarts the window. Paths are interned,
// so repeated events for the same file collapse into one entry.
func (d *Debouncer) Add(path string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.pending[unique.Make(path)] = struct{}{}

	if d.timer == nil {
		d.timer = time.AfterFunc(d.window, d.expire)
		return
	}
	d.timer.Reset(d.window)
}

// expire delivers the batch once the window has passed without new events.
func (d *Debouncer) expire() {
	d.mu.Lock()
	paths := d.take()
	d.mu.Unlock()

	// Delivery happens off the lock and off the timer goroutine so a slow
	// consumer cannot stall Add.
	if len(paths) > 0 && d.deliver != nil {
		go d.deliver(paths)
	}
}

// Flush delivers all pending paths now and blocks until the consumer
// returns. Shutdown paths use it so no batch is lost.
func (d *Debouncer) Flush() {
	d.mu.Lock()
	if d.timer != nil && !d.timer.Stop() {
		// The window just expired, let that delivery take the batch.
		d.mu.Unlock()
		return
	}
	paths := d.take()
	d.mu.Unlock()

	if len(paths) > 0 && d.deliver != nil {
		d.deliver(paths)
	}
}

// take empties the pending set. The caller holds mu.
func (d *Debouncer) take() []string {
	paths := make([]string, 0, len(d.pending))
	for handle := range d.pending {
		paths = append(paths, handle.Value())
	}
	clear(d.pending)
	return paths
}
