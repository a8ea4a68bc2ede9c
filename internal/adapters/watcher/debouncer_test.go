package watcher_test

import (
	"sync"
	"testing"
	"testing/synctest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/deja/internal/adapters/watcher"
)

// batchRecorder collects the batches a debouncer delivers.
type batchRecorder struct {
	mu      sync.Mutex
	batches [][]string
}

func (r *batchRecorder) deliver(paths []string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.batches = append(r.batches, paths)
}

func (r *batchRecorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.batches)
}

func (r *batchRecorder) last() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.batches) == 0 {
		return nil
	}
	return r.batches[len(r.batches)-1]
}

func TestDebouncer_CoalescesWindow(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		var rec batchRecorder
		d := watcher.NewDebouncer(100*time.Millisecond, rec.deliver)

		// Distinct and repeated events inside one window.
		d.Add("/ws/data/raw.csv")
		d.Add("/ws/data/raw.csv")
		d.Add("/ws/data/clean.csv")
		d.Add("/ws/out/plot.png")
		d.Add("/ws/data/raw.csv")

		time.Sleep(150 * time.Millisecond)
		synctest.Wait()

		require.Equal(t, 1, rec.count())

		// Duplicates collapse via the interned handle set. Order is not
		// guaranteed, the pending set is a map.
		batch := rec.last()
		require.Len(t, batch, 3)
		assert.Contains(t, batch, "/ws/data/raw.csv")
		assert.Contains(t, batch, "/ws/data/clean.csv")
		assert.Contains(t, batch, "/ws/out/plot.png")
	})
}

func TestDebouncer_WindowRestarts(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		var rec batchRecorder
		d := watcher.NewDebouncer(100*time.Millisecond, rec.deliver)

		d.Add("/ws/data/raw.csv")
		time.Sleep(60 * time.Millisecond)
		d.Add("/ws/data/clean.csv")
		time.Sleep(60 * time.Millisecond)

		// 120ms after the first add but only 60ms after the second: the
		// restarted window must still be open.
		synctest.Wait()
		assert.Equal(t, 0, rec.count())

		time.Sleep(50 * time.Millisecond)
		synctest.Wait()

		require.Equal(t, 1, rec.count())
		assert.Len(t, rec.last(), 2)
	})
}

func TestDebouncer_Flush(t *testing.T) {
	t.Run("delivers pending synchronously", func(t *testing.T) {
		var rec batchRecorder
		d := watcher.NewDebouncer(time.Hour, rec.deliver)

		d.Add("/ws/data/raw.csv")
		d.Add("/ws/data/clean.csv")
		d.Flush()

		require.Equal(t, 1, rec.count())
		assert.Len(t, rec.last(), 2)
	})

	t.Run("empty is a no-op", func(t *testing.T) {
		var rec batchRecorder
		d := watcher.NewDebouncer(time.Hour, rec.deliver)

		d.Flush()

		assert.Equal(t, 0, rec.count())
	})

	t.Run("does not replay a delivered batch", func(t *testing.T) {
		synctest.Test(t, func(t *testing.T) {
			var rec batchRecorder
			d := watcher.NewDebouncer(50*time.Millisecond, rec.deliver)

			d.Add("/ws/data/raw.csv")
			time.Sleep(100 * time.Millisecond)
			synctest.Wait()
			require.Equal(t, 1, rec.count())

			d.Flush()
			time.Sleep(100 * time.Millisecond)
			synctest.Wait()

			assert.Equal(t, 1, rec.count())
		})
	})

	t.Run("keeps working afterwards", func(t *testing.T) {
		synctest.Test(t, func(t *testing.T) {
			var rec batchRecorder
			d := watcher.NewDebouncer(50*time.Millisecond, rec.deliver)

			d.Add("/ws/data/raw.csv")
			d.Flush()
			require.Equal(t, 1, rec.count())

			d.Add("/ws/out/plot.png")
			time.Sleep(100 * time.Millisecond)
			synctest.Wait()

			require.Equal(t, 2, rec.count())
			assert.Equal(t, []string{"/ws/out/plot.png"}, rec.last())
		})
	})
}

func TestDebouncer_NilDelivery(t *testing.T) {
	synctest.Test(t, func(_ *testing.T) {
		d := watcher.NewDebouncer(50*time.Millisecond, nil)

		// Must not panic without a consumer.
		d.Add("/ws/data/raw.csv")
		time.Sleep(100 * time.Millisecond)
		synctest.Wait()

		d.Flush()
	})
}
