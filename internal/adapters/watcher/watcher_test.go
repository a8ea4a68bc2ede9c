package watcher_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.trai.ch/deja/internal/adapters/watcher"
	"go.trai.ch/deja/internal/core/domain"
)

// tempRoot returns a symlink-resolved temp directory, so event paths
// compare equal on platforms where TempDir goes through a symlink.
func tempRoot(t *testing.T) string {
	t.Helper()
	root, err := filepath.EvalSymlinks(t.TempDir())
	require.NoError(t, err)
	return root
}

// startWatcher starts a watcher on root and pumps its change stream into a
// channel the test can select on.
func startWatcher(t *testing.T, root string) (*watcher.Watcher, <-chan string) {
	t.Helper()

	w, err := watcher.NewWatcher(nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = w.Stop() })

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	require.NoError(t, w.Start(ctx, root))

	changes := make(chan string, 100)
	go func() {
		defer close(changes)
		for path := range w.Changes() {
			changes <- path
		}
	}()
	return w, changes
}

// waitForPath drains the stream until target shows up or a deadline hits.
func waitForPath(t *testing.T, changes <-chan string, target string) {
	t.Helper()

	deadline := time.After(2 * time.Second)
	for {
		select {
		case path, ok := <-changes:
			if !ok {
				t.Fatalf("change stream closed before %s arrived", target)
			}
			if path == target {
				return
			}
		case <-deadline:
			t.Fatalf("timeout waiting for %s", target)
		}
	}
}

func TestWatcher_ReportsWrites(t *testing.T) {
	root := tempRoot(t)
	_, changes := startWatcher(t, root)

	target := filepath.Join(root, "data.csv")
	require.NoError(t, os.WriteFile(target, []byte("v1\n"), 0o644))

	waitForPath(t, changes, target)
}

func TestWatcher_ReportsRemovals(t *testing.T) {
	// The file exists before Start, so only the removal produces a change.
	root := tempRoot(t)
	target := filepath.Join(root, "stale.csv")
	require.NoError(t, os.WriteFile(target, []byte("v1\n"), 0o644))

	_, changes := startWatcher(t, root)

	require.NoError(t, os.Remove(target))

	waitForPath(t, changes, target)
}

func TestWatcher_WatchesNewDirectories(t *testing.T) {
	root := tempRoot(t)
	_, changes := startWatcher(t, root)

	sub := filepath.Join(root, "out")
	require.NoError(t, os.Mkdir(sub, 0o755))
	waitForPath(t, changes, sub)

	// Give the watcher a moment to register the new directory.
	time.Sleep(100 * time.Millisecond)

	target := filepath.Join(sub, "plot.png")
	require.NoError(t, os.WriteFile(target, []byte("png\n"), 0o644))
	waitForPath(t, changes, target)
}

func TestWatcher_SkipsStateDirectory(t *testing.T) {
	root := tempRoot(t)
	stateDir := filepath.Join(root, domain.DejaDirName)
	require.NoError(t, os.Mkdir(stateDir, 0o755))

	_, changes := startWatcher(t, root)

	// Writes into the state directory must not produce changes.
	require.NoError(t, os.WriteFile(filepath.Join(stateDir, "provenance.db"), []byte("db\n"), 0o644))

	select {
	case path := <-changes:
		t.Fatalf("unexpected change for state directory: %s", path)
	case <-time.After(300 * time.Millisecond):
	}
}

func TestWatcher_StopEndsStream(t *testing.T) {
	root := tempRoot(t)
	w, changes := startWatcher(t, root)

	require.NoError(t, w.Stop())

	select {
	case _, ok := <-changes:
		if ok {
			// Drain anything that raced in before the close.
			for range changes {
			}
		}
	case <-time.After(2 * time.Second):
		t.Fatal("change stream did not close after Stop")
	}
}
