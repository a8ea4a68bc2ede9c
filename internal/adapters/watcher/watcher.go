// Package watcher implements file system watching for watch mode. Raw
// events are debounced into change batches that invalidate cached checksums
// and trigger a fresh staleness query.
package watcher

import (
	"context"
	"fmt"
	"io/fs"
	"iter"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"go.trai.ch/deja/internal/core/domain"
	"go.trai.ch/deja/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.Watcher = (*Watcher)(nil)

// skipDirectories are directories never watched. The deja state directory
// is excluded so provenance writes do not feed back into the event stream.
var skipDirectories = map[string]bool{
	domain.DejaDirName: true,
	".git":             true,
	".jj":              true,
	"node_modules":     true,
}

const changeChannelBuffer = 100

// Watcher streams changed paths from a recursive fsnotify watch.
type Watcher struct {
	fsw     *fsnotify.Watcher
	logger  ports.Logger
	changes chan string
}

// NewWatcher creates a new file system watcher.
func NewWatcher(logger ports.Logger) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, zerr.Wrap(err, "failed to initialize the file watcher")
	}
	return &Watcher{
		fsw:     fsw,
		logger:  logger,
		changes: make(chan string, changeChannelBuffer),
	}, nil
}

// Start begins watching root and every directory below it.
func (w *Watcher) Start(ctx context.Context, root string) error {
	for dir := range w.directories(root) {
		if err := w.fsw.Add(dir); err != nil {
			return zerr.With(zerr.Wrap(err, "failed to watch directory"), "dir", dir)
		}
	}

	go w.forward(ctx)

	return nil
}

// Stop stops the watcher and releases all resources.
func (w *Watcher) Stop() error {
	return w.fsw.Close()
}

// Changes yields changed paths until the watcher stops or its context is
// canceled.
func (w *Watcher) Changes() iter.Seq[string] {
	return func(yield func(string) bool) {
		for path := range w.changes {
			if !yield(path) {
				return
			}
		}
	}
}

// directories walks the tree under root and yields every watchable
// directory.
func (w *Watcher) directories(root string) iter.Seq[string] {
	return func(yield func(string) bool) {
		_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				// Skip unreadable entries and keep walking.
				return nil //nolint:nilerr
			}
			if !d.IsDir() {
				return nil
			}
			if skipDirectories[d.Name()] {
				return fs.SkipDir
			}
			if !yield(path) {
				return filepath.SkipAll
			}
			return nil
		})
	}
}

// forward pumps fsnotify events into the change stream until ctx ends or
// the underlying watcher closes.
func (w *Watcher) forward(ctx context.Context) {
	defer close(w.changes)

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if !contentChange(event.Op) {
				continue
			}

			select {
			case w.changes <- event.Name:
			case <-ctx.Done():
				return
			}

			// Directories created after Start are not on the watch list
			// yet, pick them up before events inside them are missed.
			if event.Op.Has(fsnotify.Create) {
				w.extend(event.Name)
			}

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			if w.logger != nil {
				w.logger.Warn(fmt.Sprintf("file watcher error: %v", err))
			}
		}
	}
}

// extend adds path and its subtree to the watch list when it turns out to
// be a directory.
func (w *Watcher) extend(path string) {
	info, err := os.Stat(path)
	if err != nil || !info.IsDir() || skipDirectories[info.Name()] {
		return
	}
	for dir := range w.directories(path) {
		_ = w.fsw.Add(dir)
	}
}

// contentChange reports whether the operation can alter file content on
// disk. Chmod-only events are noise for checksumming.
func contentChange(op fsnotify.Op) bool {
	return op.Has(fsnotify.Create) || op.Has(fsnotify.Write) ||
		op.Has(fsnotify.Remove) || op.Has(fsnotify.Rename)
}
