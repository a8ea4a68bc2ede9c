package watcher

import (
	"io"
	"path/filepath"
	"sync"
	"unique"

	"go.trai.ch/deja/internal/core/ports"
)

var _ ports.Workspace = (*CachedWorkspace)(nil)

// CachedWorkspace decorates a workspace with a checksum cache so repeated
// staleness queries in watch mode only rehash the files named in events.
// The watch loop owns invalidation: every debounced batch is passed to
// Invalidate before the next query runs.
type CachedWorkspace struct {
	ports.Workspace

	mu   sync.RWMutex
	sums map[unique.Handle[string]]string
}

// NewCachedWorkspace wraps ws with checksum caching.
func NewCachedWorkspace(ws ports.Workspace) *CachedWorkspace {
	return &CachedWorkspace{
		Workspace: ws,
		sums:      make(map[unique.Handle[string]]string),
	}
}

// Checksum returns the cached checksum for path, computing and caching it
// on a miss. A missing file caches as the empty checksum, matching what the
// underlying workspace reports.
func (c *CachedWorkspace) Checksum(path string) (string, error) {
	key := unique.Make(path)

	c.mu.RLock()
	sum, ok := c.sums[key]
	c.mu.RUnlock()
	if ok {
		return sum, nil
	}

	sum, err := c.Workspace.Checksum(path)
	if err != nil {
		return "", err
	}

	c.mu.Lock()
	c.sums[key] = sum
	c.mu.Unlock()

	return sum, nil
}

// WriteFile writes through and drops the now stale cache entry for path.
func (c *CachedWorkspace) WriteFile(path string, r io.Reader) error {
	if err := c.Workspace.WriteFile(path, r); err != nil {
		return err
	}
	c.Invalidate([]string{path})
	return nil
}

// Invalidate drops cached checksums for the given paths. Absolute paths,
// as delivered by watch events, are normalized against the workspace root;
// paths outside it are ignored.
func (c *CachedWorkspace) Invalidate(paths []string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, path := range paths {
		rel := path
		if filepath.IsAbs(path) {
			var err error
			rel, err = c.Rel(path)
			if err != nil {
				continue
			}
		}
		delete(c.sums, unique.Make(rel))
	}
}
