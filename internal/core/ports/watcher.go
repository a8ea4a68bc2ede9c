package ports

import (
	"context"
	"iter"
)

// Watcher streams workspace file changes for watch mode. The stream carries
// paths only: the status query re-checksums whatever changed, so the kind
// of change adds no information (a deletion simply checksums to nothing).
//
//go:generate mockgen -source=watcher.go -destination=mocks/mock_watcher.go -package=mocks
type Watcher interface {
	// Start begins watching root and every directory below it.
	Start(ctx context.Context, root string) error

	// Stop ends the watch and releases all resources.
	Stop() error

	// Changes yields the absolute path of every file system change until
	// the watcher stops.
	Changes() iter.Seq[string]
}
