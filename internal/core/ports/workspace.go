package ports

import (
	"io"
	"iter"
)

// Workspace resolves paths against the working tree the provenance log was
// recorded in. All paths crossing this interface are workspace-relative with
// forward slashes.
//
//go:generate mockgen -source=workspace.go -destination=mocks/mock_workspace.go -package=mocks
type Workspace interface {
	// Root returns the absolute path of the workspace root.
	Root() string

	// Rel normalizes an absolute or cwd-relative path to a workspace-relative
	// one. It fails with domain.ErrPathOutsideWorkspace when the path escapes
	// the root.
	Rel(path string) (string, error)

	// Exists reports whether the path currently exists in the workspace.
	Exists(path string) bool

	// Checksum returns the content checksum of the file at path.
	// Returns "", nil if the path does not exist.
	Checksum(path string) (string, error)

	// Walk yields the workspace-relative paths of all files under prefix.
	// Internal directories (.deja, version control metadata) are skipped.
	Walk(prefix string) iter.Seq[string]

	// Open opens the file at path for reading.
	Open(path string) (io.ReadCloser, error)

	// WriteFile replaces the content of the file at path, creating parent
	// directories as needed.
	WriteFile(path string, r io.Reader) error

	// Lock acquires the exclusive workspace write lock and returns the
	// release function. It fails with domain.ErrWorkspaceLocked when another
	// process holds the lock.
	Lock() (func() error, error)
}
