package config

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// FileSystem is the slice of file access the loader needs, so root
// discovery and parsing can run against an in-memory tree in tests.
type FileSystem interface {
	// Stat returns file info for path.
	Stat(path string) (fs.FileInfo, error)
	// ReadFile reads the entire file at path.
	ReadFile(path string) ([]byte, error)
}

// osFS is the real file system.
type osFS struct{}

func (osFS) Stat(path string) (fs.FileInfo, error) { return os.Stat(path) }

func (osFS) ReadFile(path string) ([]byte, error) {
	// #nosec G304 -- path is derived from the discovered workspace root
	return os.ReadFile(path)
}

// MapFS binds an fs.FS to a pretend absolute root, so tests can point the
// loader at an in-memory tree using the absolute paths it works with.
func MapFS(root string, fsys fs.FS) FileSystem {
	return &mapFS{root: root, fsys: fsys}
}

type mapFS struct {
	root string
	fsys fs.FS
}

func (m *mapFS) Stat(path string) (fs.FileInfo, error) {
	return fs.Stat(m.fsys, m.rel(path))
}

func (m *mapFS) ReadFile(path string) ([]byte, error) {
	return fs.ReadFile(m.fsys, m.rel(path))
}

// rel maps an absolute path below the pretend root into the fs.FS
// namespace. Paths outside the root pass through unchanged and fail
// downstream with a not-found error.
func (m *mapFS) rel(path string) string {
	if !filepath.IsAbs(path) {
		return path
	}
	if path == m.root {
		return "."
	}

	prefix := strings.TrimSuffix(m.root, "/") + string(filepath.Separator)
	if !strings.HasPrefix(path, prefix) {
		return path
	}

	rel := strings.TrimPrefix(path, prefix)
	if rel == "" {
		return "."
	}
	return rel
}
