// Package fs implements the workspace accessor on the local file system.
package fs

import (
	"errors"
	"io"
	iofs "io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"go.trai.ch/deja/internal/core/domain"
	"go.trai.ch/deja/internal/core/ports"
	"go.trai.ch/zerr"
)

// Workspace resolves and inspects paths under a single workspace root. All
// paths it accepts and returns are workspace-relative with forward slashes;
// Rel is the entry point for everything else.
type Workspace struct {
	root     string
	settings *domain.Settings
}

// NewWorkspace creates a workspace accessor rooted at the given directory.
func NewWorkspace(root string, settings *domain.Settings) (*Workspace, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, "failed to resolve workspace root"), "root", root)
	}
	if settings == nil {
		settings = &domain.Settings{}
	}
	return &Workspace{root: abs, settings: settings}, nil
}

// Root returns the absolute path of the workspace root.
func (w *Workspace) Root() string {
	return w.root
}

func (w *Workspace) abs(path string) string {
	return filepath.Join(w.root, filepath.FromSlash(path))
}

// Rel normalizes an absolute or cwd-relative path to a workspace-relative one.
func (w *Workspace) Rel(path string) (string, error) {
	abs := path
	if !filepath.IsAbs(abs) {
		cwd, err := os.Getwd()
		if err != nil {
			return "", zerr.Wrap(err, "failed to resolve working directory")
		}
		abs = filepath.Join(cwd, abs)
	}

	rel, err := filepath.Rel(w.root, abs)
	if err != nil {
		return "", zerr.With(domain.ErrPathOutsideWorkspace, "path", path)
	}
	rel = filepath.ToSlash(rel)
	if rel == ".." || strings.HasPrefix(rel, "../") {
		return "", zerr.With(domain.ErrPathOutsideWorkspace, "path", path)
	}
	return rel, nil
}

// Exists reports whether the path currently exists in the workspace.
func (w *Workspace) Exists(path string) bool {
	_, err := os.Stat(w.abs(path))
	return err == nil
}

// Open opens the file at path for reading.
func (w *Workspace) Open(path string) (io.ReadCloser, error) {
	f, err := os.Open(w.abs(path)) //nolint:gosec // Path is resolved against the workspace root
	if err != nil {
		return nil, zerr.With(errors.Join(domain.ErrFileOpenFailed, err), "path", path)
	}
	return f, nil
}

// WriteFile replaces the content of the file at path, creating parent
// directories as needed.
func (w *Workspace) WriteFile(path string, r io.Reader) error {
	abs := w.abs(path)
	if err := os.MkdirAll(filepath.Dir(abs), domain.DirPerm); err != nil {
		return zerr.With(zerr.Wrap(err, "failed to create parent directory"), "path", path)
	}

	f, err := os.OpenFile(abs, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, domain.FilePerm) //nolint:gosec // Path is resolved against the workspace root
	if err != nil {
		return zerr.With(errors.Join(domain.ErrFileOpenFailed, err), "path", path)
	}
	if _, err := io.Copy(f, r); err != nil {
		_ = f.Close()
		return zerr.With(zerr.Wrap(err, "failed to write file"), "path", path)
	}
	if err := f.Close(); err != nil {
		return zerr.With(zerr.Wrap(err, "failed to write file"), "path", path)
	}
	return nil
}

// Lock acquires the exclusive workspace write lock. The lock is the existence
// of the lock file; creation with O_EXCL makes acquisition atomic.
func (w *Workspace) Lock() (func() error, error) {
	lockPath := filepath.Join(w.root, domain.DefaultLockPath())
	if err := os.MkdirAll(filepath.Dir(lockPath), domain.DirPerm); err != nil {
		return nil, zerr.Wrap(err, "failed to create metadata directory")
	}

	f, err := os.OpenFile(lockPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, domain.PrivateFilePerm) //nolint:gosec // Path is under the workspace metadata directory
	if err != nil {
		if errors.Is(err, iofs.ErrExist) {
			return nil, zerr.With(domain.ErrWorkspaceLocked, "path", lockPath)
		}
		return nil, zerr.Wrap(err, "failed to acquire workspace lock")
	}
	_, _ = f.WriteString(strconv.Itoa(os.Getpid()) + "\n")
	_ = f.Close()

	return func() error {
		if err := os.Remove(lockPath); err != nil {
			return zerr.Wrap(err, "failed to release workspace lock")
		}
		return nil
	}, nil
}

var _ ports.Workspace = (*Workspace)(nil)
