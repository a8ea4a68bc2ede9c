// Package cas implements content-addressed storage for generated file
// content, keyed by the checksum the provenance log records. Revert restores
// prior output versions from it.
package cas

import (
	"errors"
	"io"
	iofs "io/fs"
	"os"
	"path/filepath"

	"go.trai.ch/deja/internal/core/domain"
	"go.trai.ch/deja/internal/core/ports"
	"go.trai.ch/zerr"
)

// Store keeps one file per checksum under a sharded directory tree.
type Store struct {
	dir string
}

// NewStore creates a blob store rooted at the given directory. The directory
// is created lazily on the first Put.
func NewStore(dir string) *Store {
	return &Store{dir: filepath.Clean(dir)}
}

func (s *Store) blobPath(checksum string) string {
	if len(checksum) < 3 {
		return filepath.Join(s.dir, checksum)
	}
	return filepath.Join(s.dir, checksum[:2], checksum[2:])
}

// Has reports whether content for the checksum is stored.
func (s *Store) Has(checksum string) bool {
	if checksum == "" {
		return false
	}
	_, err := os.Stat(s.blobPath(checksum))
	return err == nil
}

// Put stores the content under its checksum. Storing an already present
// checksum is a no-op. The blob is written to a temporary file first and
// renamed into place, so readers never observe partial content.
func (s *Store) Put(checksum string, r io.Reader) error {
	if checksum == "" {
		return zerr.New("cannot store blob without checksum")
	}
	if s.Has(checksum) {
		return nil
	}

	target := s.blobPath(checksum)
	if err := os.MkdirAll(filepath.Dir(target), domain.DirPerm); err != nil {
		return zerr.Wrap(err, "failed to create blob directory")
	}

	tmp, err := os.CreateTemp(s.dir, "blob-*")
	if err != nil {
		return zerr.Wrap(err, "failed to create temporary blob")
	}
	if _, err := io.Copy(tmp, r); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return zerr.With(zerr.Wrap(err, "failed to write blob"), "checksum", checksum)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return zerr.With(zerr.Wrap(err, "failed to write blob"), "checksum", checksum)
	}

	if err := os.Rename(tmp.Name(), target); err != nil {
		_ = os.Remove(tmp.Name())
		return zerr.With(zerr.Wrap(err, "failed to store blob"), "checksum", checksum)
	}
	return nil
}

// Open returns a reader over the stored content, or nil, nil when the
// checksum is not stored.
func (s *Store) Open(checksum string) (io.ReadCloser, error) {
	f, err := os.Open(s.blobPath(checksum)) //nolint:gosec // Path is derived from the store root and a hex checksum
	if errors.Is(err, iofs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, "failed to open blob"), "checksum", checksum)
	}
	return f, nil
}

var _ ports.BlobStore = (*Store)(nil)
