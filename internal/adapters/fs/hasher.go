package fs

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	iofs "io/fs"
	"os"

	"github.com/cespare/xxhash/v2"
	"go.trai.ch/deja/internal/core/domain"
	"go.trai.ch/zerr"
)

// Checksum returns the content checksum of the path as 16 hex digits of
// xxhash64. A directory checksums to a digest over its file tree. A missing
// path checksums to "".
func (w *Workspace) Checksum(path string) (string, error) {
	abs := w.abs(path)

	info, err := os.Stat(abs)
	if errors.Is(err, iofs.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", zerr.With(errors.Join(domain.ErrPathStatFailed, err), "path", path)
	}

	digest := xxhash.New()
	if info.IsDir() {
		if err := w.hashTree(path, digest); err != nil {
			return "", err
		}
	} else if err := hashContent(abs, path, digest); err != nil {
		return "", err
	}

	return fmt.Sprintf("%016x", digest.Sum64()), nil
}

// hashTree feeds every file under the workspace-relative prefix into the
// digest as (relative path, content hash) pairs. The walk order is the
// walker's lexical order, so equal trees produce equal digests.
func (w *Workspace) hashTree(prefix string, digest *xxhash.Digest) error {
	for rel := range w.Walk(prefix) {
		_, _ = digest.WriteString(rel)
		_, _ = digest.Write([]byte{0})

		fileDigest := xxhash.New()
		if err := hashContent(w.abs(rel), rel, fileDigest); err != nil {
			return err
		}
		if err := binary.Write(digest, binary.LittleEndian, fileDigest.Sum64()); err != nil {
			return zerr.Wrap(err, "failed to write hash to digest")
		}
	}
	return nil
}

func hashContent(abs, path string, digest io.Writer) error {
	f, err := os.Open(abs) //nolint:gosec // Path is resolved against the workspace root
	if err != nil {
		return zerr.With(errors.Join(domain.ErrFileOpenFailed, err), "path", path)
	}
	defer f.Close() //nolint:errcheck // Best effort close in defer

	if _, err := io.Copy(digest, f); err != nil {
		return zerr.With(errors.Join(domain.ErrFileHashFailed, err), "path", path)
	}
	return nil
}
