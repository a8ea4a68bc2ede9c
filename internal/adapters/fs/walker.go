package fs

import (
	iofs "io/fs"
	"iter"
	"path/filepath"

	"go.trai.ch/deja/internal/core/domain"
)

// internalDirs never count as workspace content.
var internalDirs = map[string]struct{}{
	domain.DejaDirName: {},
	".git":             {},
	".jj":              {},
}

// Walk yields the workspace-relative paths of all files under prefix, in
// lexical order. Internal directories and configured ignore prefixes are
// skipped. An empty prefix walks the whole workspace.
func (w *Workspace) Walk(prefix string) iter.Seq[string] {
	start := w.root
	if prefix != "" {
		start = w.abs(prefix)
	}

	return func(yield func(string) bool) {
		_ = filepath.WalkDir(start, func(path string, d iofs.DirEntry, err error) error {
			if err != nil {
				// unreadable entries are skipped, not fatal
				return nil
			}

			rel, relErr := filepath.Rel(w.root, path)
			if relErr != nil {
				return nil
			}
			rel = filepath.ToSlash(rel)

			if d.IsDir() {
				if path == start {
					return nil
				}
				if _, internal := internalDirs[d.Name()]; internal {
					return filepath.SkipDir
				}
				if w.settings.Ignored(rel) {
					return filepath.SkipDir
				}
				return nil
			}

			if w.settings.Ignored(rel) {
				return nil
			}
			if !yield(rel) {
				return filepath.SkipAll
			}
			return nil
		})
	}
}
