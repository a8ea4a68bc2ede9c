package ports

import "io"

// BlobStore is content-addressed storage for generated file content, keyed by
// the same checksum the provenance log records. Revert reads prior output
// versions back out of it.
//
//go:generate mockgen -source=blobs.go -destination=mocks/mock_blobs.go -package=mocks
type BlobStore interface {
	// Put stores the content under its checksum. Storing a checksum that is
	// already present is a no-op.
	Put(checksum string, r io.Reader) error

	// Open returns a reader over the stored content.
	// Returns nil, nil if the checksum is not stored.
	Open(checksum string) (io.ReadCloser, error)

	// Has reports whether content for the checksum is stored.
	Has(checksum string) bool
}
