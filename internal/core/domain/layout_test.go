package domain_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.trai.ch/deja/internal/core/domain"
)

// Every piece of deja state lives under the workspace metadata directory.
func TestLayoutPaths(t *testing.T) {
	assert.Equal(t, ".deja", domain.DefaultDejaPath())
	assert.Equal(t, filepath.Join(".deja", "provenance.db"), domain.DefaultDatabasePath())
	assert.Equal(t, filepath.Join(".deja", "blobs"), domain.DefaultBlobsPath())
	assert.Equal(t, filepath.Join(".deja", "LOCK"), domain.DefaultLockPath())
	assert.Equal(t, filepath.Join(".deja", "debug.log"), domain.DefaultDebugLogPath())
}
