package cas_test

import (
	"io"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/deja/internal/adapters/cas"
)

func TestStore_PutOpenRoundTrip(t *testing.T) {
	store := cas.NewStore(filepath.Join(t.TempDir(), "objects"))

	require.NoError(t, store.Put("ab12cd34ef56ab78", strings.NewReader("generated content")))
	assert.True(t, store.Has("ab12cd34ef56ab78"))

	r, err := store.Open("ab12cd34ef56ab78")
	require.NoError(t, err)
	require.NotNil(t, r)
	content, err := io.ReadAll(r)
	require.NoError(t, err)
	require.NoError(t, r.Close())
	assert.Equal(t, "generated content", string(content))
}

func TestStore_PutIsIdempotent(t *testing.T) {
	store := cas.NewStore(filepath.Join(t.TempDir(), "objects"))

	require.NoError(t, store.Put("ab12cd34ef56ab78", strings.NewReader("first")))
	require.NoError(t, store.Put("ab12cd34ef56ab78", strings.NewReader("second write ignored")))

	r, err := store.Open("ab12cd34ef56ab78")
	require.NoError(t, err)
	content, err := io.ReadAll(r)
	require.NoError(t, err)
	require.NoError(t, r.Close())
	assert.Equal(t, "first", string(content))
}

func TestStore_OpenMissing(t *testing.T) {
	store := cas.NewStore(filepath.Join(t.TempDir(), "objects"))

	r, err := store.Open("0000000000000000")
	require.NoError(t, err)
	assert.Nil(t, r)
	assert.False(t, store.Has("0000000000000000"))
}

func TestStore_RejectsEmptyChecksum(t *testing.T) {
	store := cas.NewStore(filepath.Join(t.TempDir(), "objects"))

	err := store.Put("", strings.NewReader("content"))
	require.Error(t, err)
	assert.False(t, store.Has(""))
}
