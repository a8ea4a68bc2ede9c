package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/deja/internal/adapters/config"
	"go.trai.ch/deja/internal/core/domain"
	"go.trai.ch/deja/internal/core/ports/mocks"
	"go.uber.org/mock/gomock"
)

func TestLoader_Integration_EndToEnd(t *testing.T) {
	tmpDir := t.TempDir()

	configContent := `
version: "1"
ignore:
  - results
  - data/raw
env:
  - AWS_PROFILE
`
	err := os.WriteFile(filepath.Join(tmpDir, domain.ConfigFileName), []byte(configContent), 0o600)
	require.NoError(t, err)

	srcDir := filepath.Join(tmpDir, "src", "analysis")
	err = os.MkdirAll(srcDir, 0o750)
	require.NoError(t, err)

	ctrl := gomock.NewController(t)
	loader := config.NewLoader(mocks.NewMockLogger(ctrl))

	root, err := loader.DiscoverRoot(srcDir)
	require.NoError(t, err)
	assert.Equal(t, tmpDir, root)

	settings, err := loader.Load(root)
	require.NoError(t, err)
	assert.Equal(t, []string{"data/raw", "results"}, settings.Ignore)
	assert.Equal(t, []string{"AWS_PROFILE"}, settings.Env)

	assert.True(t, settings.Ignored("results/plot.png"))
	assert.True(t, settings.Ignored("data/raw"))
	assert.False(t, settings.Ignored("data/rawer.csv"))
	assert.False(t, settings.Ignored("src/analysis/clean.py"))
}

func TestLoader_Integration_StarterConfig(t *testing.T) {
	tmpDir := t.TempDir()

	err := os.WriteFile(filepath.Join(tmpDir, domain.ConfigFileName), []byte(config.StarterConfig), 0o600)
	require.NoError(t, err)

	ctrl := gomock.NewController(t)
	loader := config.NewLoader(mocks.NewMockLogger(ctrl))

	// The starter file carries only commented-out examples, so it must load
	// cleanly into empty settings without a version warning.
	settings, err := loader.Load(tmpDir)
	require.NoError(t, err)
	assert.Empty(t, settings.Ignore)
	assert.Empty(t, settings.Env)
}

func TestLoader_Integration_MissingConfig(t *testing.T) {
	tmpDir := t.TempDir()

	ctrl := gomock.NewController(t)
	loader := config.NewLoader(mocks.NewMockLogger(ctrl))

	_, err := loader.DiscoverRoot(filepath.Join(tmpDir, "nowhere"))
	require.ErrorIs(t, err, domain.ErrWorkspaceNotFound)

	_, err = loader.Load(tmpDir)
	require.ErrorIs(t, err, domain.ErrConfigReadFailed)
}
