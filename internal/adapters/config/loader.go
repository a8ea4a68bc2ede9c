// Package config loads the workspace configuration from deja.yaml.
package config

import (
	"errors"
	"fmt"
	"path"
	"path/filepath"
	"regexp"
	"slices"
	"strings"

	"go.trai.ch/deja/internal/core/domain"
	"go.trai.ch/deja/internal/core/ports"
	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"
)

// Loader implements ports.ConfigLoader using a YAML file.
type Loader struct {
	Logger ports.Logger
	FS     FileSystem
}

// NewLoader creates a new Loader with the given logger.
func NewLoader(logger ports.Logger) *Loader {
	return &Loader{Logger: logger, FS: osFS{}}
}

var validEnvNameRegex = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// DiscoverRoot walks up from cwd until it finds a directory containing
// deja.yaml.
func (l *Loader) DiscoverRoot(cwd string) (string, error) {
	currentDir := cwd
	for {
		configPath := filepath.Join(currentDir, domain.ConfigFileName)
		if _, err := l.FS.Stat(configPath); err == nil {
			return currentDir, nil
		}

		parentDir := filepath.Dir(currentDir)
		if parentDir == currentDir {
			// Reached the filesystem root.
			break
		}
		currentDir = parentDir
	}

	return "", zerr.With(domain.ErrWorkspaceNotFound, "cwd", cwd)
}

// Load reads and validates deja.yaml from the given workspace root.
func (l *Loader) Load(root string) (*domain.Settings, error) {
	configPath := filepath.Join(root, domain.ConfigFileName)

	var file Dejafile
	if err := l.readAndUnmarshalYAML(configPath, &file); err != nil {
		return nil, err
	}

	if file.Version != "" && file.Version != "1" {
		l.Logger.Warn(fmt.Sprintf("unknown %s version %q, proceeding anyway", domain.ConfigFileName, file.Version))
	}

	settings := &domain.Settings{}

	for _, raw := range file.Ignore {
		prefix, err := normalizeIgnorePrefix(raw)
		if err != nil {
			return nil, err
		}
		if prefix == "" {
			continue
		}
		settings.Ignore = append(settings.Ignore, prefix)
	}
	settings.Ignore = canonicalize(settings.Ignore)

	for _, name := range file.Env {
		if !validEnvNameRegex.MatchString(name) {
			return nil, zerr.With(zerr.Wrap(domain.ErrConfigParseFailed, "invalid environment variable name"), "name", name)
		}
	}
	settings.Env = canonicalize(file.Env)

	return settings, nil
}

// readAndUnmarshalYAML reads a YAML file and unmarshals it into target.
func (l *Loader) readAndUnmarshalYAML(configPath string, target *Dejafile) error {
	configFile, err := l.FS.ReadFile(configPath)
	if err != nil {
		return zerr.With(zerr.Wrap(errors.Join(domain.ErrConfigReadFailed, err),
			"failed to read the workspace configuration"), "path", configPath)
	}

	if parseErr := yaml.Unmarshal(configFile, target); parseErr != nil {
		return zerr.With(zerr.Wrap(errors.Join(domain.ErrConfigParseFailed, parseErr),
			"failed to parse the workspace configuration"), "path", configPath)
	}

	return nil
}

// normalizeIgnorePrefix converts an ignore entry into a clean workspace
// relative prefix with forward slashes. Empty entries normalize to "".
func normalizeIgnorePrefix(raw string) (string, error) {
	entry := strings.TrimSpace(raw)
	if entry == "" {
		return "", nil
	}
	if strings.HasPrefix(entry, "/") || filepath.IsAbs(entry) {
		return "", zerr.With(zerr.Wrap(domain.ErrConfigParseFailed,
			"ignore entries must be workspace-relative"), "entry", raw)
	}

	prefix := path.Clean(filepath.ToSlash(entry))
	if prefix == "." || prefix == ".." || strings.HasPrefix(prefix, "../") {
		return "", zerr.With(zerr.Wrap(domain.ErrConfigParseFailed,
			"ignore entries must name a path inside the workspace"), "entry", raw)
	}

	return prefix, nil
}

// canonicalize sorts and deduplicates the entries.
func canonicalize(strs []string) []string {
	if len(strs) == 0 {
		return nil
	}

	sorted := slices.Clone(strs)
	slices.Sort(sorted)
	return slices.Compact(sorted)
}
