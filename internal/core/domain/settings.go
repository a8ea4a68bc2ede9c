package domain

// Settings is the workspace configuration read from deja.yaml.
type Settings struct {
	// Ignore lists workspace-relative path prefixes excluded from change
	// detection and watch mode.
	Ignore []string

	// Env lists additional environment variable names passed through to plan
	// executions on top of the built-in allow-list.
	Env []string
}

// Ignored reports whether the given workspace-relative path falls under one
// of the configured ignore prefixes.
func (s *Settings) Ignored(path string) bool {
	for _, prefix := range s.Ignore {
		if path == prefix {
			return true
		}
		if len(path) > len(prefix) && path[:len(prefix)] == prefix && path[len(prefix)] == '/' {
			return true
		}
	}
	return false
}
