package config

// Dejafile represents the structure of the deja.yaml workspace file.
type Dejafile struct {
	Version string   `yaml:"version"`
	Ignore  []string `yaml:"ignore"`
	Env     []string `yaml:"env"`
}

// StarterConfig is the deja.yaml content written by init.
const StarterConfig = `# deja workspace configuration.
version: "1"

# Workspace-relative paths excluded from change detection and watch mode.
# ignore:
#   - tmp
#   - .venv

# Environment variables passed through to plan commands on top of the
# built-in allow list.
# env:
#   - AWS_PROFILE
`
