package ports

import "go.trai.ch/deja/internal/core/domain"

// ConfigLoader defines the interface for loading the workspace configuration.
//
//go:generate mockgen -source=config_loader.go -destination=mocks/mock_config_loader.go -package=mocks
type ConfigLoader interface {
	// Load reads the configuration from the given workspace root.
	Load(root string) (*domain.Settings, error)

	// DiscoverRoot walks up from cwd to find the workspace root.
	// Returns the directory containing deja.yaml.
	DiscoverRoot(cwd string) (string, error)
}
