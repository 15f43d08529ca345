package ports

import "go.trai.ch/lingo/internal/core/domain"

// ConfigLoader defines the interface for loading the project manifest.
//
//go:generate mockgen -source=config_loader.go -destination=mocks/mock_config_loader.go -package=mocks
type ConfigLoader interface {
	// Load finds the manifest at or above cwd and returns the resolved config.
	Load(cwd string) (*domain.Config, error)

	// DiscoverRoot walks up from cwd and returns the directory containing the manifest.
	DiscoverRoot(cwd string) (string, error)
}
