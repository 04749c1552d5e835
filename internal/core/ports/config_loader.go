package ports

import "go.trai.ch/xs/internal/core/domain"

// ConfigLoader defines the interface for loading the loader settings.
//
//go:generate mockgen -source=config_loader.go -destination=mocks/mock_config_loader.go -package=mocks
type ConfigLoader interface {
	// Load walks up from cwd looking for xs.yaml and returns the resolved settings.
	// Defaults are returned when no config file exists.
	Load(cwd string) (*domain.Settings, error)
}
