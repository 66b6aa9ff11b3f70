package ports

import "go.trai.ch/weft/internal/core/domain"

// ConfigLoader defines the interface for loading user settings.
//
//go:generate mockgen -source=config_loader.go -destination=mocks/mock_config_loader.go -package=mocks
type ConfigLoader interface {
	// Load reads config.yaml from the weft home and applies environment
	// overrides. A missing file yields the defaults.
	Load() (*domain.Settings, error)
}
