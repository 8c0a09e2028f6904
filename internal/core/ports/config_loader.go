package ports

import "go.trai.ch/fin/internal/core/domain"

// ConfigLoader loads the finalize plan from configuration.
//
//go:generate mockgen -source=config_loader.go -destination=mocks/mock_config_loader.go -package=mocks
type ConfigLoader interface {
	// Load reads and validates the plan at the given path.
	Load(path string) (*domain.Plan, error)
}
