package repository

import (
	"github.com/diillson/aws-cur-sync/internal/shared/types"
)

// ConfigRepository defines the interface for loading configuration.
type ConfigRepository interface {
	LoadConfigFile(filePath string, base *types.Config) (*types.Config, error)
	LoadFromEnv(base *types.Config) (*types.Config, error)
	Validate(config *types.Config) error
}
