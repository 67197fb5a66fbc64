package session

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/facetlabs/facet/internal/blob"
	"github.com/facetlabs/facet/internal/common/config"
)

// NewStore creates a session store based on configuration.
func NewStore(logger *zap.Logger, cfg *config.SessionConfig, blobs blob.Store) (Store, error) {
	logger.Info("initializing session store", zap.String("type", cfg.Type))
	switch cfg.Type {
	case "memory":
		return NewMemoryStore(logger, blobs), nil
	case "redis":
		return NewRedisStore(logger, cfg.Redis, cfg.Timeout.Duration())
	default:
		return nil, fmt.Errorf("unsupported session store type: %s", cfg.Type)
	}
}
