package blob

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/facetlabs/facet/internal/common/config"
)

// New creates a blob store based on configuration.
func New(logger *zap.Logger, cfg *config.BlobConfig) (Store, error) {
	logger.Info("initializing blob store", zap.String("type", cfg.Type))
	switch cfg.Type {
	case "memory":
		return NewMemoryStore(), nil
	case "disk":
		return NewDiskStore(logger, cfg.Disk.BaseDir)
	case "s3":
		return NewS3Store(logger, &cfg.S3)
	default:
		return nil, fmt.Errorf("unsupported blob store type: %s", cfg.Type)
	}
}
