package storage

import (
	"context"
	"fmt"

	"jamb/config"
)

// NewFromConfig selects the backend named by STORAGE_PROVIDER.
func NewFromConfig(ctx context.Context, cfg config.Config) (StorageService, error) {
	switch cfg.StorageProvider {
	case "gcs", "":
		return NewGCSStorageService(ctx, cfg.GoogleCredentialsFile, cfg.GCSBucket)
	case "cloudinary":
		return NewCloudinaryStorageService(cfg.CloudinaryURL)
	default:
		return nil, fmt.Errorf("unknown storage provider %q", cfg.StorageProvider)
	}
}
