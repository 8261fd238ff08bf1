package storage

import "context"

// StorageService defines the interface for photo storage backends.
type StorageService interface {
	// Upload stores data under objectPath and returns its public URL.
	Upload(ctx context.Context, objectPath, contentType string, data []byte) (string, error)
	Delete(ctx context.Context, objectPath string) error
}
