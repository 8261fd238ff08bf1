package catalog

import (
	"context"
	"time"

	"jamb/database/repository"
	"jamb/models"
)

// CatalogService exposes the browsable catalog of sections, categories and services.
type CatalogService interface {
	ListSections() []models.Section
	ListCategories(ctx context.Context, section models.Section) ([]models.Category, error)
	ListServices(ctx context.Context, filter models.ServiceFilter) ([]models.Service, error)
	SearchServices(ctx context.Context, query string, limit int) ([]models.Service, error)
	GetService(ctx context.Context, id string) (*models.Service, error)
	// GetServices resolves several work codes at once; unknown codes are a not-found error.
	GetServices(ctx context.Context, ids []string) (map[string]models.Service, error)
	UpsertCategory(ctx context.Context, category *models.Category) error
	UpsertService(ctx context.Context, service *models.Service) error
}

// Cache is the byte cache in front of catalog reads.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	DeletePrefix(ctx context.Context, prefix string) error
}

// DefaultCatalogService implements CatalogService.
type DefaultCatalogService struct {
	Repo  repository.CatalogRepository
	Cache Cache
	TTL   time.Duration
}
