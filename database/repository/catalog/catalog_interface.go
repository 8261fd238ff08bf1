package catalogRepo

import (
	"errors"

	"jamb/models"
)

// ErrServiceNotFound is returned when no service has the requested work code.
var ErrServiceNotFound = errors.New("service not found")

// CatalogRepository defines data access for categories and services.
type CatalogRepository interface {
	ListCategories(section models.Section) ([]models.Category, error)
	ListServices(filter models.ServiceFilter) ([]models.Service, error)
	// ListAllServices returns every service including stored embeddings.
	ListAllServices() ([]models.Service, error)
	GetService(id string) (*models.Service, error)
	GetServices(ids []string) ([]models.Service, error)
	UpsertCategory(category *models.Category) error
	UpsertService(service *models.Service) error
	SetEmbedding(id string, embedding []float32) error
}
