package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	catalogRepo "jamb/database/repository/catalog"
	"jamb/models"
	"jamb/utils"

	"go.uber.org/zap"
)

const (
	defaultSearchLimit = 20
	maxListLimit       = 200
)

func (s *DefaultCatalogService) ListSections() []models.Section {
	return models.Sections
}

// cached serves key from the cache or loads it, storing the result. Cache failures are
// logged and never fail the read.
func cached[T any](ctx context.Context, s *DefaultCatalogService, key string, load func() (T, error)) (T, error) {
	logger := utils.GetLogger()
	key = utils.CatalogCachePrefix + key

	if s.Cache != nil {
		data, err := s.Cache.Get(ctx, key)
		if err == nil {
			var v T
			if err := json.Unmarshal(data, &v); err == nil {
				return v, nil
			}
			logger.Warn("Discarding unreadable catalog cache entry", zap.String("key", key))
		} else if !errors.Is(err, ErrCacheMiss) {
			logger.Warn("Catalog cache read failed", zap.String("key", key), zap.Error(err))
		}
	}

	v, err := load()
	if err != nil {
		return v, err
	}

	if s.Cache != nil {
		if data, err := json.Marshal(v); err == nil {
			if err := s.Cache.Set(ctx, key, data, s.ttl()); err != nil {
				logger.Warn("Catalog cache write failed", zap.String("key", key), zap.Error(err))
			}
		}
	}
	return v, nil
}

func (s *DefaultCatalogService) ttl() time.Duration {
	if s.TTL > 0 {
		return s.TTL
	}
	return utils.CatalogCacheTTL
}

func (s *DefaultCatalogService) ListCategories(ctx context.Context, section models.Section) ([]models.Category, error) {
	if section != "" && !section.IsValid() {
		return nil, utils.NewValidationError("unknown section %q", section)
	}
	return cached(ctx, s, "categories:"+string(section), func() ([]models.Category, error) {
		return s.Repo.ListCategories(section)
	})
}

func (s *DefaultCatalogService) ListServices(ctx context.Context, filter models.ServiceFilter) ([]models.Service, error) {
	if filter.Section != "" && !filter.Section.IsValid() {
		return nil, utils.NewValidationError("unknown section %q", filter.Section)
	}
	if filter.Limit < 0 || filter.Offset < 0 {
		return nil, utils.NewValidationError("limit and offset must not be negative")
	}
	if filter.Limit == 0 || filter.Limit > maxListLimit {
		filter.Limit = maxListLimit
	}
	filter.Query = strings.TrimSpace(filter.Query)

	key := fmt.Sprintf("services:%s:%s:%s:%d:%d", filter.Section, filter.CategoryID, strings.ToLower(filter.Query), filter.Limit, filter.Offset)
	return cached(ctx, s, key, func() ([]models.Service, error) {
		return s.Repo.ListServices(filter)
	})
}

func (s *DefaultCatalogService) SearchServices(ctx context.Context, query string, limit int) ([]models.Service, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, utils.NewValidationError("search query is required")
	}
	if limit <= 0 {
		limit = defaultSearchLimit
	}
	return s.ListServices(ctx, models.ServiceFilter{Query: query, Limit: limit})
}

func (s *DefaultCatalogService) GetService(ctx context.Context, id string) (*models.Service, error) {
	service, err := cached(ctx, s, "service:"+id, func() (*models.Service, error) {
		return s.Repo.GetService(id)
	})
	if errors.Is(err, catalogRepo.ErrServiceNotFound) {
		return nil, utils.NewNotFoundError("service %s not found", id)
	}
	return service, err
}

func (s *DefaultCatalogService) GetServices(ctx context.Context, ids []string) (map[string]models.Service, error) {
	unique := make([]string, 0, len(ids))
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			unique = append(unique, id)
		}
	}
	sort.Strings(unique)

	services, err := s.Repo.GetServices(unique)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]models.Service, len(services))
	for _, svc := range services {
		byID[svc.ID] = svc
	}
	for _, id := range unique {
		if _, ok := byID[id]; !ok {
			return nil, utils.NewNotFoundError("service %s not found", id)
		}
	}
	return byID, nil
}

// ValidateService checks the pricing bounds of a service before it is stored.
func ValidateService(service *models.Service) error {
	switch {
	case strings.TrimSpace(service.ID) == "":
		return utils.NewValidationError("service id is required")
	case strings.TrimSpace(service.Title) == "":
		return utils.NewValidationError("service %s needs a title", service.ID)
	case !service.Section.IsValid():
		return utils.NewValidationError("service %s has unknown section %q", service.ID, service.Section)
	case service.Price < 0:
		return utils.NewValidationError("service %s price must not be negative", service.ID)
	case service.MinQuantity <= 0:
		return utils.NewValidationError("service %s minimum quantity must be positive", service.ID)
	case service.MaxQuantity < service.MinQuantity:
		return utils.NewValidationError("service %s maximum quantity is below its minimum", service.ID)
	case strings.TrimSpace(service.UnitOfMeasurement) == "":
		return utils.NewValidationError("service %s needs a unit of measurement", service.ID)
	}
	return nil
}

func (s *DefaultCatalogService) UpsertCategory(ctx context.Context, category *models.Category) error {
	if strings.TrimSpace(category.ID) == "" || strings.TrimSpace(category.Title) == "" {
		return utils.NewValidationError("category id and title are required")
	}
	if !category.Section.IsValid() {
		return utils.NewValidationError("category %s has unknown section %q", category.ID, category.Section)
	}
	if err := s.Repo.UpsertCategory(category); err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

func (s *DefaultCatalogService) UpsertService(ctx context.Context, service *models.Service) error {
	if err := ValidateService(service); err != nil {
		return err
	}
	if err := s.Repo.UpsertService(service); err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

func (s *DefaultCatalogService) invalidate(ctx context.Context) {
	if s.Cache == nil {
		return
	}
	if err := s.Cache.DeletePrefix(ctx, utils.CatalogCachePrefix); err != nil {
		utils.GetLogger().Warn("Failed to invalidate catalog cache", zap.Error(err))
	}
}
