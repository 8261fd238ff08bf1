package estimate

import (
	"context"
	"strings"

	"jamb/metrics"
	"jamb/models"
	"jamb/services/catalog"
	"jamb/services/materials"
	"jamb/services/pricing"
	"jamb/utils"
)

// maxItems bounds a single estimate or order.
const maxItems = 50

// EstimateService prices works and whole carts.
type EstimateService interface {
	// Calculate prices one work without date or tax adjustments.
	Calculate(ctx context.Context, req models.CalculateRequest) (*models.WorkEstimate, error)
	// Estimate prices a cart for a date and state.
	Estimate(ctx context.Context, req models.EstimateRequest) (*models.EstimateResponse, error)
	// PriceItems prices every item at base labor; the result feeds Calculator.Aggregate.
	PriceItems(ctx context.Context, items []models.EstimateItem) ([]models.WorkEstimate, error)
	Calendar(days int) ([]models.CalendarDay, error)
}

// DefaultEstimateService implements EstimateService.
type DefaultEstimateService struct {
	Catalog    catalog.CatalogService
	Materials  materials.MaterialsService
	Calculator *pricing.Calculator
}

func (s *DefaultEstimateService) Calculate(ctx context.Context, req models.CalculateRequest) (*models.WorkEstimate, error) {
	works, err := s.PriceItems(ctx, []models.EstimateItem{{
		WorkCode:    req.WorkCode,
		Quantity:    req.Quantity,
		MaterialIDs: req.MaterialIDs,
	}})
	if err != nil {
		return nil, err
	}
	metrics.RecordEstimate("work")
	return &works[0], nil
}

func (s *DefaultEstimateService) PriceItems(ctx context.Context, items []models.EstimateItem) ([]models.WorkEstimate, error) {
	if len(items) == 0 {
		return nil, utils.NewValidationError("at least one work is required")
	}
	if len(items) > maxItems {
		return nil, utils.NewValidationError("at most %d works can be priced at once", maxItems)
	}

	codes := make([]string, 0, len(items))
	seen := make(map[string]bool, len(items))
	for _, item := range items {
		code := strings.TrimSpace(item.WorkCode)
		if code == "" {
			return nil, utils.NewValidationError("work code is required")
		}
		if seen[code] {
			return nil, utils.NewValidationError("work %s is listed more than once", code)
		}
		seen[code] = true
		codes = append(codes, code)
	}

	services, err := s.Catalog.GetServices(ctx, codes)
	if err != nil {
		return nil, err
	}

	works := make([]models.WorkEstimate, 0, len(items))
	for i, item := range items {
		service := services[codes[i]]
		selected, err := s.Materials.Resolve(ctx, service.ID, item.MaterialIDs)
		if err != nil {
			return nil, err
		}
		work, err := s.Calculator.CalculateWork(service, item.Quantity, selected)
		if err != nil {
			return nil, err
		}
		works = append(works, work)
	}
	return works, nil
}

func (s *DefaultEstimateService) Estimate(ctx context.Context, req models.EstimateRequest) (*models.EstimateResponse, error) {
	works, err := s.PriceItems(ctx, req.Items)
	if err != nil {
		return nil, err
	}
	adjusted, est, err := s.Calculator.Estimate(works, req.Date, req.State)
	if err != nil {
		return nil, err
	}
	metrics.RecordEstimate("estimate")
	return &models.EstimateResponse{
		Works:    adjusted,
		Date:     req.Date,
		State:    strings.ToUpper(strings.TrimSpace(req.State)),
		Estimate: est,
	}, nil
}

func (s *DefaultEstimateService) Calendar(days int) ([]models.CalendarDay, error) {
	return s.Calculator.Calendar(days)
}
