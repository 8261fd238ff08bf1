package estimate

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jamb/models"
	"jamb/services/materials"
	"jamb/services/pricing"
	"jamb/utils"
)

type stubCatalog struct {
	services map[string]models.Service
}

func (s *stubCatalog) ListSections() []models.Section { return models.Sections }
func (s *stubCatalog) ListCategories(context.Context, models.Section) ([]models.Category, error) {
	return nil, nil
}
func (s *stubCatalog) ListServices(context.Context, models.ServiceFilter) ([]models.Service, error) {
	return nil, nil
}
func (s *stubCatalog) SearchServices(context.Context, string, int) ([]models.Service, error) {
	return nil, nil
}
func (s *stubCatalog) GetService(_ context.Context, id string) (*models.Service, error) {
	svc, ok := s.services[id]
	if !ok {
		return nil, utils.NewNotFoundError("service %s not found", id)
	}
	return &svc, nil
}
func (s *stubCatalog) GetServices(ctx context.Context, ids []string) (map[string]models.Service, error) {
	out := map[string]models.Service{}
	for _, id := range ids {
		svc, err := s.GetService(ctx, id)
		if err != nil {
			return nil, err
		}
		out[id] = *svc
	}
	return out, nil
}
func (s *stubCatalog) UpsertCategory(context.Context, *models.Category) error { return nil }
func (s *stubCatalog) UpsertService(context.Context, *models.Service) error   { return nil }

type stubMaterials struct {
	options map[string][]models.FinishingMaterial
}

func (s *stubMaterials) GetFinishingMaterials(_ context.Context, code string) (*models.FinishingMaterialSet, error) {
	return materials.Group(code, s.options[code]), nil
}

func (s *stubMaterials) Resolve(ctx context.Context, code string, ids []string) ([]models.FinishingMaterial, error) {
	if ids == nil {
		set, _ := s.GetFinishingMaterials(ctx, code)
		return materials.DefaultSelection(set), nil
	}
	var out []models.FinishingMaterial
	for _, id := range ids {
		for _, m := range s.options[code] {
			if m.ExternalID == id {
				out = append(out, m)
			}
		}
	}
	return out, nil
}

func (s *stubMaterials) UpsertMaterials(context.Context, []models.FinishingMaterial) (int, error) {
	return 0, nil
}

func (s *stubMaterials) DeleteStale(context.Context, string, time.Time) (int, error) { return 0, nil }

func newService(t *testing.T) *DefaultEstimateService {
	t.Helper()
	calc, err := pricing.NewCalculator(0.15, 0.05, nil)
	require.NoError(t, err)
	calc.Now = func() time.Time { return time.Date(2025, 6, 2, 8, 0, 0, 0, time.UTC) }

	return &DefaultEstimateService{
		Catalog: &stubCatalog{services: map[string]models.Service{
			"1-1-1": {ID: "1-1-1", Title: "Paint walls", UnitOfMeasurement: "sq ft", Price: 2.5, MinQuantity: 10, MaxQuantity: 5000},
			"3-1-1": {ID: "3-1-1", Title: "Emergency leak repair", UnitOfMeasurement: "each", Price: 250, MinQuantity: 1, MaxQuantity: 5},
		}},
		Materials: &stubMaterials{options: map[string][]models.FinishingMaterial{
			"1-1-1": {
				{WorkCode: "1-1-1", ExternalID: "basic", Section: "finishing", Name: "Basic paint", Cost: 0.3},
				{WorkCode: "1-1-1", ExternalID: "premium", Section: "finishing", Name: "Premium paint", Cost: 0.7},
			},
		}},
		Calculator: calc,
	}
}

func TestCalculateUsesDefaultMaterials(t *testing.T) {
	svc := newService(t)

	work, err := svc.Calculate(context.Background(), models.CalculateRequest{WorkCode: "1-1-1", Quantity: 100})
	require.NoError(t, err)
	assert.Equal(t, 250.0, work.LaborCost)
	assert.Equal(t, 30.0, work.MaterialsCost)
	require.Len(t, work.Materials, 1)
	assert.Equal(t, "basic", work.Materials[0].ExternalID)

	work, err = svc.Calculate(context.Background(), models.CalculateRequest{WorkCode: "1-1-1", Quantity: 100, MaterialIDs: []string{"premium"}})
	require.NoError(t, err)
	assert.Equal(t, 70.0, work.MaterialsCost)
}

func TestEstimateCart(t *testing.T) {
	svc := newService(t)

	resp, err := svc.Estimate(context.Background(), models.EstimateRequest{
		Items: []models.EstimateItem{
			{WorkCode: "1-1-1", Quantity: 100, MaterialIDs: []string{}},
			{WorkCode: "3-1-1", Quantity: 1},
		},
		Date:  "2025-06-20",
		State: "ny",
	})
	require.NoError(t, err)

	assert.Equal(t, "NY", resp.State)
	assert.Equal(t, 0.9, resp.Estimate.TimeCoefficient)
	assert.Equal(t, 500.0, resp.Estimate.LaborSubtotal)
	assert.Equal(t, 450.0, resp.Estimate.AdjustedLabor)
	assert.Equal(t, 67.5, resp.Estimate.ServiceFees)
	assert.Equal(t, 18.0, resp.Estimate.Tax)
	assert.Equal(t, 535.5, resp.Estimate.Total)
	assert.Equal(t, 225.0, resp.Works[0].AdjustedLabor)
}

func TestPriceItemsValidation(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	_, err := svc.PriceItems(ctx, nil)
	assert.Equal(t, utils.KindValidation, utils.KindOf(err))

	_, err = svc.PriceItems(ctx, []models.EstimateItem{{WorkCode: "1-1-1", Quantity: 20}, {WorkCode: "1-1-1", Quantity: 30}})
	assert.Equal(t, utils.KindValidation, utils.KindOf(err))

	_, err = svc.PriceItems(ctx, []models.EstimateItem{{WorkCode: "9-9-9", Quantity: 1}})
	assert.Equal(t, utils.KindNotFound, utils.KindOf(err))

	_, err = svc.PriceItems(ctx, []models.EstimateItem{{WorkCode: "3-1-1", Quantity: 1.5}})
	assert.Equal(t, utils.KindValidation, utils.KindOf(err))
}

func TestCalendarBounds(t *testing.T) {
	svc := newService(t)

	days, err := svc.Calendar(7)
	require.NoError(t, err)
	assert.Len(t, days, 7)

	_, err = svc.Calendar(120)
	require.Error(t, err)
}
