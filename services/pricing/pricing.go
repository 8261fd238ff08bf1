package pricing

import (
	"math"
	"strings"
	"time"

	"jamb/models"
	"jamb/utils"
)

// wholeUnits are units of measurement that cannot be ordered fractionally.
var wholeUnits = map[string]bool{
	"each":  true,
	"pcs":   true,
	"piece": true,
	"unit":  true,
	"units": true,
}

// Calculator prices works and aggregates estimates. It is the only place the
// labor, surcharge, fee and tax formula lives.
type Calculator struct {
	FeeLaborRate     float64
	FeeMaterialsRate float64
	Taxes            TaxTable
	Policy           CoefficientPolicy
	// Now is overridable for tests.
	Now func() time.Time
}

// NewCalculator builds a Calculator from fee rates, holidays and the embedded tax table.
func NewCalculator(feeLaborRate, feeMaterialsRate float64, holidays []string) (*Calculator, error) {
	taxes, err := LoadTaxTable()
	if err != nil {
		return nil, err
	}
	days, err := ParseHolidays(holidays)
	if err != nil {
		return nil, err
	}
	return &Calculator{
		FeeLaborRate:     feeLaborRate,
		FeeMaterialsRate: feeMaterialsRate,
		Taxes:            taxes,
		Policy:           DefaultPolicy(days),
		Now:              time.Now,
	}, nil
}

func (c *Calculator) now() time.Time {
	if c.Now != nil {
		return c.Now()
	}
	return time.Now()
}

// ValidateQuantity checks quantity against the service bounds and unit.
func ValidateQuantity(service models.Service, quantity float64) error {
	if quantity <= 0 || math.IsNaN(quantity) || math.IsInf(quantity, 0) {
		return utils.NewValidationError("quantity for %s must be positive", service.ID)
	}
	if service.MinQuantity > 0 && quantity < service.MinQuantity {
		return utils.NewValidationError("quantity for %s must be at least %v %s", service.ID, service.MinQuantity, service.UnitOfMeasurement)
	}
	if service.MaxQuantity > 0 && quantity > service.MaxQuantity {
		return utils.NewValidationError("quantity for %s must be at most %v %s", service.ID, service.MaxQuantity, service.UnitOfMeasurement)
	}
	if wholeUnits[strings.ToLower(service.UnitOfMeasurement)] && quantity != math.Trunc(quantity) {
		return utils.NewValidationError("quantity for %s must be a whole number of %s", service.ID, service.UnitOfMeasurement)
	}
	return nil
}

// CalculateWork prices a single work: labor at the service unit price plus every
// selected material at its per-unit cost.
func (c *Calculator) CalculateWork(service models.Service, quantity float64, materials []models.FinishingMaterial) (models.WorkEstimate, error) {
	if err := ValidateQuantity(service, quantity); err != nil {
		return models.WorkEstimate{}, err
	}

	seen := make(map[string]bool, len(materials))
	lines := make([]models.SelectedMaterial, 0, len(materials))
	materialsCost := 0.0
	for _, m := range materials {
		if m.WorkCode != service.ID {
			return models.WorkEstimate{}, utils.NewValidationError("material %s does not belong to work %s", m.ExternalID, service.ID)
		}
		if seen[m.Section] {
			return models.WorkEstimate{}, utils.NewValidationError("only one material may be selected for section %q of work %s", m.Section, service.ID)
		}
		seen[m.Section] = true

		cost := utils.RoundCents(m.Cost * quantity)
		materialsCost += cost
		lines = append(lines, models.SelectedMaterial{
			ExternalID: m.ExternalID,
			Section:    m.Section,
			Name:       m.Name,
			UnitCost:   m.Cost,
			Cost:       cost,
		})
	}

	labor := utils.RoundCents(service.Price * quantity)
	materialsCost = utils.RoundCents(materialsCost)
	return models.WorkEstimate{
		WorkCode:          service.ID,
		Title:             service.Title,
		Quantity:          quantity,
		UnitOfMeasurement: service.UnitOfMeasurement,
		UnitPrice:         service.Price,
		LaborCost:         labor,
		AdjustedLabor:     labor,
		Materials:         lines,
		MaterialsCost:     materialsCost,
		Total:             utils.RoundCents(labor + materialsCost),
	}, nil
}

// Aggregate applies the time coefficient, service fees and tax to a set of priced works.
// It returns the works with their labor adjusted so they sum to the estimate.
func (c *Calculator) Aggregate(works []models.WorkEstimate, coefficient, taxRate float64) ([]models.WorkEstimate, models.Estimate, error) {
	if len(works) == 0 {
		return nil, models.Estimate{}, utils.NewValidationError("at least one work is required")
	}
	if coefficient <= 0 {
		return nil, models.Estimate{}, utils.NewValidationError("time coefficient must be positive")
	}

	labor, materials := 0.0, 0.0
	for _, w := range works {
		labor += w.LaborCost
		materials += w.MaterialsCost
	}
	labor = utils.RoundCents(labor)
	materials = utils.RoundCents(materials)

	adjustedLabor := utils.RoundCents(labor * coefficient)
	feeLabor := utils.RoundCents(adjustedLabor * c.FeeLaborRate)
	feeMaterials := utils.RoundCents(materials * c.FeeMaterialsRate)
	fees := utils.RoundCents(feeLabor + feeMaterials)
	tax := utils.RoundCents((adjustedLabor + materials) * taxRate)

	est := models.Estimate{
		LaborSubtotal:     labor,
		MaterialsSubtotal: materials,
		TimeCoefficient:   coefficient,
		Adjustment:        utils.RoundCents(adjustedLabor - labor),
		AdjustedLabor:     adjustedLabor,
		FeeOnLabor:        feeLabor,
		FeeOnMaterials:    feeMaterials,
		ServiceFees:       fees,
		TaxRate:           taxRate,
		Tax:               tax,
		Total:             utils.RoundCents(adjustedLabor + materials + fees + tax),
	}
	return DistributeAdjustment(works, est.Adjustment), est, nil
}

// Estimate prices works for a service date and state.
func (c *Calculator) Estimate(works []models.WorkEstimate, date, state string) ([]models.WorkEstimate, models.Estimate, error) {
	coef, err := c.Policy.CoefficientFor(date, c.now())
	if err != nil {
		return nil, models.Estimate{}, err
	}
	rate, err := c.Taxes.Rate(state)
	if err != nil {
		return nil, models.Estimate{}, err
	}
	return c.Aggregate(works, coef, rate)
}

// Coefficient returns the time coefficient of date as seen now.
func (c *Calculator) Coefficient(date string) (float64, error) {
	return c.Policy.CoefficientFor(date, c.now())
}

// Calendar lists upcoming day coefficients starting today.
func (c *Calculator) Calendar(days int) ([]models.CalendarDay, error) {
	now := c.now()
	return c.Policy.Calendar(now, days, now)
}

// TaxRate returns the sales-tax rate of state.
func (c *Calculator) TaxRate(state string) (float64, error) {
	return c.Taxes.Rate(state)
}
