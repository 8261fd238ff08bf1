package pricing

import (
	"jamb/models"
	"jamb/utils"
)

// DistributeAdjustment spreads a surcharge (positive) or discount (negative) across
// works in proportion to their base labor. Rounding leftovers go to the work with the
// largest labor so that the adjusted labor of the works sums to base + adjustment.
func DistributeAdjustment(works []models.WorkEstimate, adjustment float64) []models.WorkEstimate {
	out := make([]models.WorkEstimate, len(works))
	copy(out, works)
	if len(out) == 0 {
		return out
	}

	totalLabor := 0.0
	largest := 0
	for i, w := range out {
		totalLabor += w.LaborCost
		if w.LaborCost > out[largest].LaborCost {
			largest = i
		}
	}

	distributed := 0.0
	for i := range out {
		share := 0.0
		if totalLabor > 0 {
			share = utils.RoundCents(adjustment * out[i].LaborCost / totalLabor)
		}
		distributed += share
		out[i].AdjustedLabor = utils.RoundCents(out[i].LaborCost + share)
	}

	if totalLabor > 0 {
		if rest := utils.RoundCents(adjustment - distributed); rest != 0 {
			out[largest].AdjustedLabor = utils.RoundCents(out[largest].AdjustedLabor + rest)
		}
	}

	for i := range out {
		out[i].Total = utils.RoundCents(out[i].AdjustedLabor + out[i].MaterialsCost)
	}
	return out
}

// RedistributeForDate reprices an existing order for a new time coefficient, keeping
// its works, materials and tax rate.
func (c *Calculator) RedistributeForDate(order models.CompositeOrder, coefficient float64) ([]models.WorkEstimate, models.Estimate, error) {
	return c.Aggregate(order.Works, coefficient, order.Estimate.TaxRate)
}
