package pricing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jamb/models"
)

func sumAdjusted(works []models.WorkEstimate) float64 {
	total := 0.0
	for _, w := range works {
		total += w.AdjustedLabor
	}
	return total
}

func TestDistributeAdjustmentAssignsRemainderToLargest(t *testing.T) {
	works := []models.WorkEstimate{
		{WorkCode: "a", LaborCost: 10},
		{WorkCode: "b", LaborCost: 10},
		{WorkCode: "c", LaborCost: 10.01},
	}

	out := DistributeAdjustment(works, 0.1)

	assert.InDelta(t, 30.11, sumAdjusted(out), 0.0001)
	assert.Equal(t, 10.03, out[0].AdjustedLabor)
	assert.Equal(t, 10.03, out[1].AdjustedLabor)
	assert.Equal(t, 10.05, out[2].AdjustedLabor)
	// input is not mutated
	assert.Zero(t, works[0].AdjustedLabor)
}

func TestDistributeAdjustmentZeroLabor(t *testing.T) {
	works := []models.WorkEstimate{{WorkCode: "a", MaterialsCost: 12}}
	out := DistributeAdjustment(works, 0)
	require.Len(t, out, 1)
	assert.Equal(t, 0.0, out[0].AdjustedLabor)
	assert.Equal(t, 12.0, out[0].Total)
}

func TestRedistributeForDate(t *testing.T) {
	calc := newTestCalculator(t)
	paint, err := calc.CalculateWork(paintWalls(), 333, nil)
	require.NoError(t, err)
	door, err := calc.CalculateWork(hangDoor(), 1, nil)
	require.NoError(t, err)

	works, est, err := calc.Aggregate([]models.WorkEstimate{paint, door}, 1.0, 0.0725)
	require.NoError(t, err)
	order := models.CompositeOrder{Works: works, Estimate: est, TimeCoefficient: 1.0}

	moved, next, err := calc.RedistributeForDate(order, 1.25)
	require.NoError(t, err)

	assert.Equal(t, 1.25, next.TimeCoefficient)
	assert.Equal(t, 0.0725, next.TaxRate)
	assert.Equal(t, 1265.63, next.AdjustedLabor)
	assert.InDelta(t, next.AdjustedLabor, sumAdjusted(moved), 0.0001)
	assert.Equal(t, est.LaborSubtotal, next.LaborSubtotal)
}
