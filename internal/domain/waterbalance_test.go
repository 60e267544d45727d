package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeWaterBalance(t *testing.T) {
	t.Run("reference scenario", func(t *testing.T) {
		// 100 m² roof, 1200 mm rainfall, 0.8 runoff coefficient.
		wb := ComputeWaterBalance(100, 1200, 0.8)

		assert.InDelta(t, 96000, wb.AnnualHarvestableLiters, 1e-9)
		assert.Equal(t, 28800, wb.TankCapacityLiters) // min(96000*0.3, 72000)

		july := wb.Months[6]
		require.Equal(t, "July", july.Month)
		assert.Equal(t, 24000, july.HarvestableLiters) // 96000 * 0.25
		// usage 800*31 = 24800; deficit 800; buffered 960.
		assert.Equal(t, 960, july.StorageRequiredLiters)

		january := wb.Months[0]
		require.Equal(t, "January", january.Month)
		assert.Equal(t, 960, january.HarvestableLiters) // 96000 * 0.01
		// usage 24800; deficit 23840; buffered 28608.
		assert.Equal(t, 28608, january.StorageRequiredLiters)
	})

	t.Run("monthly shares sum to annual harvest", func(t *testing.T) {
		wb := ComputeWaterBalance(137.5, 1234.567, 0.73)

		var sum int
		for _, m := range wb.Months {
			sum += m.HarvestableLiters
		}
		// Shares sum to exactly 1.00; only per-month flooring is lost.
		assert.InDelta(t, wb.AnnualHarvestableLiters, float64(sum), 12)
		assert.LessOrEqual(t, float64(sum), wb.AnnualHarvestableLiters)
	})

	t.Run("tank capacity caps at 90 days of usage", func(t *testing.T) {
		wb := ComputeWaterBalance(500, 2400, 0.9) // annual = 1,080,000 L
		assert.Equal(t, 72000, wb.TankCapacityLiters)
	})

	t.Run("zero roof area yields zero harvest", func(t *testing.T) {
		wb := ComputeWaterBalance(0, 1200, 0.8)

		assert.Equal(t, 0.0, wb.AnnualHarvestableLiters)
		assert.Equal(t, 0, wb.TankCapacityLiters)
		for i, m := range wb.Months {
			assert.Equal(t, 0, m.HarvestableLiters, m.Month)
			// Pure usage deficit, buffered: floor(800 * days * 1.2).
			want := 800 * daysInMonth[i] * 12 / 10
			assert.Equal(t, want, m.StorageRequiredLiters, m.Month)
		}
	})

	t.Run("surplus months need no storage", func(t *testing.T) {
		wb := ComputeWaterBalance(1000, 2000, 0.9) // annual = 1,800,000 L
		july := wb.Months[6]
		assert.Equal(t, 0, july.StorageRequiredLiters)
	})

	t.Run("monotonic in roof area", func(t *testing.T) {
		prev := ComputeWaterBalance(10, 1100, 0.8)
		for area := 20.0; area <= 500; area += 35 {
			cur := ComputeWaterBalance(area, 1100, 0.8)
			assert.GreaterOrEqual(t, cur.AnnualHarvestableLiters, prev.AnnualHarvestableLiters)
			assert.GreaterOrEqual(t, cur.TankCapacityLiters, prev.TankCapacityLiters)
			prev = cur
		}
	})

	t.Run("canonical month order", func(t *testing.T) {
		wb := ComputeWaterBalance(100, 1200, 0.8)
		assert.Equal(t, "January", wb.Months[0].Month)
		assert.Equal(t, "June", wb.Months[5].Month)
		assert.Equal(t, "December", wb.Months[11].Month)
	})

	t.Run("idempotent", func(t *testing.T) {
		a := ComputeWaterBalance(123.4, 987.6, 0.72)
		b := ComputeWaterBalance(123.4, 987.6, 0.72)
		assert.Equal(t, a, b)
	})
}

func TestMonthlyShareTable(t *testing.T) {
	var sum float64
	for _, s := range monthlyRainfallShare {
		sum += s
	}
	assert.InDelta(t, 1.0, sum, 1e-12)

	var days int
	for _, d := range daysInMonth {
		days += d
	}
	assert.Equal(t, 365, days)
}
