package domain

import "math"

// DailyUsageLiters is the fixed household draw the storage plan is sized
// against: 4 occupants at 200 liters per day each.
const DailyUsageLiters = 800

// MonsoonStorageDays caps the tank recommendation at one monsoon season of
// usage when 30% of the annual harvest would exceed it.
const MonsoonStorageDays = 90

// DrySpellBuffer pads monthly storage deficits by 20%. It applies to the
// deficit only; surplus months need no storage.
const DrySpellBuffer = 1.2

// monthNames is the canonical month order for all monthly outputs.
var monthNames = [12]string{
	"January", "February", "March", "April", "May", "June",
	"July", "August", "September", "October", "November", "December",
}

// monthlyRainfallShare is the fixed seasonal distribution model: the fraction
// of annual rainfall expected in each month, following the typical Indian
// monsoon pattern (peak in July). The shares sum to exactly 1.00.
var monthlyRainfallShare = [12]float64{
	0.01, // January
	0.01, // February
	0.02, // March
	0.03, // April
	0.05, // May
	0.15, // June, monsoon onset
	0.25, // July, peak monsoon
	0.20, // August
	0.15, // September
	0.08, // October
	0.03, // November
	0.02, // December
}

// daysInMonth uses a non-leap year; the sizing model does not track calendar years.
var daysInMonth = [12]int{31, 28, 31, 30, 31, 30, 31, 31, 30, 31, 30, 31}

// ComputeWaterBalance converts annual rainfall and roof geometry into the
// monthly harvest/storage plan and a single tank-capacity recommendation.
// It is total over finite inputs: a zero roof area yields zero harvest and
// pure-usage storage requirements rather than an error.
func ComputeWaterBalance(roofAreaM2, annualRainfallMM, runoffCoefficient float64) WaterBalance {
	annualHarvestable := roofAreaM2 * (annualRainfallMM / 1000) * runoffCoefficient * 1000

	var months MonthlyPlan
	for i := range months {
		harvestable := annualHarvestable * monthlyRainfallShare[i]
		usage := float64(DailyUsageLiters * daysInMonth[i])

		// The deficit is computed from the unfloored harvestable volume, then
		// buffered and floored, matching the trained sizing model.
		deficit := math.Max(usage-harvestable, 0)

		months[i] = MonthBudget{
			Month:                 monthNames[i],
			HarvestableLiters:     int(math.Floor(harvestable)),
			StorageRequiredLiters: int(math.Floor(deficit * DrySpellBuffer)),
		}
	}

	tank := math.Min(annualHarvestable*0.3, DailyUsageLiters*MonsoonStorageDays)

	return WaterBalance{
		AnnualHarvestableLiters: annualHarvestable,
		TankCapacityLiters:      int(math.Floor(tank)),
		Months:                  months,
	}
}
