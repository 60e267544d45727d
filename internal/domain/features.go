package domain

import "errors"

// ErrInvalidRoofArea rejects requests whose roof geometry is unusable. Roof
// area is the one field with no sensible default: without it neither the
// models nor the water balance mean anything.
var ErrInvalidRoofArea = errors.New("roof_area_m2 must be a positive number")

// Site input defaults, applied only when the field is absent from the request.
const (
	DefaultClayPct              = 30.0
	DefaultSandPct              = 40.0
	DefaultSiltPct              = 30.0
	DefaultElevationM           = 100.0
	DefaultInfiltrationRateMMHr = 10.0
	DefaultRunoffCoefficient    = 0.8
)

// CoercionWarning records a request field that was present but could not be
// parsed as a number and was coerced to 0.0.
type CoercionWarning struct {
	Field string
	Raw   string
}

func (w CoercionWarning) String() string {
	return "could not parse " + w.Field + " as a number, using 0.0"
}

// DeriveFeatures builds the enriched feature vector from a raw site request
// and a weather record. It applies defaults to absent fields, coerces
// present-but-unparsable fields to 0.0 with a warning, and computes the seven
// derived features. It fails only when roof_area_m2 is absent or not positive.
//
// Note the asymmetry: an absent clay_pct becomes 30 but a clay_pct of "n/a"
// becomes 0.0. Both behaviors are load-bearing for model parity with the
// training pipeline and are covered by tests.
func DeriveFeatures(req SiteRequest, wx WeatherMetrics) (FeatureVector, []CoercionWarning, error) {
	var warnings []CoercionWarning

	coerce := func(name string, f LooseFloat, def float64) float64 {
		if !f.set {
			return def
		}
		if !f.valid {
			warnings = append(warnings, CoercionWarning{Field: name, Raw: f.raw})
			return 0
		}
		return f.value
	}

	roofArea := coerce("roof_area_m2", req.RoofAreaM2, 0)
	if roofArea <= 0 {
		return FeatureVector{}, warnings, ErrInvalidRoofArea
	}

	fv := FeatureVector{
		AnnualRainfallMM:     wx.AnnualRainfallMM,
		MaxDailyRainfallMM:   wx.MaxDailyRainfallMM,
		RainyDaysCount:       float64(wx.RainyDaysCount),
		AvgTemperatureC:      wx.AvgTemperatureC,
		EvaporationRateMMDay: wx.EvaporationRateMMDay,

		ClayPct: coerce("clay_pct", req.ClayPct, DefaultClayPct),
		SandPct: coerce("sand_pct", req.SandPct, DefaultSandPct),
		SiltPct: coerce("silt_pct", req.SiltPct, DefaultSiltPct),

		Latitude:   coerce("latitude", req.Latitude, 0),
		Longitude:  coerce("longitude", req.Longitude, 0),
		ElevationM: coerce("elevation_m", req.ElevationM, DefaultElevationM),

		RoofAreaM2:       roofArea,
		AvailableSpaceM2: coerce("available_space_m2", req.AvailableSpaceM2, roofArea),
		RoofType:         req.RoofType,

		InfiltrationRateMMHr: coerce("infiltration_rate_mmhr", req.InfiltrationRateMMHr, DefaultInfiltrationRateMMHr),
		RunoffCoefficient:    coerce("runoff_coefficient", req.RunoffCoefficient, DefaultRunoffCoefficient),
		AnnualRunoffM3:       coerce("annual_runoff_m3", req.AnnualRunoffM3, 0),
	}

	// Derived features. The +1 and +0.1 offsets are divisor guards from the
	// training pipeline and must match it exactly.
	fv.RainfallIntensity = fv.MaxDailyRainfallMM / (fv.RainyDaysCount + 1)
	fv.SoilWaterCapacity = fv.ClayPct*0.4 + fv.SiltPct*0.3 + fv.SandPct*0.1
	fv.RoofEfficiency = fv.RoofAreaM2 / (fv.AvailableSpaceM2 + 1)
	fv.ClimateAridity = fv.EvaporationRateMMDay / (fv.AnnualRainfallMM/365 + 0.1)
	fv.HarvestPotential = fv.AnnualRainfallMM * fv.RoofAreaM2 * fv.RunoffCoefficient / 1000
	fv.TemperatureFactor = fv.AvgTemperatureC / 30
	fv.ElevationFactor = fv.ElevationM / 1000

	// Zero means "compute from rainfall".
	if fv.AnnualRunoffM3 == 0 {
		fv.AnnualRunoffM3 = fv.RoofAreaM2 * (fv.AnnualRainfallMM / 1000) * fv.RunoffCoefficient
	}

	return fv, warnings, nil
}
