package domain

// featureColumns maps trained column names to their FeatureVector accessors.
// Names match the offline training pipeline's dataframe columns.
var featureColumns = map[string]func(FeatureVector) float64{
	"annual_rainfall_mm":     func(v FeatureVector) float64 { return v.AnnualRainfallMM },
	"max_daily_rainfall_mm":  func(v FeatureVector) float64 { return v.MaxDailyRainfallMM },
	"rainy_days_count":       func(v FeatureVector) float64 { return v.RainyDaysCount },
	"avg_temperature_c":      func(v FeatureVector) float64 { return v.AvgTemperatureC },
	"evaporation_rate_mmday": func(v FeatureVector) float64 { return v.EvaporationRateMMDay },
	"clay_pct":               func(v FeatureVector) float64 { return v.ClayPct },
	"sand_pct":               func(v FeatureVector) float64 { return v.SandPct },
	"silt_pct":               func(v FeatureVector) float64 { return v.SiltPct },
	"latitude":               func(v FeatureVector) float64 { return v.Latitude },
	"longitude":              func(v FeatureVector) float64 { return v.Longitude },
	"elevation_m":            func(v FeatureVector) float64 { return v.ElevationM },
	"roof_area_m2":           func(v FeatureVector) float64 { return v.RoofAreaM2 },
	"available_space_m2":     func(v FeatureVector) float64 { return v.AvailableSpaceM2 },
	"infiltration_rate_mmhr": func(v FeatureVector) float64 { return v.InfiltrationRateMMHr },
	"runoff_coefficient":     func(v FeatureVector) float64 { return v.RunoffCoefficient },
	"annual_runoff_m3":       func(v FeatureVector) float64 { return v.AnnualRunoffM3 },
	"rainfall_intensity":     func(v FeatureVector) float64 { return v.RainfallIntensity },
	"soil_water_capacity":    func(v FeatureVector) float64 { return v.SoilWaterCapacity },
	"roof_efficiency":        func(v FeatureVector) float64 { return v.RoofEfficiency },
	"climate_aridity":        func(v FeatureVector) float64 { return v.ClimateAridity },
	"harvest_potential":      func(v FeatureVector) float64 { return v.HarvestPotential },
	"temperature_factor":     func(v FeatureVector) float64 { return v.TemperatureFactor },
	"elevation_factor":       func(v FeatureVector) float64 { return v.ElevationFactor },
}

// KnownColumn reports whether name is a numeric column the encoder can
// supply. roof_type_* one-hot columns are matched separately at encode time.
func KnownColumn(name string) bool {
	_, ok := featureColumns[name]
	return ok
}

// EncodeFeatures flattens a FeatureVector into the ordered numeric vector the
// trained models expect. roof_type is one-hot encoded as "roof_type_<value>";
// any schema column the vector cannot supply (an unseen roof type, a column
// added by a newer training run) is filled with 0.
func EncodeFeatures(fv FeatureVector, schema []string) []float64 {
	roofColumn := "roof_type_" + fv.RoofType

	out := make([]float64, len(schema))
	for i, name := range schema {
		if get, ok := featureColumns[name]; ok {
			out[i] = get(fv)
			continue
		}
		if name == roofColumn {
			out[i] = 1
		}
	}
	return out
}
