package domain

// SiteRequest is the raw assessment request as submitted by the caller.
// Numeric fields use LooseFloat so that a single malformed value degrades to
// a coercion warning instead of rejecting the whole request.
type SiteRequest struct {
	UserID               string     `json:"user_id,omitempty"`
	Latitude             LooseFloat `json:"latitude"`
	Longitude            LooseFloat `json:"longitude"`
	RoofType             string     `json:"roof_type"`
	RoofAreaM2           LooseFloat `json:"roof_area_m2"`
	AvailableSpaceM2     LooseFloat `json:"available_space_m2"`
	ClayPct              LooseFloat `json:"clay_pct"`
	SandPct              LooseFloat `json:"sand_pct"`
	SiltPct              LooseFloat `json:"silt_pct"`
	ElevationM           LooseFloat `json:"elevation_m"`
	InfiltrationRateMMHr LooseFloat `json:"infiltration_rate_mmhr"`
	RunoffCoefficient    LooseFloat `json:"runoff_coefficient"`
	AnnualRunoffM3       LooseFloat `json:"annual_runoff_m3"`
}

// ForecastDay is one day of the upstream weather forecast.
type ForecastDay struct {
	Date             string  `json:"date"`
	MaxTempC         float64 `json:"max_temp_c"`
	MinTempC         float64 `json:"min_temp_c"`
	RainfallMM       float64 `json:"rainfall_mm"`
	HumidityPercent  float64 `json:"humidity_percent"`
	WindSpeedKMH     float64 `json:"wind_speed_kmh"`
	WeatherCondition string  `json:"weather_condition"`
}

// WeatherAlert is an active warning issued for a region.
type WeatherAlert struct {
	Type      string `json:"type"`
	Level     string `json:"level"`
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
}

// WeatherMetrics is the combined weather record supplied by the weather
// provider. The core treats it as read-only input. DataSource is "IMD_API"
// for live data and "FALLBACK" when the provider substituted defaults.
type WeatherMetrics struct {
	AnnualRainfallMM     float64 `json:"annual_rainfall_mm"`
	MaxDailyRainfallMM   float64 `json:"max_daily_rainfall_mm"`
	RainyDaysCount       int     `json:"rainy_days_count"`
	AvgTemperatureC      float64 `json:"avg_temperature_c"`
	EvaporationRateMMDay float64 `json:"evaporation_rate_mmday"`
	HumidityPercent      float64 `json:"humidity_percent"`
	WindSpeedKMH         float64 `json:"wind_speed_kmh"`
	PressureHPa          float64 `json:"pressure_hpa"`
	UVIndex              float64 `json:"uv_index"`

	CurrentCondition string `json:"current_weather_condition,omitempty"`

	ForecastDays            []ForecastDay `json:"forecast_days,omitempty"`
	ForecastPeriodDays      int           `json:"forecast_period_days"`
	ForecastTotalRainfallMM float64       `json:"forecast_total_rainfall_mm"`
	ForecastRainyDays       int           `json:"forecast_rainy_days"`

	// Derived recharge metrics, filled in by the provider via EstimateRecharge.
	InfiltrationPotential float64          `json:"infiltration_potential"`
	RechargeEfficiency    float64          `json:"recharge_efficiency"`
	Seasonality           Seasonality      `json:"recharge_seasonality"`
	Monsoon               MonsoonIntensity `json:"monsoon_intensity"`

	DataSource    string `json:"data_source"`
	DataTimestamp string `json:"data_timestamp,omitempty"`
}

// Weather default constants, applied by DefaultWeatherMetrics and by the
// recharge estimator when an input field is unreported.
const (
	DefaultAnnualRainfallMM     = 1200.0
	DefaultMaxDailyRainfallMM   = 50.0
	DefaultRainyDaysCount       = 120
	DefaultAvgTemperatureC      = 25.0
	DefaultEvaporationRateMMDay = 4.5
	DefaultHumidityPercent      = 70.0
	DefaultWindSpeedKMH         = 10.0
	DefaultPressureHPa          = 1013.0
	DefaultUVIndex              = 5.0
)

// DefaultWeatherMetrics returns the documented fallback weather record used
// when no upstream source is reachable. The caller is responsible for setting
// DataSource and for filling in the derived recharge metrics.
func DefaultWeatherMetrics() WeatherMetrics {
	return WeatherMetrics{
		AnnualRainfallMM:     DefaultAnnualRainfallMM,
		MaxDailyRainfallMM:   DefaultMaxDailyRainfallMM,
		RainyDaysCount:       DefaultRainyDaysCount,
		AvgTemperatureC:      DefaultAvgTemperatureC,
		EvaporationRateMMDay: DefaultEvaporationRateMMDay,
		HumidityPercent:      DefaultHumidityPercent,
		WindSpeedKMH:         DefaultWindSpeedKMH,
		PressureHPa:          DefaultPressureHPa,
		UVIndex:              DefaultUVIndex,
	}
}

// FeatureVector is the enriched feature record consumed by the prediction
// models and the water-balance calculator. Every numeric field is a finite
// float; RoofType is the only categorical field and is one-hot encoded at the
// model boundary.
type FeatureVector struct {
	AnnualRainfallMM     float64
	MaxDailyRainfallMM   float64
	RainyDaysCount       float64
	AvgTemperatureC      float64
	EvaporationRateMMDay float64

	ClayPct float64
	SandPct float64
	SiltPct float64

	Latitude   float64
	Longitude  float64
	ElevationM float64

	RoofAreaM2       float64
	AvailableSpaceM2 float64
	RoofType         string

	InfiltrationRateMMHr float64
	RunoffCoefficient    float64
	AnnualRunoffM3       float64

	// Derived features.
	RainfallIntensity float64
	SoilWaterCapacity float64
	RoofEfficiency    float64
	ClimateAridity    float64
	HarvestPotential  float64
	TemperatureFactor float64
	ElevationFactor   float64
}

// Prediction is the black-box model output for one feature vector.
type Prediction struct {
	Category  string
	Score     float64
	Structure string
}

// MonthBudget is one month of the water-balance plan.
type MonthBudget struct {
	Month                 string `json:"month"`
	HarvestableLiters     int    `json:"harvestable_liters"`
	StorageRequiredLiters int    `json:"storage_required_liters"`
}

// MonthlyPlan holds the twelve monthly budgets in canonical calendar order,
// January through December.
type MonthlyPlan [12]MonthBudget

// WaterBalance is the full output of the water-balance calculator.
type WaterBalance struct {
	AnnualHarvestableLiters float64
	TankCapacityLiters      int
	Months                  MonthlyPlan
}

// Seasonality classifies the current calendar month into a recharge season.
type Seasonality struct {
	Season         string  `json:"current_season"`
	RechargeFactor float64 `json:"recharge_factor"`
}

// MonsoonIntensity classifies annual rainfall volume into one of five bands.
type MonsoonIntensity struct {
	Level                  string  `json:"monsoon_intensity"`
	Score                  float64 `json:"intensity_score"`
	PeakRainfallCapacityMM float64 `json:"peak_rainfall_capacity"`
}

// RechargeMetrics is the output of the recharge-metrics estimator.
type RechargeMetrics struct {
	EvaporationRateMMDay  float64          `json:"evaporation_rate_mmday"`
	InfiltrationPotential float64          `json:"infiltration_potential"`
	RechargeEfficiency    float64          `json:"recharge_efficiency"`
	Seasonality           Seasonality      `json:"recharge_seasonality"`
	Monsoon               MonsoonIntensity `json:"monsoon_intensity"`
}
