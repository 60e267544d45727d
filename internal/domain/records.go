package domain

import "time"

// PredictionRecord is the persisted summary of one assessment.
type PredictionRecord struct {
	ID                  string         `json:"id"`
	UserID              string         `json:"user_id,omitempty"`
	Latitude            float64        `json:"latitude"`
	Longitude           float64        `json:"longitude"`
	RoofAreaM2          float64        `json:"roof_area_m2"`
	RoofType            string         `json:"roof_type"`
	FeasibilityCategory string         `json:"feasibility_category"`
	FeasibilityScore    float64        `json:"feasibility_score"`
	Structure           string         `json:"recommended_structure"`
	TankCapacityLiters  int            `json:"recommended_tank_capacity_liters"`
	Weather             WeatherMetrics `json:"weather_data"`
	CreatedAt           time.Time      `json:"created_at"`
}

// WeatherRow is a persisted weather observation for a location.
type WeatherRow struct {
	ID                   string    `json:"id"`
	Latitude             float64   `json:"latitude"`
	Longitude            float64   `json:"longitude"`
	AnnualRainfallMM     float64   `json:"annual_rainfall_mm"`
	MaxDailyRainfallMM   float64   `json:"max_daily_rainfall_mm"`
	RainyDaysCount       int       `json:"rainy_days_count"`
	AvgTemperatureC      float64   `json:"avg_temperature_c"`
	EvaporationRateMMDay float64   `json:"evaporation_rate_mmday"`
	CreatedAt            time.Time `json:"created_at"`
}

// AnalyticsRow is one recorded metric sample.
type AnalyticsRow struct {
	ID          string    `json:"id"`
	MetricName  string    `json:"metric_name"`
	MetricValue float64   `json:"metric_value"`
	Location    string    `json:"location,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// DashboardStats aggregates the prediction history for the dashboard endpoint.
type DashboardStats struct {
	TotalPredictions        int     `json:"total_predictions"`
	TodayPredictions        int     `json:"today_predictions"`
	AverageFeasibilityScore float64 `json:"average_feasibility_score"`
	MostCommonRoofType      string  `json:"most_common_roof_type"`
	AverageTankCapacity     float64 `json:"average_tank_capacity"`
}

// AssessmentEvent is the message published to the analytics sink topic after
// each assessment.
type AssessmentEvent struct {
	PredictionID        string    `json:"prediction_id"`
	Latitude            float64   `json:"latitude"`
	Longitude           float64   `json:"longitude"`
	RoofType            string    `json:"roof_type"`
	RoofAreaM2          float64   `json:"roof_area_m2"`
	FeasibilityCategory string    `json:"feasibility_category"`
	FeasibilityScore    float64   `json:"feasibility_score"`
	Structure           string    `json:"recommended_structure"`
	TankCapacityLiters  int       `json:"recommended_tank_capacity_liters"`
	WeatherSource       string    `json:"weather_source"`
	ProcessedAt         time.Time `json:"processed_at"`
}
