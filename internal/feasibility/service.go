// Package feasibility orchestrates one assessment: weather lookup, feature
// derivation, model prediction, water-balance sizing, then best-effort
// persistence and event publishing.
package feasibility

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/couchcryptid/recharge-feasibility/internal/domain"
	"github.com/couchcryptid/recharge-feasibility/internal/observability"
)

// WeatherProvider supplies combined weather records and active alerts.
type WeatherProvider interface {
	Fetch(ctx context.Context, lat, lon float64, cityID int) (domain.WeatherMetrics, error)
	Alerts(ctx context.Context, lat, lon float64) ([]domain.WeatherAlert, error)
}

// Predictor scores encoded feature vectors against the trained models.
type Predictor interface {
	FeatureSchema() []string
	Predict(vec []float64) (domain.Prediction, error)
}

// Store persists assessment history and serves the reporting queries.
type Store interface {
	SavePrediction(ctx context.Context, rec domain.PredictionRecord) error
	SaveWeather(ctx context.Context, row domain.WeatherRow) error
	SaveAnalytics(ctx context.Context, row domain.AnalyticsRow) error
	Predictions(ctx context.Context, userID string, limit int) ([]domain.PredictionRecord, error)
	WeatherHistory(ctx context.Context, lat, lon float64, limit int) ([]domain.WeatherRow, error)
	Analytics(ctx context.Context, metric string, days int) ([]domain.AnalyticsRow, error)
	DashboardStats(ctx context.Context) (domain.DashboardStats, error)
	Ping(ctx context.Context) error
}

// Publisher emits one analytics event per completed assessment.
type Publisher interface {
	PublishAssessment(ctx context.Context, event domain.AssessmentEvent) error
}

// Service wires the collaborators together. Persistence and publishing are
// best-effort: their failures are logged and counted but never fail the
// assessment.
type Service struct {
	weather   WeatherProvider
	predictor Predictor
	store     Store
	publisher Publisher // nil when the analytics sink is disabled
	logger    *slog.Logger
	metrics   *observability.Metrics
}

// New creates a Service. publisher may be nil.
func New(weather WeatherProvider, predictor Predictor, store Store, publisher Publisher,
	logger *slog.Logger, metrics *observability.Metrics) *Service {
	return &Service{
		weather:   weather,
		predictor: predictor,
		store:     store,
		publisher: publisher,
		logger:    logger,
		metrics:   metrics,
	}
}

// MonthLiters is one month of a liters-per-month series, in calendar order.
type MonthLiters struct {
	Month  string `json:"month"`
	Liters int    `json:"liters"`
}

// RoofEfficiency summarizes the harvest arithmetic behind the recommendation.
type RoofEfficiency struct {
	RunoffCoefficient       float64 `json:"runoff_coefficient"`
	AnnualRainfallMM        float64 `json:"annual_rainfall_mm"`
	AnnualHarvestableLiters int     `json:"annual_harvestable_liters"`
	RecommendedTankLiters   int     `json:"recommended_tank_liters"`
}

// Recommendations holds the human-readable sizing figures.
type Recommendations struct {
	TankSize        string `json:"tank_size"`
	RoofUtilization string `json:"roof_utilization"`
	AnnualHarvest   string `json:"annual_harvest"`
	MonthlyAverage  string `json:"monthly_average"`
}

// AssessmentResponse is the full payload returned for one assessment.
type AssessmentResponse struct {
	PredictionID                  string                `json:"prediction_id,omitempty"`
	FeasibilityCategory           string                `json:"feasibility_category"`
	FeasibilityScore              float64               `json:"feasibility_score"`
	RecommendedStructure          string                `json:"recommended_structure"`
	RecommendedTankCapacityLiters int                   `json:"recommended_tank_capacity_liters"`
	MonthlyStorageRequirements    []MonthLiters         `json:"monthly_storage_requirements"`
	MonthlyHarvestable            []MonthLiters         `json:"monthly_harvestable"`
	Weather                       domain.WeatherMetrics `json:"weather_data"`
	RoofEfficiency                RoofEfficiency        `json:"roof_efficiency"`
	Recommendations               Recommendations       `json:"recommendations"`
	Summary                       string                `json:"summary"`
	Warnings                      []string              `json:"warnings,omitempty"`
}

// TrendReport is the analytics series for one metric with its direction.
type TrendReport struct {
	Analytics     []domain.AnalyticsRow `json:"analytics"`
	Trend         string                `json:"trend"`
	ChangePercent float64               `json:"change_percent"`
	Count         int                   `json:"count"`
}

// Assess runs the full pipeline for one site request. It returns
// domain.ErrInvalidRoofArea for unusable roof geometry; weather, storage, and
// publishing problems degrade rather than fail.
func (s *Service) Assess(ctx context.Context, req domain.SiteRequest) (AssessmentResponse, error) {
	start := time.Now()

	lat, _ := req.Latitude.Value()
	lon, _ := req.Longitude.Value()
	wx := s.fetchWeather(ctx, lat, lon, 0)

	fv, coercions, err := domain.DeriveFeatures(req, wx)
	if err != nil {
		s.metrics.AssessmentsTotal.WithLabelValues("invalid_input").Inc()
		return AssessmentResponse{}, err
	}
	s.metrics.CoercionWarnings.Add(float64(len(coercions)))

	pred, err := s.predictor.Predict(domain.EncodeFeatures(fv, s.predictor.FeatureSchema()))
	if err != nil {
		s.metrics.AssessmentsTotal.WithLabelValues("error").Inc()
		return AssessmentResponse{}, fmt.Errorf("model prediction: %w", err)
	}

	balance := domain.ComputeWaterBalance(fv.RoofAreaM2, fv.AnnualRainfallMM, fv.RunoffCoefficient)

	resp := buildResponse(fv, wx, pred, balance, coercions)
	resp.PredictionID = s.record(ctx, req.UserID, fv, wx, pred, balance)
	s.publish(ctx, resp.PredictionID, fv, wx, pred, balance)

	s.metrics.AssessmentsTotal.WithLabelValues("ok").Inc()
	s.metrics.AssessmentDuration.Observe(time.Since(start).Seconds())
	s.metrics.TankCapacityLiters.Observe(float64(balance.TankCapacityLiters))

	s.logger.Info("assessment completed",
		"prediction_id", resp.PredictionID,
		"category", pred.Category,
		"score", pred.Score,
		"tank_liters", balance.TankCapacityLiters,
		"weather_source", wx.DataSource,
	)
	return resp, nil
}

// Weather returns the combined weather record for a location.
func (s *Service) Weather(ctx context.Context, lat, lon float64, cityID int) (domain.WeatherMetrics, error) {
	return s.fetchWeather(ctx, lat, lon, cityID), nil
}

// Alerts returns active weather warnings for a location.
func (s *Service) Alerts(ctx context.Context, lat, lon float64) ([]domain.WeatherAlert, error) {
	return s.weather.Alerts(ctx, lat, lon)
}

// Predictions returns stored assessments, optionally filtered by user.
func (s *Service) Predictions(ctx context.Context, userID string, limit int) ([]domain.PredictionRecord, error) {
	return s.store.Predictions(ctx, userID, limit)
}

// Dashboard returns aggregate statistics over the prediction history.
func (s *Service) Dashboard(ctx context.Context) (domain.DashboardStats, error) {
	return s.store.DashboardStats(ctx)
}

// Analytics returns recorded samples for one metric within a day window.
func (s *Service) Analytics(ctx context.Context, metric string, days int) ([]domain.AnalyticsRow, error) {
	return s.store.Analytics(ctx, metric, days)
}

// AnalyticsTrends compares the newest and oldest samples in the window and
// classifies the direction of change.
func (s *Service) AnalyticsTrends(ctx context.Context, metric string, days int) (TrendReport, error) {
	rows, err := s.store.Analytics(ctx, metric, days)
	if err != nil {
		return TrendReport{}, err
	}

	report := TrendReport{Analytics: rows, Count: len(rows), Trend: "insufficient_data"}
	if len(rows) < 2 {
		return report, nil
	}

	// Rows come newest first.
	first := rows[len(rows)-1].MetricValue
	last := rows[0].MetricValue
	switch {
	case last > first:
		report.Trend = "increasing"
	case last < first:
		report.Trend = "decreasing"
	default:
		report.Trend = "stable"
	}
	if first != 0 {
		change := (last - first) / first * 100
		report.ChangePercent = math.Round(change*100) / 100
	}
	return report, nil
}

// WeatherHistory returns stored weather observations near a location.
func (s *Service) WeatherHistory(ctx context.Context, lat, lon float64, limit int) ([]domain.WeatherRow, error) {
	return s.store.WeatherHistory(ctx, lat, lon, limit)
}

// CheckReadiness reports whether the service can take traffic.
func (s *Service) CheckReadiness(ctx context.Context) error {
	return s.store.Ping(ctx)
}

func (s *Service) fetchWeather(ctx context.Context, lat, lon float64, cityID int) domain.WeatherMetrics {
	start := time.Now()
	wx, err := s.weather.Fetch(ctx, lat, lon, cityID)
	s.metrics.WeatherAPIDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		// Providers degrade internally; a hard error still must not sink the
		// assessment.
		s.logger.Warn("weather fetch failed, using fallback", "error", err)
		s.metrics.WeatherFetches.WithLabelValues("error").Inc()
		return domain.FallbackWeatherMetrics()
	}
	s.metrics.WeatherFetches.WithLabelValues(wx.DataSource).Inc()
	return wx
}

// record persists the assessment summary, weather observation, and analytics
// samples. Failures are logged and counted, never returned.
func (s *Service) record(ctx context.Context, userID string, fv domain.FeatureVector, wx domain.WeatherMetrics,
	pred domain.Prediction, balance domain.WaterBalance) string {
	id := uuid.New().String()
	now := domain.Clock().Now().UTC()
	location := fmt.Sprintf("%g,%g", fv.Latitude, fv.Longitude)

	if err := s.store.SavePrediction(ctx, domain.PredictionRecord{
		ID:                  id,
		UserID:              userID,
		Latitude:            fv.Latitude,
		Longitude:           fv.Longitude,
		RoofAreaM2:          fv.RoofAreaM2,
		RoofType:            fv.RoofType,
		FeasibilityCategory: pred.Category,
		FeasibilityScore:    pred.Score,
		Structure:           pred.Structure,
		TankCapacityLiters:  balance.TankCapacityLiters,
		Weather:             wx,
		CreatedAt:           now,
	}); err != nil {
		s.logger.Warn("save prediction failed", "prediction_id", id, "error", err)
		s.metrics.PersistFailures.Inc()
	}

	if err := s.store.SaveWeather(ctx, domain.WeatherRow{
		Latitude:             fv.Latitude,
		Longitude:            fv.Longitude,
		AnnualRainfallMM:     wx.AnnualRainfallMM,
		MaxDailyRainfallMM:   wx.MaxDailyRainfallMM,
		RainyDaysCount:       wx.RainyDaysCount,
		AvgTemperatureC:      wx.AvgTemperatureC,
		EvaporationRateMMDay: wx.EvaporationRateMMDay,
		CreatedAt:            now,
	}); err != nil {
		s.logger.Warn("save weather observation failed", "error", err)
		s.metrics.PersistFailures.Inc()
	}

	samples := []domain.AnalyticsRow{
		{MetricName: "feasibility_score", MetricValue: pred.Score, Location: location, CreatedAt: now},
		{MetricName: "tank_capacity", MetricValue: float64(balance.TankCapacityLiters), Location: location, CreatedAt: now},
	}
	for _, sample := range samples {
		if err := s.store.SaveAnalytics(ctx, sample); err != nil {
			s.logger.Warn("save analytics sample failed", "metric", sample.MetricName, "error", err)
			s.metrics.PersistFailures.Inc()
		}
	}
	return id
}

func (s *Service) publish(ctx context.Context, id string, fv domain.FeatureVector,
	wx domain.WeatherMetrics, pred domain.Prediction, balance domain.WaterBalance) {
	if s.publisher == nil {
		return
	}
	event := domain.AssessmentEvent{
		PredictionID:        id,
		Latitude:            fv.Latitude,
		Longitude:           fv.Longitude,
		RoofType:            fv.RoofType,
		RoofAreaM2:          fv.RoofAreaM2,
		FeasibilityCategory: pred.Category,
		FeasibilityScore:    pred.Score,
		Structure:           pred.Structure,
		TankCapacityLiters:  balance.TankCapacityLiters,
		WeatherSource:       wx.DataSource,
		ProcessedAt:         domain.Clock().Now().UTC(),
	}
	if err := s.publisher.PublishAssessment(ctx, event); err != nil {
		s.logger.Warn("publish assessment event failed", "prediction_id", id, "error", err)
		s.metrics.PublishFailures.Inc()
		return
	}
	s.metrics.EventsPublished.Inc()
}

func buildResponse(fv domain.FeatureVector, wx domain.WeatherMetrics, pred domain.Prediction,
	balance domain.WaterBalance, coercions []domain.CoercionWarning) AssessmentResponse {
	storage := make([]MonthLiters, len(balance.Months))
	harvest := make([]MonthLiters, len(balance.Months))
	for i, m := range balance.Months {
		storage[i] = MonthLiters{Month: m.Month, Liters: m.StorageRequiredLiters}
		harvest[i] = MonthLiters{Month: m.Month, Liters: m.HarvestableLiters}
	}

	annual := int(balance.AnnualHarvestableLiters)
	warnings := make([]string, 0, len(coercions))
	for _, w := range coercions {
		warnings = append(warnings, w.String())
	}

	return AssessmentResponse{
		FeasibilityCategory:           pred.Category,
		FeasibilityScore:              pred.Score,
		RecommendedStructure:          pred.Structure,
		RecommendedTankCapacityLiters: balance.TankCapacityLiters,
		MonthlyStorageRequirements:    storage,
		MonthlyHarvestable:            harvest,
		Weather:                       wx,
		RoofEfficiency: RoofEfficiency{
			RunoffCoefficient:       fv.RunoffCoefficient,
			AnnualRainfallMM:        fv.AnnualRainfallMM,
			AnnualHarvestableLiters: annual,
			RecommendedTankLiters:   balance.TankCapacityLiters,
		},
		Recommendations: Recommendations{
			TankSize:        fmt.Sprintf("%d liters", balance.TankCapacityLiters),
			RoofUtilization: fmt.Sprintf("%g m²", fv.RoofAreaM2),
			AnnualHarvest:   fmt.Sprintf("%d liters/year", annual),
			MonthlyAverage:  fmt.Sprintf("%d liters/month", annual/12),
		},
		Summary: fmt.Sprintf(
			"For your location (lat: %g, lon: %g) with a %s roof of %g m², "+
				"you can harvest approximately %s liters annually from %gmm rainfall. "+
				"We recommend a storage tank of %s liters for practical daily use. "+
				"Feasibility: %s (Score: %.2f)",
			fv.Latitude, fv.Longitude, fv.RoofType, fv.RoofAreaM2,
			groupDigits(annual), fv.AnnualRainfallMM,
			groupDigits(balance.TankCapacityLiters), pred.Category, pred.Score,
		),
		Warnings: warnings,
	}
}

// groupDigits formats an integer with comma thousand separators.
func groupDigits(n int) string {
	s := strconv.Itoa(n)
	neg := false
	if s[0] == '-' {
		neg = true
		s = s[1:]
	}
	for i := len(s) - 3; i > 0; i -= 3 {
		s = s[:i] + "," + s[i:]
	}
	if neg {
		return "-" + s
	}
	return s
}
