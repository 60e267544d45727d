package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/couchcryptid/recharge-feasibility/internal/domain"
	"github.com/couchcryptid/recharge-feasibility/internal/feasibility"
)

// locationQuery validates the lat/lon query parameters shared by the weather
// endpoints. "required" rejects zero values as well as absent ones; the
// equator/meridian origin is not a real lookup target.
type locationQuery struct {
	Lat float64 `validate:"required,gte=-90,lte=90"`
	Lon float64 `validate:"required,gte=-180,lte=180"`
}

func (s *Server) location(w http.ResponseWriter, r *http.Request) (locationQuery, bool) {
	loc := locationQuery{
		Lat: queryFloat(r, "lat"),
		Lon: queryFloat(r, "lon"),
	}
	if err := s.validate.Struct(loc); err != nil {
		writeError(w, http.StatusBadRequest, "Latitude and longitude are required")
		return loc, false
	}
	return loc, true
}

func (s *Server) handlePredict(w http.ResponseWriter, r *http.Request) {
	var req domain.SiteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "No input data provided")
		return
	}

	resp, err := s.svc.Assess(r.Context(), req)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidRoofArea) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		s.logger.Error("prediction failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Prediction failed")
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleWeather(w http.ResponseWriter, r *http.Request) {
	loc, ok := s.location(w, r)
	if !ok {
		return
	}
	wx, err := s.svc.Weather(r.Context(), loc.Lat, loc.Lon, queryInt(r, "city_id", 0))
	if err != nil {
		s.logger.Error("weather lookup failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to fetch weather data")
		return
	}
	writeJSON(w, http.StatusOK, wx)
}

func (s *Server) handleForecast(w http.ResponseWriter, r *http.Request) {
	loc, ok := s.location(w, r)
	if !ok {
		return
	}
	wx, err := s.svc.Weather(r.Context(), loc.Lat, loc.Lon, queryInt(r, "city_id", 0))
	if err != nil {
		s.logger.Error("forecast lookup failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to fetch weather forecast")
		return
	}

	days := wx.ForecastDays
	if days == nil {
		days = []domain.ForecastDay{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"forecast_days":              days,
		"forecast_period_days":       wx.ForecastPeriodDays,
		"forecast_total_rainfall_mm": wx.ForecastTotalRainfallMM,
		"forecast_rainy_days":        wx.ForecastRainyDays,
	})
}

func (s *Server) handleAlerts(w http.ResponseWriter, r *http.Request) {
	loc, ok := s.location(w, r)
	if !ok {
		return
	}
	alerts, err := s.svc.Alerts(r.Context(), loc.Lat, loc.Lon)
	if err != nil {
		s.logger.Error("alerts lookup failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to fetch weather alerts")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"alerts": alerts,
		"count":  len(alerts),
		"location": map[string]float64{
			"latitude":  loc.Lat,
			"longitude": loc.Lon,
		},
	})
}

func (s *Server) handleRechargeMetrics(w http.ResponseWriter, r *http.Request) {
	loc, ok := s.location(w, r)
	if !ok {
		return
	}
	wx, err := s.svc.Weather(r.Context(), loc.Lat, loc.Lon, 0)
	if err != nil {
		s.logger.Error("recharge metrics lookup failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to fetch recharge metrics")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"evaporation_rate_mmday": wx.EvaporationRateMMDay,
		"infiltration_potential": wx.InfiltrationPotential,
		"recharge_efficiency":    wx.RechargeEfficiency,
		"recharge_seasonality":   wx.Seasonality,
		"monsoon_intensity":      wx.Monsoon,
		"annual_rainfall_mm":     wx.AnnualRainfallMM,
		"rainy_days_count":       wx.RainyDaysCount,
		"data_source":            wx.DataSource,
	})
}

func (s *Server) handleMonsoonAnalysis(w http.ResponseWriter, r *http.Request) {
	loc, ok := s.location(w, r)
	if !ok {
		return
	}
	wx, err := s.svc.Weather(r.Context(), loc.Lat, loc.Lon, 0)
	if err != nil {
		s.logger.Error("monsoon analysis lookup failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to fetch monsoon analysis")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"monsoon_intensity": wx.Monsoon,
		"seasonal_patterns": wx.Seasonality,
		"rainfall_distribution": map[string]any{
			"annual_rainfall_mm":    wx.AnnualRainfallMM,
			"max_daily_rainfall_mm": wx.MaxDailyRainfallMM,
			"rainy_days_count":      wx.RainyDaysCount,
		},
		"recharge_potential": map[string]any{
			"infiltration_potential": wx.InfiltrationPotential,
			"recharge_efficiency":    wx.RechargeEfficiency,
			"evaporation_rate_mmday": wx.EvaporationRateMMDay,
		},
	})
}

// city holds an IMD station identifier for the city lookup endpoint.
type city struct {
	Name  string `json:"name"`
	ID    int    `json:"id"`
	State string `json:"state"`
}

var cities = []city{
	{"Delhi", 42182, "Delhi"},
	{"Mumbai", 43003, "Maharashtra"},
	{"Bangalore", 43295, "Karnataka"},
	{"Chennai", 43279, "Tamil Nadu"},
	{"Kolkata", 42809, "West Bengal"},
	{"Hyderabad", 43128, "Telangana"},
	{"Pune", 43047, "Maharashtra"},
	{"Ahmedabad", 42647, "Gujarat"},
	{"Jaipur", 42328, "Rajasthan"},
	{"Lucknow", 42369, "Uttar Pradesh"},
}

func (s *Server) handleCities(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"cities": cities,
		"count":  len(cities),
		"note":   "Use city_id parameter in weather endpoints for city-specific data",
	})
}

func (s *Server) handleHistorical(w http.ResponseWriter, r *http.Request) {
	loc, ok := s.location(w, r)
	if !ok {
		return
	}
	limit := queryInt(r, "days", 30)
	history, err := s.svc.WeatherHistory(r.Context(), loc.Lat, loc.Lon, limit)
	if err != nil {
		s.logger.Error("weather history lookup failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to fetch historical weather data")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"historical_data": history,
		"period_days":     limit,
		"location": map[string]float64{
			"latitude":  loc.Lat,
			"longitude": loc.Lon,
		},
	})
}

func (s *Server) handlePredictions(w http.ResponseWriter, r *http.Request) {
	predictions, err := s.svc.Predictions(r.Context(), r.URL.Query().Get("user_id"), queryInt(r, "limit", 100))
	if err != nil {
		s.logger.Error("predictions lookup failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to retrieve predictions")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"predictions": predictions,
		"count":       len(predictions),
	})
}

func (s *Server) handleUserPredictions(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "user_id")
	predictions, err := s.svc.Predictions(r.Context(), userID, queryInt(r, "limit", 50))
	if err != nil {
		s.logger.Error("user predictions lookup failed", "user_id", userID, "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to fetch user predictions")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"user_id":     userID,
		"predictions": predictions,
		"count":       len(predictions),
	})
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	stats, err := s.svc.Dashboard(r.Context())
	if err != nil {
		s.logger.Error("dashboard stats failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to retrieve dashboard statistics")
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (s *Server) handleAnalytics(w http.ResponseWriter, r *http.Request) {
	rows, err := s.svc.Analytics(r.Context(), r.URL.Query().Get("metric_name"), queryInt(r, "days", 30))
	if err != nil {
		s.logger.Error("analytics lookup failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to retrieve analytics")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"analytics": rows,
		"count":     len(rows),
	})
}

func (s *Server) handleAnalyticsTrends(w http.ResponseWriter, r *http.Request) {
	days := queryInt(r, "days", 30)
	report, err := s.svc.AnalyticsTrends(r.Context(), r.URL.Query().Get("metric_name"), days)
	if err != nil {
		s.logger.Error("analytics trends failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to fetch analytics trends")
		return
	}
	writeJSON(w, http.StatusOK, trendsResponse{TrendReport: report, PeriodDays: days})
}

type trendsResponse struct {
	feasibility.TrendReport
	PeriodDays int `json:"period_days"`
}
