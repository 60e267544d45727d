package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/recharge-feasibility/internal/domain"
	"github.com/couchcryptid/recharge-feasibility/internal/feasibility"
)

type fakeService struct {
	assessResp feasibility.AssessmentResponse
	assessErr  error
	notReady   bool

	lastUserID string
	lastLimit  int
	lastMetric string
	lastCityID int
}

func (f *fakeService) Assess(_ context.Context, _ domain.SiteRequest) (feasibility.AssessmentResponse, error) {
	return f.assessResp, f.assessErr
}

func (f *fakeService) Weather(_ context.Context, _, _ float64, cityID int) (domain.WeatherMetrics, error) {
	f.lastCityID = cityID
	wx := domain.DefaultWeatherMetrics()
	wx.DataSource = "IMD_API"
	wx.ForecastPeriodDays = 2
	wx.ForecastTotalRainfallMM = 15
	wx.ForecastRainyDays = 1
	wx.ForecastDays = []domain.ForecastDay{{Date: "2026-07-01"}, {Date: "2026-07-02"}}
	return wx, nil
}

func (f *fakeService) Alerts(context.Context, float64, float64) ([]domain.WeatherAlert, error) {
	return []domain.WeatherAlert{{Type: "Heavy Rainfall", Level: "Orange"}}, nil
}

func (f *fakeService) Predictions(_ context.Context, userID string, limit int) ([]domain.PredictionRecord, error) {
	f.lastUserID = userID
	f.lastLimit = limit
	return []domain.PredictionRecord{{ID: "pred-1", UserID: userID}}, nil
}

func (f *fakeService) Dashboard(context.Context) (domain.DashboardStats, error) {
	return domain.DashboardStats{TotalPredictions: 7, MostCommonRoofType: "concrete"}, nil
}

func (f *fakeService) Analytics(_ context.Context, metric string, _ int) ([]domain.AnalyticsRow, error) {
	f.lastMetric = metric
	return []domain.AnalyticsRow{{MetricName: metric, MetricValue: 0.7}}, nil
}

func (f *fakeService) AnalyticsTrends(_ context.Context, metric string, _ int) (feasibility.TrendReport, error) {
	f.lastMetric = metric
	return feasibility.TrendReport{Trend: "increasing", ChangePercent: 12.5, Count: 3}, nil
}

func (f *fakeService) WeatherHistory(context.Context, float64, float64, int) ([]domain.WeatherRow, error) {
	return []domain.WeatherRow{{ID: "wx-1"}}, nil
}

func (f *fakeService) CheckReadiness(context.Context) error {
	if f.notReady {
		return errors.New("store unreachable")
	}
	return nil
}

func newTestServer(svc Feasibility) *Server {
	return NewServer(":0", svc, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func doRequest(t *testing.T, srv *Server, method, target string, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	var payload map[string]any
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	}
	return rec, payload
}

func TestHealthAndReadiness(t *testing.T) {
	svc := &fakeService{}
	srv := newTestServer(svc)

	rec, payload := doRequest(t, srv, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "healthy", payload["status"])

	rec, payload = doRequest(t, srv, http.MethodGet, "/readyz", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ready", payload["status"])

	svc.notReady = true
	rec, payload = doRequest(t, srv, http.MethodGet, "/readyz", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "not ready", payload["status"])
}

func TestPredict_Success(t *testing.T) {
	svc := &fakeService{assessResp: feasibility.AssessmentResponse{
		PredictionID:                  "pred-1",
		FeasibilityCategory:           "Feasible",
		FeasibilityScore:              0.7,
		RecommendedTankCapacityLiters: 28800,
	}}
	srv := newTestServer(svc)

	rec, payload := doRequest(t, srv, http.MethodPost, "/predict",
		`{"roof_area_m2": 100, "roof_type": "concrete", "latitude": 28.61, "longitude": 77.21}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "pred-1", payload["prediction_id"])
	assert.Equal(t, "Feasible", payload["feasibility_category"])
	assert.Equal(t, 28800.0, payload["recommended_tank_capacity_liters"])
}

func TestPredict_Errors(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		assessErr  error
		wantStatus int
	}{
		{"malformed json", `{"roof_area_m2":`, nil, http.StatusBadRequest},
		{"invalid roof area", `{}`, domain.ErrInvalidRoofArea, http.StatusBadRequest},
		{"internal failure", `{"roof_area_m2": 100}`, errors.New("model exploded"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newTestServer(&fakeService{assessErr: tt.assessErr})
			rec, payload := doRequest(t, srv, http.MethodPost, "/predict", tt.body)
			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.NotEmpty(t, payload["error"])
		})
	}
}

func TestWeather_RequiresCoordinates(t *testing.T) {
	srv := newTestServer(&fakeService{})

	paths := []string{
		"/weather",
		"/weather?lat=28.61",
		"/weather?lat=0&lon=0", // zero coordinates are rejected as missing
		"/weather?lat=999&lon=77.21",
		"/weather/forecast",
		"/weather/alerts",
		"/weather/recharge-metrics",
		"/weather/monsoon-analysis",
		"/weather/historical",
	}
	for _, path := range paths {
		rec, payload := doRequest(t, srv, http.MethodGet, path, "")
		assert.Equal(t, http.StatusBadRequest, rec.Code, path)
		assert.Equal(t, "Latitude and longitude are required", payload["error"], path)
	}
}

func TestWeather_Success(t *testing.T) {
	svc := &fakeService{}
	srv := newTestServer(svc)

	rec, payload := doRequest(t, srv, http.MethodGet, "/weather?lat=28.61&lon=77.21&city_id=42182", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "IMD_API", payload["data_source"])
	assert.Equal(t, 42182, svc.lastCityID)
}

func TestForecast_ShapesPayload(t *testing.T) {
	srv := newTestServer(&fakeService{})

	rec, payload := doRequest(t, srv, http.MethodGet, "/weather/forecast?lat=28.61&lon=77.21", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 2.0, payload["forecast_period_days"])
	assert.Equal(t, 15.0, payload["forecast_total_rainfall_mm"])
	assert.Len(t, payload["forecast_days"], 2)

	// Only the forecast fields are exposed here.
	assert.NotContains(t, payload, "annual_rainfall_mm")
}

func TestAlerts_IncludesCountAndLocation(t *testing.T) {
	srv := newTestServer(&fakeService{})

	rec, payload := doRequest(t, srv, http.MethodGet, "/weather/alerts?lat=28.61&lon=77.21", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1.0, payload["count"])
	loc := payload["location"].(map[string]any)
	assert.Equal(t, 28.61, loc["latitude"])
}

func TestRechargeMetrics_ShapesPayload(t *testing.T) {
	srv := newTestServer(&fakeService{})

	rec, payload := doRequest(t, srv, http.MethodGet, "/weather/recharge-metrics?lat=28.61&lon=77.21", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "IMD_API", payload["data_source"])
	assert.Contains(t, payload, "evaporation_rate_mmday")
	assert.Contains(t, payload, "recharge_seasonality")
	assert.Contains(t, payload, "monsoon_intensity")
}

func TestMonsoonAnalysis_ShapesPayload(t *testing.T) {
	srv := newTestServer(&fakeService{})

	rec, payload := doRequest(t, srv, http.MethodGet, "/weather/monsoon-analysis?lat=28.61&lon=77.21", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	dist := payload["rainfall_distribution"].(map[string]any)
	assert.Equal(t, domain.DefaultAnnualRainfallMM, dist["annual_rainfall_mm"])
	potential := payload["recharge_potential"].(map[string]any)
	assert.Contains(t, potential, "infiltration_potential")
}

func TestCities_ReturnsStationList(t *testing.T) {
	srv := newTestServer(&fakeService{})

	rec, payload := doRequest(t, srv, http.MethodGet, "/weather/cities", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 10.0, payload["count"])

	list := payload["cities"].([]any)
	first := list[0].(map[string]any)
	assert.Equal(t, "Delhi", first["name"])
	assert.Equal(t, 42182.0, first["id"])
}

func TestHistorical_Success(t *testing.T) {
	srv := newTestServer(&fakeService{})

	rec, payload := doRequest(t, srv, http.MethodGet, "/weather/historical?lat=28.61&lon=77.21&days=7", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 7.0, payload["period_days"])
	assert.Len(t, payload["historical_data"], 1)
}

func TestPredictions_PassesFilters(t *testing.T) {
	svc := &fakeService{}
	srv := newTestServer(svc)

	rec, payload := doRequest(t, srv, http.MethodGet, "/predictions?user_id=u-9&limit=5", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1.0, payload["count"])
	assert.Equal(t, "u-9", svc.lastUserID)
	assert.Equal(t, 5, svc.lastLimit)
}

func TestUserPredictions_UsesPathParam(t *testing.T) {
	svc := &fakeService{}
	srv := newTestServer(svc)

	rec, payload := doRequest(t, srv, http.MethodGet, "/predictions/user/u-42", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "u-42", payload["user_id"])
	assert.Equal(t, "u-42", svc.lastUserID)
	assert.Equal(t, 50, svc.lastLimit)
}

func TestDashboard_Success(t *testing.T) {
	srv := newTestServer(&fakeService{})

	rec, payload := doRequest(t, srv, http.MethodGet, "/dashboard", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 7.0, payload["total_predictions"])
	assert.Equal(t, "concrete", payload["most_common_roof_type"])
}

func TestAnalytics_PassesMetricName(t *testing.T) {
	svc := &fakeService{}
	srv := newTestServer(svc)

	rec, payload := doRequest(t, srv, http.MethodGet, "/analytics?metric_name=feasibility_score", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1.0, payload["count"])
	assert.Equal(t, "feasibility_score", svc.lastMetric)
}

func TestAnalyticsTrends_IncludesPeriod(t *testing.T) {
	srv := newTestServer(&fakeService{})

	rec, payload := doRequest(t, srv, http.MethodGet, "/analytics/trends?metric_name=feasibility_score&days=14", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "increasing", payload["trend"])
	assert.Equal(t, 12.5, payload["change_percent"])
	assert.Equal(t, 14.0, payload["period_days"])
}
