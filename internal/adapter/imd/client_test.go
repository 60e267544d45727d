package imd

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/recharge-feasibility/internal/domain"
)

const contentTypeJSON = "application/json"

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestClient(baseURL string) *Client {
	return NewClient(baseURL, baseURL, 5*time.Second, testLogger())
}

func useFixedClock(t *testing.T) {
	t.Helper()
	domain.SetClock(clockwork.NewFakeClockAt(time.Date(2025, time.July, 15, 12, 0, 0, 0, time.UTC)))
	t.Cleanup(func() { domain.SetClock(clockwork.NewRealClock()) })
}

// imdHandler routes the three IMD endpoints to canned JSON bodies. A nil
// body for a path answers 500.
func imdHandler(t *testing.T, bodies map[string]string) http.HandlerFunc {
	t.Helper()
	return func(w http.ResponseWriter, r *http.Request) {
		body, ok := bodies[r.URL.Path]
		if !ok || body == "" {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", contentTypeJSON)
		_, err := w.Write([]byte(body))
		require.NoError(t, err)
	}
}

func TestClient_Fetch_CombinesAllSources(t *testing.T) {
	useFixedClock(t)

	srv := httptest.NewServer(imdHandler(t, map[string]string{
		"/current_wx_api.php": `{"temperature": 29, "humidity": 65, "pressure": 1008, "wind_speed": 14, "condition": "Partly cloudy"}`,
		"/cityweather.php": `[
			{"date": "2025-07-16", "max_temp": 32, "min_temp": 24, "rainfall": 12, "humidity": 70, "wind_speed": 10, "condition": "Rain"},
			{"date": "2025-07-17", "max_temp": 30, "min_temp": 22, "rainfall": 0, "humidity": 60, "wind_speed": 8, "condition": "Clear"},
			{"date": "2025-07-18", "max_temp": 34, "min_temp": 26, "rainfall": 80, "humidity": 85, "wind_speed": 20, "condition": "Heavy rain"}
		]`,
		"/districtwise_rainfall_api.php": `[
			{"district": "North", "rainfall": 900},
			{"district": "South", "rainfall": 1100},
			{"district": "East", "rainfall": 0}
		]`,
	}))
	defer srv.Close()

	wx, err := newTestClient(srv.URL).Fetch(context.Background(), 28.61, 77.21, 42182)
	require.NoError(t, err)

	assert.Equal(t, "IMD_API", wx.DataSource)
	assert.Equal(t, "2025-07-15T12:00:00Z", wx.DataTimestamp)

	// Forecast mean of daily midpoints overrides the current reading.
	assert.InDelta(t, 28.0, wx.AvgTemperatureC, 1e-9)
	assert.Equal(t, 65.0, wx.HumidityPercent)
	assert.Equal(t, 1008.0, wx.PressureHPa)
	assert.Equal(t, 14.0, wx.WindSpeedKMH)
	assert.Equal(t, "Partly cloudy", wx.CurrentCondition)

	require.Len(t, wx.ForecastDays, 3)
	assert.Equal(t, 3, wx.ForecastPeriodDays)
	assert.InDelta(t, 92.0, wx.ForecastTotalRainfallMM, 1e-9)
	assert.Equal(t, 2, wx.ForecastRainyDays)

	// Wettest forecast day exceeds the 50 mm default.
	assert.Equal(t, 80.0, wx.MaxDailyRainfallMM)

	// District average ignores zero-rainfall rows.
	assert.InDelta(t, 1000.0, wx.AnnualRainfallMM, 1e-9)

	// Derived metrics come from the combined readings.
	assert.InDelta(t, 0.81, wx.EvaporationRateMMDay, 1e-9)
	assert.InDelta(t, 0.5, wx.InfiltrationPotential, 1e-9)
	assert.InDelta(t, 0.46, wx.RechargeEfficiency, 1e-9)
	assert.Equal(t, "Monsoon", wx.Seasonality.Season)
	assert.Equal(t, "Low", wx.Monsoon.Level) // 1000 mm is not strictly above the Moderate band
}

func TestClient_Fetch_PartialFailureStillLive(t *testing.T) {
	useFixedClock(t)

	srv := httptest.NewServer(imdHandler(t, map[string]string{
		"/cityweather.php": `[{"date": "2025-07-16", "max_temp": 32, "min_temp": 24, "rainfall": 5}]`,
	}))
	defer srv.Close()

	wx, err := newTestClient(srv.URL).Fetch(context.Background(), 19.07, 72.87, 43003)
	require.NoError(t, err)

	assert.Equal(t, "IMD_API", wx.DataSource)
	assert.InDelta(t, 28.0, wx.AvgTemperatureC, 1e-9)
	// Absent sources keep the documented defaults.
	assert.Equal(t, domain.DefaultAnnualRainfallMM, wx.AnnualRainfallMM)
	assert.Equal(t, domain.DefaultHumidityPercent, wx.HumidityPercent)
}

func TestClient_Fetch_TotalFailureFallsBack(t *testing.T) {
	useFixedClock(t)

	srv := httptest.NewServer(imdHandler(t, nil))
	defer srv.Close()

	wx, err := newTestClient(srv.URL).Fetch(context.Background(), 12.97, 77.59, 43295)
	require.NoError(t, err)

	assert.Equal(t, "FALLBACK", wx.DataSource)
	assert.Equal(t, domain.DefaultAnnualRainfallMM, wx.AnnualRainfallMM)
	assert.Equal(t, domain.DefaultAvgTemperatureC, wx.AvgTemperatureC)

	// Recharge metrics are still derived from the defaults.
	assert.InDelta(t, 0.54, wx.EvaporationRateMMDay, 1e-9)
	assert.InDelta(t, 0.6, wx.InfiltrationPotential, 1e-9)
	assert.InDelta(t, 0.568, wx.RechargeEfficiency, 1e-9)
	assert.Equal(t, "Monsoon", wx.Seasonality.Season)
}

func TestClient_Fetch_ForecastDayDefaults(t *testing.T) {
	useFixedClock(t)

	srv := httptest.NewServer(imdHandler(t, map[string]string{
		"/cityweather.php": `[{"date": "2025-07-16"}]`,
	}))
	defer srv.Close()

	wx, err := newTestClient(srv.URL).Fetch(context.Background(), 28.61, 77.21, 0)
	require.NoError(t, err)

	require.Len(t, wx.ForecastDays, 1)
	day := wx.ForecastDays[0]
	assert.Equal(t, 30.0, day.MaxTempC)
	assert.Equal(t, 20.0, day.MinTempC)
	assert.Equal(t, 0.0, day.RainfallMM)
	assert.Equal(t, domain.DefaultHumidityPercent, day.HumidityPercent)
	assert.Equal(t, "Clear", day.WeatherCondition)
}

func TestClient_Fetch_ForecastTruncatedToSevenDays(t *testing.T) {
	useFixedClock(t)

	srv := httptest.NewServer(imdHandler(t, map[string]string{
		"/cityweather.php": `[
			{"max_temp": 30, "min_temp": 20}, {"max_temp": 30, "min_temp": 20},
			{"max_temp": 30, "min_temp": 20}, {"max_temp": 30, "min_temp": 20},
			{"max_temp": 30, "min_temp": 20}, {"max_temp": 30, "min_temp": 20},
			{"max_temp": 30, "min_temp": 20}, {"max_temp": 30, "min_temp": 20},
			{"max_temp": 30, "min_temp": 20}
		]`,
	}))
	defer srv.Close()

	wx, err := newTestClient(srv.URL).Fetch(context.Background(), 28.61, 77.21, 42182)
	require.NoError(t, err)
	assert.Len(t, wx.ForecastDays, 7)
	assert.Equal(t, 7, wx.ForecastPeriodDays)
}

func TestClient_Alerts_Success(t *testing.T) {
	srv := httptest.NewServer(imdHandler(t, map[string]string{
		"/warnings_district_api.php": `[
			{"type": "Heavy Rainfall", "level": "Orange", "message": "Heavy to very heavy rainfall expected", "timestamp": "2025-07-15T06:00:00Z"},
			{"message": "No details"}
		]`,
	}))
	defer srv.Close()

	alerts, err := newTestClient(srv.URL).Alerts(context.Background(), 28.61, 77.21)
	require.NoError(t, err)
	require.Len(t, alerts, 2)

	assert.Equal(t, "Heavy Rainfall", alerts[0].Type)
	assert.Equal(t, "Orange", alerts[0].Level)
	assert.Equal(t, "Heavy to very heavy rainfall expected", alerts[0].Message)

	// Missing fields take neutral labels.
	assert.Equal(t, "Unknown", alerts[1].Type)
	assert.Equal(t, "Normal", alerts[1].Level)
}

func TestClient_Alerts_FailureReturnsEmpty(t *testing.T) {
	srv := httptest.NewServer(imdHandler(t, nil))
	defer srv.Close()

	alerts, err := newTestClient(srv.URL).Alerts(context.Background(), 28.61, 77.21)
	require.NoError(t, err)
	assert.Empty(t, alerts)
}

func TestClient_Fetch_CityIDInQuery(t *testing.T) {
	useFixedClock(t)

	var gotID string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/cityweather.php" {
			gotID = r.URL.Query().Get("id")
		}
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).Fetch(context.Background(), 28.61, 77.21, 42182)
	require.NoError(t, err)
	assert.Equal(t, "42182", gotID)
}
