// Package imd implements the weather collaborator against the IMD (India
// Meteorological Department) public APIs. Partial upstream failures degrade
// to whatever sources answered; total failure degrades to the documented
// fallback record marked data_source="FALLBACK". Fetch never fails the
// feasibility computation.
package imd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/sony/gobreaker/v2"

	"github.com/couchcryptid/recharge-feasibility/internal/domain"
)

// Client fetches and combines weather data from the IMD endpoints.
type Client struct {
	baseURL     string // mausam.imd.gov.in APIs
	cityBaseURL string // city.imd.gov.in APIs
	httpClient  *http.Client
	breaker     *gobreaker.CircuitBreaker[[]byte]
	logger      *slog.Logger
}

// NewClient creates an IMD weather client. All outbound calls share one
// circuit breaker: five consecutive failures open it, and while open every
// lookup resolves from the fallback record instead of waiting on timeouts.
func NewClient(baseURL, cityBaseURL string, timeout time.Duration, logger *slog.Logger) *Client {
	breaker := gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
		Name:     "imd-weather",
		Interval: 60 * time.Second,
		Timeout:  30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures > 5
		},
	})

	return &Client{
		baseURL:     baseURL,
		cityBaseURL: cityBaseURL,
		httpClient:  &http.Client{Timeout: timeout},
		breaker:     breaker,
		logger:      logger,
	}
}

// Fetch returns the combined weather record for a location. cityID selects an
// IMD city station when non-zero. The error is always nil today; the
// signature keeps room for callers that want to distinguish hard failures.
func (c *Client) Fetch(ctx context.Context, lat, lon float64, cityID int) (domain.WeatherMetrics, error) {
	current, errCur := c.currentWeather(ctx, cityID)
	forecast, errFc := c.cityForecast(ctx, cityID)
	rainfall, errRain := c.districtRainfall(ctx)

	if errCur != nil && errFc != nil && errRain != nil {
		c.logger.Warn("all IMD sources failed, using fallback weather",
			"lat", lat, "lon", lon,
			"current_error", errCur, "forecast_error", errFc, "rainfall_error", errRain,
		)
		return Fallback(), nil
	}
	if errCur != nil {
		c.logger.Warn("IMD current weather unavailable", "error", errCur)
	}
	if errFc != nil {
		c.logger.Warn("IMD forecast unavailable", "error", errFc)
	}
	if errRain != nil {
		c.logger.Warn("IMD district rainfall unavailable", "error", errRain)
	}

	return combine(current, forecast, rainfall), nil
}

// Alerts returns active weather warnings. Failures yield an empty list; the
// alert feed is advisory and never blocks a response.
func (c *Client) Alerts(ctx context.Context, lat, lon float64) ([]domain.WeatherAlert, error) {
	body, err := c.get(ctx, c.baseURL+"/warnings_district_api.php")
	if err != nil {
		c.logger.Warn("IMD warnings unavailable", "lat", lat, "lon", lon, "error", err)
		return []domain.WeatherAlert{}, nil
	}

	var raw []alertRecord
	if err := json.Unmarshal(body, &raw); err != nil {
		c.logger.Warn("IMD warnings response unparsable", "error", err)
		return []domain.WeatherAlert{}, nil
	}

	alerts := make([]domain.WeatherAlert, 0, len(raw))
	for _, a := range raw {
		alerts = append(alerts, domain.WeatherAlert{
			Type:      orDefault(a.Type, "Unknown"),
			Level:     orDefault(a.Level, "Normal"),
			Message:   a.Message,
			Timestamp: a.Timestamp,
		})
	}
	return alerts, nil
}

// Fallback returns the documented default weather record with derived
// recharge metrics filled in, marked as non-live data.
func Fallback() domain.WeatherMetrics {
	return domain.FallbackWeatherMetrics()
}

func (c *Client) currentWeather(ctx context.Context, cityID int) (*currentRecord, error) {
	u := c.baseURL + "/current_wx_api.php"
	if cityID != 0 {
		u = fmt.Sprintf("%s?id=%d", u, cityID)
	}
	body, err := c.get(ctx, u)
	if err != nil {
		return nil, err
	}
	var rec currentRecord
	if err := json.Unmarshal(body, &rec); err != nil {
		return nil, fmt.Errorf("decode current weather: %w", err)
	}
	return &rec, nil
}

func (c *Client) cityForecast(ctx context.Context, cityID int) ([]forecastRecord, error) {
	u := c.cityBaseURL + "/cityweather.php"
	if cityID != 0 {
		u = fmt.Sprintf("%s?id=%d", u, cityID)
	}
	body, err := c.get(ctx, u)
	if err != nil {
		return nil, err
	}
	var days []forecastRecord
	if err := json.Unmarshal(body, &days); err != nil {
		return nil, fmt.Errorf("decode forecast: %w", err)
	}
	if len(days) > 7 {
		days = days[:7]
	}
	return days, nil
}

func (c *Client) districtRainfall(ctx context.Context) (*rainfallSummary, error) {
	body, err := c.get(ctx, c.baseURL+"/districtwise_rainfall_api.php")
	if err != nil {
		return nil, err
	}
	var districts []rainfallRecord
	if err := json.Unmarshal(body, &districts); err != nil {
		return nil, fmt.Errorf("decode district rainfall: %w", err)
	}

	var total float64
	var count int
	for _, d := range districts {
		if d.Rainfall > 0 {
			total += d.Rainfall
			count++
		}
	}
	if count == 0 {
		return &rainfallSummary{}, nil
	}
	return &rainfallSummary{AnnualMM: total / float64(count), DataPoints: count}, nil
}

func (c *Client) get(ctx context.Context, url string) ([]byte, error) {
	return c.breaker.Execute(func() ([]byte, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, fmt.Errorf("create request: %w", err)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, fmt.Errorf("imd request: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
			return nil, fmt.Errorf("imd API error: status %d: %s", resp.StatusCode, body)
		}

		return io.ReadAll(resp.Body)
	})
}

// combine folds the answering sources over the default record, then derives
// forecast aggregates and recharge metrics. Source precedence mirrors the
// upstream collector: defaults, current conditions, forecast, rainfall.
func combine(current *currentRecord, forecast []forecastRecord, rainfall *rainfallSummary) domain.WeatherMetrics {
	wx := domain.DefaultWeatherMetrics()

	if current != nil {
		wx.AvgTemperatureC = nonZero(current.Temperature, wx.AvgTemperatureC)
		wx.HumidityPercent = nonZero(current.Humidity, wx.HumidityPercent)
		wx.PressureHPa = nonZero(current.Pressure, wx.PressureHPa)
		wx.WindSpeedKMH = nonZero(current.WindSpeed, wx.WindSpeedKMH)
		wx.CurrentCondition = orDefault(current.Condition, "Clear")
	}

	if len(forecast) > 0 {
		days := make([]domain.ForecastDay, len(forecast))
		var tempSum, rainSum float64
		rainyDays := 0
		for i, d := range forecast {
			day := domain.ForecastDay{
				Date:             d.Date,
				MaxTempC:         nonZero(d.MaxTemp, 30),
				MinTempC:         nonZero(d.MinTemp, 20),
				RainfallMM:       d.Rainfall,
				HumidityPercent:  nonZero(d.Humidity, domain.DefaultHumidityPercent),
				WindSpeedKMH:     nonZero(d.WindSpeed, domain.DefaultWindSpeedKMH),
				WeatherCondition: orDefault(d.Condition, "Clear"),
			}
			days[i] = day
			tempSum += (day.MaxTempC + day.MinTempC) / 2
			rainSum += day.RainfallMM
			if day.RainfallMM > 0 {
				rainyDays++
			}
			if day.RainfallMM > wx.MaxDailyRainfallMM {
				wx.MaxDailyRainfallMM = day.RainfallMM
			}
		}
		wx.ForecastDays = days
		wx.ForecastPeriodDays = len(days)
		wx.ForecastTotalRainfallMM = rainSum
		wx.ForecastRainyDays = rainyDays
		wx.AvgTemperatureC = tempSum / float64(len(days))
	}

	if rainfall != nil && rainfall.DataPoints > 0 {
		wx.AnnualRainfallMM = rainfall.AnnualMM
	}

	wx.DataSource = "IMD_API"
	wx.DataTimestamp = domain.Clock().Now().UTC().Format(time.RFC3339)
	return withRechargeMetrics(wx)
}

// withRechargeMetrics runs the recharge estimator on the combined record and
// merges its outputs, including the refined evaporation rate.
func withRechargeMetrics(wx domain.WeatherMetrics) domain.WeatherMetrics {
	m := domain.EstimateRecharge(domain.RechargeInput{
		AvgTemperatureC:    wx.AvgTemperatureC,
		HumidityPercent:    wx.HumidityPercent,
		WindSpeedKMH:       wx.WindSpeedKMH,
		AnnualRainfallMM:   wx.AnnualRainfallMM,
		MaxDailyRainfallMM: wx.MaxDailyRainfallMM,
	})
	wx.EvaporationRateMMDay = m.EvaporationRateMMDay
	wx.InfiltrationPotential = m.InfiltrationPotential
	wx.RechargeEfficiency = m.RechargeEfficiency
	wx.Seasonality = m.Seasonality
	wx.Monsoon = m.Monsoon
	return wx
}

func nonZero(v, def float64) float64 {
	if v == 0 {
		return def
	}
	return v
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

// IMD API response types.

type currentRecord struct {
	Temperature float64 `json:"temperature"`
	Humidity    float64 `json:"humidity"`
	Pressure    float64 `json:"pressure"`
	WindSpeed   float64 `json:"wind_speed"`
	Condition   string  `json:"condition"`
}

type forecastRecord struct {
	Date      string  `json:"date"`
	MaxTemp   float64 `json:"max_temp"`
	MinTemp   float64 `json:"min_temp"`
	Rainfall  float64 `json:"rainfall"`
	Humidity  float64 `json:"humidity"`
	WindSpeed float64 `json:"wind_speed"`
	Condition string  `json:"condition"`
}

type rainfallRecord struct {
	District string  `json:"district"`
	Rainfall float64 `json:"rainfall"`
}

type alertRecord struct {
	Type      string `json:"type"`
	Level     string `json:"level"`
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
}

type rainfallSummary struct {
	AnnualMM   float64
	DataPoints int
}
