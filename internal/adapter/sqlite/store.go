// Package sqlite persists prediction history, weather observations, and
// analytics samples in an embedded SQLite database.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/couchcryptid/recharge-feasibility/internal/domain"
)

// Store wraps the database handle. All methods are safe for concurrent use.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the database at path, configures WAL mode, and
// applies the schema.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("exec %s: %w", pragma, err)
		}
	}
	if _, err := db.Exec(migration); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &Store{db: db}, nil
}

const migration = `
CREATE TABLE IF NOT EXISTS predictions (
	id                   TEXT PRIMARY KEY,
	user_id              TEXT,
	latitude             REAL NOT NULL,
	longitude            REAL NOT NULL,
	roof_area_m2         REAL NOT NULL,
	roof_type            TEXT NOT NULL,
	feasibility_category TEXT NOT NULL,
	feasibility_score    REAL NOT NULL,
	structure            TEXT NOT NULL,
	tank_capacity_liters INTEGER NOT NULL,
	weather              TEXT NOT NULL,
	created_at           DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS weather_data (
	id                     TEXT PRIMARY KEY,
	latitude               REAL NOT NULL,
	longitude              REAL NOT NULL,
	annual_rainfall_mm     REAL NOT NULL,
	max_daily_rainfall_mm  REAL NOT NULL,
	rainy_days_count       INTEGER NOT NULL,
	avg_temperature_c      REAL NOT NULL,
	evaporation_rate_mmday REAL NOT NULL,
	created_at             DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS analytics (
	id           TEXT PRIMARY KEY,
	metric_name  TEXT NOT NULL,
	metric_value REAL NOT NULL,
	location     TEXT,
	created_at   DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_predictions_user_id ON predictions(user_id);
CREATE INDEX IF NOT EXISTS idx_predictions_created_at ON predictions(created_at);
CREATE INDEX IF NOT EXISTS idx_weather_data_created_at ON weather_data(created_at);
CREATE INDEX IF NOT EXISTS idx_analytics_metric_name ON analytics(metric_name);
`

func (s *Store) Close() error {
	return s.db.Close()
}

// Ping reports whether the database is reachable. The readiness probe calls
// this.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// SavePrediction inserts an assessment summary. The ID must already be set
// by the caller.
func (s *Store) SavePrediction(ctx context.Context, rec domain.PredictionRecord) error {
	weatherJSON, err := json.Marshal(rec.Weather)
	if err != nil {
		return fmt.Errorf("marshal weather: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO predictions
			(id, user_id, latitude, longitude, roof_area_m2, roof_type,
			 feasibility_category, feasibility_score, structure,
			 tank_capacity_liters, weather, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.UserID, rec.Latitude, rec.Longitude, rec.RoofAreaM2, rec.RoofType,
		rec.FeasibilityCategory, rec.FeasibilityScore, rec.Structure,
		rec.TankCapacityLiters, string(weatherJSON), rec.CreatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("insert prediction %s: %w", rec.ID, err)
	}
	return nil
}

// SaveWeather inserts a weather observation.
func (s *Store) SaveWeather(ctx context.Context, row domain.WeatherRow) error {
	if row.ID == "" {
		row.ID = uuid.New().String()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO weather_data
			(id, latitude, longitude, annual_rainfall_mm, max_daily_rainfall_mm,
			 rainy_days_count, avg_temperature_c, evaporation_rate_mmday, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		row.ID, row.Latitude, row.Longitude, row.AnnualRainfallMM, row.MaxDailyRainfallMM,
		row.RainyDaysCount, row.AvgTemperatureC, row.EvaporationRateMMDay, row.CreatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("insert weather observation: %w", err)
	}
	return nil
}

// SaveAnalytics inserts one metric sample.
func (s *Store) SaveAnalytics(ctx context.Context, row domain.AnalyticsRow) error {
	if row.ID == "" {
		row.ID = uuid.New().String()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO analytics (id, metric_name, metric_value, location, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		row.ID, row.MetricName, row.MetricValue, row.Location, row.CreatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("insert analytics sample %s: %w", row.MetricName, err)
	}
	return nil
}

// Predictions returns stored assessments, newest first. An empty userID
// returns assessments for all users.
func (s *Store) Predictions(ctx context.Context, userID string, limit int) ([]domain.PredictionRecord, error) {
	if limit <= 0 {
		limit = 50
	}

	query := `SELECT id, user_id, latitude, longitude, roof_area_m2, roof_type,
			feasibility_category, feasibility_score, structure,
			tank_capacity_liters, weather, created_at
		FROM predictions`
	args := []any{}
	if userID != "" {
		query += ` WHERE user_id = ?`
		args = append(args, userID)
	}
	query += ` ORDER BY created_at DESC LIMIT ?`
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query predictions: %w", err)
	}
	defer rows.Close()

	records := []domain.PredictionRecord{}
	for rows.Next() {
		var rec domain.PredictionRecord
		var weatherJSON string
		if err := rows.Scan(&rec.ID, &rec.UserID, &rec.Latitude, &rec.Longitude,
			&rec.RoofAreaM2, &rec.RoofType, &rec.FeasibilityCategory,
			&rec.FeasibilityScore, &rec.Structure, &rec.TankCapacityLiters,
			&weatherJSON, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan prediction: %w", err)
		}
		if err := json.Unmarshal([]byte(weatherJSON), &rec.Weather); err != nil {
			return nil, fmt.Errorf("decode weather for prediction %s: %w", rec.ID, err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// WeatherHistory returns stored weather observations near a location, newest
// first. Rows within about half a degree of the requested point match.
func (s *Store) WeatherHistory(ctx context.Context, lat, lon float64, limit int) ([]domain.WeatherRow, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, latitude, longitude, annual_rainfall_mm, max_daily_rainfall_mm,
			rainy_days_count, avg_temperature_c, evaporation_rate_mmday, created_at
		 FROM weather_data
		 WHERE latitude BETWEEN ? AND ? AND longitude BETWEEN ? AND ?
		 ORDER BY created_at DESC LIMIT ?`,
		lat-0.5, lat+0.5, lon-0.5, lon+0.5, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query weather history: %w", err)
	}
	defer rows.Close()

	history := []domain.WeatherRow{}
	for rows.Next() {
		var row domain.WeatherRow
		if err := rows.Scan(&row.ID, &row.Latitude, &row.Longitude,
			&row.AnnualRainfallMM, &row.MaxDailyRainfallMM, &row.RainyDaysCount,
			&row.AvgTemperatureC, &row.EvaporationRateMMDay, &row.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan weather observation: %w", err)
		}
		history = append(history, row)
	}
	return history, rows.Err()
}

// Analytics returns samples for a metric recorded in the last N days, newest
// first.
func (s *Store) Analytics(ctx context.Context, metric string, days int) ([]domain.AnalyticsRow, error) {
	if days <= 0 {
		days = 30
	}
	cutoff := time.Now().UTC().AddDate(0, 0, -days)

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, metric_name, metric_value, location, created_at
		 FROM analytics
		 WHERE metric_name = ? AND created_at >= ?
		 ORDER BY created_at DESC`,
		metric, cutoff,
	)
	if err != nil {
		return nil, fmt.Errorf("query analytics %s: %w", metric, err)
	}
	defer rows.Close()

	samples := []domain.AnalyticsRow{}
	for rows.Next() {
		var row domain.AnalyticsRow
		if err := rows.Scan(&row.ID, &row.MetricName, &row.MetricValue,
			&row.Location, &row.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan analytics sample: %w", err)
		}
		samples = append(samples, row)
	}
	return samples, rows.Err()
}

// DashboardStats aggregates the prediction history.
func (s *Store) DashboardStats(ctx context.Context) (domain.DashboardStats, error) {
	var stats domain.DashboardStats

	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*),
			COALESCE(AVG(feasibility_score), 0),
			COALESCE(AVG(tank_capacity_liters), 0)
		 FROM predictions`,
	).Scan(&stats.TotalPredictions, &stats.AverageFeasibilityScore, &stats.AverageTankCapacity)
	if err != nil {
		return stats, fmt.Errorf("aggregate predictions: %w", err)
	}

	midnight := time.Now().UTC().Truncate(24 * time.Hour)
	err = s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM predictions WHERE created_at >= ?`, midnight,
	).Scan(&stats.TodayPredictions)
	if err != nil {
		return stats, fmt.Errorf("count today's predictions: %w", err)
	}

	err = s.db.QueryRowContext(ctx,
		`SELECT roof_type FROM predictions
		 GROUP BY roof_type ORDER BY COUNT(*) DESC, roof_type ASC LIMIT 1`,
	).Scan(&stats.MostCommonRoofType)
	if err != nil && err != sql.ErrNoRows {
		return stats, fmt.Errorf("most common roof type: %w", err)
	}

	return stats, nil
}
