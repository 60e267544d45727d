package config

import (
	"errors"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	HTTPAddr        string        `envconfig:"HTTP_ADDR" default:":8080"`
	LogLevel        string        `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat       string        `envconfig:"LOG_FORMAT" default:"json"`
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"10s"`

	// Path to the exported model artifact. The process fails fast at startup
	// when it is missing or inconsistent.
	ModelArtifact string `envconfig:"MODEL_ARTIFACT" default:"models/feasibility_models.json"`

	// SQLite database file for predictions, weather history, and analytics.
	DatabasePath string `envconfig:"DATABASE_PATH" default:"recharge.db"`

	IMD   IMDConfig
	Kafka KafkaConfig
}

// IMDConfig configures the IMD (India Meteorological Department) weather
// collaborator.
type IMDConfig struct {
	BaseURL     string        `envconfig:"IMD_BASE_URL" default:"https://mausam.imd.gov.in/api"`
	CityBaseURL string        `envconfig:"IMD_CITY_BASE_URL" default:"https://city.imd.gov.in/api"`
	Timeout     time.Duration `envconfig:"IMD_TIMEOUT" default:"10s"`
	CacheSize   int           `envconfig:"IMD_CACHE_SIZE" default:"256"`
}

// KafkaConfig configures the optional analytics event publisher.
type KafkaConfig struct {
	Enabled   bool     `envconfig:"KAFKA_ENABLED" default:"false"`
	Brokers   []string `envconfig:"KAFKA_BROKERS"`
	SinkTopic string   `envconfig:"KAFKA_SINK_TOPIC" default:"recharge-assessments"`
}

// Load reads configuration from environment variables, applying defaults
// where unset.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}

	if cfg.ShutdownTimeout <= 0 {
		return nil, errors.New("SHUTDOWN_TIMEOUT must be positive")
	}
	if cfg.ModelArtifact == "" {
		return nil, errors.New("MODEL_ARTIFACT is required")
	}
	if cfg.DatabasePath == "" {
		return nil, errors.New("DATABASE_PATH is required")
	}
	if cfg.IMD.Timeout <= 0 {
		return nil, errors.New("IMD_TIMEOUT must be positive")
	}
	if cfg.IMD.CacheSize <= 0 {
		return nil, errors.New("IMD_CACHE_SIZE must be positive")
	}
	if cfg.Kafka.Enabled && len(cfg.Kafka.Brokers) == 0 {
		return nil, errors.New("KAFKA_ENABLED is true but KAFKA_BROKERS is not set")
	}

	return &cfg, nil
}
