package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/couchcryptid/recharge-feasibility/internal/adapter/httpapi"
	"github.com/couchcryptid/recharge-feasibility/internal/adapter/imd"
	kafkaadapter "github.com/couchcryptid/recharge-feasibility/internal/adapter/kafka"
	"github.com/couchcryptid/recharge-feasibility/internal/adapter/model"
	"github.com/couchcryptid/recharge-feasibility/internal/adapter/sqlite"
	"github.com/couchcryptid/recharge-feasibility/internal/config"
	"github.com/couchcryptid/recharge-feasibility/internal/feasibility"
	"github.com/couchcryptid/recharge-feasibility/internal/observability"
)

func main() {
	// Local development convenience; absence of a .env file is fine.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg.LogLevel, cfg.LogFormat)
	metrics := observability.NewMetrics()

	models, err := model.Load(cfg.ModelArtifact)
	if err != nil {
		logger.Error("failed to load model artifact", "path", cfg.ModelArtifact, "error", err)
		os.Exit(1)
	}
	logger.Info("model artifact loaded", "path", cfg.ModelArtifact, "features", len(models.FeatureSchema()))

	store, err := sqlite.Open(cfg.DatabasePath)
	if err != nil {
		logger.Error("failed to open database", "path", cfg.DatabasePath, "error", err)
		os.Exit(1)
	}

	imdClient := imd.NewClient(cfg.IMD.BaseURL, cfg.IMD.CityBaseURL, cfg.IMD.Timeout, logger)
	weather := imd.NewCachedClient(imdClient, cfg.IMD.CacheSize, metrics)

	// The analytics sink is feature-flagged via KAFKA_ENABLED.
	var publisher feasibility.Publisher
	var writer *kafkaadapter.Writer
	if cfg.Kafka.Enabled {
		writer = kafkaadapter.NewWriter(cfg.Kafka.Brokers, cfg.Kafka.SinkTopic, logger)
		publisher = writer
		logger.Info("kafka analytics sink enabled", "topic", cfg.Kafka.SinkTopic)
	} else {
		logger.Info("kafka analytics sink disabled")
	}

	svc := feasibility.New(weather, models, store, publisher, logger, metrics)
	srv := httpapi.NewServer(cfg.HTTPAddr, svc, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if writer != nil {
		if err := writer.Close(); err != nil {
			logger.Error("kafka writer close error", "error", err)
		}
	}
	if err := store.Close(); err != nil {
		logger.Error("database close error", "error", err)
	}

	logger.Info("shutdown complete")
}
