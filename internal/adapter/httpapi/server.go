// Package httpapi exposes the feasibility service over HTTP.
package httpapi

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/couchcryptid/recharge-feasibility/internal/domain"
	"github.com/couchcryptid/recharge-feasibility/internal/feasibility"
)

// Feasibility is the service surface the handlers consume.
type Feasibility interface {
	Assess(ctx context.Context, req domain.SiteRequest) (feasibility.AssessmentResponse, error)
	Weather(ctx context.Context, lat, lon float64, cityID int) (domain.WeatherMetrics, error)
	Alerts(ctx context.Context, lat, lon float64) ([]domain.WeatherAlert, error)
	Predictions(ctx context.Context, userID string, limit int) ([]domain.PredictionRecord, error)
	Dashboard(ctx context.Context) (domain.DashboardStats, error)
	Analytics(ctx context.Context, metric string, days int) ([]domain.AnalyticsRow, error)
	AnalyticsTrends(ctx context.Context, metric string, days int) (feasibility.TrendReport, error)
	WeatherHistory(ctx context.Context, lat, lon float64, limit int) ([]domain.WeatherRow, error)
	CheckReadiness(ctx context.Context) error
}

// Server routes HTTP traffic to the feasibility service.
type Server struct {
	httpServer *http.Server
	svc        Feasibility
	validate   *validator.Validate
	logger     *slog.Logger
}

// NewServer creates the HTTP server with all API, health, and metrics routes
// mounted.
func NewServer(addr string, svc Feasibility, logger *slog.Logger) *Server {
	s := &Server{
		svc:      svc,
		validate: validator.New(),
		logger:   logger,
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)

	r.Get("/healthz", s.handleHealth)
	r.Get("/readyz", s.handleReady)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Post("/predict", s.handlePredict)

	r.Route("/weather", func(r chi.Router) {
		r.Get("/", s.handleWeather)
		r.Get("/forecast", s.handleForecast)
		r.Get("/alerts", s.handleAlerts)
		r.Get("/recharge-metrics", s.handleRechargeMetrics)
		r.Get("/monsoon-analysis", s.handleMonsoonAnalysis)
		r.Get("/cities", s.handleCities)
		r.Get("/historical", s.handleHistorical)
	})

	r.Get("/predictions", s.handlePredictions)
	r.Get("/predictions/user/{user_id}", s.handleUserPredictions)
	r.Get("/dashboard", s.handleDashboard)
	r.Get("/analytics", s.handleAnalytics)
	r.Get("/analytics/trends", s.handleAnalyticsTrends)

	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration_ms", time.Since(start).Milliseconds(),
		)
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := s.svc.CheckReadiness(ctx); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status": "not ready",
			"error":  err.Error(),
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}
