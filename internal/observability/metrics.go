package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the
// feasibility service.
type Metrics struct {
	AssessmentsTotal   *prometheus.CounterVec // labels: outcome={ok,invalid_input,error}
	AssessmentDuration prometheus.Histogram
	CoercionWarnings   prometheus.Counter
	TankCapacityLiters prometheus.Histogram

	// Weather collaborator metrics.
	WeatherFetches      *prometheus.CounterVec // labels: source={IMD_API,FALLBACK,error}
	WeatherAPIDuration  prometheus.Histogram
	WeatherCacheLookups *prometheus.CounterVec // labels: result={hit,miss}

	// Persistence and analytics sinks, best-effort by design.
	PersistFailures prometheus.Counter
	EventsPublished prometheus.Counter
	PublishFailures prometheus.Counter
}

// NewMetrics creates and registers all service metrics with the default
// Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.AssessmentsTotal,
		m.AssessmentDuration,
		m.CoercionWarnings,
		m.TankCapacityLiters,
		m.WeatherFetches,
		m.WeatherAPIDuration,
		m.WeatherCacheLookups,
		m.PersistFailures,
		m.EventsPublished,
		m.PublishFailures,
	)
	return m
}

// NewMetricsForTesting creates Metrics without registering them, avoiding
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		AssessmentsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "recharge_api",
			Name:      "assessments_total",
			Help:      "Feasibility assessments by outcome.",
		}, []string{"outcome"}),
		AssessmentDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "recharge_api",
			Name:      "assessment_duration_seconds",
			Help:      "End-to-end duration of one feasibility assessment.",
			Buckets:   []float64{0.005, 0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10},
		}),
		CoercionWarnings: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "recharge_api",
			Name:      "coercion_warnings_total",
			Help:      "Request fields that could not be parsed as numbers and were coerced to 0.",
		}),
		TankCapacityLiters: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "recharge_api",
			Name:      "tank_capacity_liters",
			Help:      "Distribution of recommended tank capacities.",
			Buckets:   []float64{1000, 5000, 10000, 20000, 30000, 50000, 72000},
		}),
		WeatherFetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "recharge_api",
			Name:      "weather_fetches_total",
			Help:      "Weather lookups by reported data source.",
		}, []string{"source"}),
		WeatherAPIDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "recharge_api",
			Name:      "weather_api_duration_seconds",
			Help:      "Upstream weather API request duration in seconds.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}),
		WeatherCacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "recharge_api",
			Name:      "weather_cache_total",
			Help:      "Weather cache lookups by result.",
		}, []string{"result"}),
		PersistFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "recharge_api",
			Name:      "persist_failures_total",
			Help:      "Prediction records that could not be written to the store.",
		}),
		EventsPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "recharge_api",
			Name:      "assessment_events_published_total",
			Help:      "Assessment events published to the analytics sink topic.",
		}),
		PublishFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "recharge_api",
			Name:      "assessment_event_publish_failures_total",
			Help:      "Assessment events that could not be published.",
		}),
	}
}
