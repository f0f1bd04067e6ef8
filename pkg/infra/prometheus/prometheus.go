package prometheus

import (
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var registry = prometheus.NewRegistry()

var registerer = prometheus.WrapRegistererWithPrefix("qscore_", registry)

var (
	// Latency buckets in milliseconds
	latencyBuckets = []float64{
		5, 10, 25,
		50, 100, 250,
		500, 1000, 2500,
		5000, 10000, 30000,
	}

	RequestTotal = promauto.With(registerer).NewCounterVec(
		prometheus.CounterOpts{
			Name: "requests_total",
			Help: "Total number of HTTP requests processed",
		},
		[]string{"route", "method", "status"},
	)

	RequestLatency = promauto.With(registerer).NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "request_latency_ms",
			Help:    "HTTP request latency in milliseconds",
			Buckets: latencyBuckets,
		},
		[]string{"route"},
	)

	AnalysesTotal = promauto.With(registerer).NewCounterVec(
		prometheus.CounterOpts{
			Name: "analyses_total",
			Help: "Number of completed address analyses by grade",
		},
		[]string{"grade", "source"},
	)

	UpstreamLatency = promauto.With(registerer).NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "upstream_latency_ms",
			Help:    "Chain data provider latency in milliseconds",
			Buckets: latencyBuckets,
		},
		[]string{"provider", "operation"},
	)

	UpstreamErrors = promauto.With(registerer).NewCounterVec(
		prometheus.CounterOpts{
			Name: "upstream_errors_total",
			Help: "Failed chain data provider calls",
		},
		[]string{"provider", "operation"},
	)

	FactCacheResults = promauto.With(registerer).NewCounterVec(
		prometheus.CounterOpts{
			Name: "fact_cache_results_total",
			Help: "Fact cache lookups by result (hit, miss, error)",
		},
		[]string{"result"},
	)
)

type MetricsConfig struct {
	EnableLatency         bool
	EnableUpstreamLatency bool
}

func DefaultMetricsConfig() MetricsConfig {
	return MetricsConfig{
		EnableLatency:         true,
		EnableUpstreamLatency: true,
	}
}

var Config MetricsConfig

func Initialize(cfg MetricsConfig) {
	Config = cfg
	registry.MustRegister(
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		collectors.NewGoCollector(),
	)

	prometheus.DefaultRegisterer = registry
	prometheus.DefaultGatherer = registry
}

// Handler exposes the service registry in the Prometheus text format.
func Handler() http.Handler {
	return promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
}

// StatusClass folds an HTTP status code into "2xx", "4xx" and so on.
func StatusClass(code int) string {
	if code < 100 || code > 599 {
		return "5xx"
	}
	return fmt.Sprintf("%dxx", code/100)
}

// ElapsedMs returns the time since start in fractional milliseconds.
func ElapsedMs(start time.Time) float64 {
	return float64(time.Since(start)) / float64(time.Millisecond)
}

// ObserveUpstream records one provider call started at start.
func ObserveUpstream(provider, operation string, start time.Time, err error) {
	if err != nil {
		UpstreamErrors.WithLabelValues(provider, operation).Inc()
	}
	if !Config.EnableUpstreamLatency {
		return
	}
	UpstreamLatency.WithLabelValues(provider, operation).Observe(ElapsedMs(start))
}
