package prometheus

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"net/http"
)

var registry = prometheus.NewRegistry()

var registerer = prometheus.WrapRegistererWith(nil, registry)

var (
	// Latency buckets in milliseconds: the moderation call should sit in
	// the sub-second range, inference calls in the multi-second range.
	latencyBuckets = []float64{
		25, 50, 100,
		250, 500, 1000,
		2500, 5000, 10000,
		15000, 30000,
	}

	RequestTotal = promauto.With(registerer).NewCounterVec(
		prometheus.CounterOpts{
			Name: "toneguard_requests_total",
			Help: "Total number of API requests processed",
		},
		[]string{"method", "status"},
	)

	RequestLatency = promauto.With(registerer).NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "toneguard_latency_ms",
			Help:    "API request latency in milliseconds",
			Buckets: latencyBuckets,
		},
		[]string{"path"},
	)

	UpstreamRequestTotal = promauto.With(registerer).NewCounterVec(
		prometheus.CounterOpts{
			Name: "toneguard_upstream_requests_total",
			Help: "Total number of upstream lookups by target and outcome",
		},
		[]string{"target", "outcome"},
	)

	UpstreamLatency = promauto.With(registerer).NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "toneguard_upstream_latency_ms",
			Help:    "Upstream lookup latency in milliseconds",
			Buckets: latencyBuckets,
		},
		[]string{"target"},
	)

	CacheEvents = promauto.With(registerer).NewCounterVec(
		prometheus.CounterOpts{
			Name: "toneguard_cache_events_total",
			Help: "Memoization cache hits and misses",
		},
		[]string{"cache", "event"},
	)
)

type Config struct {
	EnableLatency  bool
	EnableUpstream bool
}

var metricsConfig Config

func Initialize(cfg Config) {
	metricsConfig = cfg
}

func GetConfig() Config {
	return metricsConfig
}

// Handler exposes the registry for the dedicated metrics listener.
func Handler() http.Handler {
	return promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
}
