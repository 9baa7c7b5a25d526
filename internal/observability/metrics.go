package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the
// geohash service.
type Metrics struct {
	// Upstream DJIA source metrics.
	UpstreamRequests *prometheus.CounterVec // labels: outcome={success,no_data,malformed,error,rejected}
	UpstreamDuration prometheus.Histogram

	// Opening-value cache metrics.
	CacheLookups   *prometheus.CounterVec // labels: result={hit,negative_hit,miss}
	NegativeCached prometheus.Counter

	// Request-level metrics.
	RequestDuration *prometheus.HistogramVec // labels: route={csv,atom,dji}
	FeedEntries     prometheus.Histogram
}

// NewMetrics creates and registers all service metrics with the default
// Prometheus registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		UpstreamRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "ghfeed",
			Name:      "upstream_requests_total",
			Help:      "DJIA upstream fetches by outcome.",
		}, []string{"outcome"}),
		UpstreamDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "ghfeed",
			Name:      "upstream_request_duration_seconds",
			Help:      "DJIA upstream request duration in seconds.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}),
		CacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "ghfeed",
			Name:      "opening_cache_lookups_total",
			Help:      "Opening-value cache lookups by result.",
		}, []string{"result"}),
		NegativeCached: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "ghfeed",
			Name:      "opening_cache_negative_entries_total",
			Help:      "Failed lookups cached with a retry expiry.",
		}),
		RequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "ghfeed",
			Name:      "request_duration_seconds",
			Help:      "Geohash request handling duration by route.",
			Buckets:   []float64{0.001, 0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10},
		}, []string{"route"}),
		FeedEntries: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "ghfeed",
			Name:      "feed_entries",
			Help:      "Number of entries per rendered feed.",
			Buckets:   []float64{0, 1, 2, 4, 6, 8, 10, 11},
		}),
	}

	prometheus.MustRegister(
		m.UpstreamRequests,
		m.UpstreamDuration,
		m.CacheLookups,
		m.NegativeCached,
		m.RequestDuration,
		m.FeedEntries,
	)

	return m
}

// NewMetricsForTesting creates Metrics with a fresh registry to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return &Metrics{
		UpstreamRequests: prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "ghfeed", Name: "upstream_requests_total"}, []string{"outcome"}),
		UpstreamDuration: prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "ghfeed", Name: "upstream_request_duration_seconds"}),
		CacheLookups:     prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "ghfeed", Name: "opening_cache_lookups_total"}, []string{"result"}),
		NegativeCached:   prometheus.NewCounter(prometheus.CounterOpts{Namespace: "ghfeed", Name: "opening_cache_negative_entries_total"}),
		RequestDuration:  prometheus.NewHistogramVec(prometheus.HistogramOpts{Namespace: "ghfeed", Name: "request_duration_seconds"}, []string{"route"}),
		FeedEntries:      prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "ghfeed", Name: "feed_entries"}),
	}
}
