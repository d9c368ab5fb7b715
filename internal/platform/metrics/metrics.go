// Package metrics defines the Prometheus collectors used by the match
// server and exposes the scrape handler.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all collectors for the match server.
type Metrics struct {
	QueriesTotal    *prometheus.CounterVec
	MatchLatency    *prometheus.HistogramVec
	MatchesPerQuery prometheus.Histogram
	PatternsLoaded  prometheus.Gauge
	TrieBlocks      prometheus.Gauge
	CacheHitsTotal  prometheus.Counter
	CacheMissTotal  prometheus.Counter
	HitsDropped     prometheus.Counter

	reg *prometheus.Registry
}

// New creates and registers all collectors on a fresh registry.
func New() *Metrics {
	m := &Metrics{
		QueriesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "match_queries_total",
				Help: "Total queries by result (hit, miss).",
			},
			[]string{"result"},
		),
		MatchLatency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "match_latency_seconds",
				Help:    "Per-query match latency in seconds.",
				Buckets: []float64{0.00005, 0.0001, 0.00025, 0.0005, 0.001, 0.0025, 0.005, 0.01, 0.05},
			},
			[]string{"cache"},
		),
		MatchesPerQuery: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "match_results_count",
				Help:    "Number of patterns reported per query.",
				Buckets: []float64{0, 1, 2, 5, 10, 25, 50},
			},
		),
		PatternsLoaded: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "catalog_patterns",
				Help: "Patterns admitted into the sealed catalog.",
			},
		),
		TrieBlocks: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "catalog_trie_blocks",
				Help: "Allocated trie blocks in the sealed catalog.",
			},
		),
		CacheHitsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "match_cache_hits_total",
				Help: "Responses served from the query cache.",
			},
		),
		CacheMissTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "match_cache_misses_total",
				Help: "Queries that bypassed or missed the cache.",
			},
		),
		HitsDropped: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "hits_dropped_total",
				Help: "Analytics events dropped because the sink buffer was full.",
			},
		),
		reg: prometheus.NewRegistry(),
	}

	m.reg.MustRegister(
		m.QueriesTotal, m.MatchLatency, m.MatchesPerQuery,
		m.PatternsLoaded, m.TrieBlocks,
		m.CacheHitsTotal, m.CacheMissTotal, m.HitsDropped,
	)
	return m
}

// Handler returns the scrape endpoint for this registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.reg, promhttp.HandlerOpts{})
}
