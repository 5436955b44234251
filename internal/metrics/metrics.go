// Package metrics provides Prometheus collectors for the resolution pipelines:
//   - symptom_insight_cache_lookups_total: Counter with namespace and result labels
//   - symptom_insight_upstream_requests_total: Counter with service and outcome labels
//   - symptom_insight_upstream_request_duration_seconds: Histogram with service label
//   - symptom_insight_asset_resolutions_total: Counter with tier label
//   - symptom_insight_insight_source_total: Counter with source label
//
// All collectors are registered with the Prometheus default registry during
// package initialization.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Cache lookup results
const (
	CacheMemoHit  = "memo_hit"
	CacheStoreHit = "store_hit"
	CacheMiss     = "miss"
	CacheCorrupt  = "corrupt"
)

// Upstream outcomes
const (
	OutcomeSuccess     = "success"
	OutcomeError       = "error"
	OutcomeCircuitOpen = "circuit_open"
)

var (
	CacheLookups = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "symptom_insight_cache_lookups_total",
			Help: "Cache lookups by namespace and result",
		},
		[]string{"namespace", "result"},
	)

	UpstreamRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "symptom_insight_upstream_requests_total",
			Help: "Calls to remote services by outcome",
		},
		[]string{"service", "outcome"},
	)

	UpstreamDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "symptom_insight_upstream_request_duration_seconds",
			Help:    "Remote service latency",
			Buckets: []float64{.01, .05, .1, .25, .5, 1, 2.5, 5, 10, 15},
		},
		[]string{"service"},
	)

	AssetResolutions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "symptom_insight_asset_resolutions_total",
			Help: "Symptom images resolved by tier",
		},
		[]string{"tier"},
	)

	InsightSources = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "symptom_insight_insight_source_total",
			Help: "Insight bundles by source",
		},
		[]string{"source"},
	)
)

func init() {
	prometheus.MustRegister(CacheLookups)
	prometheus.MustRegister(UpstreamRequests)
	prometheus.MustRegister(UpstreamDuration)
	prometheus.MustRegister(AssetResolutions)
	prometheus.MustRegister(InsightSources)
}

// ObserveUpstream records one remote call.
func ObserveUpstream(service, outcome string, started time.Time) {
	UpstreamRequests.WithLabelValues(service, outcome).Inc()
	UpstreamDuration.WithLabelValues(service).Observe(time.Since(started).Seconds())
}
