// file: internal/metrics/metrics.go
// version: 1.0.0
// guid: b162a3b4-c5d6-e7f8-0910-213243546576

package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce sync.Once

	cacheHits = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "tokenbridge",
		Name:      "cache_hits_total",
		Help:      "Total number of token cache hits",
	})
	cacheMisses = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "tokenbridge",
		Name:      "cache_misses_total",
		Help:      "Total number of token cache misses",
	})
	cacheInvalidations = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "tokenbridge",
		Name:      "cache_invalidations_total",
		Help:      "Total number of explicit token invalidations",
	})
	cacheCleanupRemoved = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "tokenbridge",
		Name:      "cache_cleanup_removed_total",
		Help:      "Total number of expired tokens removed by cleanup sweeps",
	})

	exchangeStarted = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "tokenbridge",
		Name:      "exchanges_started_total",
		Help:      "Total number of token exchanges started",
	})
	exchangeCompleted = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "tokenbridge",
		Name:      "exchanges_completed_total",
		Help:      "Total number of token exchanges successfully completed",
	})
	exchangeFailed = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "tokenbridge",
		Name:      "exchanges_failed_total",
		Help:      "Total number of token exchanges that failed",
	})
	exchangeDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "tokenbridge",
		Name:      "exchange_duration_seconds",
		Help:      "Histogram of token exchange durations in seconds",
		Buckets:   prometheus.ExponentialBuckets(0.01, 2, 10), // 10ms up to ~5s
	})

	cachedTokensGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "tokenbridge",
		Name:      "cached_tokens",
		Help:      "Current number of cached downstream tokens",
	})
)

// Register initializes metrics with the global Prometheus registry (idempotent)
func Register() {
	registerOnce.Do(func() {
		prometheus.MustRegister(cacheHits, cacheMisses, cacheInvalidations, cacheCleanupRemoved,
			exchangeStarted, exchangeCompleted, exchangeFailed, exchangeDuration,
			cachedTokensGauge)
	})
}

// Cache lifecycle helpers
func IncCacheHit()                { cacheHits.Inc() }
func IncCacheMiss()               { cacheMisses.Inc() }
func IncCacheInvalidation()       { cacheInvalidations.Inc() }
func AddCleanupRemoved(n int)     { cacheCleanupRemoved.Add(float64(n)) }
func IncExchangeStarted()         { exchangeStarted.Inc() }
func IncExchangeCompleted()       { exchangeCompleted.Inc() }
func IncExchangeFailed()          { exchangeFailed.Inc() }
func ObserveExchangeDuration(d time.Duration) {
	exchangeDuration.Observe(d.Seconds())
}

// Gauges
func SetCachedTokens(n int) { cachedTokensGauge.Set(float64(n)) }
