// file: internal/metrics/metrics.go
// version: 2.0.0
// guid: 9f8e7d6c-5b4a-3210-9fed-cba876543210

package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Search modes used as label values.
const (
	ModeFuzzy   = "fuzzy"
	ModeLiteral = "literal"
)

// Cache results used as label values.
const (
	CacheHit  = "hit"
	CacheMiss = "miss"
)

var (
	registerOnce sync.Once

	searchesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "brandmatch",
		Name:      "searches_total",
		Help:      "Total number of product searches by mode",
	}, []string{"mode"})
	suggestionsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "brandmatch",
		Name:      "suggestions_total",
		Help:      "Total number of brand suggestion requests",
	})
	suggestionCache = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "brandmatch",
		Name:      "suggestion_cache_total",
		Help:      "Suggestion cache lookups by result",
	}, []string{"result"})
	searchDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "brandmatch",
		Name:      "search_duration_seconds",
		Help:      "Histogram of search durations in seconds by mode",
		Buckets:   prometheus.ExponentialBuckets(0.0005, 2, 14), // 0.5ms up to ~4s
	}, []string{"mode"})
	searchResults = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "brandmatch",
		Name:      "search_results",
		Help:      "Number of results returned per search",
		Buckets:   []float64{0, 1, 2, 5, 10, 25, 50, 100, 250},
	})

	productsGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "brandmatch",
		Name:      "products_total",
		Help:      "Current total number of products in the catalog",
	})
	memoryAllocGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "brandmatch",
		Name:      "process_memory_alloc_bytes",
		Help:      "Current process memory allocation (runtime.Alloc)",
	})
	goroutinesGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "brandmatch",
		Name:      "process_goroutines",
		Help:      "Number of currently running goroutines",
	})
)

// Register initializes metrics with the global Prometheus registry (idempotent)
func Register() {
	registerOnce.Do(func() {
		prometheus.MustRegister(searchesTotal, suggestionsTotal, suggestionCache, searchDuration, searchResults,
			productsGauge, memoryAllocGauge, goroutinesGauge)
	})
}

// Search helpers
func IncSearches(mode string) { searchesTotal.WithLabelValues(mode).Inc() }
func ObserveSearchDuration(mode string, d time.Duration) {
	searchDuration.WithLabelValues(mode).Observe(d.Seconds())
}
func ObserveSearchResults(n int) { searchResults.Observe(float64(n)) }

// Suggestion helpers
func IncSuggestions() { suggestionsTotal.Inc() }
func IncSuggestionCache(hit bool) {
	if hit {
		suggestionCache.WithLabelValues(CacheHit).Inc()
		return
	}
	suggestionCache.WithLabelValues(CacheMiss).Inc()
}

// Gauges
func SetProducts(n int)       { productsGauge.Set(float64(n)) }
func SetMemoryAlloc(b uint64) { memoryAllocGauge.Set(float64(b)) }
func SetGoroutines(n int)     { goroutinesGauge.Set(float64(n)) }
