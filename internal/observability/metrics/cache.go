package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	PageCacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "page_cache_hits_total",
			Help: "Total number of page cache hits",
		},
	)

	PageCacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "page_cache_misses_total",
			Help: "Total number of page cache misses",
		},
	)

	PageCacheEvictions = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "page_cache_evictions_total",
			Help: "Total number of expired page cache entries removed",
		},
	)

	PageCacheClears = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "page_cache_clears_total",
			Help: "Total number of explicit page cache clear operations",
		},
	)
)
