package cache

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	cacheHits = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "anilistapi_cache_hits_total",
		Help: "Cache lookups that returned a live entry.",
	}, []string{"cache"})
	cacheMisses = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "anilistapi_cache_misses_total",
		Help: "Cache lookups that found no entry or an expired one.",
	}, []string{"cache"})
	cacheEvictions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "anilistapi_cache_evictions_total",
		Help: "Entries removed by the sweep or by the size bound.",
	}, []string{"cache"})
)
