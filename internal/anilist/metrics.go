package anilist

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var upstreamDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Name:    "anilistapi_upstream_request_duration_seconds",
	Help:    "Latency of AniList GraphQL calls by query and outcome.",
	Buckets: prometheus.DefBuckets,
}, []string{"query", "outcome"})
