package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	CacheHits = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tubelens_cache_hits_total",
		Help: "The total number of cache hits by pipeline and stage",
	}, []string{"pipeline", "stage"})

	CacheMisses = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tubelens_cache_misses_total",
		Help: "The total number of cache misses by pipeline and stage",
	}, []string{"pipeline", "stage"})

	CachedVideos = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "tubelens_cached_videos",
		Help: "Number of videos currently held in the cache",
	}, []string{"pipeline"})

	CachePurges = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tubelens_cache_purges_total",
		Help: "Total number of cache purge operations",
	}, []string{"pipeline", "scope"})

	StageDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "tubelens_stage_duration_seconds",
		Help:    "Duration of pipeline stage computations",
		Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30, 60},
	}, []string{"pipeline", "stage"})

	StageErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tubelens_stage_errors_total",
		Help: "Total number of failed stage computations by reason",
	}, []string{"pipeline", "stage", "reason"})

	LLMRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tubelens_llm_requests_total",
		Help: "Total number of completion requests",
	}, []string{"model", "status"})

	LLMRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "tubelens_llm_request_duration_seconds",
		Help:    "Duration of completion requests",
		Buckets: []float64{0.5, 1, 2, 5, 10, 20, 30, 60, 120},
	}, []string{"model"})

	EmbeddingRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tubelens_embedding_requests_total",
		Help: "Total number of embedding requests",
	}, []string{"model", "status"})

	EmbeddingLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "tubelens_embedding_latency_seconds",
		Help:    "Latency of embedding requests",
		Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 5, 10},
	}, []string{"model"})

	FetchRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tubelens_fetch_requests_total",
		Help: "Total number of upstream fetch requests by source",
	}, []string{"source", "status"})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "tubelens_http_request_duration_seconds",
		Help:    "Duration of API requests",
		Buckets: prometheus.DefBuckets,
	}, []string{"route", "status"})
)
