// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	EvaluationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ecoscore_evaluations_total",
			Help: "Total number of product evaluations",
		},
		[]string{"outcome"},
	)

	ProviderRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ecoscore_provider_requests_total",
			Help: "External provider calls by provider and outcome",
		},
		[]string{"provider", "outcome"},
	)

	FootprintSource = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ecoscore_footprint_source_total",
			Help: "Footprint results by winning estimation source",
		},
		[]string{"source"},
	)

	CacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ecoscore_cache_lookups_total",
			Help: "Score cache lookups by result (hit_redis, hit_store, miss)",
		},
		[]string{"result"},
	)

	StoreFallbacks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ecoscore_store_fallbacks_total",
			Help: "Times a persistent store degraded to the local fallback",
		},
		[]string{"store"},
	)

	RewardApplies = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ecoscore_reward_applies_total",
			Help: "Reward account folds by grade",
		},
		[]string{"grade"},
	)

	EvaluationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "ecoscore_evaluation_duration_seconds",
			Help: "Duration of full product evaluations in seconds",
		},
		[]string{"cached"},
	)
)
