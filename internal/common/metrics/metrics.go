package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	MatchScoresComputed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "matching_scores_computed_total",
			Help: "Total number of pair scores computed",
		},
		[]string{"operation"},
	)

	MatchScoreDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "matching_score_duration_seconds",
			Help: "Duration of score computation in seconds",
		},
		[]string{"operation"},
	)

	CandidatesSkipped = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "matching_candidates_skipped_total",
			Help: "Candidates dropped during ranking",
		},
		[]string{"reason"},
	)

	TrustScoresComputed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "trust_scores_computed_total",
			Help: "Total number of trust score computations",
		},
	)

	TrustCacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "trust_cache_lookups_total",
			Help: "Trust snapshot cache lookups by outcome",
		},
		[]string{"outcome"},
	)
)
