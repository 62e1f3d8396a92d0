// Package metrics provides Prometheus instrumentation for the matchmaking
// engine: gauges for queue and session counts, counters for submission
// outcomes, and histograms for score and time-to-match distributions.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// QueueSize tracks the current number of participants in the wait pool.
	QueueSize = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "matchd_queue_size",
		Help: "Current number of participants in the wait pool",
	})

	// ActiveSessions tracks the current number of live chat sessions.
	ActiveSessions = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "matchd_active_sessions",
		Help: "Current number of active chat sessions",
	})

	// SubmissionsTotal counts submit calls by outcome: "matched",
	// "queued" or "rejected".
	SubmissionsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "matchd_submissions_total",
		Help: "Total number of submissions processed",
	}, []string{"outcome"})

	// MatchScore records the similarity score of committed matches.
	MatchScore = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "matchd_match_score",
		Help:    "Jaccard similarity of committed matches",
		Buckets: []float64{.1, .2, .3, .4, .5, .6, .7, .8, .9, 1},
	})

	// TimeToMatch records how long the waiting side queued before being
	// matched.
	TimeToMatch = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "matchd_time_to_match_seconds",
		Help:    "Time a participant waited in the pool before matching",
		Buckets: []float64{.5, 1, 2, 5, 10, 15, 30, 60, 120},
	})

	// ExpiredTotal counts participants evicted by the stale sweep.
	ExpiredTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "matchd_expired_waiters_total",
		Help: "Total number of waiting participants expired by the sweep",
	})
)

func init() {
	prometheus.MustRegister(
		QueueSize,
		ActiveSessions,
		SubmissionsTotal,
		MatchScore,
		TimeToMatch,
		ExpiredTotal,
	)
}

// Handler returns the Prometheus metrics HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}
