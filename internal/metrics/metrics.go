package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// SweepsTotal counts completed automation sweeps.
	SweepsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "autopilot_sweeps_total",
		Help: "Number of automation sweeps run.",
	})

	// RepliesSent counts automatic replies delivered to the remote API.
	RepliesSent = promauto.NewCounter(prometheus.CounterOpts{
		Name: "autopilot_replies_sent_total",
		Help: "Number of automatic replies sent.",
	})

	// RepliesSkipped counts conversations evaluated without a send, by reason.
	RepliesSkipped = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "autopilot_replies_skipped_total",
		Help: "Number of conversations evaluated without sending a reply.",
	}, []string{"reason"})

	// TokenRefreshes counts successful credential refreshes.
	TokenRefreshes = promauto.NewCounter(prometheus.CounterOpts{
		Name: "autopilot_token_refreshes_total",
		Help: "Number of successful session token refreshes.",
	})

	// RequestDuration observes trigger-surface request latency.
	RequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "autopilot_http_request_duration_seconds",
		Help:    "Duration of HTTP requests handled by the trigger surface.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})
)
