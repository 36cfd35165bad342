package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ReconciliationsTotal counts checkout verifications by outcome.
	ReconciliationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "gophjournal",
		Name:      "reconciliations_total",
		Help:      "Checkout session reconciliations by outcome.",
	}, []string{"outcome"})

	// SummarizerCallsTotal counts summarizer calls; "degraded" means the entry
	// was stored without a summary.
	SummarizerCallsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "gophjournal",
		Name:      "summarizer_calls_total",
		Help:      "Summarizer calls by outcome.",
	}, []string{"outcome"})

	EntriesCreatedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "gophjournal",
		Name:      "entries_created_total",
		Help:      "Journal entries persisted, by persona.",
	}, []string{"persona"})

	CheckoutSessionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "gophjournal",
		Name:      "checkout_sessions_total",
		Help:      "Checkout session creation attempts by outcome.",
	}, []string{"outcome"})

	// HTTPRequestDuration tracks request latency per route template.
	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "gophjournal",
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request duration in seconds.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"route", "method", "status"})
)

// Outcome label values shared by the counters.
const (
	OutcomeApplied     = "applied"
	OutcomeNotPaid     = "not_paid"
	OutcomeNotFound    = "not_found"
	OutcomeUnavailable = "unavailable"
	OutcomeError       = "error"
	OutcomeSuccess     = "success"
	OutcomeDegraded    = "degraded"
	OutcomeCreated     = "created"
)
