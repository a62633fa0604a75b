package metrics

import (
	"strconv"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
)

func init() {
	enqueue(
		ticketsSubmittedTotal,
		ticketsProcessedTotal,
		classifyLatencyMs,
		notificationsTotal,
		lockContentionTotal,
	)
}

var (
	ticketsSubmittedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "tickets_submitted_total",
			Help: "Total number of tickets accepted by ingress.",
		},
	)

	ticketsProcessedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tickets_processed_total",
			Help: "Total number of work items handled by the worker loop, labeled by outcome.",
		},
		[]string{"outcome"}, // 'completed', 'skipped_locked', 'failed'
	)

	classifyLatencyMs = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "classify_latency_ms",
			Help:    "Classification latency distribution in milliseconds.",
			Buckets: []float64{1, 5, 10, 25, 50, 100, 200, 400, 800, 1600, 3000, 5000},
		},
		[]string{"strategy", "success"}, // strategy: 'primary' | 'fallback'
	)

	notificationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notifications_total",
			Help: "High-urgency notifications by outcome (sent/failed/dropped).",
		},
		[]string{"outcome"},
	)

	lockContentionTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lock_contention_total",
			Help: "Lock acquisition attempts that found the lock already held.",
		},
		[]string{"lock"}, // 'submit' | 'processing'
	)
)

func norm(s string) string { return strings.ToLower(strings.TrimSpace(s)) }

func IncSubmitted() { ticketsSubmittedTotal.Inc() }

func IncProcessed(outcome string) {
	ticketsProcessedTotal.WithLabelValues(norm(outcome)).Inc()
}

func ObserveClassify(strategy string, latencyMs int, success bool) {
	classifyLatencyMs.WithLabelValues(norm(strategy), strconv.FormatBool(success)).
		Observe(float64(latencyMs))
}

func IncNotification(outcome string) {
	notificationsTotal.WithLabelValues(norm(outcome)).Inc()
}

func IncLockContention(lock string) {
	lockContentionTotal.WithLabelValues(norm(lock)).Inc()
}
