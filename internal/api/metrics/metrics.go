// Package metrics defines and registers all custom Prometheus metrics for the
// marketplace API. It is the single source of truth for metric names, labels,
// and help strings.
//
// Metrics are registered with the default Prometheus registry on package
// initialisation through promauto.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "marketplace"

// ── Event metrics ─────────────────────────────────────────────────────────────

// EventsProcessedTotal counts lifecycle events that completed processing.
// Label:
//   - event: the lifecycle event name (e.g. "propose-price", "pay")
var EventsProcessedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "events_processed_total",
		Help:      "Total number of mission lifecycle events successfully processed.",
	},
	[]string{"event"},
)

// EventsErrorsTotal counts lifecycle events whose processing failed.
var EventsErrorsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "events_errors_total",
		Help:      "Total number of mission lifecycle events that failed processing.",
	},
	[]string{"event"},
)

// EventsDroppedTotal counts events rejected because a worker queue was full
// or the dispatcher was shut down.
var EventsDroppedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "events_dropped_total",
		Help:      "Total number of mission lifecycle events dropped before processing.",
	},
)

// EventsQueueDepth tracks the current number of events waiting in each worker channel.
// Label:
//   - worker_id: numeric worker index (e.g. "0", "1", …)
var EventsQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "events_queue_depth",
		Help:      "Current number of events pending in each dispatcher worker channel.",
	},
	[]string{"worker_id"},
)

// EventProcessingDuration measures how long a single event takes from dequeue
// to publish.
var EventProcessingDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "event_processing_duration_seconds",
		Help:      "Duration of event processing from dequeue to publish.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"event"},
)

// ── Mission metrics ───────────────────────────────────────────────────────────

// MissionsCreatedTotal counts missions opened by clients.
var MissionsCreatedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "missions_created_total",
		Help:      "Total number of missions created.",
	},
)

// MissionTransitionsTotal counts lifecycle requests by outcome.
// Labels:
//   - event: the lifecycle event requested
//   - result: "applied" or "rejected"
var MissionTransitionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "mission_transitions_total",
		Help:      "Total number of mission lifecycle requests, by event and result.",
	},
	[]string{"event", "result"},
)

// ── Payment metrics ───────────────────────────────────────────────────────────

// PaymentsTotal counts payment attempts.
// Label:
//   - result: "captured", "replayed" or "rejected"
var PaymentsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "payments_total",
		Help:      "Total number of payment attempts, by result.",
	},
	[]string{"result"},
)

// PaymentAmount observes captured payment amounts.
var PaymentAmount = promauto.NewHistogram(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "payment_amount",
		Help:      "Amount of captured payments.",
		Buckets:   []float64{10, 25, 50, 100, 250, 500, 1000, 2500},
	},
)

// ── Tracking metrics ──────────────────────────────────────────────────────────

// TrackingActiveTrips is the number of in-progress trips held by the interpolator.
var TrackingActiveTrips = promauto.NewGauge(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "tracking_active_trips",
		Help:      "Number of trips currently tracked in memory.",
	},
)

// TrackingExpiredTotal counts trips removed by the periodic sweep.
var TrackingExpiredTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "tracking_expired_total",
		Help:      "Total number of stale trips removed by the sweep.",
	},
)
