// Package metrics defines and registers all custom Prometheus metrics for the
// videotube account service. It is the single source of truth for metric
// names, labels, and help strings.
//
// Metrics are registered with the default Prometheus registry on package
// initialisation via promauto.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "videotube"

// ── Auth metrics ──────────────────────────────────────────────────────────────

// AuthEventsTotal counts session lifecycle operations.
// Labels:
//   - event:  "register", "login", "logout", "refresh", "change_password"
//   - result: "success" or the error kind ("validation", "unauthorized", "not_found", "conflict", "internal")
var AuthEventsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "auth_events_total",
		Help:      "Total number of authentication operations, by event and result.",
	},
	[]string{"event", "result"},
)

// MediaUploadsTotal counts uploads to the media host.
// Labels:
//   - kind:   "avatar" or "coverImage"
//   - result: "success" or "failure"
var MediaUploadsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "media_uploads_total",
		Help:      "Total number of image uploads to the media host.",
	},
	[]string{"kind", "result"},
)

// ── Watch event metrics ───────────────────────────────────────────────────────

// WatchEventsProcessedTotal counts watch events that were persisted.
var WatchEventsProcessedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "watch_events_processed_total",
		Help:      "Total number of watch events successfully processed.",
	},
)

// WatchEventsErrorsTotal counts watch events that failed processing.
// Label:
//   - reason: "video_not_found" or "update_failed"
var WatchEventsErrorsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "watch_events_errors_total",
		Help:      "Total number of watch events that failed processing.",
	},
	[]string{"reason"},
)

// WatchEventsDedupTotal counts deduplication decisions.
// Label:
//   - result: "hit" (duplicate, skipped) or "miss" (new event, processed)
var WatchEventsDedupTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "watch_events_dedup_total",
		Help:      "Total number of deduplication checks, labelled by result (hit/miss).",
	},
	[]string{"result"},
)

// WatchQueueDepth tracks the number of events waiting in each worker channel.
// Label:
//   - worker_id: numeric worker index (e.g. "0", "1", …)
var WatchQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "watch_queue_depth",
		Help:      "Current number of watch events pending in each dispatcher worker channel.",
	},
	[]string{"worker_id"},
)

// WatchProcessingDuration measures how long a single watch event takes to process.
// Label:
//   - result: "ok" or "error"
var WatchProcessingDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "watch_processing_duration_seconds",
		Help:      "Duration of watch event processing from dequeue to persistence.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"result"},
)

// WatchDedup reports dedup decisions to WatchEventsDedupTotal.
type WatchDedup struct{}

// ObserveDedup increments the "hit" or "miss" series.
func (WatchDedup) ObserveDedup(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	WatchEventsDedupTotal.WithLabelValues(result).Inc()
}
