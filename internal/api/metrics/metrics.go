// Package metrics defines the custom Prometheus metrics of the user management
// API. It is the single source of truth for metric names, labels, and help strings.
//
// All metrics are registered with the default Prometheus registry on import and
// exposed by the /metrics endpoint.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "usermgmt"

// ── Authentication metrics ────────────────────────────────────────────────────

// LoginAttemptsTotal counts login attempts.
// Label:
//   - result: "success", "invalid_credentials", "deactivated" or "error"
var LoginAttemptsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "login_attempts_total",
		Help:      "Total number of login attempts, labelled by result.",
	},
	[]string{"result"},
)

// TokenVerificationsTotal counts bearer token verifications.
// Label:
//   - result: "ok", "invalid", "expired", "missing_account", "deactivated" or "error"
var TokenVerificationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "token_verifications_total",
		Help:      "Total number of bearer token verifications, labelled by result.",
	},
	[]string{"result"},
)

// IdentityCacheTotal counts identity cache lookups.
// Label:
//   - result: "hit" or "miss"
var IdentityCacheTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "identity_cache_total",
		Help:      "Total number of identity cache lookups, labelled by result (hit/miss).",
	},
	[]string{"result"},
)

// ── Lifecycle metrics ─────────────────────────────────────────────────────────

// LifecycleOperationsTotal counts account lifecycle operations.
// Labels:
//   - operation: e.g. "register_user", "promote", "deactivate", "delete"
//   - outcome: "ok" or the rejection kind (e.g. "forbidden", "immutable", "no_op")
var LifecycleOperationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "lifecycle_operations_total",
		Help:      "Total number of account lifecycle operations, by operation and outcome.",
	},
	[]string{"operation", "outcome"},
)

// ── Image cleanup metrics ─────────────────────────────────────────────────────

// ImageCleanupTotal counts processed image deletions.
// Label:
//   - result: "deleted" or "failed"
var ImageCleanupTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "image_cleanup_total",
		Help:      "Total number of profile image deletions processed by the cleanup workers.",
	},
	[]string{"result"},
)

// ImageCleanupQueueDepth tracks pending deletions in each worker channel.
// Label:
//   - worker_id: numeric worker index (e.g. "0", "1", …)
var ImageCleanupQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "image_cleanup_queue_depth",
		Help:      "Current number of image deletions pending in each cleanup worker channel.",
	},
	[]string{"worker_id"},
)

// ImageCleanupDuration measures a single deletion against the file store.
var ImageCleanupDuration = promauto.NewHistogram(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "image_cleanup_duration_seconds",
		Help:      "Duration of a single profile image deletion.",
		Buckets:   prometheus.DefBuckets,
	},
)
