// Package metrics defines and registers all custom Prometheus metrics for the
// EduLearn learner gateway. It is the single source of truth for metric names,
// labels, and help strings.
//
// Metrics are registered with the default registry through promauto on
// package initialisation.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "edulearn"

// ── Streak metrics ────────────────────────────────────────────────────────────

// StreakLoginsTotal counts recorded streak logins.
// Label:
//   - outcome: "started", "advanced", "kept" or "reset"
var StreakLoginsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "streak_logins_total",
		Help:      "Total number of streak logins recorded, by transition outcome.",
	},
	[]string{"outcome"},
)

// StreakNoticesTotal counts notices fired by the streak notifier.
// Labels:
//   - kind: "milestone" or "reminder"
//   - streak: the milestone length, or "-" for reminders
var StreakNoticesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "streak_notices_total",
		Help:      "Total number of streak notices fired.",
	},
	[]string{"kind", "streak"},
)

// NoticeDeliveryTotal counts dispatcher delivery results.
// Label:
//   - result: "stored", "failed" or "dropped"
var NoticeDeliveryTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "notice_delivery_total",
		Help:      "Total number of notice deliveries, by result.",
	},
	[]string{"result"},
)

// NoticeQueueDepth tracks the notices waiting in each dispatcher worker channel.
var NoticeQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "notice_queue_depth",
		Help:      "Current number of notices pending in each dispatcher worker channel.",
	},
	[]string{"worker_id"},
)

// ── Activity metrics ──────────────────────────────────────────────────────────

// ActivityPingsTotal counts activity pings seen by the sink.
// Label:
//   - result: "forwarded" or "dropped"
var ActivityPingsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "activity_pings_total",
		Help:      "Total number of activity pings, by sink decision.",
	},
	[]string{"result"},
)

// LivenessRecordedTotal counts streak logins re-recorded by the liveness checker.
var LivenessRecordedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "liveness_recorded_total",
		Help:      "Total number of streak logins recorded by the liveness checker.",
	},
)

// ── Certificate metrics ───────────────────────────────────────────────────────

// CertificatesRenderedTotal counts certificate render attempts.
// Label:
//   - result: "ok", "not_earned", "not_found" or "error"
var CertificatesRenderedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "certificates_rendered_total",
		Help:      "Total number of certificate render attempts, by result.",
	},
	[]string{"result"},
)

// CertificateRenderDuration measures how long one PDF takes to render.
var CertificateRenderDuration = promauto.NewHistogram(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "certificate_render_duration_seconds",
		Help:      "Duration of certificate PDF rendering.",
		Buckets:   prometheus.DefBuckets,
	},
)

// ── Backend metrics ───────────────────────────────────────────────────────────

// BackendRequestsTotal counts calls made to the EduLearn REST API.
// Labels:
//   - endpoint: logical operation name (e.g. "list_courses")
//   - status: HTTP status class ("2xx", "4xx", "5xx") or "error" on transport failure
var BackendRequestsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "backend_requests_total",
		Help:      "Total number of backend API requests, by endpoint and status class.",
	},
	[]string{"endpoint", "status"},
)

// ViewCacheTotal counts view cache lookups.
// Label:
//   - result: "hit" or "miss"
var ViewCacheTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "view_cache_total",
		Help:      "Total number of view cache lookups, by result.",
	},
	[]string{"result"},
)
