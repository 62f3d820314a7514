package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	MatchDecisions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "vms",
		Name:      "match_decisions_total",
		Help:      "Identity match attempts by decision outcome",
	}, []string{"decision"})

	MatchDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "vms",
		Name:      "match_duration_seconds",
		Help:      "Duration of a single probe match against all profiles",
		Buckets:   prometheus.ExponentialBuckets(0.001, 2, 12),
	})

	Enrollments = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "vms",
		Name:      "enrollments_total",
		Help:      "Successful biometric enrollments",
	})

	LinkDecisions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "vms",
		Name:      "link_decisions_total",
		Help:      "Relationship link approvals and rejections",
	}, []string{"decision"})

	OpenSessions = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "vms",
		Name:      "open_sessions",
		Help:      "Visit sessions currently open",
	})

	VisitsStarted = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "vms",
		Name:      "visits_started_total",
		Help:      "Visit time-ins by visit type and check method",
	}, []string{"type", "method"})

	VisitDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "vms",
		Name:      "visit_duration_seconds",
		Help:      "Completed visit duration",
		Buckets:   prometheus.ExponentialBuckets(60, 2, 10),
	})

	AuditEmitFailures = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "vms",
		Name:      "audit_emit_failures_total",
		Help:      "Audit events dropped because emission failed",
	})

	AuditQueueDepth = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "vms",
		Name:      "audit_queue_depth",
		Help:      "Audit events waiting in the stream for the auditor",
	})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "vms",
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request duration",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	WSConnections = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "vms",
		Name:      "ws_connections",
		Help:      "Number of active WebSocket connections",
	})
)
