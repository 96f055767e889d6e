package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP request latency (seconds)
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms to ~4s
		},
		[]string{"method", "path", "status"},
	)

	// Database query latency (seconds)
	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "db_query_duration_seconds",
			Help:    "Database query duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms to ~4s
		},
		[]string{"operation", "table"},
	)

	// Slow query counter
	SlowQueryCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "db_slow_query_count",
			Help: "Total number of slow database queries",
		},
		[]string{"sql"},
	)

	// MQ consume latency (milliseconds)
	MQConsumeLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "mq_consume_latency_ms",
			Help:    "MQ message consumption latency in milliseconds",
			Buckets: prometheus.ExponentialBuckets(10, 2, 10), // 10ms to ~10s
		},
		[]string{"routing_key", "queue"},
	)

	// Risk assessment counter, labelled by resulting level
	RiskAssessmentCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "risk_assessment_count",
			Help: "Total number of risk assessments computed",
		},
		[]string{"level"},
	)

	// Permission denial counter, labelled by denial reason
	PermissionDenialCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "permission_denial_count",
			Help: "Total number of denied permission checks",
		},
		[]string{"reason"},
	)

	// Checklist generation counter, labelled by site type
	ChecklistGeneratedCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "checklist_generated_count",
			Help: "Total number of project checklists generated",
		},
		[]string{"site_type"},
	)

	// Task status transition counter
	TaskTransitionCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "task_transition_count",
			Help: "Total number of task status transitions",
		},
		[]string{"result"}, // result: committed, rolled_back, rejected
	)

	// Outbox dispatch counter
	OutboxDispatchCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "outbox_dispatch_count",
			Help: "Total number of outbox events dispatched",
		},
		[]string{"status"}, // status: sent, failed
	)
)

// RecordHTTPRequestDuration records HTTP request latency.
func RecordHTTPRequestDuration(method, path, status string, duration time.Duration) {
	HTTPRequestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())
}

// RecordDBQueryDuration records database query latency.
func RecordDBQueryDuration(operation, table string, duration time.Duration) {
	DBQueryDuration.WithLabelValues(operation, table).Observe(duration.Seconds())
}

// IncrementSlowQuery counts a slow query occurrence.
func IncrementSlowQuery(sql string, duration time.Duration) {
	SlowQueryCount.WithLabelValues(sql).Inc()
}

// RecordMQConsumeLatency records MQ consume latency.
func RecordMQConsumeLatency(routingKey, queue string, duration time.Duration) {
	MQConsumeLatency.WithLabelValues(routingKey, queue).Observe(float64(duration.Milliseconds()))
}

// IncrementRiskAssessment counts a computed risk assessment by level.
func IncrementRiskAssessment(level string) {
	RiskAssessmentCount.WithLabelValues(level).Inc()
}

// IncrementPermissionDenial counts a denied permission check by reason.
func IncrementPermissionDenial(reason string) {
	PermissionDenialCount.WithLabelValues(reason).Inc()
}

// IncrementChecklistGenerated counts a generated checklist by site type.
func IncrementChecklistGenerated(siteType string) {
	ChecklistGeneratedCount.WithLabelValues(siteType).Inc()
}

// IncrementTaskTransition counts a task transition outcome.
func IncrementTaskTransition(result string) {
	TaskTransitionCount.WithLabelValues(result).Inc()
}

// IncrementOutboxDispatch counts an outbox dispatch outcome.
func IncrementOutboxDispatch(status string) {
	OutboxDispatchCount.WithLabelValues(status).Inc()
}
