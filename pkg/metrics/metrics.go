package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTPRequestDuration is the API request latency in seconds.
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms to ~4s
		},
		[]string{"method", "path", "status"},
	)

	// DBSlowQueryCount counts queries slower than the tracer threshold.
	DBSlowQueryCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "db_slow_query_total",
			Help: "Total number of database queries above the slow threshold",
		},
		[]string{"statement"},
	)

	// DBSlowQueryDuration observes the duration of slow queries in seconds.
	DBSlowQueryDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "db_slow_query_duration_seconds",
			Help:    "Duration of slow database queries in seconds",
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 8),
		},
	)

	// ActivityLogsWritten counts activity log rows written by entity mutations.
	ActivityLogsWritten = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "activity_logs_written_total",
			Help: "Total number of activity log entries written",
		},
		[]string{"entity_type", "action"},
	)

	// CommentsCreated counts created comments per entity kind.
	CommentsCreated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "comments_created_total",
			Help: "Total number of comments created",
		},
		[]string{"entity_type", "reply"},
	)

	// FeedRequests counts activity feed reads per entity kind.
	FeedRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "feed_requests_total",
			Help: "Total number of activity feed requests",
		},
		[]string{"entity_type"},
	)

	// MQConsumeLatency is the message handling latency in milliseconds.
	MQConsumeLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "mq_consume_latency_ms",
			Help:    "MQ message consumption latency in milliseconds",
			Buckets: prometheus.ExponentialBuckets(10, 2, 10), // 10ms to ~10s
		},
		[]string{"routing_key", "queue"},
	)

	// NotificationsCreated counts reply notifications inserted by the worker.
	NotificationsCreated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "notifications_created_total",
			Help: "Total number of reply notifications created",
		},
	)
)

// RecordHTTPRequestDuration records one API request.
func RecordHTTPRequestDuration(method, path, status string, duration time.Duration) {
	HTTPRequestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())
}

// IncrementSlowQuery records one slow query.
func IncrementSlowQuery(statement string, duration time.Duration) {
	DBSlowQueryCount.WithLabelValues(statement).Inc()
	DBSlowQueryDuration.Observe(duration.Seconds())
}

// IncrementActivityLog records one activity log write.
func IncrementActivityLog(entityType, action string) {
	ActivityLogsWritten.WithLabelValues(entityType, action).Inc()
}

// IncrementCommentCreated records one created comment.
func IncrementCommentCreated(entityType string, reply bool) {
	label := "false"
	if reply {
		label = "true"
	}
	CommentsCreated.WithLabelValues(entityType, label).Inc()
}

// IncrementFeedRequest records one feed read.
func IncrementFeedRequest(entityType string) {
	FeedRequests.WithLabelValues(entityType).Inc()
}

// RecordMQConsumeLatency records how long handling one message took.
func RecordMQConsumeLatency(routingKey, queue string, duration time.Duration) {
	MQConsumeLatency.WithLabelValues(routingKey, queue).Observe(float64(duration.Milliseconds()))
}

// IncrementNotificationCreated records one inserted notification.
func IncrementNotificationCreated() {
	NotificationsCreated.Inc()
}
