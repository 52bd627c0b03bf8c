package observability

import (
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RedisErrorRate counts Redis errors by operation type.
	RedisErrorRate = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "zenith_redis_error_rate_total",
		Help: "Total number of Redis errors by operation type",
	}, []string{"operation"})

	// DatabaseQueryLatency records database query latency by statement verb.
	DatabaseQueryLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "zenith_database_query_latency_seconds",
		Help:    "Database query latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation"})

	// PostViewsTotal counts post detail views by post slug.
	PostViewsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "zenith_post_views_total",
		Help: "Total number of post detail views",
	}, []string{"slug"})

	// LikeTogglesTotal counts like toggles by resulting state.
	LikeTogglesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "zenith_like_toggles_total",
		Help: "Total number of like toggles by resulting state",
	}, []string{"state"})

	// CommentsSubmittedTotal counts submitted comments by moderation outcome.
	CommentsSubmittedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "zenith_comments_submitted_total",
		Help: "Total number of submitted comments by moderation outcome",
	}, []string{"outcome"})

	// RegistrationsTotal counts completed registrations.
	RegistrationsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "zenith_registrations_total",
		Help: "Total number of completed registrations",
	})
)

// ObserveQuery records the latency of a database statement. The operation
// label is the leading SQL verb so cardinality stays bounded.
func ObserveQuery(sql string, elapsed time.Duration) {
	op := "other"
	if i := strings.IndexByte(sql, ' '); i > 0 {
		op = strings.ToLower(sql[:i])
	}
	switch op {
	case "select", "insert", "update", "delete", "begin", "commit":
	default:
		op = "other"
	}
	DatabaseQueryLatency.WithLabelValues(op).Observe(elapsed.Seconds())
}
