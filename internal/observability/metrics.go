package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"gorm.io/gorm"
)

var (
	// DatabaseQueryLatency records database query latency by operation and table.
	DatabaseQueryLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "ripple_database_query_latency_seconds",
		Help:    "Database query latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation", "table"})

	// PostsCreated counts posts created since process start.
	PostsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ripple_posts_created_total",
		Help: "Total number of posts created",
	})

	// LikeToggles counts like toggles by outcome ("liked" or "unliked").
	LikeToggles = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ripple_like_toggles_total",
		Help: "Total number of like toggles by outcome",
	}, []string{"outcome"})

	// FollowChanges counts follow-graph mutations by action ("follow" or "unfollow").
	FollowChanges = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ripple_follow_changes_total",
		Help: "Total number of follow/unfollow operations",
	}, []string{"action"})

	// TokensRevoked counts refresh tokens blacklisted via logout.
	TokensRevoked = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ripple_tokens_revoked_total",
		Help: "Total number of refresh tokens revoked",
	})

	// AuthFailures counts rejected authentication attempts by reason.
	AuthFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ripple_auth_failures_total",
		Help: "Total number of failed authentication attempts by reason",
	}, []string{"reason"})
)

// DatabaseMetrics wraps DB access for recording query latency.
type DatabaseMetrics struct {
	db *gorm.DB
}

// NewDatabaseMetrics returns a new DatabaseMetrics instance.
func NewDatabaseMetrics(db *gorm.DB) *DatabaseMetrics {
	return &DatabaseMetrics{db: db}
}

// ObserveQuery records the latency of a database query.
func (m *DatabaseMetrics) ObserveQuery(operation, table string, start time.Time) {
	latency := time.Since(start).Seconds()
	DatabaseQueryLatency.WithLabelValues(operation, table).Observe(latency)
}

// TrackQuery returns a function that records query latency when called (e.g. defer).
func (m *DatabaseMetrics) TrackQuery(operation, table string) func() {
	start := time.Now()
	return func() {
		m.ObserveQuery(operation, table, start)
	}
}
