// Package observability provides metrics and tracing.
package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RedisErrors counts Redis errors by operation type.
	RedisErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "clubhouse_redis_errors_total",
		Help: "Total number of Redis errors by operation type",
	}, []string{"operation"})

	// DatabaseQueryLatency records database query latency by operation and table.
	DatabaseQueryLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "clubhouse_database_query_latency_seconds",
		Help:    "Database query latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation", "table"})

	// ClubRequestsResolved counts club requests by the outcome an admin chose.
	ClubRequestsResolved = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "clubhouse_club_requests_resolved_total",
		Help: "Total number of resolved club requests by outcome",
	}, []string{"outcome"})

	// MembershipsChanged counts effective join/leave operations.
	MembershipsChanged = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "clubhouse_memberships_changed_total",
		Help: "Total number of club membership changes by direction",
	}, []string{"direction"})

	// ClubsDeleted counts clubs removed together with their events.
	ClubsDeleted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "clubhouse_clubs_deleted_total",
		Help: "Total number of deleted clubs",
	})
)

// ObserveQuery records the latency of a database query that started at start.
func ObserveQuery(operation, table string, start time.Time) {
	if table == "" {
		table = "unknown"
	}
	DatabaseQueryLatency.WithLabelValues(operation, table).Observe(time.Since(start).Seconds())
}
