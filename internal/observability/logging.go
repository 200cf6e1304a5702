package observability

import (
	"context"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// RepositoryErrors counts storage failures that surface as internal errors.
var RepositoryErrors = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "clubhouse_repository_errors_total",
	Help: "Total number of unexpected storage errors by table and operation",
}, []string{"table", "operation"})

// RepoLogger reports unexpected storage failures for one table. Not-found and
// duplicate results are part of the domain and are not reported here.
type RepoLogger struct {
	table string
}

func NewRepoLogger(table string) RepoLogger {
	return RepoLogger{table: table}
}

func (l RepoLogger) Table() string {
	return l.table
}

// Failure logs err against op through the default slog logger, which carries
// the request and trace ids from ctx, and counts it.
func (l RepoLogger) Failure(ctx context.Context, op string, err error) {
	RepositoryErrors.WithLabelValues(l.table, op).Inc()
	slog.ErrorContext(ctx, "repository operation failed",
		slog.String("table", l.table),
		slog.String("operation", op),
		slog.Any("error", err),
	)
}
