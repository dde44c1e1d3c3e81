package worker

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/jwalitptl/hospital-api/pkg/metrics"
)

type (
	AuditCleaner interface {
		Cleanup(ctx context.Context, retentionDays int) (int64, error)
	}

	OutboxCleaner interface {
		CleanupProcessedEvents(ctx context.Context, retention time.Duration) (int64, error)
	}
)

// RetentionJob purges rows of one table that fell out of their retention
// window.
type RetentionJob struct {
	table   string
	purge   func(ctx context.Context) (int64, error)
	metrics *metrics.Metrics
}

func NewAuditRetentionJob(cleaner AuditCleaner, retentionDays int, m *metrics.Metrics) *RetentionJob {
	return &RetentionJob{
		table: "audit_logs",
		purge: func(ctx context.Context) (int64, error) {
			return cleaner.Cleanup(ctx, retentionDays)
		},
		metrics: m,
	}
}

// NewOutboxRetentionJob only removes events the dispatcher already delivered.
func NewOutboxRetentionJob(cleaner OutboxCleaner, retentionDays int, m *metrics.Metrics) *RetentionJob {
	retention := time.Duration(retentionDays) * 24 * time.Hour
	return &RetentionJob{
		table: "outbox_events",
		purge: func(ctx context.Context) (int64, error) {
			return cleaner.CleanupProcessedEvents(ctx, retention)
		},
		metrics: m,
	}
}

func (j *RetentionJob) Name() string {
	return j.table + "-retention"
}

func (j *RetentionJob) Run(ctx context.Context) error {
	rows, err := j.purge(ctx)
	if err != nil {
		return fmt.Errorf("failed to clean up %s: %w", j.table, err)
	}

	j.metrics.RetentionRowsDeleted.WithLabelValues(j.table).Add(float64(rows))
	log.Info().Str("table", j.table).Int64("rows", rows).Msg("retention cleanup finished")
	return nil
}
