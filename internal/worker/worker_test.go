package worker

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/hospital-api/pkg/metrics"
)

type auditCleaner struct {
	days int
	rows int64
	err  error
}

func (c *auditCleaner) Cleanup(ctx context.Context, retentionDays int) (int64, error) {
	c.days = retentionDays
	return c.rows, c.err
}

type outboxCleaner struct {
	retention time.Duration
	rows      int64
}

func (c *outboxCleaner) CleanupProcessedEvents(ctx context.Context, retention time.Duration) (int64, error) {
	c.retention = retention
	return c.rows, nil
}

func TestAuditRetentionJob(t *testing.T) {
	m := metrics.NewMetrics("test", "worker", prometheus.NewRegistry())
	cleaner := &auditCleaner{rows: 12}

	job := NewAuditRetentionJob(cleaner, 365, m)
	require.NoError(t, job.Run(context.Background()))

	assert.Equal(t, "audit_logs-retention", job.Name())
	assert.Equal(t, 365, cleaner.days)
	assert.Equal(t, 12.0, testutil.ToFloat64(m.RetentionRowsDeleted.WithLabelValues("audit_logs")))
}

func TestAuditRetentionJobError(t *testing.T) {
	m := metrics.NewMetrics("test", "worker", prometheus.NewRegistry())
	job := NewAuditRetentionJob(&auditCleaner{err: errors.New("db down")}, 30, m)

	err := job.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "audit_logs")
	assert.Equal(t, 0.0, testutil.ToFloat64(m.RetentionRowsDeleted.WithLabelValues("audit_logs")))
}

func TestOutboxRetentionJob(t *testing.T) {
	m := metrics.NewMetrics("test", "worker", prometheus.NewRegistry())
	cleaner := &outboxCleaner{rows: 3}

	require.NoError(t, NewOutboxRetentionJob(cleaner, 7, m).Run(context.Background()))
	assert.Equal(t, 7*24*time.Hour, cleaner.retention)
	assert.Equal(t, 3.0, testutil.ToFloat64(m.RetentionRowsDeleted.WithLabelValues("outbox_events")))
}

func TestSchedulerRunsJobs(t *testing.T) {
	s, err := NewScheduler()
	require.NoError(t, err)

	var runs atomic.Int32
	require.NoError(t, s.Every(context.Background(), time.Hour, FuncJob{
		JobName: "probe",
		Fn: func(ctx context.Context) error {
			runs.Add(1)
			return nil
		},
	}))

	s.Start()
	assert.Eventually(t, func() bool { return runs.Load() == 1 }, 2*time.Second, 10*time.Millisecond)
	require.NoError(t, s.Shutdown())
}
