package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"

	"github.com/jwalitptl/hospital-api/internal/config"
	"github.com/jwalitptl/hospital-api/internal/repository/postgres"
	"github.com/jwalitptl/hospital-api/internal/service/audit"
	eventService "github.com/jwalitptl/hospital-api/internal/service/event"
	"github.com/jwalitptl/hospital-api/internal/worker"
	"github.com/jwalitptl/hospital-api/pkg/logger"
	"github.com/jwalitptl/hospital-api/pkg/messaging/redis"
	"github.com/jwalitptl/hospital-api/pkg/metrics"
	outbox "github.com/jwalitptl/hospital-api/pkg/worker"
)

const healthAddr = ":8081"

// setupHealthCheck serves probes and metrics for the worker, which has no API
// surface of its own.
func setupHealthCheck(ping func(context.Context) error) *http.Server {
	mux := http.NewServeMux()
	mux.HandleFunc("/health/live", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("/health/ready", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := ping(ctx); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	})
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{Addr: healthAddr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("Health check server failed")
		}
	}()
	return srv
}

func main() {
	if err := run(); err != nil {
		log.Error().Err(err).Msg("worker failed")
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}

	l := logger.NewLogger(&logger.Config{
		Level:  logger.ParseLevel(cfg.Log.Level),
		Pretty: cfg.Log.Pretty,
	})
	logger.Setup(l)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := postgres.NewDB(cfg.Database)
	if err != nil {
		return err
	}
	defer db.Close()

	broker, err := redis.NewRedisBroker(cfg.Redis.ToBrokerConfig(), &log.Logger)
	if err != nil {
		return err
	}
	defer broker.Close()

	m := metrics.NewMetrics("hospital", "worker", prometheus.DefaultRegisterer)

	base := postgres.NewBaseRepository(db)
	outboxRepo := postgres.NewOutboxRepository(base)
	auditSvc := audit.NewService(postgres.NewAuditRepository(base))
	events := eventService.NewEventService(outboxRepo)

	outboxCfg := cfg.Outbox.ToWorkerConfig()
	outboxCfg.Channel = cfg.Redis.EventChannel
	processor, err := outbox.NewOutboxProcessor(outboxRepo, broker, outboxCfg, l.WithFields(map[string]interface{}{"component": "outbox"}), m)
	if err != nil {
		return err
	}

	scheduler, err := worker.NewScheduler()
	if err != nil {
		return err
	}

	jobs := []struct {
		every time.Duration
		job   worker.Job
	}{
		{cfg.Outbox.PollInterval, worker.FuncJob{JobName: "outbox-dispatch", Fn: processor.ProcessBatch}},
		{cfg.Audit.CleanupInterval, worker.NewAuditRetentionJob(auditSvc, cfg.Audit.RetentionDays, m)},
		{cfg.Audit.CleanupInterval, worker.NewOutboxRetentionJob(events, cfg.Outbox.RetentionDays, m)},
	}
	for _, j := range jobs {
		if err := scheduler.Every(ctx, j.every, j.job); err != nil {
			return err
		}
	}

	health := setupHealthCheck(db.PingContext)
	scheduler.Start()
	log.Info().Str("channel", outboxCfg.Channel).Msg("worker started")

	<-ctx.Done()
	log.Info().Msg("Shutting down...")

	if err := scheduler.Shutdown(); err != nil {
		log.Error().Err(err).Msg("scheduler shutdown failed")
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return health.Shutdown(shutdownCtx)
}
