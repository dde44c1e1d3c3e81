package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/time/rate"

	"github.com/jwalitptl/hospital-api/internal/catalog"
	admissionHandler "github.com/jwalitptl/hospital-api/internal/handler/admission"
	catalogHandler "github.com/jwalitptl/hospital-api/internal/handler/catalog"
	"github.com/jwalitptl/hospital-api/internal/handler/health"
	reportHandler "github.com/jwalitptl/hospital-api/internal/handler/report"
	vaccineHandler "github.com/jwalitptl/hospital-api/internal/handler/vaccine"
	"github.com/jwalitptl/hospital-api/internal/middleware"
	"github.com/jwalitptl/hospital-api/internal/repository/postgres"
	"github.com/jwalitptl/hospital-api/internal/router"
	admissionService "github.com/jwalitptl/hospital-api/internal/service/admission"
	"github.com/jwalitptl/hospital-api/internal/service/audit"
	eventService "github.com/jwalitptl/hospital-api/internal/service/event"
	reportService "github.com/jwalitptl/hospital-api/internal/service/report"
	vaccineService "github.com/jwalitptl/hospital-api/internal/service/vaccine"
	"github.com/jwalitptl/hospital-api/pkg/auth"
	"github.com/jwalitptl/hospital-api/pkg/messaging"
	"github.com/jwalitptl/hospital-api/pkg/messaging/redis"
	"github.com/jwalitptl/hospital-api/pkg/metrics"
	"github.com/jwalitptl/hospital-api/pkg/security"
	"github.com/jwalitptl/hospital-api/pkg/storage"
)

const shutdownTimeout = 10 * time.Second

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}
}

func runServer() error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := postgres.NewDB(cfg.Database)
	if err != nil {
		return err
	}
	defer db.Close()

	m := metrics.NewMetrics("hospital", "api", prometheus.DefaultRegisterer)

	// Repositories
	base := postgres.NewBaseRepository(db)
	admissionRepo := postgres.NewAdmissionRepository(base)
	patientRepo := postgres.NewPatientRepository(db)
	catalogRepo := postgres.NewCatalogRepository(db)
	vaccineRepo := postgres.NewVaccineRepository(db)
	auditRepo := postgres.NewAuditRepository(base)
	outboxRepo := postgres.NewOutboxRepository(base)

	store, err := storage.NewMinioStore(cfg.Storage.ToStoreConfig())
	if err != nil {
		return err
	}

	// The broker only carries catalog invalidations here; domain events go
	// through the outbox, so the API keeps serving when Redis is down.
	var broker messaging.Broker
	if b, err := redis.NewRedisBroker(cfg.Redis.ToBrokerConfig(), &log.Logger); err != nil {
		log.Warn().Err(err).Msg("redis unavailable, catalog invalidations stay local")
	} else {
		broker = b
		defer broker.Close()
	}

	// Services
	auditSvc := audit.NewService(auditRepo)
	events := eventService.NewEventService(outboxRepo)
	catalogs := catalog.NewProvider(catalogRepo, cfg.Catalog.CacheTTL, m)
	admissions := admissionService.NewService(admissionRepo, patientRepo, catalogs, auditSvc, events, m)
	vaccines := vaccineService.NewService(vaccineRepo, auditSvc)
	reports := reportService.NewService(store, cfg.Storage.Reports, cfg.Storage.Documents)

	if broker != nil {
		go func() {
			if err := catalogs.ListenForInvalidation(ctx, broker, cfg.Catalog.InvalidateChannel); err != nil && !errors.Is(err, context.Canceled) {
				log.Error().Err(err).Msg("catalog invalidation listener stopped")
			}
		}()
	}

	tokens := auth.NewTokenService(cfg.Auth.JWTSecret, cfg.Auth.Issuer, cfg.Auth.TokenExpiry)
	hasher := security.NewBcryptHasher(0)

	cors := middleware.DefaultCORSConfig()
	cors.AllowOrigins = cfg.Server.AllowOrigins

	gin.SetMode(gin.ReleaseMode)
	r := router.NewRouter(
		middleware.NewAuthMiddleware(tokens, cfg.Auth.Users, hasher),
		middleware.NewAuditMiddleware(auditSvc),
		router.Handlers{
			Health:    health.NewHandler(db, prometheus.DefaultGatherer),
			Admission: admissionHandler.NewHandler(admissions),
			Vaccine:   vaccineHandler.NewHandler(vaccines),
			Report:    reportHandler.NewHandler(reports),
			Catalog:   catalogHandler.NewHandler(catalogs, broker, cfg.Catalog.InvalidateChannel),
		},
		router.RouterConfig{
			RateLimit:     rate.Limit(cfg.Server.RateLimit),
			RateBurst:     cfg.Server.RateBurst,
			CORSConfig:    cors,
			Timeout:       time.Duration(cfg.Server.TimeoutSeconds) * time.Second,
			MaxBodyBytes:  cfg.Server.MaxBodyBytes,
			MetricsPrefix: "hospital_http",
		},
	)
	r.Setup()

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           r.Engine(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Int("port", cfg.Server.Port).Msg("starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	log.Info().Msg("server exited properly")
	return nil
}
