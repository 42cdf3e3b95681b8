package main

import (
	"context"
	"database/sql"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"

	"github.com/platinummonkey/docvault/pkg/access"
	"github.com/platinummonkey/docvault/pkg/api"
	"github.com/platinummonkey/docvault/pkg/auth"
	"github.com/platinummonkey/docvault/pkg/config"
	"github.com/platinummonkey/docvault/pkg/observability"
	"github.com/platinummonkey/docvault/pkg/storage"
	"github.com/platinummonkey/docvault/pkg/storage/postgres"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		os.Stderr.WriteString("config: " + err.Error() + "\n")
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg.Observability.LogLevel, os.Stdout)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var (
		store storage.Store
		db    *sql.DB
	)
	switch cfg.Storage.Type {
	case "postgres":
		pg, err := postgres.New(ctx, cfg.Storage.PostgresURL)
		if err != nil {
			logger.WithError(err).Error("connecting to postgres")
			os.Exit(1)
		}
		store = pg
		db = pg.DB()
	default:
		logger.Warn("using in-memory storage; data will not survive a restart")
		store = storage.NewMemoryStore()
	}
	defer store.Close()

	registry := prometheus.NewRegistry()
	var (
		httpMetrics   *observability.Metrics
		accessMetrics *access.Metrics
	)
	if cfg.Observability.MetricsEnabled {
		httpMetrics = observability.NewMetrics(registry)
		accessMetrics = access.NewMetrics(registry)
	}

	engine := access.NewEngine(store, accessMetrics)
	sessions := auth.NewManager(store, cfg.Auth.SessionTTL, logger, httpMetrics)

	purger, err := sessions.StartPurgeJob(cfg.Auth.PurgeSchedule)
	if err != nil {
		logger.WithError(err).Error("starting session purge job")
		os.Exit(1)
	}
	defer purger.Stop()

	server := api.NewServer(store, engine, sessions, logger, api.Options{
		Metrics:       httpMetrics,
		SecureCookies: cfg.Auth.SecureCookies,
		MaxBodyBytes:  cfg.Server.MaxBodyBytes,
	})

	apiServer := &http.Server{
		Addr:         net.JoinHostPort(cfg.Server.Host, cfg.Server.Port),
		Handler:      server.Handler(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	healthMux := http.NewServeMux()
	health := observability.NewHealthChecker(db)
	healthMux.HandleFunc("/healthz", health.Liveness)
	healthMux.HandleFunc("/readyz", health.Readiness)
	if cfg.Observability.MetricsEnabled {
		observability.RegisterMetricsEndpoint(healthMux, registry)
	}
	healthServer := &http.Server{
		Addr:    net.JoinHostPort(cfg.Server.Host, cfg.Server.HealthPort),
		Handler: healthMux,
	}

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		logger.WithField("addr", apiServer.Addr).Info("api server listening")
		if err := apiServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	group.Go(func() error {
		logger.WithField("addr", healthServer.Addr).Info("health server listening")
		if err := healthServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	group.Go(func() error {
		<-groupCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		logger.Info("shutting down")
		err := apiServer.Shutdown(shutdownCtx)
		if herr := healthServer.Shutdown(shutdownCtx); err == nil {
			err = herr
		}
		return err
	})

	if err := group.Wait(); err != nil {
		logger.WithError(err).Error("server exited")
		os.Exit(1)
	}
	logger.Info("shutdown complete")
}
