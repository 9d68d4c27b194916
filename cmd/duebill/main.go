package main

import (
	"context"
	"log"
	"math/rand"
	"net/http"
	"os"
	"time"

	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/copperpot/duebill/pkg/api"
	"github.com/copperpot/duebill/pkg/billing"
	"github.com/copperpot/duebill/pkg/config"
	"github.com/copperpot/duebill/pkg/gateway"
	"github.com/copperpot/duebill/pkg/notify"
	"github.com/copperpot/duebill/pkg/observability"
	"github.com/copperpot/duebill/pkg/schedule"
	"github.com/copperpot/duebill/pkg/store"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger := observability.NewLogger(cfg.Observability.LogLevel, os.Stdout)
	registry := prometheus.NewRegistry()
	metrics := observability.NewMetrics(registry)

	db, err := store.Open(cfg.Storage.Driver, cfg.Storage.DSN)
	if err != nil {
		logger.WithError(err).Error("cannot open store")
		os.Exit(1)
	}
	logger.WithField("driver", cfg.Storage.Driver).Info("store opened")

	if cfg.Storage.Seed {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		if err := db.Seed(ctx, rand.New(rand.NewSource(time.Now().UnixNano()))); err != nil {
			cancel()
			logger.WithError(err).Error("cannot seed store")
			os.Exit(1)
		}
		cancel()
	}

	rates := cfg.Gateway.Rates
	payments := gateway.NewRandomPayments(db, rates, rand.New(rand.NewSource(time.Now().UnixNano())))
	converter := gateway.NewRandomConverter(rates, rand.New(rand.NewSource(time.Now().UnixNano())))

	jitter := schedule.NewJitter()
	scheduler := schedule.New()
	notifier := notify.NewLogNotifier(logger)

	orchestrator := billing.NewOrchestrator(payments, converter, db, jitter.SleepRetry, logger, metrics)
	runner := billing.NewRunner(orchestrator, db, notifier, logger, metrics)
	service := billing.NewService(orchestrator, runner, db, notifier, scheduler, jitter, logger, metrics)

	if err := service.StartPeriodicBilling(); err != nil {
		logger.WithError(err).Error("cannot start periodic billing")
		os.Exit(1)
	}

	health := observability.NewHealthChecker(db.DB())
	apiServer := api.NewServer(service, runner, db, db, health, logger, metrics)

	server := &http.Server{
		Addr:         cfg.Server.Host + ":" + cfg.Server.Port,
		Handler:      apiServer.Router(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Health and metrics on their own port for k8s probes.
	healthMux := http.NewServeMux()
	healthMux.HandleFunc("/healthz", health.Liveness)
	healthMux.HandleFunc("/readyz", health.Readiness)
	if cfg.Observability.MetricsEnabled {
		healthMux.Handle("/metrics", metrics.Handler())
	}
	healthServer := &http.Server{
		Addr:    cfg.Server.Host + ":" + cfg.Server.HealthPort,
		Handler: healthMux,
	}

	go func() {
		logger.WithField("addr", healthServer.Addr).Info("health server listening")
		if err := healthServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.WithError(err).Error("health server failed")
		}
	}()

	go func() {
		logger.WithField("addr", server.Addr).Info("billing engine listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.WithError(err).Error("server failed")
			os.Exit(1)
		}
	}()

	shutdown := observability.NewShutdownManager(logger, server, cfg.Server.ShutdownTimeout)
	shutdown.RegisterShutdownFunc(func(ctx context.Context) error {
		service.CancelPeriodicBilling()
		return nil
	})
	shutdown.RegisterShutdownFunc(func(ctx context.Context) error {
		return healthServer.Shutdown(ctx)
	})
	shutdown.RegisterShutdownFunc(func(ctx context.Context) error {
		return db.Close()
	})

	if err := shutdown.WaitForShutdown(); err != nil {
		os.Exit(1)
	}
}
