package main

import (
	"context"
	"flag"
	"log"
	"math/rand"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/robfig/cron/v3"

	"github.com/copperpot/duebill/pkg/billing"
	"github.com/copperpot/duebill/pkg/gateway"
	"github.com/copperpot/duebill/pkg/notify"
	"github.com/copperpot/duebill/pkg/observability"
	"github.com/copperpot/duebill/pkg/schedule"
	"github.com/copperpot/duebill/pkg/store"
)

var (
	dbDriver     = flag.String("db-driver", getEnv("DUEBILL_DB_DRIVER", "sqlite3"), "Database driver (sqlite3 or postgres)")
	dbDSN        = flag.String("db-dsn", getEnv("DUEBILL_DB_DSN", "file:duebill.db?cache=shared&_busy_timeout=5000"), "Database connection string")
	cronSchedule = flag.String("schedule", "0 2 1 * *", "Cron schedule for the billing run (default: 1st day 02:00 UTC)")
	runOnce      = flag.Bool("run-once", false, "Run one billing pass and exit")
	declineRate  = flag.Float64("decline-rate", gateway.DefaultRates().Decline, "Simulated gateway decline rate")
	networkRate  = flag.Float64("network-rate", gateway.DefaultRates().Network, "Simulated gateway network failure rate")
)

func main() {
	flag.Parse()

	logger := observability.NewLogger(observability.InfoLevel, os.Stdout)
	metrics := observability.NewMetrics(prometheus.NewRegistry())

	db, err := store.Open(*dbDriver, *dbDSN)
	if err != nil {
		log.Fatalf("Failed to open store: %v", err)
	}
	defer db.Close()

	rates := gateway.DefaultRates()
	rates.Decline = *declineRate
	rates.Network = *networkRate

	payments := gateway.NewRandomPayments(db, rates, rand.New(rand.NewSource(time.Now().UnixNano())))
	converter := gateway.NewRandomConverter(rates, rand.New(rand.NewSource(time.Now().UnixNano())))
	jitter := schedule.NewJitter()

	orchestrator := billing.NewOrchestrator(payments, converter, db, jitter.SleepRetry, logger, metrics)
	runner := billing.NewRunner(orchestrator, db, notify.NewLogNotifier(logger), logger, metrics)

	// Run once mode (for manual or externally scheduled billing)
	if *runOnce {
		runner.Run(context.Background())
		return
	}

	// Scheduled mode
	c := cron.New()
	if _, err := c.AddFunc(*cronSchedule, func() {
		runner.Run(context.Background())
	}); err != nil {
		log.Fatalf("Failed to schedule billing run: %v", err)
	}

	c.Start()
	logger.WithField("schedule", *cronSchedule).Info("batch biller started")

	// Wait for termination signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	<-sigChan
	logger.Info("shutting down")

	ctx := c.Stop()
	<-ctx.Done()

	logger.Info("batch biller stopped")
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
