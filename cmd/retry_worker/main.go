package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/robfig/cron/v3"

	"github.com/bookahq/booka_backend/internal/adapters/messaging"
	"github.com/bookahq/booka_backend/internal/adapters/payment"
	"github.com/bookahq/booka_backend/internal/core/services"
	"github.com/bookahq/booka_backend/internal/platform/config"
	"github.com/bookahq/booka_backend/internal/repositories/database/pgsql"
	"github.com/bookahq/booka_backend/pkg/database"
)

// The retry worker resubmits stuck deposit transactions. By default it runs
// one batch and exits; with -schedule it keeps running batches on a cron
// expression until interrupted.
func main() {
	schedule := flag.String("schedule", "", "cron expression to run batches on (empty = run once and exit)")
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("Failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dbPool, err := database.NewPgxPool(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error("Failed to initialize database pool", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer dbPool.Close()

	var paystack, stripe payment.Client
	if cfg.PaystackSecretKey != "" {
		paystack = payment.NewPaystackClient(cfg.PaystackSecretKey)
	}
	if cfg.StripeSecretKey != "" {
		stripe = payment.NewStripeClient(cfg.StripeSecretKey, cfg.StripeWebhookSecret)
	}
	providers := payment.NewRegistry(paystack, stripe)

	var publisher *messaging.Publisher
	if cfg.AMQPURL != "" {
		publisher, err = messaging.NewPublisher(cfg.AMQPURL, cfg.EventsExchange)
		if err != nil {
			logger.Error("Failed to connect event publisher", slog.String("error", err.Error()))
			os.Exit(1)
		}
		defer publisher.Close()
	}

	repos := pgsql.NewRepositoryProvider(dbPool)
	retrySvc := services.NewRetryService(repos.TransactionRepo, providers, publisher, services.RetryConfig{
		MaxAttempts: cfg.RetryMaxAttempts,
		BatchSize:   cfg.RetryBatchSize,
		BaseDelay:   cfg.RetryBaseDelay,
	})

	runBatch := func() int {
		result, err := retrySvc.RunBatch(ctx)
		if err != nil {
			logger.Error("Retry batch failed", slog.String("error", err.Error()))
			return 1
		}
		// Per-item failures are already rescheduled with backoff; the run
		// itself still counts as successful.
		logger.Info("Retry batch finished",
			slog.Int("selected", result.Selected),
			slog.Int("succeeded", result.Succeeded),
			slog.Int("failed", result.Failed))
		return 0
	}

	if *schedule == "" {
		os.Exit(runBatch())
	}

	c := cron.New()
	if _, err := c.AddFunc(*schedule, func() { _ = runBatch() }); err != nil {
		logger.Error("Invalid cron schedule", slog.String("schedule", *schedule), slog.String("error", err.Error()))
		os.Exit(1)
	}
	c.Start()
	logger.Info("Retry worker scheduled", slog.String("schedule", *schedule))

	<-ctx.Done()
	logger.Info("Shutting down retry worker")
	<-c.Stop().Done()
}
