package main

import (
	"context"
	"database/sql"
	"log/slog"
	"os"

	"github.com/bookahq/booka_backend/internal/adapters/messaging"
	"github.com/bookahq/booka_backend/internal/adapters/payment"
	"github.com/bookahq/booka_backend/internal/core/services"
	"github.com/bookahq/booka_backend/internal/handlers"
	"github.com/bookahq/booka_backend/internal/middleware"
	"github.com/bookahq/booka_backend/internal/platform/config"
	"github.com/bookahq/booka_backend/internal/repositories/database/pgsql"
	"github.com/bookahq/booka_backend/pkg/database"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	migrate "github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/jackc/pgx/v5/stdlib"
)

// @title Booka Backend API
// @version 1.0
// @description Multi-tenant appointment booking backend.

// @host localhost:8080
// @BasePath /

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

// @security BearerAuth
func main() {
	// Initialize structured logger
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("Failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Initialize database connection pool (for application use)
	dbPool, err := database.NewPgxPool(context.Background(), cfg.DatabaseURL)
	if err != nil {
		logger.Error("Failed to initialize database pool", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer dbPool.Close()
	logger.Info("Database connection pool established.")

	if err := runMigrations(logger, cfg.DatabaseURL); err != nil {
		logger.Error("Failed to apply migrations", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Payment providers: an empty key disables the provider for this deployment.
	var paystack, stripe payment.Client
	if cfg.PaystackSecretKey != "" {
		paystack = payment.NewPaystackClient(cfg.PaystackSecretKey)
	}
	if cfg.StripeSecretKey != "" {
		stripe = payment.NewStripeClient(cfg.StripeSecretKey, cfg.StripeWebhookSecret)
	}
	providers := payment.NewRegistry(paystack, stripe)

	// Event publisher: optional, a nil publisher drops events silently.
	var publisher *messaging.Publisher
	if cfg.AMQPURL != "" {
		publisher, err = messaging.NewPublisher(cfg.AMQPURL, cfg.EventsExchange)
		if err != nil {
			logger.Error("Failed to connect event publisher", slog.String("error", err.Error()))
			os.Exit(1)
		}
		defer publisher.Close()
		logger.Info("Event publisher connected", slog.String("exchange", cfg.EventsExchange))
	} else {
		logger.Warn("AMQP_URL not set. Domain events will not be published.")
	}

	repos := pgsql.NewRepositoryProvider(dbPool)
	serviceContainer := services.NewServiceContainer(&repos, providers, publisher, services.RetryConfig{
		MaxAttempts: cfg.RetryMaxAttempts,
		BatchSize:   cfg.RetryBatchSize,
		BaseDelay:   cfg.RetryBaseDelay,
	})

	if cfg.IsProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware (logging, recovery, CORS)
	r.Use(middleware.StructuredLoggingMiddleware(logger), gin.Recovery(), cors.Default())

	if err := r.SetTrustedProxies(nil); err != nil {
		logger.Error("Failed to set trusted proxies", slog.String("error", err.Error()))
		os.Exit(1)
	}

	handlers.RegisterRoutes(r, cfg, serviceContainer)

	logger.Info("Server starting", slog.String("port", cfg.Port))
	if err := r.Run(":" + cfg.Port); err != nil {
		logger.Error("Server failed to run", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

// runMigrations applies all pending "up" migrations using a temporary
// database/sql connection on the pgx stdlib driver.
func runMigrations(logger *slog.Logger, databaseURL string) error {
	logger.Info("Running database migrations...")

	migrationDB, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := migrationDB.Close(); cerr != nil {
			logger.Error("Error closing migration DB connection", slog.String("error", cerr.Error()))
		}
	}()
	if err := migrationDB.Ping(); err != nil {
		return err
	}

	driver, err := postgres.WithInstance(migrationDB, &postgres.Config{})
	if err != nil {
		return err
	}

	m, err := migrate.NewWithDatabaseInstance("file://migrations", "postgres", driver)
	if err != nil {
		return err
	}

	err = m.Up()
	if err != nil && err != migrate.ErrNoChange {
		return err
	}

	sourceErr, dbErr := m.Close()
	if sourceErr != nil {
		return sourceErr
	}
	if dbErr != nil {
		return dbErr
	}

	if err == migrate.ErrNoChange {
		logger.Info("No new migrations to apply.")
	} else {
		logger.Info("Database migrations applied successfully.")
	}
	return nil
}
