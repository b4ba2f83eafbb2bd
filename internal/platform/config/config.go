package config

import (
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	DatabaseURL  string
	Port         string
	IsProduction bool
	JWTSecret    string

	// Payment providers. An empty secret disables that provider.
	PaystackSecretKey   string `mapstructure:"PAYSTACK_SECRET_KEY"`
	StripeSecretKey     string `mapstructure:"STRIPE_SECRET_KEY"`
	StripeWebhookSecret string `mapstructure:"STRIPE_WEBHOOK_SECRET"`

	// Event publishing. An empty AMQP URL disables publishing entirely.
	AMQPURL        string `mapstructure:"AMQP_URL"`
	EventsExchange string `mapstructure:"EVENTS_EXCHANGE"`

	// Retry worker tuning.
	RetryBaseDelay   time.Duration
	RetryMaxAttempts int
	RetryBatchSize   int

	// Requests per minute allowed on the webhook endpoints, per client IP.
	WebhookRateLimit int64
}

// LoadConfig loads configuration from environment variables and .env file if present.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	viper.SetDefault("PGSQL_URL", "")
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("IS_PRODUCTION", false)
	viper.SetDefault("JWT_SECRET", "a-very-secret-key-should-be-longer-and-random")
	viper.SetDefault("PAYSTACK_SECRET_KEY", "")
	viper.SetDefault("STRIPE_SECRET_KEY", "")
	viper.SetDefault("STRIPE_WEBHOOK_SECRET", "")
	viper.SetDefault("AMQP_URL", "")
	viper.SetDefault("EVENTS_EXCHANGE", "booka.events")
	viper.SetDefault("RETRY_BASE_DELAY", "30m")
	viper.SetDefault("RETRY_MAX_ATTEMPTS", 3)
	viper.SetDefault("RETRY_BATCH_SIZE", 50)
	viper.SetDefault("WEBHOOK_RATE_LIMIT", 120)

	viper.AutomaticEnv()

	cfg := &Config{}

	cfg.DatabaseURL = viper.GetString("PGSQL_URL")
	if cfg.DatabaseURL == "" {
		log.Println("Warning: PGSQL_URL environment variable not set.")
	}

	cfg.Port = viper.GetString("PORT")
	if cfg.Port == "" {
		cfg.Port = "8080"
		log.Printf("Warning: PORT environment variable not set. Defaulting to %s\n", cfg.Port)
	}

	cfg.IsProduction = viper.GetBool("IS_PRODUCTION")

	cfg.JWTSecret = viper.GetString("JWT_SECRET")
	if cfg.JWTSecret == "a-very-secret-key-should-be-longer-and-random" {
		log.Println("Warning: JWT_SECRET environment variable not set. Using default insecure key.")
	}

	cfg.PaystackSecretKey = viper.GetString("PAYSTACK_SECRET_KEY")
	cfg.StripeSecretKey = viper.GetString("STRIPE_SECRET_KEY")
	cfg.StripeWebhookSecret = viper.GetString("STRIPE_WEBHOOK_SECRET")
	if cfg.PaystackSecretKey == "" && cfg.StripeSecretKey == "" {
		log.Println("Warning: no payment provider keys set. Deposit initiation will be unavailable.")
	}

	cfg.AMQPURL = viper.GetString("AMQP_URL")
	cfg.EventsExchange = viper.GetString("EVENTS_EXCHANGE")

	retryBaseDelayStr := viper.GetString("RETRY_BASE_DELAY")
	retryBaseDelay, err := time.ParseDuration(retryBaseDelayStr)
	if err != nil {
		retryBaseDelay = 30 * time.Minute
		log.Printf("Warning: Invalid value for RETRY_BASE_DELAY ('%s'). Defaulting to %s.\n", retryBaseDelayStr, retryBaseDelay.String())
	}
	cfg.RetryBaseDelay = retryBaseDelay
	cfg.RetryMaxAttempts = viper.GetInt("RETRY_MAX_ATTEMPTS")
	cfg.RetryBatchSize = viper.GetInt("RETRY_BATCH_SIZE")

	cfg.WebhookRateLimit = viper.GetInt64("WEBHOOK_RATE_LIMIT")

	return cfg, nil
}
