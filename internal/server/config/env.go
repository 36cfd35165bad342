package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// EnvConfig maps JOURNAL_* variables. Unset variables stay nil.
type EnvConfig struct {
	HTTPAddr        *string        `env:"JOURNAL_HTTP_ADDR"`
	ShutdownTimeout *time.Duration `env:"JOURNAL_SHUTDOWN_TIMEOUT"`

	StorageDriver *string `env:"JOURNAL_STORAGE_DRIVER"`
	DatabaseDSN   *string `env:"JOURNAL_DATABASE_DSN"`

	RequireAuth                 *bool          `env:"JOURNAL_REQUIRE_AUTH"`
	SecretKey                   *string        `env:"JOURNAL_SECRET_KEY"`
	AccessTokenValidityDuration *time.Duration `env:"JOURNAL_ACCESS_TOKEN_TTL"`

	PublicURL *string `env:"JOURNAL_PUBLIC_URL"`

	StripeSecretKey     *string        `env:"JOURNAL_STRIPE_SECRET_KEY"`
	StripeWebhookSecret *string        `env:"JOURNAL_STRIPE_WEBHOOK_SECRET"`
	BrokerTimeout       *time.Duration `env:"JOURNAL_BROKER_TIMEOUT"`

	SummarizerURL       *string        `env:"JOURNAL_SUMMARIZER_URL"`
	SummarizerAPIKey    *string        `env:"JOURNAL_SUMMARIZER_API_KEY"`
	SummarizerModel     *string        `env:"JOURNAL_SUMMARIZER_MODEL"`
	SummarizerTimeout   *time.Duration `env:"JOURNAL_SUMMARIZER_TIMEOUT"`
	SummarizerRateLimit *float64       `env:"JOURNAL_SUMMARIZER_RATE_LIMIT"`
	SummarizerBurst     *int           `env:"JOURNAL_SUMMARIZER_BURST"`

	S3RootUser     *string        `env:"JOURNAL_S3_ROOT_USER"`
	S3RootPassword *string        `env:"JOURNAL_S3_ROOT_PASSWORD"`
	S3Bucket       *string        `env:"JOURNAL_S3_BUCKET"`
	S3Region       *string        `env:"JOURNAL_S3_REGION"`
	S3BaseEndpoint *string        `env:"JOURNAL_S3_BASE_ENDPOINT"`
	ExportURLTTL   *time.Duration `env:"JOURNAL_EXPORT_URL_TTL"`

	LogLevel  *string `env:"JOURNAL_LOG_LEVEL"`
	LogFormat *string `env:"JOURNAL_LOG_FORMAT"`
}

// loadDotEnv is a seam for tests; a missing .env file is not an error.
var loadDotEnv = func() { _ = godotenv.Load() }

func parseEnv(config *Config) error {
	loadDotEnv()

	var e EnvConfig
	if err := env.Parse(&e); err != nil {
		return fmt.Errorf("config: parse env: %w", err)
	}

	setString(&config.HTTPAddr, e.HTTPAddr)
	setPlainDuration(&config.ShutdownTimeout, e.ShutdownTimeout)
	setString(&config.StorageDriver, e.StorageDriver)
	setString(&config.DatabaseDSN, e.DatabaseDSN)
	setBool(&config.RequireAuth, e.RequireAuth)
	setString(&config.SecretKey, e.SecretKey)
	setPlainDuration(&config.AccessTokenValidityDuration, e.AccessTokenValidityDuration)
	setString(&config.PublicURL, e.PublicURL)
	setString(&config.StripeSecretKey, e.StripeSecretKey)
	setString(&config.StripeWebhookSecret, e.StripeWebhookSecret)
	setPlainDuration(&config.BrokerTimeout, e.BrokerTimeout)
	setString(&config.SummarizerURL, e.SummarizerURL)
	setString(&config.SummarizerAPIKey, e.SummarizerAPIKey)
	setString(&config.SummarizerModel, e.SummarizerModel)
	setPlainDuration(&config.SummarizerTimeout, e.SummarizerTimeout)
	if e.SummarizerRateLimit != nil {
		config.SummarizerRateLimit = *e.SummarizerRateLimit
	}
	if e.SummarizerBurst != nil {
		config.SummarizerBurst = *e.SummarizerBurst
	}
	setString(&config.S3RootUser, e.S3RootUser)
	setString(&config.S3RootPassword, e.S3RootPassword)
	setString(&config.S3Bucket, e.S3Bucket)
	setString(&config.S3Region, e.S3Region)
	setString(&config.S3BaseEndpoint, e.S3BaseEndpoint)
	setPlainDuration(&config.ExportURLTTL, e.ExportURLTTL)
	setString(&config.LogLevel, e.LogLevel)
	setString(&config.LogFormat, e.LogFormat)
	return nil
}

func setPlainDuration(dst *time.Duration, v *time.Duration) {
	if v != nil {
		*dst = *v
	}
}
