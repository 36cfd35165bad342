// Package config handles configuration for the journal server: defaults,
// an optional JSON file, environment variables and command-line flags, in
// that order of precedence (later wins).
package config

import (
	"fmt"
	"time"
)

// Config holds runtime settings for the journal server.
type Config struct {
	HTTPAddr        string
	ShutdownTimeout time.Duration

	// StorageDriver is "postgres" or "sqlite".
	StorageDriver string
	DatabaseDSN   string

	// RequireAuth switches from the singleton subject to JWT bearer subjects.
	RequireAuth                 bool
	SecretKey                   string
	AccessTokenValidityDuration time.Duration

	PublicURL string

	StripeSecretKey     string
	StripeWebhookSecret string
	BrokerTimeout       time.Duration

	SummarizerURL       string
	SummarizerAPIKey    string
	SummarizerModel     string
	SummarizerTimeout   time.Duration
	SummarizerRateLimit float64
	SummarizerBurst     int

	S3RootUser     string
	S3RootPassword string
	S3Bucket       string
	S3Region       string
	S3BaseEndpoint string
	ExportURLTTL   time.Duration

	LogLevel  string
	LogFormat string
}

// LoadDefaults populates Config with development defaults.
// NOTE: the secret key and S3 credentials are insecure outside development.
func (c *Config) LoadDefaults() {
	c.HTTPAddr = ":8080"
	c.ShutdownTimeout = 10 * time.Second

	c.StorageDriver = "sqlite"
	c.DatabaseDSN = "journal.db"

	c.RequireAuth = false
	c.SecretKey = "secretKey"
	c.AccessTokenValidityDuration = 24 * time.Hour

	c.PublicURL = "http://localhost:8080"
	c.BrokerTimeout = 10 * time.Second

	c.SummarizerURL = "https://api.anthropic.com/v1/messages"
	c.SummarizerModel = "claude-3-5-haiku-latest"
	c.SummarizerTimeout = 8 * time.Second
	c.SummarizerRateLimit = 2
	c.SummarizerBurst = 4

	c.S3RootUser = "admin"
	c.S3RootPassword = "secretpassword"
	c.S3Bucket = "journal-exports"
	c.S3Region = "us-east-1"
	c.S3BaseEndpoint = "http://127.0.0.1:9000/"
	c.ExportURLTTL = 15 * time.Minute

	c.LogLevel = "info"
	c.LogFormat = "json"
}

// PaymentsConfigured reports whether checkout sessions can be created.
func (c *Config) PaymentsConfigured() bool { return c.StripeSecretKey != "" }

// SummarizerConfigured reports whether a model API key is present.
func (c *Config) SummarizerConfigured() bool { return c.SummarizerAPIKey != "" }

// Validate rejects settings the server cannot start with.
func (c *Config) Validate() error {
	switch c.StorageDriver {
	case "postgres", "sqlite":
	default:
		return fmt.Errorf("config: unsupported storage driver %q", c.StorageDriver)
	}
	if c.DatabaseDSN == "" {
		return fmt.Errorf("config: database dsn is empty")
	}
	if c.RequireAuth && c.SecretKey == "" {
		return fmt.Errorf("config: secret key is required when auth is enabled")
	}
	if c.SummarizerTimeout <= 0 {
		return fmt.Errorf("config: summarizer timeout must be positive")
	}
	if c.BrokerTimeout <= 0 {
		return fmt.Errorf("config: broker timeout must be positive")
	}
	return nil
}

// LoadConfig builds a Config by applying defaults, then overlaying values
// from an optional JSON file, the environment and finally command-line flags.
func LoadConfig() (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()
	if err := parseJson(cfg); err != nil {
		return nil, err
	}
	if err := parseEnv(cfg); err != nil {
		return nil, err
	}
	if err := parseFlags(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
