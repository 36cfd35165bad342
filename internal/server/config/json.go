package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/dmitrijs2005/gophjournal/internal/flagx"
	"github.com/dmitrijs2005/gophjournal/internal/timex"
)

// JsonConfig is the on-disk form of Config. Absent keys leave the current
// value untouched; durations accept "1m30s" or integer nanoseconds.
type JsonConfig struct {
	HTTPAddr        *string         `json:"http_addr"`
	ShutdownTimeout *timex.Duration `json:"shutdown_timeout"`

	StorageDriver *string `json:"storage_driver"`
	DatabaseDSN   *string `json:"database_dsn"`

	RequireAuth                 *bool           `json:"require_auth"`
	SecretKey                   *string         `json:"secret_key"`
	AccessTokenValidityDuration *timex.Duration `json:"access_token_validity_duration"`

	PublicURL *string `json:"public_url"`

	StripeSecretKey     *string         `json:"stripe_secret_key"`
	StripeWebhookSecret *string         `json:"stripe_webhook_secret"`
	BrokerTimeout       *timex.Duration `json:"broker_timeout"`

	SummarizerURL       *string         `json:"summarizer_url"`
	SummarizerAPIKey    *string         `json:"summarizer_api_key"`
	SummarizerModel     *string         `json:"summarizer_model"`
	SummarizerTimeout   *timex.Duration `json:"summarizer_timeout"`
	SummarizerRateLimit *float64        `json:"summarizer_rate_limit"`
	SummarizerBurst     *int            `json:"summarizer_burst"`

	S3RootUser     *string         `json:"s3_root_user"`
	S3RootPassword *string         `json:"s3_root_password"`
	S3Bucket       *string         `json:"s3_bucket"`
	S3Region       *string         `json:"s3_region"`
	S3BaseEndpoint *string         `json:"s3_base_endpoint"`
	ExportURLTTL   *timex.Duration `json:"export_url_ttl"`

	LogLevel  *string `json:"log_level"`
	LogFormat *string `json:"log_format"`
}

// parseJson loads the file named by -c/-config, if any, into config.
func parseJson(config *Config) error {
	path := flagx.ConfigFilePath()
	if path == "" {
		return nil
	}
	return loadJSONFile(config, path)
}

func loadJSONFile(config *Config, path string) error {
	file, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config: read %s: %w", path, err)
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		return fmt.Errorf("config: parse %s: %w", path, err)
	}

	setString(&config.HTTPAddr, c.HTTPAddr)
	setDuration(&config.ShutdownTimeout, c.ShutdownTimeout)
	setString(&config.StorageDriver, c.StorageDriver)
	setString(&config.DatabaseDSN, c.DatabaseDSN)
	setBool(&config.RequireAuth, c.RequireAuth)
	setString(&config.SecretKey, c.SecretKey)
	setDuration(&config.AccessTokenValidityDuration, c.AccessTokenValidityDuration)
	setString(&config.PublicURL, c.PublicURL)
	setString(&config.StripeSecretKey, c.StripeSecretKey)
	setString(&config.StripeWebhookSecret, c.StripeWebhookSecret)
	setDuration(&config.BrokerTimeout, c.BrokerTimeout)
	setString(&config.SummarizerURL, c.SummarizerURL)
	setString(&config.SummarizerAPIKey, c.SummarizerAPIKey)
	setString(&config.SummarizerModel, c.SummarizerModel)
	setDuration(&config.SummarizerTimeout, c.SummarizerTimeout)
	if c.SummarizerRateLimit != nil {
		config.SummarizerRateLimit = *c.SummarizerRateLimit
	}
	if c.SummarizerBurst != nil {
		config.SummarizerBurst = *c.SummarizerBurst
	}
	setString(&config.S3RootUser, c.S3RootUser)
	setString(&config.S3RootPassword, c.S3RootPassword)
	setString(&config.S3Bucket, c.S3Bucket)
	setString(&config.S3Region, c.S3Region)
	setString(&config.S3BaseEndpoint, c.S3BaseEndpoint)
	setDuration(&config.ExportURLTTL, c.ExportURLTTL)
	setString(&config.LogLevel, c.LogLevel)
	setString(&config.LogFormat, c.LogFormat)
	return nil
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

func setBool(dst *bool, v *bool) {
	if v != nil {
		*dst = *v
	}
}

func setDuration(dst *time.Duration, v *timex.Duration) {
	if v != nil {
		*dst = v.Duration
	}
}
