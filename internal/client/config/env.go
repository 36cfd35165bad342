package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// EnvConfig maps the client's environment variables. Unset variables stay nil.
type EnvConfig struct {
	ServerURL      *string        `env:"JOURNAL_SERVER_URL"`
	Token          *string        `env:"JOURNAL_TOKEN"`
	RequestTimeout *time.Duration `env:"JOURNAL_REQUEST_TIMEOUT"`
}

func parseEnv(cfg *Config) error {
	var e EnvConfig
	if err := env.Parse(&e); err != nil {
		return fmt.Errorf("config: parse env: %w", err)
	}

	if e.ServerURL != nil {
		cfg.ServerURL = *e.ServerURL
	}
	if e.Token != nil {
		cfg.Token = *e.Token
	}
	if e.RequestTimeout != nil {
		cfg.RequestTimeout = *e.RequestTimeout
	}
	return nil
}
