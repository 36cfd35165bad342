// Package config holds the settings of the journal command-line client.
package config

import (
	"fmt"
	"time"
)

// Config holds runtime settings for the journal CLI.
//
// Fields:
//   - ServerURL: base URL of the journal server.
//   - Token: bearer token, needed only when the server requires auth.
//   - RequestTimeout: per-request deadline.
//   - OnlineCheckInterval: how often the client probes server reachability.
//   - ExportDir: where downloaded journal exports are saved.
type Config struct {
	ServerURL           string
	Token               string
	RequestTimeout      time.Duration
	OnlineCheckInterval time.Duration
	ExportDir           string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerURL = "http://127.0.0.1:8080"
	c.Token = ""
	c.RequestTimeout = 30 * time.Second
	c.OnlineCheckInterval = 5 * time.Second
	c.ExportDir = "exports"
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON (if present), the environment and command-line flags. Later sources
// take precedence over earlier ones.
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
	if cfg.ServerURL == "" {
		return nil, fmt.Errorf("config: server url is empty")
	}
	return cfg, nil
}
