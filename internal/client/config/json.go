package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/dmitrijs2005/gophjournal/internal/flagx"
	"github.com/dmitrijs2005/gophjournal/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling. Absent keys
// leave the current value untouched.
type JsonConfig struct {
	ServerURL           *string         `json:"server_url"`
	Token               *string         `json:"token"`
	RequestTimeout      *timex.Duration `json:"request_timeout"`
	OnlineCheckInterval *timex.Duration `json:"online_check_interval"`
	ExportDir           *string         `json:"export_dir"`
}

// parseJson overlays Config with values loaded from the file named by
// -c/-config. Without the flag nothing is loaded.
func parseJson(cfg *Config) error {
	path := flagx.ConfigFilePath()
	if path == "" {
		return nil
	}
	return loadJSONFile(cfg, path)
}

func loadJSONFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config: read %s: %w", path, err)
	}

	var jc JsonConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		return fmt.Errorf("config: parse %s: %w", path, err)
	}

	if jc.ServerURL != nil {
		cfg.ServerURL = *jc.ServerURL
	}
	if jc.Token != nil {
		cfg.Token = *jc.Token
	}
	if jc.RequestTimeout != nil {
		cfg.RequestTimeout = jc.RequestTimeout.Duration
	}
	if jc.OnlineCheckInterval != nil {
		cfg.OnlineCheckInterval = jc.OnlineCheckInterval.Duration
	}
	if jc.ExportDir != nil {
		cfg.ExportDir = *jc.ExportDir
	}
	return nil
}
