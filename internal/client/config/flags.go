package config

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/dmitrijs2005/gophjournal/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
//	-a string   base URL of the journal server
//	-t string   bearer token
//	-i int      online check interval in seconds
func parseFlags(cfg *Config) error {
	return parseFlagArgs(cfg, os.Args[1:])
}

func parseFlagArgs(cfg *Config, argv []string) error {
	args := flagx.FilterArgs(argv, []string{"a", "t", "i"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.ServerURL, "a", cfg.ServerURL, "base URL of the journal server")
	fs.StringVar(&cfg.Token, "t", cfg.Token, "bearer token")
	onlineCheckInterval := fs.Int("i", int(cfg.OnlineCheckInterval.Seconds()), "online check interval (in seconds)")

	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("config: flags: %w", err)
	}

	cfg.OnlineCheckInterval = time.Duration(*onlineCheckInterval) * time.Second
	return nil
}
