package config

import (
	"flag"
	"fmt"
	"os"

	"github.com/dmitrijs2005/gophjournal/internal/flagx"
)

// parseFlags overlays command-line flags onto config.
//
//	-a string         HTTP bind address (e.g. ":8080")
//	-driver string    storage driver: postgres | sqlite
//	-d string         database DSN
//	-s string         JWT HMAC secret key
//	-auth             require bearer tokens
//	-public-url       externally reachable base URL
//	-log-level        debug | info | warn | error
//
// Only these names are picked out of os.Args, so other layers' flags
// (-c/-config) do not trip the parser.
func parseFlags(config *Config) error {
	return parseFlagArgs(config, os.Args[1:])
}

func parseFlagArgs(config *Config, argv []string) error {
	args := flagx.FilterArgs(argv, []string{"a", "driver", "d", "s", "public-url", "log-level"}, "auth")

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.HTTPAddr, "a", config.HTTPAddr, "address and port to run server")
	fs.StringVar(&config.StorageDriver, "driver", config.StorageDriver, "storage driver (postgres|sqlite)")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")
	fs.BoolVar(&config.RequireAuth, "auth", config.RequireAuth, "require bearer tokens")
	fs.StringVar(&config.PublicURL, "public-url", config.PublicURL, "public base URL used in checkout redirects")
	fs.StringVar(&config.LogLevel, "log-level", config.LogLevel, "log level")

	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("config: flags: %w", err)
	}
	return nil
}
