// Package dbx holds the small database/sql helpers shared by repositories:
// the DBTX handle interface and a driver-aware Open.
package dbx

import (
	"context"
	"database/sql"
	"fmt"
)

// DBTX is the subset of database/sql used by our repos.
// Both *sql.DB and *sql.Tx satisfy this interface.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Storage drivers understood by Open.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// SQLDriverName maps a storage driver to its registered database/sql name.
// The driver packages themselves are imported by the repository managers.
func SQLDriverName(driver string) (string, error) {
	switch driver {
	case DriverPostgres:
		return "pgx", nil
	case DriverSQLite:
		return "sqlite", nil
	default:
		return "", fmt.Errorf("unsupported storage driver %q", driver)
	}
}

// Open opens and pings a database for the given storage driver.
//
// SQLite handles are limited to a single connection: writers are serialized
// and in-memory databases stay visible to every caller.
func Open(ctx context.Context, driver, dsn string) (*sql.DB, error) {
	name, err := SQLDriverName(driver)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open(name, dsn)
	if err != nil {
		return nil, fmt.Errorf("db open error: %w", err)
	}

	if driver == DriverSQLite {
		db.SetMaxOpenConns(1)
		if _, err := db.ExecContext(ctx, `PRAGMA busy_timeout = 5000`); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("sqlite pragma error: %w", err)
		}
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("db ping error: %w", err)
	}

	return db, nil
}
