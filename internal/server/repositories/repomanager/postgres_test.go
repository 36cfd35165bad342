package repomanager

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/gophjournal/internal/dbx"
	"github.com/dmitrijs2005/gophjournal/internal/server/repositories/entitlements"
	"github.com/dmitrijs2005/gophjournal/internal/server/repositories/entries"
	"github.com/pressly/goose/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return db, mock
}

func TestNew(t *testing.T) {
	m, err := New(dbx.DriverPostgres)
	require.NoError(t, err)
	assert.IsType(t, &PostgresRepositoryManager{}, m)

	m, err = New(dbx.DriverSQLite)
	require.NoError(t, err)
	assert.IsType(t, &SQLiteRepositoryManager{}, m)

	_, err = New("mysql")
	require.Error(t, err)
}

func TestFactories_ReturnConcreteRepos(t *testing.T) {
	db, _ := newDB(t)
	defer db.Close()

	pg := &PostgresRepositoryManager{}
	assert.IsType(t, &entries.PostgresRepository{}, pg.Entries(db))
	assert.IsType(t, &entitlements.PostgresRepository{}, pg.Entitlements(db))

	lite := &SQLiteRepositoryManager{}
	assert.IsType(t, &entries.SQLiteRepository{}, lite.Entries(db))
	assert.IsType(t, &entitlements.SQLiteRepository{}, lite.Entitlements(db))
}

func TestRunMigrations_Dirs(t *testing.T) {
	db, _ := newDB(t)
	defer db.Close()

	tests := []struct {
		name    string
		m       RepositoryManager
		wantDir string
	}{
		{"postgres", &PostgresRepositoryManager{}, "postgres"},
		{"sqlite", &SQLiteRepositoryManager{}, "sqlite"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			orig := gooseUpContext
			defer func() { gooseUpContext = orig }()

			var gotDir string
			gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
				gotDir = dir
				return nil
			}
			require.NoError(t, tt.m.RunMigrations(context.Background(), db))
			assert.Equal(t, tt.wantDir, gotDir)
		})
	}
}

func TestRunMigrations_Error(t *testing.T) {
	db, _ := newDB(t)
	defer db.Close()

	orig := gooseUpContext
	gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
		return errors.New("boom")
	}
	defer func() { gooseUpContext = orig }()

	m := &PostgresRepositoryManager{}
	if err := m.RunMigrations(context.Background(), db); err == nil || err.Error() != "boom" {
		t.Fatalf("expected boom, got %v", err)
	}
}
