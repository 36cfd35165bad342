package services

import (
	"context"
	"database/sql"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/dmitrijs2005/gophjournal/internal/common"
	"github.com/dmitrijs2005/gophjournal/internal/dbx"
	"github.com/dmitrijs2005/gophjournal/internal/server/catalog"
	"github.com/dmitrijs2005/gophjournal/internal/server/payments"
	"github.com/dmitrijs2005/gophjournal/internal/server/repositories/repomanager"
	"github.com/stretchr/testify/require"
)

// -------- store --------

func newStore(t *testing.T) (*sql.DB, repomanager.RepositoryManager) {
	t.Helper()
	ctx := context.Background()
	db, err := dbx.Open(ctx, dbx.DriverSQLite, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	m := &repomanager.SQLiteRepositoryManager{}
	require.NoError(t, m.RunMigrations(ctx, db))
	return db, m
}

func newEntitlements(t *testing.T) (*EntitlementService, *sql.DB) {
	t.Helper()
	db, m := newStore(t)
	return NewEntitlementService(db, m, catalog.Default()), db
}

// -------- broker fake --------

type fakeBroker struct {
	mu       sync.Mutex
	sessions map[string]*payments.Session
	getErr   error
	createFn func(p payments.CreateParams) (*payments.Session, error)
	created  []payments.CreateParams

	calls   atomic.Int32
	release chan struct{}
}

func newFakeBroker() *fakeBroker {
	return &fakeBroker{sessions: map[string]*payments.Session{}}
}

func (b *fakeBroker) put(s *payments.Session) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.sessions[s.ID] = s
}

func (b *fakeBroker) CreateSession(ctx context.Context, p payments.CreateParams) (*payments.Session, error) {
	b.mu.Lock()
	b.created = append(b.created, p)
	b.mu.Unlock()
	if b.createFn != nil {
		return b.createFn(p)
	}
	return &payments.Session{ID: "cs_new", URL: "https://checkout.example/cs_new", Status: payments.StatusPending,
		Feature: p.Feature, Subject: p.Subject}, nil
}

func (b *fakeBroker) GetSession(ctx context.Context, id string) (*payments.Session, error) {
	b.calls.Add(1)
	if b.release != nil {
		<-b.release
	}
	if b.getErr != nil {
		return nil, b.getErr
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	s, ok := b.sessions[id]
	if !ok {
		return nil, common.ErrSessionNotFound
	}
	cp := *s
	return &cp, nil
}

// -------- summarizer fakes --------

type fakeSummarizer struct {
	out   string
	err   error
	block bool

	mu    sync.Mutex
	calls []string
}

func (f *fakeSummarizer) Summarize(ctx context.Context, instruction, text string) (string, error) {
	f.mu.Lock()
	f.calls = append(f.calls, instruction)
	f.mu.Unlock()
	if f.block {
		<-ctx.Done()
		return "", ctx.Err()
	}
	if f.err != nil {
		return "", f.err
	}
	return f.out, nil
}
