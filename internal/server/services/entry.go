package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/gophjournal/internal/common"
	"github.com/dmitrijs2005/gophjournal/internal/logging"
	"github.com/dmitrijs2005/gophjournal/internal/server/catalog"
	"github.com/dmitrijs2005/gophjournal/internal/server/metrics"
	"github.com/dmitrijs2005/gophjournal/internal/server/models"
	"github.com/dmitrijs2005/gophjournal/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/gophjournal/internal/server/summarizer"
	"github.com/oklog/ulid/v2"
)

const (
	DefaultListLimit = 100
	MaxListLimit     = 500
)

// EntryService is the entry pipeline: validate, gate the persona, try to
// summarize, persist.
type EntryService struct {
	db           *sql.DB
	repomanager  repomanager.RepositoryManager
	catalog      *catalog.Catalog
	entitlements *EntitlementService
	summarizer   summarizer.Summarizer
	timeout      time.Duration
	logger       logging.Logger

	now   func() time.Time
	newID func() string
}

func NewEntryService(db *sql.DB, m repomanager.RepositoryManager, c *catalog.Catalog,
	e *EntitlementService, s summarizer.Summarizer, summaryTimeout time.Duration, l logging.Logger) *EntryService {
	return &EntryService{
		db:           db,
		repomanager:  m,
		catalog:      c,
		entitlements: e,
		summarizer:   s,
		timeout:      summaryTimeout,
		logger:       l.With("module", "entries"),
		now:          time.Now,
		newID:        func() string { return ulid.Make().String() },
	}
}

// CreateEntry stores a new entry for subject written with persona. An empty
// persona means the default one.
//
// A summarizer failure or timeout never fails the call: the entry is stored
// without a summary. A locked persona fails with common.ErrPersonaLocked and
// nothing is stored.
func (s *EntryService) CreateEntry(ctx context.Context, subject, text, persona string) (*models.Entry, error) {
	if strings.TrimSpace(text) == "" {
		return nil, common.ErrEmptyEntry
	}
	if persona == "" {
		persona = string(catalog.DefaultPersona)
	}

	id := catalog.FeatureID(persona)
	instruction, err := s.catalog.Instruction(id)
	if err != nil {
		return nil, err
	}

	if id != catalog.DefaultPersona {
		ok, err := s.entitlements.IsEntitled(ctx, subject, id)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, fmt.Errorf("%w: %s", common.ErrPersonaLocked, id)
		}
	}

	entry := &models.Entry{
		ID:      s.newID(),
		Subject: subject,
		Text:    text,
		Persona: persona,
		Summary: s.summarize(ctx, instruction, text),
		// postgres keeps microseconds
		CreatedAt: s.now().UTC().Truncate(time.Microsecond),
	}

	if err := s.repomanager.Entries(s.db).Create(ctx, entry); err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrStoreUnavailable, err)
	}

	metrics.EntriesCreatedTotal.WithLabelValues(persona).Inc()
	return entry, nil
}

func (s *EntryService) summarize(ctx context.Context, instruction, text string) *string {
	sctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	out, err := s.summarizer.Summarize(sctx, instruction, text)
	if err != nil {
		metrics.SummarizerCallsTotal.WithLabelValues(metrics.OutcomeDegraded).Inc()
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(sctx.Err(), context.DeadlineExceeded) {
			s.logger.Warn(ctx, "summarizer timed out, storing entry without summary", "timeout", s.timeout.String())
		} else {
			s.logger.Warn(ctx, "summarizer failed, storing entry without summary", "error", err)
		}
		return nil
	}

	metrics.SummarizerCallsTotal.WithLabelValues(metrics.OutcomeSuccess).Inc()
	return &out
}

// List returns the subject's entries newest first. limit <= 0 means
// DefaultListLimit; larger values are capped at MaxListLimit.
func (s *EntryService) List(ctx context.Context, subject string, limit int) ([]*models.Entry, error) {
	entries, err := s.repomanager.Entries(s.db).ListBySubject(ctx, subject, NormalizeLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrStoreUnavailable, err)
	}
	return entries, nil
}

// ListAll returns every entry of subject, newest first.
func (s *EntryService) ListAll(ctx context.Context, subject string) ([]*models.Entry, error) {
	entries, err := s.repomanager.Entries(s.db).ListBySubject(ctx, subject, 0)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrStoreUnavailable, err)
	}
	return entries, nil
}

// Clear deletes every entry of subject.
func (s *EntryService) Clear(ctx context.Context, subject string) (int64, error) {
	n, err := s.repomanager.Entries(s.db).DeleteBySubject(ctx, subject)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", common.ErrStoreUnavailable, err)
	}
	s.logger.Info(ctx, "journal cleared", "subject", subject, "deleted", n)
	return n, nil
}

func NormalizeLimit(limit int) int {
	switch {
	case limit <= 0:
		return DefaultListLimit
	case limit > MaxListLimit:
		return MaxListLimit
	default:
		return limit
	}
}
