// Package services contains server-side business logic: entitlement
// decisions, checkout reconciliation, the entry pipeline and exports.
package services

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/dmitrijs2005/gophjournal/internal/common"
	"github.com/dmitrijs2005/gophjournal/internal/server/catalog"
	"github.com/dmitrijs2005/gophjournal/internal/server/models"
	"github.com/dmitrijs2005/gophjournal/internal/server/repositories/repomanager"
)

// Unlocked is the entitlement picture of one subject.
type Unlocked struct {
	// Lifetime is set when the wildcard has been purchased.
	Lifetime bool
	Features []catalog.FeatureID
}

// EntitlementService answers "may this subject use that feature". Rows are
// only ever added; the lifetime wildcard is resolved at read time against the
// current catalog, never expanded into rows.
type EntitlementService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	catalog     *catalog.Catalog
	now         func() time.Time
}

func NewEntitlementService(db *sql.DB, m repomanager.RepositoryManager, c *catalog.Catalog) *EntitlementService {
	return &EntitlementService{
		db:          db,
		repomanager: m,
		catalog:     c,
		now:         time.Now,
	}
}

// SetUnlocked idempotently records feature as unlocked for subject. Writing
// an existing unlock is a successful no-op.
func (s *EntitlementService) SetUnlocked(ctx context.Context, subject string, feature catalog.FeatureID) error {
	if _, err := s.catalog.Product(feature); err != nil {
		return err
	}
	_, err := s.repomanager.Entitlements(s.db).Grant(ctx, &models.Entitlement{
		Subject:    subject,
		Feature:    string(feature),
		UnlockedAt: s.now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("%w: %w", common.ErrStoreUnavailable, err)
	}
	return nil
}

// IsEntitled is true for free items, explicit unlocks, and any feature when
// the subject holds the wildcard.
func (s *EntitlementService) IsEntitled(ctx context.Context, subject string, feature catalog.FeatureID) (bool, error) {
	p, err := s.catalog.Product(feature)
	if err != nil {
		return false, err
	}
	if p.Free() {
		return true, nil
	}

	features := []string{string(feature)}
	if !s.catalog.IsWildcard(feature) {
		features = append(features, string(catalog.Lifetime))
	}

	ok, err := s.repomanager.Entitlements(s.db).HasAny(ctx, subject, features...)
	if err != nil {
		return false, fmt.Errorf("%w: %w", common.ErrStoreUnavailable, err)
	}
	return ok, nil
}

// ListUnlocked returns, in catalog order, every non-wildcard feature for
// which IsEntitled would be true. Stored rows for identifiers no longer in
// the catalog are ignored.
func (s *EntitlementService) ListUnlocked(ctx context.Context, subject string) (*Unlocked, error) {
	rows, err := s.repomanager.Entitlements(s.db).ListBySubject(ctx, subject)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrStoreUnavailable, err)
	}

	held := make(map[catalog.FeatureID]bool, len(rows))
	for _, r := range rows {
		held[catalog.FeatureID(r.Feature)] = true
	}

	out := &Unlocked{Lifetime: held[catalog.Lifetime], Features: []catalog.FeatureID{}}
	for _, p := range s.catalog.Products() {
		if s.catalog.IsWildcard(p.ID) {
			continue
		}
		if out.Lifetime || held[p.ID] || p.Free() {
			out.Features = append(out.Features, p.ID)
		}
	}
	return out, nil
}
