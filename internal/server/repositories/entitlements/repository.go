package entitlements

import (
	"context"

	"github.com/dmitrijs2005/gophjournal/internal/server/models"
)

// Repository is the entitlement store. It only ever adds rows.
type Repository interface {
	// Grant records the entitlement unless it already exists. It reports
	// whether a new row was written; an existing row is not an error.
	Grant(ctx context.Context, e *models.Entitlement) (bool, error)
	// HasAny reports whether the subject holds at least one of the features.
	HasAny(ctx context.Context, subject string, features ...string) (bool, error)
	// ListBySubject returns the subject's stored entitlements ordered by feature.
	ListBySubject(ctx context.Context, subject string) ([]*models.Entitlement, error)
}
