// Package entitlements persists unlocked features per subject.
package entitlements

import (
	"context"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/gophjournal/internal/dbx"
	"github.com/dmitrijs2005/gophjournal/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Grant(ctx context.Context, e *models.Entitlement) (bool, error) {
	query := `INSERT INTO entitlements (subject, feature, unlocked_at) VALUES ($1, $2, $3)
		ON CONFLICT (subject, feature) DO NOTHING`
	res, err := r.db.ExecContext(ctx, query, e.Subject, e.Feature, e.UnlockedAt)
	if err != nil {
		return false, fmt.Errorf("failed to insert entitlement: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected error: %w", err)
	}
	return n == 1, nil
}

func (r *PostgresRepository) HasAny(ctx context.Context, subject string, features ...string) (bool, error) {
	if len(features) == 0 {
		return false, nil
	}
	args := make([]any, 0, len(features)+1)
	args = append(args, subject)
	ph := make([]string, len(features))
	for i, f := range features {
		ph[i] = fmt.Sprintf("$%d", i+2)
		args = append(args, f)
	}

	query := `SELECT EXISTS (SELECT 1 FROM entitlements WHERE subject = $1 AND feature IN (` +
		strings.Join(ph, ", ") + `))`

	var ok bool
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&ok); err != nil {
		return false, fmt.Errorf("failed to check entitlement: %w", err)
	}
	return ok, nil
}

func (r *PostgresRepository) ListBySubject(ctx context.Context, subject string) ([]*models.Entitlement, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT subject, feature, unlocked_at FROM entitlements WHERE subject = $1 ORDER BY feature`, subject)
	if err != nil {
		return nil, fmt.Errorf("failed to select entitlements: %w", err)
	}
	defer rows.Close()

	var result []*models.Entitlement
	for rows.Next() {
		var item models.Entitlement
		if err := rows.Scan(&item.Subject, &item.Feature, &item.UnlockedAt); err != nil {
			return nil, err
		}
		item.UnlockedAt = item.UnlockedAt.UTC()
		result = append(result, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
