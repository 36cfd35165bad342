package entitlements

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/gophjournal/internal/dbx"
	"github.com/dmitrijs2005/gophjournal/internal/server/models"
)

// SQLiteRepository stores unlocked_at as UTC unix nanoseconds.
type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Grant(ctx context.Context, e *models.Entitlement) (bool, error) {
	query := `INSERT INTO entitlements (subject, feature, unlocked_at) VALUES (?, ?, ?)
		ON CONFLICT (subject, feature) DO NOTHING`
	res, err := r.db.ExecContext(ctx, query, e.Subject, e.Feature, e.UnlockedAt.UTC().UnixNano())
	if err != nil {
		return false, fmt.Errorf("failed to insert entitlement: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected error: %w", err)
	}
	return n == 1, nil
}

func (r *SQLiteRepository) HasAny(ctx context.Context, subject string, features ...string) (bool, error) {
	if len(features) == 0 {
		return false, nil
	}
	args := make([]any, 0, len(features)+1)
	args = append(args, subject)
	for _, f := range features {
		args = append(args, f)
	}
	ph := strings.TrimSuffix(strings.Repeat("?, ", len(features)), ", ")

	query := `SELECT EXISTS (SELECT 1 FROM entitlements WHERE subject = ? AND feature IN (` + ph + `))`

	var ok bool
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&ok); err != nil {
		return false, fmt.Errorf("failed to check entitlement: %w", err)
	}
	return ok, nil
}

func (r *SQLiteRepository) ListBySubject(ctx context.Context, subject string) ([]*models.Entitlement, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT subject, feature, unlocked_at FROM entitlements WHERE subject = ? ORDER BY feature`, subject)
	if err != nil {
		return nil, fmt.Errorf("failed to select entitlements: %w", err)
	}
	defer rows.Close()

	var result []*models.Entitlement
	for rows.Next() {
		var (
			item       models.Entitlement
			unlockedAt int64
		)
		if err := rows.Scan(&item.Subject, &item.Feature, &unlockedAt); err != nil {
			return nil, err
		}
		item.UnlockedAt = time.Unix(0, unlockedAt).UTC()
		result = append(result, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
