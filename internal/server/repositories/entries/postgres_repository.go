// Package entries provides the journal entry repositories for PostgreSQL and
// SQLite.
package entries

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/gophjournal/internal/dbx"
	"github.com/dmitrijs2005/gophjournal/internal/server/models"
)

// PostgresRepository implements entry storage over a dbx.DBTX (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, entry *models.Entry) error {
	query := `
		INSERT INTO journal_entries (id, subject, text, persona, summary, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING seq
	`
	err := r.db.QueryRowContext(ctx, query,
		entry.ID, entry.Subject, entry.Text, entry.Persona, toNullString(entry.Summary), entry.CreatedAt,
	).Scan(&entry.Seq)
	if err != nil {
		return fmt.Errorf("failed to insert entry: %w", err)
	}
	return nil
}

func (r *PostgresRepository) ListBySubject(ctx context.Context, subject string, limit int) ([]*models.Entry, error) {
	query := `SELECT id, subject, text, persona, summary, seq, created_at FROM journal_entries
		WHERE subject = $1
		ORDER BY created_at DESC, seq DESC`
	args := []any{subject}
	if limit > 0 {
		query += ` LIMIT $2`
		args = append(args, limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to select entries: %w", err)
	}
	defer rows.Close()

	var result []*models.Entry
	for rows.Next() {
		var (
			item    models.Entry
			summary sql.NullString
		)
		if err := rows.Scan(&item.ID, &item.Subject, &item.Text, &item.Persona, &summary, &item.Seq, &item.CreatedAt); err != nil {
			return nil, err
		}
		item.Summary = fromNullString(summary)
		item.CreatedAt = item.CreatedAt.UTC()
		result = append(result, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *PostgresRepository) DeleteBySubject(ctx context.Context, subject string) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM journal_entries WHERE subject = $1`, subject)
	if err != nil {
		return 0, fmt.Errorf("failed to delete entries: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected error: %w", err)
	}
	return n, nil
}

func toNullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func fromNullString(s sql.NullString) *string {
	if !s.Valid {
		return nil
	}
	v := s.String
	return &v
}
