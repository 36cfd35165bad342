package entries

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/dmitrijs2005/gophjournal/internal/dbx"
	"github.com/dmitrijs2005/gophjournal/internal/server/models"
)

// SQLiteRepository implements Repository for single-node deployments.
// created_at is stored as UTC unix nanoseconds.
type SQLiteRepository struct {
	db dbx.DBTX
}

// NewSQLiteRepository returns a new SQLiteRepository bound to the given DBTX.
func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Create(ctx context.Context, entry *models.Entry) error {
	query := `INSERT INTO journal_entries (id, subject, text, persona, summary, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, query,
		entry.ID, entry.Subject, entry.Text, entry.Persona, toNullString(entry.Summary), entry.CreatedAt.UTC().UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert entry: %w", err)
	}
	seq, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("last insert id error: %w", err)
	}
	entry.Seq = seq
	return nil
}

func (r *SQLiteRepository) ListBySubject(ctx context.Context, subject string, limit int) ([]*models.Entry, error) {
	query := `SELECT id, subject, text, persona, summary, seq, created_at FROM journal_entries
		WHERE subject = ?
		ORDER BY created_at DESC, seq DESC`
	args := []any{subject}
	if limit > 0 {
		query += ` LIMIT ?`
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
			item      models.Entry
			summary   sql.NullString
			createdAt int64
		)
		if err := rows.Scan(&item.ID, &item.Subject, &item.Text, &item.Persona, &summary, &item.Seq, &createdAt); err != nil {
			return nil, err
		}
		item.Summary = fromNullString(summary)
		item.CreatedAt = time.Unix(0, createdAt).UTC()
		result = append(result, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *SQLiteRepository) DeleteBySubject(ctx context.Context, subject string) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM journal_entries WHERE subject = ?`, subject)
	if err != nil {
		return 0, fmt.Errorf("failed to delete entries: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected error: %w", err)
	}
	return n, nil
}
