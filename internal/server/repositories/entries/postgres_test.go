package entries

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/gophjournal/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return NewPostgresRepository(db), mock, db
}

func strPtr(s string) *string { return &s }

func TestCreate_SetsSeq(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	now := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	q := regexp.QuoteMeta(`INSERT INTO journal_entries (id, subject, text, persona, summary, created_at)`)

	mock.ExpectQuery(q).
		WithArgs("e1", "u1", "hello", "zen", "sum", now).
		WillReturnRows(sqlmock.NewRows([]string{"seq"}).AddRow(int64(7)))

	e := &models.Entry{ID: "e1", Subject: "u1", Text: "hello", Persona: "zen", Summary: strPtr("sum"), CreatedAt: now}
	require.NoError(t, repo.Create(context.Background(), e))
	assert.Equal(t, int64(7), e.Seq)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreate_NilSummaryIsNull(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`INSERT INTO journal_entries`).
		WithArgs("e1", "u1", "hello", "stoic", nil, sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"seq"}).AddRow(int64(1)))

	e := &models.Entry{ID: "e1", Subject: "u1", Text: "hello", Persona: "stoic", CreatedAt: time.Now()}
	require.NoError(t, repo.Create(context.Background(), e))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreate_DBError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`INSERT INTO journal_entries`).WillReturnError(errors.New("boom"))

	err := repo.Create(context.Background(), &models.Entry{ID: "e1"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to insert entry")
}

func TestListBySubject_WithLimit(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	t1 := time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC)
	t0 := t1.Add(-time.Hour)

	rows := sqlmock.NewRows([]string{"id", "subject", "text", "persona", "summary", "seq", "created_at"}).
		AddRow("e2", "u1", "second", "zen", nil, int64(2), t1).
		AddRow("e1", "u1", "first", "stoic", "s1", int64(1), t0)

	mock.ExpectQuery(`SELECT id, subject, text, persona, summary, seq, created_at FROM journal_entries\s+WHERE subject = \$1\s+ORDER BY created_at DESC, seq DESC LIMIT \$2`).
		WithArgs("u1", 10).
		WillReturnRows(rows)

	got, err := repo.ListBySubject(context.Background(), "u1", 10)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "e2", got[0].ID)
	assert.Nil(t, got[0].Summary)
	require.NotNil(t, got[1].Summary)
	assert.Equal(t, "s1", *got[1].Summary)
	assert.True(t, got[1].CreatedAt.Equal(t0))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestListBySubject_NoLimit(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`ORDER BY created_at DESC, seq DESC$`).
		WithArgs("u1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "subject", "text", "persona", "summary", "seq", "created_at"}))

	got, err := repo.ListBySubject(context.Background(), "u1", 0)
	require.NoError(t, err)
	assert.Empty(t, got)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestListBySubject_QueryError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`SELECT id`).WillReturnError(errors.New("db down"))

	_, err := repo.ListBySubject(context.Background(), "u1", 5)
	require.Error(t, err)
}

func TestListBySubject_ScanError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	rows := sqlmock.NewRows([]string{"id", "subject", "text", "persona", "summary", "seq", "created_at"}).
		AddRow("e1", "u1", "x", "zen", nil, "not-a-number", time.Now())
	mock.ExpectQuery(`SELECT id`).WillReturnRows(rows)

	_, err := repo.ListBySubject(context.Background(), "u1", 5)
	require.Error(t, err)
}

func TestListBySubject_RowsError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	rows := sqlmock.NewRows([]string{"id", "subject", "text", "persona", "summary", "seq", "created_at"}).
		AddRow("e1", "u1", "x", "zen", nil, int64(1), time.Now()).
		RowError(0, errors.New("row err"))
	mock.ExpectQuery(`SELECT id`).WillReturnRows(rows)

	_, err := repo.ListBySubject(context.Background(), "u1", 5)
	require.Error(t, err)
}

func TestDeleteBySubject(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(`DELETE FROM journal_entries WHERE subject = \$1`).
		WithArgs("u1").
		WillReturnResult(sqlmock.NewResult(0, 3))

	n, err := repo.DeleteBySubject(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteBySubject_Errors(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(`DELETE FROM journal_entries`).WillReturnError(errors.New("boom"))
	_, err := repo.DeleteBySubject(context.Background(), "u1")
	require.Error(t, err)

	mock.ExpectExec(`DELETE FROM journal_entries`).
		WillReturnResult(sqlmock.NewErrorResult(errors.New("ra")))
	_, err = repo.DeleteBySubject(context.Background(), "u1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rows affected error")
}
