package entries

import (
	"context"

	"github.com/dmitrijs2005/gophjournal/internal/server/models"
)

// Repository is the journal entry store.
type Repository interface {
	// Create appends a fully populated entry and sets its Seq.
	Create(ctx context.Context, entry *models.Entry) error
	// ListBySubject returns the subject's entries, newest first, ties broken
	// by insertion sequence. A limit <= 0 returns every entry.
	ListBySubject(ctx context.Context, subject string, limit int) ([]*models.Entry, error)
	// DeleteBySubject removes all entries of the subject and reports how many.
	DeleteBySubject(ctx context.Context, subject string) (int64, error)
}
