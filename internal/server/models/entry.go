// Package models defines server-side records persisted by the repositories.
package models

import "time"

// Entry is a journal entry. It is written once, fully populated.
type Entry struct {
	ID      string
	Subject string
	Text    string
	Persona string
	// Summary is nil when no summary was produced.
	Summary *string
	// Seq is the store-assigned insertion sequence, used to order entries
	// sharing a creation time.
	Seq       int64
	CreatedAt time.Time
}
