package models

import "time"

// Entitlement records that a feature is unlocked for a subject. Rows are
// only ever added.
type Entitlement struct {
	Subject    string
	Feature    string
	UnlockedAt time.Time
}
