// Package models defines server-side records persisted in the database.
// Raw image bytes are never part of a record.
package models

import "time"

// Session is a client session that owns one asset store.
type Session struct {
	ID         string
	CreatedAt  time.Time
	LastSeenAt time.Time
}
