package models

import "time"

// Conflict is the server-side bookkeeping row persisted when a push is
// rejected by the version/clientId gate. ConflictID equals the id of the
// keep-both copy appended to the user's collection, so a client that pulled
// the copy can address the row directly.
type Conflict struct {
	ConflictID    string     `json:"conflictId"`
	UserID        int64      `json:"-"`
	RecordType    string     `json:"type"`
	RecordID      string     `json:"id"`
	LocalVersion  int64      `json:"localVersion"`
	ServerVersion int64      `json:"serverVersion"`
	Resolution    *string    `json:"resolution,omitempty"`
	CreatedAt     time.Time  `json:"createdAt"`
	ResolvedAt    *time.Time `json:"resolvedAt,omitempty"`
}
