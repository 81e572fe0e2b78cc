// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

import "time"

// Record type labels used in conflict reports and conflict bookkeeping rows.
const (
	RecordTypeBlock        = "block"
	RecordTypeTomorrowTask = "tomorrowTask"
)

// Conflict resolution labels accepted by the resolve-conflict endpoint.
const (
	ResolutionKeptLocal  = "kept_local"
	ResolutionKeptServer = "kept_server"
	ResolutionKeptBoth   = "kept_both"
)

// ValidResolution reports whether resolution is one of the accepted labels.
func ValidResolution(resolution string) bool {
	return resolution == ResolutionKeptLocal ||
		resolution == ResolutionKeptServer ||
		resolution == ResolutionKeptBoth
}

// PushRequest is the batched upload sent by a client. Every record carries
// its full metadata including the version the client believes it is updating.
type PushRequest struct {
	// ClientID is the stable identifier of the pushing installation.
	ClientID string `json:"clientId"`

	Blocks        []Block        `json:"blocks,omitempty"`
	TomorrowTasks []TomorrowTask `json:"tomorrowTasks,omitempty"`
	Settings      *Settings      `json:"settings,omitempty"`
}

// Applied lists the record ids the server accepted from a push batch.
type Applied struct {
	Blocks        []string `json:"blocks"`
	TomorrowTasks []string `json:"tomorrowTasks"`
	Settings      bool     `json:"settings"`
}

// ConflictReport describes one write-write conflict detected during a push.
// The server keeps both rows: the existing record is left untouched and an
// augmented copy of the rejected incoming record is appended.
type ConflictReport struct {
	// Type is [RecordTypeBlock] or [RecordTypeTomorrowTask].
	Type string `json:"type"`

	// ID is the id of the record the client tried to update.
	ID string `json:"id"`

	LocalVersion  int64 `json:"localVersion"`
	ServerVersion int64 `json:"serverVersion"`
}

// PushResponse is the server's answer to a [PushRequest].
type PushResponse struct {
	Success   bool             `json:"success"`
	Applied   Applied          `json:"applied"`
	Conflicts []ConflictReport `json:"conflicts"`
}

// PullResponse carries the delta (or, for a full sync, the complete live
// state) of the user's collections. SyncedAt is the server's current time
// and becomes the client's next `since` cursor.
type PullResponse struct {
	Blocks        []Block          `json:"blocks"`
	TomorrowTasks []TomorrowTask   `json:"tomorrowTasks"`
	Settings      *Settings        `json:"settings"`
	Conflicts     []ConflictReport `json:"conflicts"`
	SyncedAt      time.Time        `json:"syncedAt"`
}

// ResolveConflictRequest marks a persisted conflict row as resolved. The
// data merge already happened at push time via the keep-both rule; the
// resolution label is bookkeeping only.
type ResolveConflictRequest struct {
	// ConflictID is the id of the appended conflict copy
	// ("{id}-conflict-{epoch_ms}").
	ConflictID string `json:"conflictId"`

	Resolution string `json:"resolution"`
}
