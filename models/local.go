// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

import "time"

// SyncStatus is the client-only lifecycle tag of a local record.
type SyncStatus string

const (
	// SyncStatusPending marks a record with an unsent local change.
	SyncStatusPending SyncStatus = "pending"

	// SyncStatusSynced marks a record whose last local change was accepted
	// by the server.
	SyncStatusSynced SyncStatus = "synced"

	// SyncStatusConflict marks a record the server holds a newer version of
	// than the one the local edit was based on.
	SyncStatusConflict SyncStatus = "conflict"
)

// LocalBlock is a [Block] as stored in the client replica, wrapped with the
// local sync lifecycle fields.
type LocalBlock struct {
	Block

	SyncStatus SyncStatus `json:"syncStatus"`

	// ServerVersion is the last version the server was known to hold for
	// this record. Zero when the record has never been synced.
	ServerVersion int64 `json:"serverVersion"`
}

// LocalTask is a [TomorrowTask] in the client replica.
type LocalTask struct {
	TomorrowTask

	SyncStatus    SyncStatus `json:"syncStatus"`
	ServerVersion int64      `json:"serverVersion"`
}

// LocalSettings is the client replica of [Settings].
type LocalSettings struct {
	Settings

	SyncStatus SyncStatus `json:"syncStatus"`
}

// SyncState is the client's persisted sync bookkeeping.
type SyncState struct {
	// LastSyncedAt is the server timestamp of the last successful pull,
	// sent back as the `since` cursor on the next incremental pull.
	LastSyncedAt *time.Time `json:"lastSyncedAt,omitempty"`

	// ServerCursor is reserved for a future opaque server-side cursor.
	ServerCursor string `json:"serverCursor,omitempty"`
}
