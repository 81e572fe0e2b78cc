// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package models defines the shared data shapes exchanged between the client
// sync engine and the server sync service: note blocks, tomorrow tasks, user
// settings, push/pull payloads, and the authentication types. JSON tags on
// the wire types are part of the protocol contract and must not change.
package models

import "time"

// Block is one line of the user's note log.
//
// ID is chosen by the client and is unique per user. Version is a monotone
// counter advanced by the writer on every local mutation and again by the
// server when a push is accepted. UpdatedAt is server-authoritative after
// acceptance and is used as the incremental pull cursor. A non-nil DeletedAt
// marks the record as a tombstone; tombstones are kept so that deletions
// propagate to other devices.
type Block struct {
	// ID is the client-chosen opaque identifier of the block.
	ID string `json:"id"`

	// UserID is the owning user. Server-side only, never serialized.
	UserID int64 `json:"-"`

	// Text is the UTF-8 content of the line. May be empty.
	Text string `json:"text"`

	// CreatedAt is the moment the content was authored. The server never
	// mutates it.
	CreatedAt time.Time `json:"createdAt"`

	// CalendarEventID is an optional external calendar handle. Opaque to
	// sync; propagated round-trip.
	CalendarEventID *string `json:"calendarEventId,omitempty"`

	// Position is the secondary sort key among blocks sharing a CreatedAt
	// second.
	Position int64 `json:"position"`

	// Version is the per-record monotone counter.
	Version int64 `json:"version"`

	// UpdatedAt is the timestamp of the last modification.
	UpdatedAt time.Time `json:"updatedAt"`

	// DeletedAt is non-nil when the record is tombstoned.
	DeletedAt *time.Time `json:"deletedAt,omitempty"`

	// ClientID identifies the installation that produced this version.
	ClientID string `json:"clientId,omitempty"`
}

// Deleted reports whether the block is a tombstone.
func (b Block) Deleted() bool { return b.DeletedAt != nil }

// BlockChange is a partial block mutation accepted by the client engine.
// Nil fields are left untouched on an existing record, or take documented
// defaults when the record is new (empty text, position 0, CreatedAt = now).
type BlockChange struct {
	ID              string
	Text            *string
	CreatedAt       *time.Time
	Position        *int64
	CalendarEventID *string
}
