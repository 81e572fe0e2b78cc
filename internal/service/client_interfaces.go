// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"

	"github.com/MKhiriev/go-note-keeper/models"
)

// SyncEngine is the client-side core. All reads and writes go through the
// local replica first; synchronization with the server happens in the
// background and is observable through Subscribe.
type SyncEngine interface {
	// Initialize loads persisted engine state (client id, auth token,
	// signed-in user, sync cursor) and starts the background scheduling.
	Initialize(ctx context.Context) error

	// SignIn exchanges a Google ID token for a session, uploads any changes
	// made while signed out, then replaces the replica with the server
	// state.
	SignIn(ctx context.Context, idToken string) (models.User, error)

	// SignOut drops the session but keeps all local data.
	SignOut(ctx context.Context) error

	// SignedInUser returns the current user, if any.
	SignedInUser() (models.User, bool)

	// Status returns the engine's current externally visible state.
	Status() EngineStatus

	SaveBlock(ctx context.Context, change models.BlockChange) (models.LocalBlock, error)
	DeleteBlock(ctx context.Context, id string) error
	GetBlocks(ctx context.Context) ([]models.LocalBlock, error)

	SaveTomorrowTask(ctx context.Context, change models.TaskChange) (models.LocalTask, error)
	DeleteTomorrowTask(ctx context.Context, id string) error
	GetTomorrowTasks(ctx context.Context) ([]models.LocalTask, error)

	SaveSettings(ctx context.Context, theme string, dayCutHour int) (models.LocalSettings, error)
	GetSettings(ctx context.Context) (models.LocalSettings, error)

	// Sync runs one push-then-pull cycle. Concurrent calls coalesce into
	// the already running cycle.
	Sync(ctx context.Context) error

	// FullSync replaces the local replica with the server's live state.
	FullSync(ctx context.Context) error

	// ResolveConflict acknowledges a server-side conflict row.
	ResolveConflict(ctx context.Context, conflictID, resolution string) error

	// SetOnline toggles connectivity. Going online triggers a sync.
	SetOnline(online bool)

	// ImportPlainText turns each non-empty line of text into a new pending
	// block, as one batch.
	ImportPlainText(ctx context.Context, text string) ([]models.LocalBlock, error)

	// Subscribe registers an event listener; the returned function removes
	// it.
	Subscribe(fn func(Event)) func()

	// Close stops the background scheduling.
	Close() error
}
