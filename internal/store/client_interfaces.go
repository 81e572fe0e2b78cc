// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import (
	"context"

	"github.com/MKhiriev/go-note-keeper/models"
)

// LocalStorage is the client replica. Every write is local-first: records
// land here tagged pending and the sync engine uploads them later.
type LocalStorage interface {
	// GetBlocks returns the live (non-tombstoned) blocks ordered by
	// createdAt, then position.
	GetBlocks(ctx context.Context) ([]models.LocalBlock, error)

	// GetAllBlocks returns every stored block, tombstones included.
	GetAllBlocks(ctx context.Context) ([]models.LocalBlock, error)

	// GetBlock returns one block by id, tombstoned or not.
	// Returns ErrRecordNotFound when no row exists.
	GetBlock(ctx context.Context, id string) (models.LocalBlock, error)

	// UpsertBlock inserts or fully replaces one local block row.
	UpsertBlock(ctx context.Context, block models.LocalBlock) error

	// GetPendingBlocks returns the blocks awaiting upload.
	GetPendingBlocks(ctx context.Context) ([]models.LocalBlock, error)

	// ReplaceBlocks atomically swaps the whole blocks table for the given
	// rows. Used after a full sync.
	ReplaceBlocks(ctx context.Context, blocks []models.LocalBlock) error

	GetTasks(ctx context.Context) ([]models.LocalTask, error)
	GetAllTasks(ctx context.Context) ([]models.LocalTask, error)
	GetTask(ctx context.Context, id string) (models.LocalTask, error)
	UpsertTask(ctx context.Context, task models.LocalTask) error
	GetPendingTasks(ctx context.Context) ([]models.LocalTask, error)
	ReplaceTasks(ctx context.Context, tasks []models.LocalTask) error

	// GetSettings returns the single local settings row.
	// Returns ErrSettingsNotFound before the first save or pull.
	GetSettings(ctx context.Context) (models.LocalSettings, error)
	UpsertSettings(ctx context.Context, settings models.LocalSettings) error

	// GetValue / SetValue / DeleteValue manage small engine state entries
	// (auth token, client id, sync cursor, signed-in user).
	GetValue(ctx context.Context, key string) (string, error)
	SetValue(ctx context.Context, key, value string) error
	DeleteValue(ctx context.Context, key string) error
}
