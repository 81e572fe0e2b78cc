// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

const (
	selectLocalBlocks = `
		SELECT id, text, created_at, calendar_event_id, position, version,
		       updated_at, deleted_at, client_id, sync_status, server_version
		FROM blocks
		WHERE deleted_at IS NULL
		ORDER BY created_at ASC, position ASC;`

	selectAllLocalBlocks = `
		SELECT id, text, created_at, calendar_event_id, position, version,
		       updated_at, deleted_at, client_id, sync_status, server_version
		FROM blocks
		ORDER BY created_at ASC, position ASC;`

	selectLocalBlock = `
		SELECT id, text, created_at, calendar_event_id, position, version,
		       updated_at, deleted_at, client_id, sync_status, server_version
		FROM blocks
		WHERE id = ?;`

	selectPendingBlocks = `
		SELECT id, text, created_at, calendar_event_id, position, version,
		       updated_at, deleted_at, client_id, sync_status, server_version
		FROM blocks
		WHERE sync_status = 'pending'
		ORDER BY created_at ASC, position ASC;`

	upsertLocalBlock = `
		INSERT INTO blocks (
			id, text, created_at, calendar_event_id, position, version,
			updated_at, deleted_at, client_id, sync_status, server_version
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			text              = excluded.text,
			created_at        = excluded.created_at,
			calendar_event_id = excluded.calendar_event_id,
			position          = excluded.position,
			version           = excluded.version,
			updated_at        = excluded.updated_at,
			deleted_at        = excluded.deleted_at,
			client_id         = excluded.client_id,
			sync_status       = excluded.sync_status,
			server_version    = excluded.server_version;`

	deleteAllLocalBlocks = `DELETE FROM blocks;`

	selectLocalTasks = `
		SELECT id, text, time_of_day, position, version, updated_at,
		       deleted_at, client_id, sync_status, server_version
		FROM tomorrow_tasks
		WHERE deleted_at IS NULL
		ORDER BY position ASC;`

	selectAllLocalTasks = `
		SELECT id, text, time_of_day, position, version, updated_at,
		       deleted_at, client_id, sync_status, server_version
		FROM tomorrow_tasks
		ORDER BY position ASC;`

	selectLocalTask = `
		SELECT id, text, time_of_day, position, version, updated_at,
		       deleted_at, client_id, sync_status, server_version
		FROM tomorrow_tasks
		WHERE id = ?;`

	selectPendingTasks = `
		SELECT id, text, time_of_day, position, version, updated_at,
		       deleted_at, client_id, sync_status, server_version
		FROM tomorrow_tasks
		WHERE sync_status = 'pending'
		ORDER BY position ASC;`

	upsertLocalTask = `
		INSERT INTO tomorrow_tasks (
			id, text, time_of_day, position, version, updated_at,
			deleted_at, client_id, sync_status, server_version
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			text           = excluded.text,
			time_of_day    = excluded.time_of_day,
			position       = excluded.position,
			version        = excluded.version,
			updated_at     = excluded.updated_at,
			deleted_at     = excluded.deleted_at,
			client_id      = excluded.client_id,
			sync_status    = excluded.sync_status,
			server_version = excluded.server_version;`

	deleteAllLocalTasks = `DELETE FROM tomorrow_tasks;`

	selectLocalSettings = `
		SELECT theme, day_cut_hour, updated_at, sync_status
		FROM settings
		WHERE id = 1;`

	upsertLocalSettings = `
		INSERT INTO settings (id, theme, day_cut_hour, updated_at, sync_status)
		VALUES (1, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			theme        = excluded.theme,
			day_cut_hour = excluded.day_cut_hour,
			updated_at   = excluded.updated_at,
			sync_status  = excluded.sync_status;`

	selectKVValue = `SELECT value FROM kv WHERE key = ?;`

	upsertKVValue = `
		INSERT INTO kv (key, value) VALUES (?, ?)
		ON CONFLICT (key) DO UPDATE SET value = excluded.value;`

	deleteKVValue = `DELETE FROM kv WHERE key = ?;`
)
