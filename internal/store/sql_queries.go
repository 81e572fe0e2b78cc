// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

const (
	upsertUserByProvider = `
		INSERT INTO users (provider_id, email, name, image)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (provider_id) DO UPDATE SET
			email = EXCLUDED.email,
			name  = EXCLUDED.name,
			image = EXCLUDED.image
		RETURNING user_id, provider_id, email, name, image, created_at;`

	findUserByID = `
		SELECT user_id, provider_id, email, name, image, created_at
		FROM users
		WHERE user_id = $1;`

	getBlockMeta = `
		SELECT user_id, version, client_id, deleted_at
		FROM blocks
		WHERE id = $1;`

	insertBlock = `
		INSERT INTO blocks (
			id,
			user_id,
			text,
			created_at,
			calendar_event_id,
			position,
			version,
			updated_at,
			deleted_at,
			client_id
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10);`

	updateBlock = `
		UPDATE blocks SET
			text              = $1,
			calendar_event_id = $2,
			position          = $3,
			version           = $4,
			updated_at        = $5,
			deleted_at        = $6,
			client_id         = $7
		WHERE id = $8 AND user_id = $9;`

	getTaskMeta = `
		SELECT user_id, version, client_id, deleted_at
		FROM tomorrow_tasks
		WHERE id = $1;`

	insertTask = `
		INSERT INTO tomorrow_tasks (
			id,
			user_id,
			text,
			time_of_day,
			position,
			version,
			updated_at,
			deleted_at,
			client_id
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9);`

	updateTask = `
		UPDATE tomorrow_tasks SET
			text        = $1,
			time_of_day = $2,
			position    = $3,
			version     = $4,
			updated_at  = $5,
			deleted_at  = $6,
			client_id   = $7
		WHERE id = $8 AND user_id = $9;`

	upsertSettings = `
		INSERT INTO settings (user_id, theme, day_cut_hour, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id) DO UPDATE SET
			theme        = EXCLUDED.theme,
			day_cut_hour = EXCLUDED.day_cut_hour,
			updated_at   = EXCLUDED.updated_at
		WHERE settings.updated_at <= EXCLUDED.updated_at;`

	insertConflict = `
		INSERT INTO conflicts (
			conflict_id,
			user_id,
			record_type,
			record_id,
			local_version,
			server_version,
			created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7);`

	resolveConflict = `
		UPDATE conflicts SET
			resolution  = $1,
			resolved_at = $2
		WHERE conflict_id = $3 AND user_id = $4;`
)
