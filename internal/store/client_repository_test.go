package store

import (
	"context"
	"database/sql"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/MKhiriev/go-note-keeper/internal/logger"
	"github.com/MKhiriev/go-note-keeper/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var localBlockColumns = []string{
	"id", "text", "created_at", "calendar_event_id", "position",
	"version", "updated_at", "deleted_at", "client_id",
	"sync_status", "server_version",
}

func TestLocalStorage_GetBlock(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		db, mock := newTestDB(t)
		storage := NewLocalStorage(db, logger.Nop())

		now := time.Now().UTC()
		deletedAt := now.Add(time.Minute)
		mock.ExpectQuery(`FROM blocks\s+WHERE id = \?`).
			WithArgs("b1").
			WillReturnRows(sqlmock.NewRows(localBlockColumns).
				AddRow("b1", "text", now, "cal-1", int64(2), int64(3), now, deletedAt, "c1", "pending", int64(2)))

		block, err := storage.GetBlock(context.Background(), "b1")

		require.NoError(t, err)
		assert.Equal(t, "b1", block.ID)
		require.NotNil(t, block.CalendarEventID)
		assert.Equal(t, "cal-1", *block.CalendarEventID)
		require.NotNil(t, block.DeletedAt)
		assert.Equal(t, models.SyncStatusPending, block.SyncStatus)
		assert.Equal(t, int64(2), block.ServerVersion)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing", func(t *testing.T) {
		db, mock := newTestDB(t)
		storage := NewLocalStorage(db, logger.Nop())

		mock.ExpectQuery(`FROM blocks\s+WHERE id = \?`).
			WithArgs("absent").
			WillReturnError(sql.ErrNoRows)

		_, err := storage.GetBlock(context.Background(), "absent")
		assert.ErrorIs(t, err, ErrRecordNotFound)
	})
}

func TestLocalStorage_ReplaceBlocks_Transactional(t *testing.T) {
	db, mock := newTestDB(t)
	storage := NewLocalStorage(db, logger.Nop())

	now := time.Now().UTC()
	block := models.LocalBlock{
		Block:      models.Block{ID: "b1", Text: "x", CreatedAt: now, Version: 1, UpdatedAt: now, ClientID: "c1"},
		SyncStatus: models.SyncStatusSynced,
	}

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM blocks`).WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec(`INSERT INTO blocks`).
		WithArgs("b1", "x", now, nil, int64(0), int64(1), now, nil, "c1", "synced", int64(0)).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	err := storage.ReplaceBlocks(context.Background(), []models.LocalBlock{block})

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLocalStorage_Settings(t *testing.T) {
	t.Run("missing", func(t *testing.T) {
		db, mock := newTestDB(t)
		storage := NewLocalStorage(db, logger.Nop())

		mock.ExpectQuery(`SELECT theme, day_cut_hour, updated_at, sync_status\s+FROM settings`).
			WillReturnError(sql.ErrNoRows)

		_, err := storage.GetSettings(context.Background())
		assert.ErrorIs(t, err, ErrSettingsNotFound)
	})

	t.Run("roundtrip", func(t *testing.T) {
		db, mock := newTestDB(t)
		storage := NewLocalStorage(db, logger.Nop())

		now := time.Now().UTC()
		mock.ExpectExec(`INSERT INTO settings`).
			WithArgs("dark", 5, now, "pending").
			WillReturnResult(sqlmock.NewResult(1, 1))
		mock.ExpectQuery(`SELECT theme, day_cut_hour, updated_at, sync_status\s+FROM settings`).
			WillReturnRows(sqlmock.NewRows([]string{"theme", "day_cut_hour", "updated_at", "sync_status"}).
				AddRow("dark", 5, now, "pending"))

		err := storage.UpsertSettings(context.Background(), models.LocalSettings{
			Settings:   models.Settings{Theme: models.ThemeDark, DayCutHour: 5, UpdatedAt: now},
			SyncStatus: models.SyncStatusPending,
		})
		require.NoError(t, err)

		settings, err := storage.GetSettings(context.Background())
		require.NoError(t, err)
		assert.Equal(t, models.ThemeDark, settings.Theme)
		assert.Equal(t, models.SyncStatusPending, settings.SyncStatus)
	})
}

func TestLocalStorage_KV(t *testing.T) {
	t.Run("missing key", func(t *testing.T) {
		db, mock := newTestDB(t)
		storage := NewLocalStorage(db, logger.Nop())

		mock.ExpectQuery(`SELECT value FROM kv WHERE key = \?`).
			WithArgs("auth-token").
			WillReturnError(sql.ErrNoRows)

		_, err := storage.GetValue(context.Background(), "auth-token")
		assert.ErrorIs(t, err, ErrKeyNotFound)
	})

	t.Run("set and get", func(t *testing.T) {
		db, mock := newTestDB(t)
		storage := NewLocalStorage(db, logger.Nop())

		mock.ExpectExec(`INSERT INTO kv`).
			WithArgs("client-id", "uuid-1").
			WillReturnResult(sqlmock.NewResult(1, 1))
		mock.ExpectQuery(`SELECT value FROM kv WHERE key = \?`).
			WithArgs("client-id").
			WillReturnRows(sqlmock.NewRows([]string{"value"}).AddRow("uuid-1"))
		mock.ExpectExec(`DELETE FROM kv WHERE key = \?`).
			WithArgs("client-id").
			WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, storage.SetValue(context.Background(), "client-id", "uuid-1"))

		value, err := storage.GetValue(context.Background(), "client-id")
		require.NoError(t, err)
		assert.Equal(t, "uuid-1", value)

		require.NoError(t, storage.DeleteValue(context.Background(), "client-id"))
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
