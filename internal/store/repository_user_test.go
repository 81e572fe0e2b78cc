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

var userColumns = []string{"user_id", "provider_id", "email", "name", "image", "created_at"}

func TestUserRepository_UpsertByProvider(t *testing.T) {
	db, mock := newTestDB(t)
	repo := NewUserRepository(db, logger.Nop())

	createdAt := time.Now().UTC()
	identity := models.GoogleIdentity{
		ProviderID: "google-sub-1",
		Email:      "user@example.com",
		Name:       "User",
		Image:      "https://example.com/avatar.png",
	}

	mock.ExpectQuery(`INSERT INTO users`).
		WithArgs(identity.ProviderID, identity.Email, identity.Name, identity.Image).
		WillReturnRows(sqlmock.NewRows(userColumns).
			AddRow(int64(1), identity.ProviderID, identity.Email, identity.Name, identity.Image, createdAt))

	user, err := repo.UpsertByProvider(context.Background(), identity)

	require.NoError(t, err)
	assert.Equal(t, int64(1), user.UserID)
	assert.Equal(t, identity.ProviderID, user.ProviderID)
	assert.Equal(t, identity.Email, user.Email)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_FindByID(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		db, mock := newTestDB(t)
		repo := NewUserRepository(db, logger.Nop())

		mock.ExpectQuery(`SELECT user_id, provider_id, email, name, image, created_at`).
			WithArgs(int64(5)).
			WillReturnRows(sqlmock.NewRows(userColumns).
				AddRow(int64(5), "sub", "a@b.c", "", "", time.Now()))

		user, err := repo.FindByID(context.Background(), 5)
		require.NoError(t, err)
		assert.Equal(t, int64(5), user.UserID)
	})

	t.Run("missing", func(t *testing.T) {
		db, mock := newTestDB(t)
		repo := NewUserRepository(db, logger.Nop())

		mock.ExpectQuery(`SELECT user_id, provider_id, email, name, image, created_at`).
			WithArgs(int64(404)).
			WillReturnError(sql.ErrNoRows)

		_, err := repo.FindByID(context.Background(), 404)
		assert.ErrorIs(t, err, ErrUserNotFound)
	})
}
