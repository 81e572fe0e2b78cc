package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/MKhiriev/go-note-keeper/internal/logger"
	"github.com/MKhiriev/go-note-keeper/models"
	"github.com/jackc/pgerrcode"
)

type userRepository struct {
	logger *logger.Logger
	db     *sql.DB
}

func NewUserRepository(db *sql.DB, logger *logger.Logger) UserRepository {
	logger.Debug().Msg("UserRepository created")
	return &userRepository{
		db:     db,
		logger: logger,
	}
}

func (r *userRepository) UpsertByProvider(ctx context.Context, identity models.GoogleIdentity) (models.User, error) {
	row := r.db.QueryRowContext(ctx, upsertUserByProvider,
		identity.ProviderID, identity.Email, identity.Name, identity.Image)

	var user models.User
	if err := row.Scan(&user.UserID, &user.ProviderID, &user.Email, &user.Name, &user.Image, &user.CreatedAt); err != nil {
		r.logger.Err(err).Str("func", "*userRepository.UpsertByProvider").Msg("error: scanning error")

		switch postgresError(err) {
		case pgerrcode.UniqueViolation:
			// concurrent upsert for the same provider id; the caller retries
			return models.User{}, fmt.Errorf("concurrent user upsert: %w", err)
		default:
			return models.User{}, fmt.Errorf("unexpected DB error: %w", err)
		}
	}

	return user, nil
}

func (r *userRepository) FindByID(ctx context.Context, userID int64) (models.User, error) {
	var user models.User
	row := r.db.QueryRowContext(ctx, findUserByID, userID)

	if err := row.Scan(&user.UserID, &user.ProviderID, &user.Email, &user.Name, &user.Image, &user.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.User{}, ErrUserNotFound
		}

		r.logger.Err(err).Str("func", "*userRepository.FindByID").Msg("error: scanning error")
		return models.User{}, fmt.Errorf("unexpected DB error: %w", err)
	}

	return user, nil
}
