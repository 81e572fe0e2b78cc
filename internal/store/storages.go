package store

import (
	"context"
	"fmt"

	"github.com/MKhiriev/go-note-keeper/internal/config"
	"github.com/MKhiriev/go-note-keeper/internal/logger"
)

// Storages bundles the server-side repositories behind one constructor.
type Storages struct {
	UserRepository
	SyncRepository
}

func NewStorages(ctx context.Context, cfg config.Storage, log *logger.Logger) (*Storages, error) {
	storeLogger := log.GetChildLogger()

	db, err := NewConnectPostgres(ctx, cfg.DB, storeLogger)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}

	if err = db.Migrate(); err != nil {
		storeLogger.Err(err).Str("func", "NewStorages").Msg("migrations failed")
		return nil, fmt.Errorf("apply migrations: %w", err)
	}

	return &Storages{
		UserRepository: NewUserRepository(db.DB, storeLogger),
		SyncRepository: NewSyncRepository(db.DB, storeLogger),
	}, nil
}
