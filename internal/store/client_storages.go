package store

import (
	"fmt"

	"github.com/MKhiriev/go-note-keeper/internal/config"
	"github.com/MKhiriev/go-note-keeper/internal/logger"
)

// ClientStorages bundles the client replica behind one constructor.
type ClientStorages struct {
	LocalStorage
}

func NewClientStorages(cfg config.ClientDB, log *logger.Logger) (*ClientStorages, error) {
	storeLogger := log.GetChildLogger()

	db, err := NewConnectSQLite(cfg, storeLogger)
	if err != nil {
		return nil, fmt.Errorf("connect sqlite: %w", err)
	}

	if err = db.Migrate(); err != nil {
		storeLogger.Err(err).Str("func", "NewClientStorages").Msg("client migrations failed")
		return nil, fmt.Errorf("apply client migrations: %w", err)
	}

	return &ClientStorages{
		LocalStorage: NewLocalStorage(db.DB, storeLogger),
	}, nil
}
