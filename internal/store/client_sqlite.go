package store

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"

	"github.com/MKhiriev/go-note-keeper/internal/config"
	"github.com/MKhiriev/go-note-keeper/internal/logger"
	"github.com/MKhiriev/go-note-keeper/migrations"
)

// ClientDB wraps the SQLite handle holding the client's local replica.
type ClientDB struct {
	*sql.DB
	logger *logger.Logger
}

func NewConnectSQLite(cfg config.ClientDB, log *logger.Logger) (*ClientDB, error) {
	if cfg.Path != ":memory:" {
		if err := createLocalDBFileIfNotExists(cfg.Path); err != nil {
			log.Err(err).Str("func", "NewConnectSQLite").Msg("cannot create local replica file")
			return nil, err
		}
	}

	conn, err := sql.Open("sqlite3", cfg.Path)
	if err != nil {
		log.Err(err).Str("func", "NewConnectSQLite").Msg("error occured during database connection")
		return nil, fmt.Errorf("error occured during database connection: %w", err)
	}

	// sqlite allows one writer; keep the pool at a single connection so the
	// engine never trips over SQLITE_BUSY from itself
	conn.SetMaxOpenConns(1)

	if err = conn.Ping(); err != nil {
		log.Err(err).Str("func", "NewConnectSQLite").Msg("error connecting database (ping)")
		return nil, err
	}

	return &ClientDB{
		DB:     conn,
		logger: log,
	}, nil
}

// Migrate applies the embedded client schema migrations.
func (db *ClientDB) Migrate() error {
	return migrations.MigrateClient(db.DB)
}

func createLocalDBFileIfNotExists(path string) error {
	_, err := os.Stat(path)
	if err == nil {
		return nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("stat local replica file: %w", err)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err = os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create local replica dir: %w", err)
		}
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create local replica file: %w", err)
	}

	return file.Close()
}
