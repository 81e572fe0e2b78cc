// Package migrations embeds the goose SQL migrations for both peers: the
// server's Postgres schema under server/ and the client replica's SQLite
// schema under client/.
package migrations

import (
	"database/sql"
	"embed"
	"fmt"

	"github.com/pressly/goose/v3"
)

//go:embed server/*.sql client/*.sql
var embedMigrations embed.FS

// Migrate applies the server schema migrations to db.
func Migrate(db *sql.DB) error {
	goose.SetBaseFS(embedMigrations)

	if err := goose.SetDialect("pgx"); err != nil {
		return fmt.Errorf("migration error setting dialect for db: %w", err)
	}

	if err := goose.Up(db, "server"); err != nil {
		return fmt.Errorf("migration error: %w", err)
	}

	return nil
}

// MigrateClient applies the local replica schema migrations to db.
func MigrateClient(db *sql.DB) error {
	goose.SetBaseFS(embedMigrations)

	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("migration error setting dialect for local db: %w", err)
	}

	if err := goose.Up(db, "client"); err != nil {
		return fmt.Errorf("local migration error: %w", err)
	}

	return nil
}
