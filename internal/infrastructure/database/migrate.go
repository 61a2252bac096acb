package database

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/lib/pq" // PostgreSQL driver for database/sql
	"github.com/rs/zerolog/log"
)

// schemaStatements are applied in order. Every statement is idempotent.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS opinions (
    id        BIGSERIAL PRIMARY KEY,
    title     VARCHAR(128) NOT NULL CHECK (length(title) > 0),
    text      TEXT NOT NULL UNIQUE CHECK (length(text) > 0),
    source    VARCHAR(256),
    timestamp TIMESTAMPTZ NOT NULL DEFAULT now(),
    added_by  VARCHAR(64)
)`,
	`CREATE INDEX IF NOT EXISTS idx_opinions_timestamp ON opinions(timestamp)`,
}

// OpenSQL opens a database/sql handle through lib/pq.
// Migration tooling uses it; request handling goes through pgxpool.
func OpenSQL(cfg *DBConfig) (*sql.DB, error) {
	db, err := sql.Open("postgres", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return db, nil
}

// MigrateUp creates the opinions table and its indexes inside one transaction.
func MigrateUp(ctx context.Context, db *sql.DB) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin migration: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for i, stmt := range schemaStatements {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migration step %d failed: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit migration: %w", err)
	}

	log.Info().Int("statements", len(schemaStatements)).Msg("[DATABASE] Schema is up to date")
	return nil
}

// MigrateDown drops the opinions table. Used by tests and local resets.
func MigrateDown(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, `DROP TABLE IF EXISTS opinions`); err != nil {
		return fmt.Errorf("failed to drop opinions table: %w", err)
	}
	return nil
}
