package storage

import (
	"context"
	"database/sql"
	"fmt"
)

// Record keys for singleton payloads.
const (
	KeyStats = "stats"
	KeyGuild = "guild"
)

func Migrate(ctx context.Context, db *sql.DB) error {
	stmts := []string{
		// One row per task; the payload is the JSON-encoded Task.
		`CREATE TABLE IF NOT EXISTS tasks (
			id INTEGER PRIMARY KEY,
			payload TEXT NOT NULL,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);`,
		`CREATE TABLE IF NOT EXISTS records (
			key TEXT PRIMARY KEY,
			payload TEXT NOT NULL,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);`,
	}

	for _, stmt := range stmts {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}
