package db

import (
	"database/sql"
	"fmt"
)

// Migrate runs all schema migrations. Every statement is idempotent.
func Migrate(db *sql.DB) error {
	for i, stmt := range migrations {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("migration %d: %w", i, err)
		}
	}
	return nil
}

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS kv_entries (
		profile TEXT NOT NULL DEFAULT 'default',
		key     TEXT NOT NULL,
		value   TEXT NOT NULL,
		PRIMARY KEY (profile, key)
	)`,
}
