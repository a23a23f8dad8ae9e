package store

import (
	"database/sql"
	"fmt"
)

// Migration represents a database migration
type Migration struct {
	Version int
	Name    string
	SQL     string
}

// GetMigrations returns all available migrations in order
func GetMigrations() []Migration {
	return []Migration{
		{
			Version: 1,
			Name:    "create_categories_table",
			SQL: `
				CREATE TABLE IF NOT EXISTS categories (
					id INTEGER PRIMARY KEY AUTOINCREMENT,
					user_id INTEGER NOT NULL,
					name TEXT NOT NULL,
					description TEXT DEFAULT '',
					embedding BLOB NOT NULL,
					created_at DATETIME DEFAULT CURRENT_TIMESTAMP
				);

				CREATE INDEX IF NOT EXISTS idx_categories_user_id ON categories (user_id);

				CREATE TABLE IF NOT EXISTS schema_migrations (
					version INTEGER PRIMARY KEY,
					name TEXT NOT NULL,
					applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
				);
			`,
		},
		{
			Version: 2,
			Name:    "create_feedback_log_table",
			SQL: `
				CREATE TABLE IF NOT EXISTS feedback_log (
					id TEXT PRIMARY KEY,
					user_id INTEGER NOT NULL,
					category_id INTEGER NOT NULL,
					text_content TEXT NOT NULL,
					text_embedding BLOB NOT NULL,
					direction TEXT NOT NULL CHECK (direction IN ('reinforce', 'weaken')),
					created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
					FOREIGN KEY (category_id) REFERENCES categories (id)
				);

				CREATE INDEX IF NOT EXISTS idx_feedback_log_user_id ON feedback_log (user_id);
				CREATE INDEX IF NOT EXISTS idx_feedback_log_category_id ON feedback_log (category_id);
			`,
		},
		{
			Version: 3,
			Name:    "create_whitelist_table",
			SQL: `
				CREATE TABLE IF NOT EXISTS whitelist (
					id INTEGER PRIMARY KEY AUTOINCREMENT,
					user_id INTEGER NOT NULL,
					text_content TEXT NOT NULL,
					created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
					UNIQUE (user_id, text_content)
				);

				CREATE INDEX IF NOT EXISTS idx_whitelist_user_id ON whitelist (user_id);
			`,
		},
	}
}

// Migrate applies all pending migrations in version order.
func Migrate(db *sql.DB) error {
	// The tracking table is created by migration 1, which may not have run
	// yet on a fresh database.
	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			name TEXT NOT NULL,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`); err != nil {
		return fmt.Errorf("store: create schema_migrations: %w", err)
	}

	for _, m := range GetMigrations() {
		var applied int
		err := db.QueryRow("SELECT COUNT(*) FROM schema_migrations WHERE version = ?", m.Version).Scan(&applied)
		if err != nil {
			return fmt.Errorf("store: check migration %d: %w", m.Version, err)
		}
		if applied > 0 {
			continue
		}

		if _, err := db.Exec(m.SQL); err != nil {
			return fmt.Errorf("store: apply migration %d (%s): %w", m.Version, m.Name, err)
		}
		if _, err := db.Exec("INSERT INTO schema_migrations (version, name) VALUES (?, ?)", m.Version, m.Name); err != nil {
			return fmt.Errorf("store: record migration %d: %w", m.Version, err)
		}
	}
	return nil
}
