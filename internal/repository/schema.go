package repository

import (
	"context"
	"database/sql"
	"fmt"
)

// Migrate creates every table and index the server needs. It is idempotent
// and runs on both sqlite3 and postgres.
func Migrate(ctx context.Context, db *sql.DB) error {
	for i, stmt := range migrations {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migration %d: %w", i+1, err)
		}
	}
	return nil
}

// created_at columns hold fixed-width UTC text (see timeLayout) so that range
// filters compare lexicographically on every driver.
var migrations = []string{
	`CREATE TABLE IF NOT EXISTS service_centers (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		location TEXT NOT NULL DEFAULT '',
		manager TEXT NOT NULL DEFAULT '',
		contact_info TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE TABLE IF NOT EXISTS feedback (
		id TEXT PRIMARY KEY,
		created_at TEXT NOT NULL,
		service_rating INTEGER,
		condition_rating INTEGER,
		fee_rating INTEGER,
		duration_rating INTEGER,
		comment TEXT NOT NULL DEFAULT '',
		service_center_id TEXT NOT NULL REFERENCES service_centers(id)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_feedback_created_at ON feedback(created_at)`,
	`CREATE INDEX IF NOT EXISTS idx_feedback_center_created ON feedback(service_center_id, created_at)`,
	`CREATE TABLE IF NOT EXISTS users (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL DEFAULT '',
		email TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL,
		role TEXT NOT NULL DEFAULT 'USER' CHECK (role IN ('ADMIN', 'USER')),
		created_at TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS settings (
		id INTEGER PRIMARY KEY CHECK (id = 1),
		admin_email TEXT NOT NULL DEFAULT '',
		notification_email TEXT NOT NULL DEFAULT '',
		feedback_form_title TEXT NOT NULL DEFAULT '',
		updated_at TEXT NOT NULL
	)`,
}
