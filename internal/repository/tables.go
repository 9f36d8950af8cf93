package repository

import (
	"context"
	"database/sql"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id BIGSERIAL PRIMARY KEY,
		google_id TEXT NOT NULL DEFAULT '',
		email TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL DEFAULT '',
		name TEXT NOT NULL DEFAULT '',
		profile_picture TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS brands (
		id BIGSERIAL PRIMARY KEY,
		user_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		name TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS brand_credentials (
		brand_id BIGINT NOT NULL REFERENCES brands(id) ON DELETE CASCADE,
		provider TEXT NOT NULL,
		credentials TEXT NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		PRIMARY KEY (brand_id, provider)
	)`,
	`CREATE TABLE IF NOT EXISTS global_tokens (
		id BIGINT PRIMARY KEY,
		token TEXT NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS documents (
		id BIGSERIAL PRIMARY KEY,
		brand_id BIGINT NOT NULL REFERENCES brands(id) ON DELETE CASCADE,
		file_name TEXT NOT NULL,
		file_type TEXT NOT NULL DEFAULT '',
		file_size BIGINT NOT NULL DEFAULT 0,
		file_url TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS posts (
		id BIGSERIAL PRIMARY KEY,
		brand_id BIGINT NOT NULL REFERENCES brands(id) ON DELETE CASCADE,
		status TEXT NOT NULL DEFAULT 'draft',
		title TEXT NOT NULL DEFAULT '',
		short_text TEXT NOT NULL DEFAULT '',
		long_text TEXT NOT NULL DEFAULT '',
		caption TEXT NOT NULL DEFAULT '',
		hashtags TEXT[] NOT NULL DEFAULT '{}',
		body TEXT NOT NULL DEFAULT '',
		media_url TEXT NOT NULL DEFAULT '',
		schedule_at TIMESTAMPTZ,
		last_error TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_posts_due ON posts (status, schedule_at)`,
}

// CreateTables applies the schema at startup. Statements are idempotent so a
// restart is safe.
func CreateTables(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
