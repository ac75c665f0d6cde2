package repository

import (
	"context"
	"database/sql"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS products (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		store_name TEXT NOT NULL DEFAULT '',
		price TEXT NOT NULL DEFAULT '',
		original_price TEXT NOT NULL DEFAULT '',
		commission_rate TEXT NOT NULL DEFAULT '',
		status TEXT NOT NULL DEFAULT 'ON',
		source_url TEXT NOT NULL DEFAULT '',
		referral_url TEXT NOT NULL DEFAULT '',
		shopping_url TEXT NOT NULL DEFAULT '',
		rating REAL NOT NULL DEFAULT 0,
		brand TEXT NOT NULL DEFAULT '',
		review_count INTEGER NOT NULL DEFAULT 0,
		claimed_by TEXT NOT NULL DEFAULT '',
		claimed_until TIMESTAMP,
		created_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS posts (
		id TEXT PRIMARY KEY,
		product_id TEXT NOT NULL,
		worker_id TEXT,
		platform TEXT NOT NULL,
		success BOOLEAN NOT NULL,
		error_message TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMP NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_posts_product_platform
		ON posts (platform, success, product_id)`,
	`CREATE TABLE IF NOT EXISTS workers (
		name TEXT PRIMARY KEY,
		platform TEXT NOT NULL,
		status TEXT NOT NULL DEFAULT 'idle',
		last_heartbeat TIMESTAMP NOT NULL,
		created_at TIMESTAMP NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS quota_counters (
		platform TEXT PRIMARY KEY,
		count INTEGER NOT NULL DEFAULT 0,
		daily_limit INTEGER NOT NULL,
		last_reset TEXT NOT NULL,
		runs_completed INTEGER NOT NULL DEFAULT 0,
		updated_at TIMESTAMP NOT NULL
	)`,
}

// Migrate applies the schema idempotently. All statements are portable
// between Postgres and SQLite so the same DDL backs the tests.
func Migrate(ctx context.Context, db *sql.DB) error {
	for _, q := range schema {
		if _, err := db.ExecContext(ctx, q); err != nil {
			return err
		}
	}
	return nil
}
