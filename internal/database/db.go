package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"
)

// DB wraps the Postgres connection pool
type DB struct {
	*sql.DB
}

// New opens a Postgres connection pool and verifies it with a ping
func New(databaseURL string) (*DB, error) {
	conn, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	conn.SetMaxOpenConns(25)
	conn.SetMaxIdleConns(5)
	conn.SetConnMaxLifetime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := conn.PingContext(ctx); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{DB: conn}, nil
}

// Schema creates the tables the collection repository reads from
const Schema = `
CREATE TABLE IF NOT EXISTS collections (
	id                TEXT PRIMARY KEY,
	title             TEXT NOT NULL DEFAULT '',
	featured_card_ids TEXT[] NOT NULL DEFAULT '{}',
	filter_groups     JSONB NOT NULL DEFAULT '[]',
	filter_logic      TEXT NOT NULL DEFAULT '',
	default_sort      TEXT NOT NULL DEFAULT '',
	search_fields     TEXT[] NOT NULL DEFAULT '{}',
	total_card_limit  INTEGER NOT NULL DEFAULT 0,
	show_bookmarks    BOOLEAN NOT NULL DEFAULT FALSE,
	hide_gated        BOOLEAN NOT NULL DEFAULT FALSE
);

CREATE TABLE IF NOT EXISTS cards (
	collection_id TEXT NOT NULL REFERENCES collections(id) ON DELETE CASCADE,
	id            TEXT NOT NULL,
	position      INTEGER NOT NULL,
	title         TEXT NOT NULL DEFAULT '',
	description   TEXT NOT NULL DEFAULT '',
	tags          TEXT[] NOT NULL DEFAULT '{}',
	start_date    TEXT NOT NULL DEFAULT '',
	end_date      TEXT NOT NULL DEFAULT '',
	modified_date TEXT NOT NULL DEFAULT '',
	fields        JSONB NOT NULL DEFAULT '{}',
	PRIMARY KEY (collection_id, id)
);

CREATE INDEX IF NOT EXISTS cards_collection_position_idx ON cards (collection_id, position);
`

// EnsureSchema creates missing tables
func (db *DB) EnsureSchema(ctx context.Context) error {
	if _, err := db.ExecContext(ctx, Schema); err != nil {
		return fmt.Errorf("failed to ensure schema: %w", err)
	}
	return nil
}
