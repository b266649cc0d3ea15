// Package index provides the SQLite-backed card and group index that mirrors
// the vault on disk.
package index

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS cards (
	id                  TEXT PRIMARY KEY,
	path                TEXT NOT NULL UNIQUE,
	checksum            TEXT NOT NULL DEFAULT '',
	title               TEXT NOT NULL DEFAULT '',
	content             TEXT NOT NULL DEFAULT '',
	caption             TEXT NOT NULL DEFAULT '',
	comment             TEXT NOT NULL DEFAULT '',
	ocr_text            TEXT NOT NULL DEFAULT '',
	tags                TEXT NOT NULL DEFAULT '[]',
	semantic_tags       TEXT NOT NULL DEFAULT '[]',
	created_at          TEXT NOT NULL DEFAULT '',
	updated_at          TEXT NOT NULL DEFAULT '',
	type                TEXT NOT NULL DEFAULT 'text',
	copy_ref            TEXT NOT NULL DEFAULT '',
	copied_at           TEXT NOT NULL DEFAULT '',
	original_created_at TEXT NOT NULL DEFAULT ''
);

CREATE INDEX IF NOT EXISTS idx_cards_created ON cards(created_at, id);

CREATE TABLE IF NOT EXISTS card_groups (
	id   TEXT PRIMARY KEY,
	name TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS group_members (
	group_id TEXT NOT NULL REFERENCES card_groups(id) ON DELETE CASCADE,
	card_id  TEXT NOT NULL,
	position INTEGER NOT NULL,
	PRIMARY KEY (group_id, card_id)
);

CREATE INDEX IF NOT EXISTS idx_group_members_card ON group_members(card_id);
`

// DB wraps a sql.DB with index-specific operations.
type DB struct {
	conn *sql.DB
}

// Open opens (or creates) the SQLite database and applies the schema.
func Open(dsn string) (*DB, error) {
	conn, err := sql.Open("sqlite3", dsn+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("index: open db: %w", err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("index: ping: %w", err)
	}
	if _, err := conn.Exec(schemaSQL); err != nil {
		conn.Close()
		return nil, fmt.Errorf("index: apply schema: %w", err)
	}
	return &DB{conn: conn}, nil
}

// Ping reports whether the database is reachable.
func (db *DB) Ping(ctx context.Context) error {
	return db.conn.PingContext(ctx)
}

// Close closes the underlying database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}
