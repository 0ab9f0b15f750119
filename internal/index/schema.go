// Package index provides the SQLite-backed navigation index: chronological
// and per-tag views derived from the content tree, plus build diagnostics.
package index

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS documents (
	path       TEXT PRIMARY KEY,
	slug       TEXT NOT NULL,
	layout     TEXT NOT NULL DEFAULT 'post',
	title      TEXT NOT NULL DEFAULT '',
	date       DATETIME,
	tags       TEXT NOT NULL DEFAULT '[]',
	icon       TEXT NOT NULL DEFAULT '',
	ord        INTEGER NOT NULL DEFAULT 0,
	body       TEXT NOT NULL DEFAULT '',
	html       TEXT NOT NULL DEFAULT '',
	checksum   TEXT NOT NULL DEFAULT '',
	updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_documents_slug ON documents(slug);
CREATE INDEX IF NOT EXISTS idx_documents_date ON documents(date);

CREATE TABLE IF NOT EXISTS doc_tags (
	tag  TEXT NOT NULL,
	path TEXT NOT NULL,
	UNIQUE(tag, path)
);

CREATE INDEX IF NOT EXISTS idx_doc_tags_tag ON doc_tags(tag);
CREATE INDEX IF NOT EXISTS idx_doc_tags_path ON doc_tags(path);

CREATE TABLE IF NOT EXISTS problems (
	path        TEXT PRIMARY KEY,
	reason      TEXT NOT NULL,
	detected_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);
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

// Close closes the underlying database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}
