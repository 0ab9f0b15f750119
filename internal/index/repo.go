package index

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/mattn/go-sqlite3"

	"github.com/starford/ansuz/internal/apperr"
)

// DocumentRow represents a row in the documents table.
type DocumentRow struct {
	Path      string
	Slug      string
	Layout    string
	Title     string
	Date      *time.Time // nil for pages
	Tags      []string
	Icon      string // presentation hint, passed through untouched
	Order     int    // page nav position, passed through untouched
	Checksum  string
	UpdatedAt time.Time
}

// DocumentDetail is a full row including the stored body and rendered HTML.
type DocumentDetail struct {
	DocumentRow
	Body string
	HTML string
}

// Problem is one build diagnostic recorded for the author.
type Problem struct {
	Path       string    `json:"path"`
	Reason     string    `json:"reason"`
	DetectedAt time.Time `json:"detected_at"`
}

// UpsertDocument inserts or replaces a document and its tag rows within a
// transaction. A slug collision with a different path is reported as
// apperr.ErrDuplicatePath; the existing document wins.
func (db *DB) UpsertDocument(d DocumentRow, body, html string) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("index: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // best-effort on failure path

	tagsJSON, _ := json.Marshal(d.Tags)

	var date any
	if d.Date != nil {
		date = d.Date.UTC()
	}

	_, err = tx.Exec(`
		INSERT INTO documents (path, slug, layout, title, date, tags, icon, ord, body, html, checksum, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(path) DO UPDATE SET
			slug       = excluded.slug,
			layout     = excluded.layout,
			title      = excluded.title,
			date       = excluded.date,
			tags       = excluded.tags,
			icon       = excluded.icon,
			ord        = excluded.ord,
			body       = excluded.body,
			html       = excluded.html,
			checksum   = excluded.checksum,
			updated_at = excluded.updated_at
	`, d.Path, d.Slug, d.Layout, d.Title, date, string(tagsJSON), d.Icon, d.Order, body, html, d.Checksum, d.UpdatedAt)
	if err != nil {
		var sqlErr sqlite3.Error
		if errors.As(err, &sqlErr) && sqlErr.ExtendedCode == sqlite3.ErrConstraintUnique {
			return fmt.Errorf("index: slug %q already claimed by another document: %w", d.Slug, apperr.ErrDuplicatePath)
		}
		return fmt.Errorf("index: upsert document: %w", err)
	}

	// Replace tag rows: delete old then bulk insert.
	_, _ = tx.Exec(`DELETE FROM doc_tags WHERE path = ?`, d.Path)
	if len(d.Tags) > 0 {
		stmt, err := tx.Prepare(`INSERT OR IGNORE INTO doc_tags (tag, path) VALUES (?, ?)`)
		if err != nil {
			return fmt.Errorf("index: prepare tag insert: %w", err)
		}
		defer stmt.Close()
		for _, tag := range d.Tags {
			if _, err := stmt.Exec(tag, d.Path); err != nil {
				return fmt.Errorf("index: insert tag: %w", err)
			}
		}
	}

	return tx.Commit()
}

// DeleteDocument removes a document and its tag rows.
func (db *DB) DeleteDocument(path string) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("index: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	_, _ = tx.Exec(`DELETE FROM doc_tags WHERE path = ?`, path)
	_, _ = tx.Exec(`DELETE FROM documents WHERE path = ?`, path)

	return tx.Commit()
}

// GetDocument returns a document by path or slug.
func (db *DB) GetDocument(key string) (*DocumentDetail, error) {
	row := db.conn.QueryRow(`
		SELECT path, slug, layout, title, date, tags, icon, ord, body, html, checksum, updated_at
		FROM documents
		WHERE path = ? OR slug = ?
	`, key, key)

	var d DocumentDetail
	var date sql.NullTime
	var tagsJSON string
	err := row.Scan(&d.Path, &d.Slug, &d.Layout, &d.Title, &date, &tagsJSON, &d.Icon, &d.Order, &d.Body, &d.HTML, &d.Checksum, &d.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("index: document %s: %w", key, apperr.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("index: get document: %w", err)
	}
	if date.Valid {
		t := date.Time
		d.Date = &t
	}
	_ = json.Unmarshal([]byte(tagsJSON), &d.Tags)
	return &d, nil
}

// GetChecksum returns the stored checksum for a document, or empty string
// if not indexed.
func (db *DB) GetChecksum(path string) (string, error) {
	var cs string
	err := db.conn.QueryRow(`SELECT checksum FROM documents WHERE path = ?`, path).Scan(&cs)
	if err != nil {
		return "", nil // not found is fine
	}
	return cs, nil
}

// AllChecksums returns path → checksum for every indexed document.
func (db *DB) AllChecksums() (map[string]string, error) {
	rows, err := db.conn.Query(`SELECT path, checksum FROM documents`)
	if err != nil {
		return nil, fmt.Errorf("index: all checksums: %w", err)
	}
	defer rows.Close()
	out := make(map[string]string)
	for rows.Next() {
		var p, cs string
		if err := rows.Scan(&p, &cs); err != nil {
			return nil, err
		}
		out[p] = cs
	}
	return out, rows.Err()
}

// Problems returns every recorded build diagnostic, ordered by path.
func (db *DB) Problems() ([]Problem, error) {
	rows, err := db.conn.Query(`SELECT path, reason, detected_at FROM problems ORDER BY path`)
	if err != nil {
		return nil, fmt.Errorf("index: problems: %w", err)
	}
	defer rows.Close()
	var out []Problem
	for rows.Next() {
		var p Problem
		if err := rows.Scan(&p.Path, &p.Reason, &p.DetectedAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// RecordProblem stores (or refreshes) a diagnostic for a source path.
func (db *DB) RecordProblem(path, reason string) error {
	_, err := db.conn.Exec(`
		INSERT INTO problems (path, reason, detected_at) VALUES (?, ?, ?)
		ON CONFLICT(path) DO UPDATE SET reason = excluded.reason, detected_at = excluded.detected_at
	`, path, reason, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("index: record problem: %w", err)
	}
	return nil
}

// ClearProblem removes the diagnostic for a source path, if any.
func (db *DB) ClearProblem(path string) error {
	_, err := db.conn.Exec(`DELETE FROM problems WHERE path = ?`, path)
	if err != nil {
		return fmt.Errorf("index: clear problem: %w", err)
	}
	return nil
}
