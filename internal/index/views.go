package index

import (
	"database/sql"
	"encoding/json"
	"fmt"
)

// Listing defaults.
const (
	defaultLimit = 50
	maxLimit     = 500
)

// TagCount is one entry of the tag view summary: a tag and the number of
// posts carrying it.
type TagCount struct {
	Tag   string `json:"tag"`
	Count int    `json:"count"`
}

// Chronological returns posts ordered by date descending, ties broken by
// path ascending, together with the total post count. Pages and documents
// without a date never appear.
func (db *DB) Chronological(limit, offset int) ([]DocumentRow, int, error) {
	limit, offset = clampWindow(limit, offset)

	var total int
	if err := db.conn.QueryRow(
		`SELECT count(*) FROM documents WHERE layout = 'post' AND date IS NOT NULL`,
	).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("index: count posts: %w", err)
	}

	rows, err := db.conn.Query(`
		SELECT path, slug, layout, title, date, tags, icon, ord, checksum, updated_at
		FROM documents
		WHERE layout = 'post' AND date IS NOT NULL
		ORDER BY date DESC, path ASC
		LIMIT ? OFFSET ?
	`, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("index: chronological: %w", err)
	}
	defer rows.Close()

	out, err := scanRows(rows)
	if err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

// ChronologicalAll returns the complete chronological view with no window
// applied. The feed and the static export consume every post.
func (db *DB) ChronologicalAll() ([]DocumentRow, error) {
	rows, err := db.conn.Query(`
		SELECT path, slug, layout, title, date, tags, icon, ord, checksum, updated_at
		FROM documents
		WHERE layout = 'post' AND date IS NOT NULL
		ORDER BY date DESC, path ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("index: chronological all: %w", err)
	}
	defer rows.Close()
	return scanRows(rows)
}

// ByTag returns the posts carrying the given tag in chronological order,
// together with the total count for that tag.
func (db *DB) ByTag(tag string, limit, offset int) ([]DocumentRow, int, error) {
	limit, offset = clampWindow(limit, offset)

	var total int
	if err := db.conn.QueryRow(`
		SELECT count(*)
		FROM documents d JOIN doc_tags t ON t.path = d.path
		WHERE t.tag = ? AND d.layout = 'post' AND d.date IS NOT NULL
	`, tag).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("index: count by tag: %w", err)
	}

	rows, err := db.conn.Query(`
		SELECT d.path, d.slug, d.layout, d.title, d.date, d.tags, d.icon, d.ord, d.checksum, d.updated_at
		FROM documents d JOIN doc_tags t ON t.path = d.path
		WHERE t.tag = ? AND d.layout = 'post' AND d.date IS NOT NULL
		ORDER BY d.date DESC, d.path ASC
		LIMIT ? OFFSET ?
	`, tag, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("index: by tag: %w", err)
	}
	defer rows.Close()

	out, err := scanRows(rows)
	if err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

// Tags returns every tag carried by at least one post, alphabetically,
// with post counts.
func (db *DB) Tags() ([]TagCount, error) {
	rows, err := db.conn.Query(`
		SELECT t.tag, count(*)
		FROM doc_tags t JOIN documents d ON d.path = t.path
		WHERE d.layout = 'post' AND d.date IS NOT NULL
		GROUP BY t.tag
		ORDER BY t.tag ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("index: tags: %w", err)
	}
	defer rows.Close()

	var out []TagCount
	for rows.Next() {
		var tc TagCount
		if err := rows.Scan(&tc.Tag, &tc.Count); err != nil {
			return nil, err
		}
		out = append(out, tc)
	}
	return out, rows.Err()
}

// Pages returns every standalone page, ordered by the front-matter order
// key, ties broken by path. Pages carry no date and never appear in the
// chronological or tag views.
func (db *DB) Pages() ([]DocumentRow, error) {
	rows, err := db.conn.Query(`
		SELECT path, slug, layout, title, date, tags, icon, ord, checksum, updated_at
		FROM documents
		WHERE layout = 'page'
		ORDER BY ord ASC, path ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("index: pages: %w", err)
	}
	defer rows.Close()
	return scanRows(rows)
}

func clampWindow(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

func scanRows(rows *sql.Rows) ([]DocumentRow, error) {
	var out []DocumentRow
	for rows.Next() {
		var d DocumentRow
		var date sql.NullTime
		var tagsJSON string
		if err := rows.Scan(&d.Path, &d.Slug, &d.Layout, &d.Title, &date, &tagsJSON, &d.Icon, &d.Order, &d.Checksum, &d.UpdatedAt); err != nil {
			return nil, err
		}
		if date.Valid {
			t := date.Time
			d.Date = &t
		}
		_ = json.Unmarshal([]byte(tagsJSON), &d.Tags)
		out = append(out, d)
	}
	return out, rows.Err()
}
