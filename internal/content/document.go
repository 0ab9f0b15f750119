// Package content defines the document model and parses Markdown sources
// with YAML front matter into it.
package content

import "time"

// Layout identifies the kind of a document.
type Layout string

// Recognized layouts.
const (
	LayoutPost Layout = "post"
	LayoutPage Layout = "page"
)

// Document represents one parsed Markdown source file.
type Document struct {
	Path     string         `json:"path"`
	Slug     string         `json:"slug"`
	Layout   Layout         `json:"layout"`
	Title    string         `json:"title"`
	Date     time.Time      `json:"date,omitempty"` // zero for pages
	Tags     []string       `json:"tags,omitempty"`
	Icon     string         `json:"icon,omitempty"`
	Order    int            `json:"order,omitempty"`
	Body     string         `json:"body"`
	Checksum string         `json:"checksum"`
	Extra    map[string]any `json:"extra,omitempty"`
}

// IsPost reports whether the document participates in chronological and
// tag listings.
func (d *Document) IsPost() bool {
	return d.Layout == LayoutPost
}

// Footnote is one (marker, text) definition local to a document.
type Footnote struct {
	Marker string `json:"marker"`
	Text   string `json:"text"`
}
