package content

import (
	"bytes"
	"fmt"
	"path"
	"regexp"
	"strings"
	"time"

	"github.com/adrg/frontmatter"

	"github.com/starford/ansuz/internal/apperr"
	"github.com/starford/ansuz/internal/checksum"
)

// datePrefixRe matches a Jekyll-style YYYY-MM-DD- filename prefix.
var datePrefixRe = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}-`)

// dateLayouts are the accepted front-matter date formats, tried in order.
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05 -0700",
	"2006-01-02 15:04 -0700",
	"2006-01-02",
}

// envelope is the typed front-matter shape. Unknown keys are preserved
// in Extra and passed through untouched.
type envelope struct {
	Layout string         `yaml:"layout"`
	Title  string         `yaml:"title"`
	Date   string         `yaml:"date"`
	Tags   []string       `yaml:"tags"`
	Icon   string         `yaml:"icon"`
	Order  int            `yaml:"order"`
	Extra  map[string]any `yaml:",inline"`
}

// Parse turns raw Markdown bytes into a Document. Validation follows the
// fail-soft taxonomy: structural defects return an error wrapping
// apperr.ErrMalformedDocument so callers can exclude the document and
// keep indexing the rest.
func Parse(relPath string, data []byte) (*Document, error) {
	var env envelope
	body, err := frontmatter.Parse(bytes.NewReader(data), &env)
	if err != nil {
		return nil, fmt.Errorf("content: %s: front matter: %v: %w", relPath, err, apperr.ErrMalformedDocument)
	}

	layout, err := parseLayout(relPath, env.Layout)
	if err != nil {
		return nil, err
	}

	doc := &Document{
		Path:     relPath,
		Slug:     Slugify(relPath),
		Layout:   layout,
		Title:    strings.TrimSpace(env.Title),
		Tags:     normalizeTags(env.Tags),
		Icon:     env.Icon,
		Order:    env.Order,
		Body:     string(body),
		Checksum: checksum.Sum(data),
		Extra:    env.Extra,
	}

	if layout == LayoutPost {
		if doc.Title == "" {
			return nil, fmt.Errorf("content: %s: missing title: %w", relPath, apperr.ErrMalformedDocument)
		}
		if env.Date == "" {
			return nil, fmt.Errorf("content: %s: missing date: %w", relPath, apperr.ErrMalformedDocument)
		}
		ts, err := parseDate(env.Date)
		if err != nil {
			return nil, fmt.Errorf("content: %s: unparsable date %q: %w", relPath, env.Date, apperr.ErrMalformedDocument)
		}
		doc.Date = ts
	}

	return doc, nil
}

// parseLayout validates the layout value. An absent layout means post,
// matching the dominant document kind in a blog tree.
func parseLayout(relPath, raw string) (Layout, error) {
	switch Layout(strings.TrimSpace(raw)) {
	case "", LayoutPost:
		return LayoutPost, nil
	case LayoutPage:
		return LayoutPage, nil
	default:
		return "", fmt.Errorf("content: %s: unknown layout %q: %w", relPath, raw, apperr.ErrMalformedDocument)
	}
}

func parseDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	for _, layout := range dateLayouts {
		if ts, err := time.Parse(layout, raw); err == nil {
			return ts, nil
		}
	}
	return time.Time{}, fmt.Errorf("no accepted layout matches %q", raw)
}

// Slugify derives the document identity from its file name: the stem with
// any date prefix stripped. Identity collisions between two files are the
// DuplicatePath condition, detected at index time.
func Slugify(relPath string) string {
	stem := strings.TrimSuffix(path.Base(relPath), path.Ext(relPath))
	return datePrefixRe.ReplaceAllString(stem, "")
}

// normalizeTags trims, drops empties, and deduplicates while keeping the
// declaration order stable.
func normalizeTags(raw []string) []string {
	if len(raw) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(raw))
	var out []string
	for _, t := range raw {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}
