package render

import (
	"bytes"
	"fmt"
	"sort"

	"github.com/starford/ansuz/internal/storage"
)

// ExportSite is the full input of a static export: everything the output
// tree is derived from, already ordered by the navigation index.
type ExportSite struct {
	Meta     SiteMeta
	Posts    []PageDoc // chronological order
	Pages    []PageDoc
	TagPosts map[string][]PageDoc // per tag, chronological order
}

// Exporter writes a complete static site into an output root. Writes go
// through the atomic storage writer, so a crashed export never leaves a
// half-written page behind.
type Exporter struct {
	out  storage.Provider
	tmpl *Templates
}

// NewExporter creates an exporter targeting the given output root.
func NewExporter(out storage.Provider) (*Exporter, error) {
	tmpl, err := NewTemplates()
	if err != nil {
		return nil, err
	}
	return &Exporter{out: out, tmpl: tmpl}, nil
}

// Export renders the front page, every document, every tag listing, and
// the RSS feed. Re-running with the same input produces the same tree.
func (e *Exporter) Export(site ExportSite) error {
	var buf bytes.Buffer

	// Front page.
	if err := e.tmpl.List(&buf, site.Meta, "", site.Posts); err != nil {
		return err
	}
	if err := e.out.Write("index.html", buf.Bytes()); err != nil {
		return err
	}

	// Posts.
	for _, p := range site.Posts {
		buf.Reset()
		if err := e.tmpl.Document(&buf, site.Meta, p); err != nil {
			return fmt.Errorf("render: export post %s: %w", p.Path, err)
		}
		if err := e.out.Write("posts/"+p.Slug+"/index.html", buf.Bytes()); err != nil {
			return err
		}
	}

	// Standalone pages live at the site root.
	for _, p := range site.Pages {
		buf.Reset()
		if err := e.tmpl.Document(&buf, site.Meta, p); err != nil {
			return fmt.Errorf("render: export page %s: %w", p.Path, err)
		}
		if err := e.out.Write(p.Slug+"/index.html", buf.Bytes()); err != nil {
			return err
		}
	}

	// Tag listings, in stable order.
	tags := make([]string, 0, len(site.TagPosts))
	for tag := range site.TagPosts {
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	for _, tag := range tags {
		buf.Reset()
		if err := e.tmpl.List(&buf, site.Meta, tag, site.TagPosts[tag]); err != nil {
			return fmt.Errorf("render: export tag %s: %w", tag, err)
		}
		if err := e.out.Write("tags/"+tag+"/index.html", buf.Bytes()); err != nil {
			return err
		}
	}

	// Feed.
	items := make([]FeedItem, len(site.Posts))
	for i, p := range site.Posts {
		items[i] = FeedItem{
			Title: p.Title,
			Slug:  p.Slug,
			Date:  *p.Date,
			HTML:  string(p.HTML),
			Tags:  p.Tags,
		}
	}
	feed, err := Feed(site.Meta, items)
	if err != nil {
		return err
	}
	return e.out.Write("feed.xml", feed)
}
