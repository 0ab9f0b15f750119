// Package docservice coordinates store, index, and renderer for the API,
// the exporter, and the MCP surface.
package docservice

import (
	"context"
	"html/template"
	"time"

	"github.com/starford/ansuz/internal/content"
	"github.com/starford/ansuz/internal/index"
	"github.com/starford/ansuz/internal/render"
)

// DocumentDetail is the full representation of one document.
type DocumentDetail struct {
	Path      string             `json:"path"`
	Slug      string             `json:"slug"`
	Layout    string             `json:"layout"`
	Title     string             `json:"title"`
	Date      *time.Time         `json:"date,omitempty"`
	Tags      []string           `json:"tags"`
	Icon      string             `json:"icon,omitempty"`
	Order     int                `json:"order,omitempty"`
	Body      string             `json:"body"`
	HTML      string             `json:"html"`
	Footnotes []content.Footnote `json:"footnotes,omitempty"`
	Checksum  string             `json:"checksum"`
	UpdatedAt time.Time          `json:"updated_at"`
}

// PostListItem is a lightweight item in a listing response.
type PostListItem struct {
	Path  string     `json:"path"`
	Slug  string     `json:"slug"`
	Title string     `json:"title"`
	Date  *time.Time `json:"date,omitempty"`
	Tags  []string   `json:"tags"`
}

// Service exposes the navigation index views and per-document detail.
type Service struct {
	db   index.DocumentIndex
	site render.SiteMeta
}

// NewService creates a new document service over the given index.
func NewService(db index.DocumentIndex, site render.SiteMeta) *Service {
	return &Service{db: db, site: site}
}

// Site returns the configured site metadata.
func (s *Service) Site() render.SiteMeta {
	return s.site
}

// GetDocument returns a document by path or slug, with rendered HTML and
// its local footnote definitions.
func (s *Service) GetDocument(_ context.Context, key string) (*DocumentDetail, error) {
	d, err := s.db.GetDocument(key)
	if err != nil {
		return nil, err
	}
	doc := content.Document{Body: d.Body}
	return &DocumentDetail{
		Path:      d.Path,
		Slug:      d.Slug,
		Layout:    d.Layout,
		Title:     d.Title,
		Date:      d.Date,
		Tags:      nonNilSlice(d.Tags),
		Icon:      d.Icon,
		Order:     d.Order,
		Body:      d.Body,
		HTML:      d.HTML,
		Footnotes: doc.Footnotes(),
		Checksum:  d.Checksum,
		UpdatedAt: d.UpdatedAt,
	}, nil
}

// ListPosts returns the chronological view, optionally filtered to a tag.
func (s *Service) ListPosts(_ context.Context, limit, offset int, tag string) ([]PostListItem, int, error) {
	var (
		rows  []index.DocumentRow
		total int
		err   error
	)
	if tag == "" {
		rows, total, err = s.db.Chronological(limit, offset)
	} else {
		rows, total, err = s.db.ByTag(tag, limit, offset)
	}
	if err != nil {
		return nil, 0, err
	}
	items := make([]PostListItem, len(rows))
	for i, r := range rows {
		items[i] = PostListItem{
			Path:  r.Path,
			Slug:  r.Slug,
			Title: r.Title,
			Date:  r.Date,
			Tags:  nonNilSlice(r.Tags),
		}
	}
	return items, total, nil
}

// Tags returns the tag view summary.
func (s *Service) Tags(_ context.Context) ([]index.TagCount, error) {
	return s.db.Tags()
}

// Problems returns the recorded build diagnostics.
func (s *Service) Problems(_ context.Context) ([]index.Problem, error) {
	return s.db.Problems()
}

// Feed builds the RSS document from the full chronological view.
func (s *Service) Feed(ctx context.Context) ([]byte, error) {
	rows, err := s.db.ChronologicalAll()
	if err != nil {
		return nil, err
	}
	items := make([]render.FeedItem, 0, len(rows))
	for _, r := range rows {
		d, err := s.db.GetDocument(r.Path)
		if err != nil {
			continue
		}
		items = append(items, render.FeedItem{
			Title: d.Title,
			Slug:  d.Slug,
			Date:  *d.Date,
			HTML:  d.HTML,
			Tags:  d.Tags,
		})
	}
	return render.Feed(s.site, items)
}

// ExportSite assembles the complete static-export input from the index.
func (s *Service) ExportSite(ctx context.Context) (render.ExportSite, error) {
	site := render.ExportSite{
		Meta:     s.site,
		TagPosts: map[string][]render.PageDoc{},
	}

	posts, err := s.db.ChronologicalAll()
	if err != nil {
		return site, err
	}
	for _, r := range posts {
		doc, err := s.pageDoc(r.Path)
		if err != nil {
			return site, err
		}
		site.Posts = append(site.Posts, doc)
		for _, tag := range r.Tags {
			site.TagPosts[tag] = append(site.TagPosts[tag], doc)
		}
	}

	pages, err := s.db.Pages()
	if err != nil {
		return site, err
	}
	for _, r := range pages {
		doc, err := s.pageDoc(r.Path)
		if err != nil {
			return site, err
		}
		site.Pages = append(site.Pages, doc)
	}

	return site, nil
}

func (s *Service) pageDoc(path string) (render.PageDoc, error) {
	d, err := s.db.GetDocument(path)
	if err != nil {
		return render.PageDoc{}, err
	}
	return render.PageDoc{
		Path:   d.Path,
		Slug:   d.Slug,
		Layout: d.Layout,
		Title:  d.Title,
		Date:   d.Date,
		Tags:   d.Tags,
		HTML:   template.HTML(d.HTML),
	}, nil
}

func nonNilSlice[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
