package render

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"time"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

// PageDoc is one document prepared for templating.
type PageDoc struct {
	Path   string
	Slug   string
	Layout string
	Title  string
	Date   *time.Time
	Tags   []string
	HTML   template.HTML
}

// pageData is the root context passed to every template.
type pageData struct {
	Site  SiteMeta
	Tag   string
	Posts []PageDoc
	Doc   *PageDoc
}

// Templates holds the parsed page templates. List and document pages both
// override the "content" block, so each gets its own template set.
type Templates struct {
	list *template.Template
	doc  *template.Template
}

// NewTemplates parses the embedded page templates.
func NewTemplates() (*Templates, error) {
	list, err := template.ParseFS(templateFS, "templates/base.tmpl", "templates/list.tmpl")
	if err != nil {
		return nil, fmt.Errorf("render: parse list templates: %w", err)
	}
	doc, err := template.ParseFS(templateFS, "templates/base.tmpl", "templates/document.tmpl")
	if err != nil {
		return nil, fmt.Errorf("render: parse document templates: %w", err)
	}
	return &Templates{list: list, doc: doc}, nil
}

// List renders a listing page. An empty tag renders the front page; a
// non-empty tag renders that tag's filtered listing.
func (t *Templates) List(w io.Writer, site SiteMeta, tag string, posts []PageDoc) error {
	if err := t.list.ExecuteTemplate(w, "base", pageData{Site: site, Tag: tag, Posts: posts}); err != nil {
		return fmt.Errorf("render: list page: %w", err)
	}
	return nil
}

// Document renders a single post or page.
func (t *Templates) Document(w io.Writer, site SiteMeta, doc PageDoc) error {
	if err := t.doc.ExecuteTemplate(w, "base", pageData{Site: site, Doc: &doc}); err != nil {
		return fmt.Errorf("render: document page: %w", err)
	}
	return nil
}
