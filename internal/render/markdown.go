// Package render turns indexed content into reader-facing output:
// HTML bodies, templated pages, an RSS feed, and a static site export.
package render

import (
	"bytes"
	"fmt"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"
)

// Markdown renders Markdown bodies to HTML. The engine is stateless, so a
// single instance is shared across the sync loop, the watcher, and the API.
type Markdown struct {
	gm goldmark.Markdown
}

// NewMarkdown builds the engine: GFM plus footnotes, auto heading IDs, and
// raw HTML passthrough (single-author content, no untrusted input).
func NewMarkdown() *Markdown {
	return &Markdown{
		gm: goldmark.New(
			goldmark.WithExtensions(extension.GFM, extension.Footnote),
			goldmark.WithParserOptions(parser.WithAutoHeadingID()),
			goldmark.WithRendererOptions(html.WithUnsafe()),
		),
	}
}

// Render converts a Markdown body to HTML. Footnote references ([^n]) are
// resolved against definitions within the same body and rendered at the end.
func (m *Markdown) Render(body []byte) (string, error) {
	var buf bytes.Buffer
	if err := m.gm.Convert(body, &buf); err != nil {
		return "", fmt.Errorf("render: markdown: %w", err)
	}
	return buf.String(), nil
}
