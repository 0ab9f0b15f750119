package render

import (
	"strings"
	"testing"
)

func TestMarkdown_Basic(t *testing.T) {
	md := NewMarkdown()
	out, err := md.Render([]byte("# Hello\n\nSome *text*.\n"))
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if !strings.Contains(out, "<h1 id=\"hello\">Hello</h1>") {
		t.Errorf("missing heading with auto id: %q", out)
	}
	if !strings.Contains(out, "<em>text</em>") {
		t.Errorf("missing emphasis: %q", out)
	}
}

func TestMarkdown_GFMTable(t *testing.T) {
	md := NewMarkdown()
	out, err := md.Render([]byte("| a | b |\n|---|---|\n| 1 | 2 |\n"))
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if !strings.Contains(out, "<table>") {
		t.Errorf("GFM table not rendered: %q", out)
	}
}

func TestMarkdown_Footnotes(t *testing.T) {
	md := NewMarkdown()
	out, err := md.Render([]byte("A claim.[^1]\n\n[^1]: The source.\n"))
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if !strings.Contains(out, "fn:1") {
		t.Errorf("footnote definition not rendered: %q", out)
	}
	if !strings.Contains(out, "fnref:1") {
		t.Errorf("footnote reference not rendered: %q", out)
	}
	if !strings.Contains(out, "The source.") {
		t.Errorf("footnote text missing: %q", out)
	}
}

func TestMarkdown_UndefinedFootnoteLeftVerbatim(t *testing.T) {
	md := NewMarkdown()
	out, err := md.Render([]byte("Dangling.[^missing]\n"))
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if !strings.Contains(out, "[^missing]") {
		t.Errorf("undefined reference should pass through: %q", out)
	}
}

func TestMarkdown_RawHTMLPassthrough(t *testing.T) {
	md := NewMarkdown()
	out, err := md.Render([]byte("<aside>note</aside>\n"))
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if !strings.Contains(out, "<aside>note</aside>") {
		t.Errorf("raw HTML should pass through: %q", out)
	}
}
