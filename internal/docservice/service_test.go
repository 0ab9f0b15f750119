package docservice

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/starford/ansuz/internal/index"
	"github.com/starford/ansuz/internal/render"
	"github.com/starford/ansuz/internal/testutil"
)

func testService(t *testing.T, docs map[string]string) *Service {
	t.Helper()

	contentDir, store := testutil.TestContentDir(t)
	db := testutil.TestDB(t)

	for rel, body := range docs {
		testutil.WriteFile(t, contentDir, rel, body)
	}
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	if err := index.Sync(db, store, render.NewMarkdown(), logger); err != nil {
		t.Fatal(err)
	}

	site := render.SiteMeta{Title: "Ansuz", BaseURL: "https://example.com", Author: "A. Writer"}
	return NewService(db, site)
}

func sampleContent() map[string]string {
	return map[string]string{
		"posts/2024-04-05-newer.md": "---\ntitle: Newer\ndate: 2024-04-05\ntags: [meta]\n---\nNewer body.\n",
		"posts/2024-04-04-older.md": "---\ntitle: Older\ndate: 2024-04-04\ntags: [go, meta]\n---\nOlder body.[^1]\n\n[^1]: A note.\n",
		"about.md":                  "---\nlayout: page\ntitle: About\n---\nAbout body.\n",
	}
}

func TestGetDocument_FootnotesSurfaced(t *testing.T) {
	svc := testService(t, sampleContent())

	doc, err := svc.GetDocument(context.Background(), "older")
	if err != nil {
		t.Fatalf("GetDocument: %v", err)
	}
	if len(doc.Footnotes) != 1 || doc.Footnotes[0].Marker != "1" || doc.Footnotes[0].Text != "A note." {
		t.Errorf("footnotes = %+v", doc.Footnotes)
	}
	if doc.Tags == nil {
		t.Error("tags should never be nil")
	}
}

func TestFeed_AssemblesChronological(t *testing.T) {
	svc := testService(t, sampleContent())

	out, err := svc.Feed(context.Background())
	if err != nil {
		t.Fatalf("Feed: %v", err)
	}
	s := string(out)
	if !strings.Contains(s, "https://example.com/posts/newer/") {
		t.Errorf("feed missing post link: %q", s)
	}
	if strings.Index(s, "Newer") > strings.Index(s, "Older") {
		t.Error("feed not newest-first")
	}
	if strings.Contains(s, "About") {
		t.Error("pages do not belong in the feed")
	}
}

func TestExportSite_Assembly(t *testing.T) {
	svc := testService(t, sampleContent())

	site, err := svc.ExportSite(context.Background())
	if err != nil {
		t.Fatalf("ExportSite: %v", err)
	}
	if len(site.Posts) != 2 || site.Posts[0].Slug != "newer" {
		t.Errorf("posts = %+v", site.Posts)
	}
	if len(site.Pages) != 1 || site.Pages[0].Slug != "about" {
		t.Errorf("pages = %+v", site.Pages)
	}
	if got := site.TagPosts["meta"]; len(got) != 2 {
		t.Errorf("meta tag posts = %+v", got)
	}
	if got := site.TagPosts["go"]; len(got) != 1 || got[0].Slug != "older" {
		t.Errorf("go tag posts = %+v", got)
	}
	if site.Posts[0].HTML == "" {
		t.Error("export docs should carry rendered HTML")
	}
}

func TestExportSiteAndFeed_AllPosts(t *testing.T) {
	docs := make(map[string]string, 61)
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 60; i++ {
		date := base.AddDate(0, 0, i)
		tags := ""
		if i == 0 {
			// A tag carried only by the oldest post must still get a
			// tag bucket in the export.
			tags = "tags: [archive]\n"
		}
		rel := fmt.Sprintf("posts/%s-entry%02d.md", date.Format("2006-01-02"), i)
		docs[rel] = fmt.Sprintf("---\ntitle: Entry %02d\ndate: %s\n%s---\nBody %02d.\n", i, date.Format("2006-01-02"), tags, i)
	}
	svc := testService(t, docs)

	site, err := svc.ExportSite(context.Background())
	if err != nil {
		t.Fatalf("ExportSite: %v", err)
	}
	if len(site.Posts) != 60 {
		t.Fatalf("ExportSite returned %d posts, want 60 (truncated)", len(site.Posts))
	}
	if got := site.TagPosts["archive"]; len(got) != 1 || got[0].Slug != "entry00" {
		t.Errorf("oldest-post tag bucket = %+v", got)
	}

	feed, err := svc.Feed(context.Background())
	if err != nil {
		t.Fatalf("Feed: %v", err)
	}
	if n := strings.Count(string(feed), "<item>"); n != 60 {
		t.Errorf("feed items = %d, want 60 (truncated)", n)
	}
	if !strings.Contains(string(feed), "/posts/entry00/") {
		t.Error("oldest post missing from feed")
	}
}
