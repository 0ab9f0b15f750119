package api

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/starford/ansuz/internal/docservice"
	"github.com/starford/ansuz/internal/index"
	"github.com/starford/ansuz/internal/render"
	"github.com/starford/ansuz/internal/storage"
	"github.com/starford/ansuz/internal/testutil"
)

// testEnv sets up a temp content dir, SQLite DB, service, and router.
// authToken "" means disabled mode; non-empty means token mode.
func testEnv(t *testing.T, authToken string) (string, storage.Provider, *index.DB, http.Handler) {
	t.Helper()

	contentDir, store := testutil.TestContentDir(t)
	db := testutil.TestDB(t)

	site := render.SiteMeta{Title: "Ansuz", BaseURL: "https://example.com", Author: "A. Writer"}
	svc := docservice.NewService(db, site)
	router := NewRouter(svc, authToken != "", authToken, nil)
	return contentDir, store, db, router
}

// seed writes documents into the content dir and runs a full sync.
func seed(t *testing.T, contentDir string, store storage.Provider, db *index.DB, docs map[string]string) {
	t.Helper()
	for rel, body := range docs {
		testutil.WriteFile(t, contentDir, rel, body)
	}
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	if err := index.Sync(db, store, render.NewMarkdown(), logger); err != nil {
		t.Fatalf("Sync: %v", err)
	}
}

func threePosts() map[string]string {
	return map[string]string{
		"posts/2024-04-05-newer.md": "---\ntitle: Newer\ndate: 2024-04-05\ntags: [meta]\n---\nNewer body.\n",
		"posts/2024-04-04-older.md": "---\ntitle: Older\ndate: 2024-04-04\ntags: [go, meta]\n---\nOlder body.\n",
		"about.md":                  "---\nlayout: page\ntitle: About\n---\nAbout body.\n",
	}
}

type postsResponse struct {
	Posts []docservice.PostListItem `json:"posts"`
	Total int                       `json:"total"`
}

func TestListPosts(t *testing.T) {
	contentDir, store, db, router := testEnv(t, "")
	seed(t, contentDir, store, db, threePosts())

	req := httptest.NewRequest(http.MethodGet, "/posts", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}

	var resp postsResponse
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.Total != 2 || len(resp.Posts) != 2 {
		t.Fatalf("total = %d, posts = %d", resp.Total, len(resp.Posts))
	}
	if resp.Posts[0].Slug != "newer" || resp.Posts[1].Slug != "older" {
		t.Errorf("order = [%s %s], want [newer older]", resp.Posts[0].Slug, resp.Posts[1].Slug)
	}
}

func TestListPosts_TagFilter(t *testing.T) {
	contentDir, store, db, router := testEnv(t, "")
	seed(t, contentDir, store, db, threePosts())

	req := httptest.NewRequest(http.MethodGet, "/posts?tag=go", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}

	var resp postsResponse
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.Total != 1 || resp.Posts[0].Slug != "older" {
		t.Errorf("tag filter: total = %d, posts = %+v", resp.Total, resp.Posts)
	}
}

func TestListPosts_Window(t *testing.T) {
	contentDir, store, db, router := testEnv(t, "")
	seed(t, contentDir, store, db, threePosts())

	req := httptest.NewRequest(http.MethodGet, "/posts?limit=1&offset=1", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	var resp postsResponse
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.Total != 2 {
		t.Errorf("total should cover the full view, got %d", resp.Total)
	}
	if len(resp.Posts) != 1 || resp.Posts[0].Slug != "older" {
		t.Errorf("window = %+v", resp.Posts)
	}
}

func TestGetDocument_BySlugAndPath(t *testing.T) {
	contentDir, store, db, router := testEnv(t, "")
	seed(t, contentDir, store, db, threePosts())

	for _, key := range []string{"newer", "posts%2F2024-04-05-newer.md"} {
		req := httptest.NewRequest(http.MethodGet, "/documents/"+key, nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		if w.Code != http.StatusOK {
			t.Fatalf("get %s status = %d, body = %s", key, w.Code, w.Body.String())
		}
		var doc docservice.DocumentDetail
		_ = json.Unmarshal(w.Body.Bytes(), &doc)
		if doc.Slug != "newer" {
			t.Errorf("key %s: slug = %q", key, doc.Slug)
		}
		if doc.HTML == "" {
			t.Errorf("key %s: missing rendered HTML", key)
		}
	}
}

func TestGetDocument_Footnotes(t *testing.T) {
	contentDir, store, db, router := testEnv(t, "")
	seed(t, contentDir, store, db, map[string]string{
		"2024-04-04-noted.md": "---\ntitle: Noted\ndate: 2024-04-04\n---\nA claim.[^1]\n\n[^1]: The source.\n",
	})

	req := httptest.NewRequest(http.MethodGet, "/documents/noted", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var doc docservice.DocumentDetail
	_ = json.Unmarshal(w.Body.Bytes(), &doc)
	if len(doc.Footnotes) != 1 || doc.Footnotes[0].Marker != "1" || doc.Footnotes[0].Text != "The source." {
		t.Errorf("footnotes = %+v", doc.Footnotes)
	}
}

func TestGetDocument_NotFound(t *testing.T) {
	_, _, _, router := testEnv(t, "")

	req := httptest.NewRequest(http.MethodGet, "/documents/nope", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}

func TestListTags(t *testing.T) {
	contentDir, store, db, router := testEnv(t, "")
	seed(t, contentDir, store, db, threePosts())

	req := httptest.NewRequest(http.MethodGet, "/tags", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}

	var resp struct {
		Tags []index.TagCount `json:"tags"`
	}
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if len(resp.Tags) != 2 {
		t.Fatalf("tags = %+v", resp.Tags)
	}
	if resp.Tags[0].Tag != "go" || resp.Tags[0].Count != 1 {
		t.Errorf("first tag = %+v", resp.Tags[0])
	}
	if resp.Tags[1].Tag != "meta" || resp.Tags[1].Count != 2 {
		t.Errorf("second tag = %+v", resp.Tags[1])
	}
}

func TestListTags_Empty(t *testing.T) {
	_, _, _, router := testEnv(t, "")

	req := httptest.NewRequest(http.MethodGet, "/tags", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var resp struct {
		Tags []index.TagCount `json:"tags"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if resp.Tags == nil {
		t.Error("tags should be an empty array, not null")
	}
}

func TestListProblems(t *testing.T) {
	contentDir, store, db, router := testEnv(t, "")
	seed(t, contentDir, store, db, map[string]string{
		"2024-04-04-good.md":   "---\ntitle: Good\ndate: 2024-04-04\n---\nFine.\n",
		"2024-04-05-broken.md": "---\ndate: 2024-04-05\n---\nNo title.\n",
	})

	req := httptest.NewRequest(http.MethodGet, "/problems", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}

	var resp struct {
		Problems []index.Problem `json:"problems"`
	}
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if len(resp.Problems) != 1 || resp.Problems[0].Path != "2024-04-05-broken.md" {
		t.Errorf("problems = %+v", resp.Problems)
	}
}

// The feed handler is mounted at the server root rather than under /api,
// so it is exercised directly here.
func TestFeed(t *testing.T) {
	contentDir, store, db, _ := testEnv(t, "")
	seed(t, contentDir, store, db, threePosts())

	h := NewHandler(docservice.NewService(db, render.SiteMeta{Title: "Ansuz", BaseURL: "https://example.com"}))
	req := httptest.NewRequest(http.MethodGet, "/feed.xml", nil)
	w := httptest.NewRecorder()
	h.Feed(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/rss+xml; charset=utf-8" {
		t.Errorf("content type = %q", ct)
	}
	body := w.Body.String()
	if !strings.Contains(body, "<rss") || !strings.Contains(body, "https://example.com/posts/newer/") {
		t.Errorf("feed body = %q", body)
	}
}

func TestAuthMiddleware_ValidToken(t *testing.T) {
	_, _, _, router := testEnv(t, "secret")

	req := httptest.NewRequest(http.MethodGet, "/posts", nil)
	req.Header.Set("Authorization", "Bearer secret")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", w.Code)
	}
}

func TestAuthMiddleware_MissingToken(t *testing.T) {
	_, _, _, router := testEnv(t, "secret")

	req := httptest.NewRequest(http.MethodGet, "/posts", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", w.Code)
	}
}

func TestAuthMiddleware_WrongToken(t *testing.T) {
	_, _, _, router := testEnv(t, "secret")

	req := httptest.NewRequest(http.MethodGet, "/posts", nil)
	req.Header.Set("Authorization", "Bearer wrong")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", w.Code)
	}
}

func TestAuthMiddleware_Disabled(t *testing.T) {
	_, _, _, router := testEnv(t, "")

	req := httptest.NewRequest(http.MethodGet, "/posts", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", w.Code)
	}
}
