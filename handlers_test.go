package folio

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/eringen/folio/content"
	"github.com/eringen/folio/github"
	"github.com/eringen/folio/taxonomy"
)

func decode(t *testing.T, body []byte, v interface{}) {
	t.Helper()
	if err := json.Unmarshal(body, v); err != nil {
		t.Fatalf("decode %s: %v", body, err)
	}
}

func waitIndexed(t *testing.T, a *App) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := a.Cache.WaitIndexed(ctx); err != nil {
		t.Fatalf("WaitIndexed: %v", err)
	}
}

func TestHandlePostsNewestFirst(t *testing.T) {
	a := newTestApp(t, newMemSource(), SiteConfig{})
	rec := serve(a, http.MethodGet, "/api/posts", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var posts []content.Post
	decode(t, rec.Body.Bytes(), &posts)

	var got []string
	for _, p := range posts {
		got = append(got, p.Filename)
	}
	want := "tooling.md,intro.md,recipes.md"
	if strings.Join(got, ",") != want {
		t.Errorf("order = %v, want %s", got, want)
	}
}

func TestHandlePostJSON(t *testing.T) {
	a := newTestApp(t, newMemSource(), SiteConfig{})
	rec := serve(a, http.MethodGet, "/api/posts/tooling.md", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body)
	}
	var resp struct {
		Post    content.Post `json:"post"`
		HTML    string       `json:"html"`
		TOC     []struct {
			ID       string `json:"id"`
			Children []struct {
				ID string `json:"id"`
			} `json:"children"`
		} `json:"toc"`
		Related []content.Post `json:"related"`
	}
	decode(t, rec.Body.Bytes(), &resp)

	if resp.Post.Title != "Tooling" {
		t.Errorf("title = %q", resp.Post.Title)
	}
	if !strings.Contains(resp.HTML, `<h2 id="setup">Setup</h2>`) {
		t.Errorf("html missing annotated heading: %s", resp.HTML)
	}
	if len(resp.TOC) != 1 || resp.TOC[0].ID != "setup" || len(resp.TOC[0].Children) != 1 || resp.TOC[0].Children[0].ID != "editor" {
		t.Errorf("toc = %+v", resp.TOC)
	}
	if len(resp.Related) != 1 || resp.Related[0].Filename != "intro.md" {
		t.Errorf("related = %+v", resp.Related)
	}
}

func TestHandlePostStripsFrontMatter(t *testing.T) {
	a := newTestApp(t, newMemSource(), SiteConfig{})
	rec := serve(a, http.MethodGet, "/api/posts/intro.md", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var resp postResponse
	decode(t, rec.Body.Bytes(), &resp)
	if strings.Contains(resp.HTML, "title: Intro") {
		t.Errorf("front matter rendered: %s", resp.HTML)
	}
	if !strings.Contains(resp.HTML, `<h1 id="intro">Intro</h1>`) {
		t.Errorf("html = %s", resp.HTML)
	}
}

func TestHandlePostFragment(t *testing.T) {
	a := newTestApp(t, newMemSource(), SiteConfig{})
	rec := serve(a, http.MethodGet, "/api/posts/tooling.md", map[string]string{"HX-Request": "true"})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Errorf("content type = %q", ct)
	}
	body := rec.Body.String()
	for _, want := range []string{`<article class="post"`, `<nav class="toc"`, `toc-item has-children`} {
		if !strings.Contains(body, want) {
			t.Errorf("fragment missing %q", want)
		}
	}
}

func TestHandlePostNotFound(t *testing.T) {
	a := newTestApp(t, newMemSource(), SiteConfig{})
	for _, target := range []string{"/api/posts/missing.md", "/api/posts/notes.txt", "/api/posts/.hidden.md"} {
		rec := serve(a, http.MethodGet, target, nil)
		if rec.Code != http.StatusNotFound {
			t.Errorf("%s: status = %d", target, rec.Code)
			continue
		}
		var resp errorResponse
		decode(t, rec.Body.Bytes(), &resp)
		if resp.Error == "" {
			t.Errorf("%s: empty error message", target)
		}
	}
}

func TestHandleIndexFailure(t *testing.T) {
	src := newMemSource()
	src.indexErr = errBackend
	a := newTestApp(t, src, SiteConfig{})
	rec := serve(a, http.MethodGet, "/api/posts", nil)
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d", rec.Code)
	}
	var resp errorResponse
	decode(t, rec.Body.Bytes(), &resp)
	if strings.Contains(resp.Error, "backend down") {
		t.Errorf("internal error leaked: %q", resp.Error)
	}
}

func TestHandleSearch(t *testing.T) {
	a := newTestApp(t, newMemSource(), SiteConfig{})
	serve(a, http.MethodGet, "/api/posts", nil)
	waitIndexed(t, a)

	rec := serve(a, http.MethodGet, "/api/search?q=golang", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var resp searchResponse
	decode(t, rec.Body.Bytes(), &resp)
	if !resp.Ready {
		t.Errorf("expected ready index")
	}
	if len(resp.Results) != 1 || resp.Results[0].Post.Filename != "intro.md" {
		t.Fatalf("results = %+v", resp.Results)
	}
	if resp.Results[0].Score != 10 || strings.Join(resp.Results[0].Types, ",") != "content" {
		t.Errorf("result = %+v", resp.Results[0])
	}

	rec = serve(a, http.MethodGet, "/api/search?q=tool&filter=title", nil)
	decode(t, rec.Body.Bytes(), &resp)
	if len(resp.Results) != 1 || !strings.Contains(resp.Results[0].TitleHTML, `<span class="search-highlight">Tool</span>`) {
		t.Errorf("results = %+v", resp.Results)
	}

	rec = serve(a, http.MethodGet, "/api/search?q=go&filter=colour", nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("unknown filter status = %d", rec.Code)
	}
}

func TestHandleSearchTrimsQuery(t *testing.T) {
	a := newTestApp(t, newMemSource(), SiteConfig{})
	serve(a, http.MethodGet, "/api/posts", nil)
	waitIndexed(t, a)

	rec := serve(a, http.MethodGet, "/api/search?q=%20intro%20&filter=title", nil)
	var resp searchResponse
	decode(t, rec.Body.Bytes(), &resp)
	if resp.Query != "intro" {
		t.Errorf("query = %q", resp.Query)
	}
	if len(resp.Results) != 1 || resp.Results[0].TitleHTML != `<span class="search-highlight">Intro</span> to Go` {
		t.Errorf("results = %+v", resp.Results)
	}
}

func TestHandleSearchEmptyQuery(t *testing.T) {
	a := newTestApp(t, newMemSource(), SiteConfig{})
	rec := serve(a, http.MethodGet, "/api/search?q=", nil)
	var resp searchResponse
	decode(t, rec.Body.Bytes(), &resp)
	if len(resp.Results) != 3 {
		t.Errorf("expected every post for empty query, got %d", len(resp.Results))
	}
	for _, r := range resp.Results {
		if r.Score != 0 {
			t.Errorf("expected unscored results, got %d", r.Score)
		}
	}
}

func TestHandleSuggest(t *testing.T) {
	a := newTestApp(t, newMemSource(), SiteConfig{})
	serve(a, http.MethodGet, "/api/posts", nil)
	waitIndexed(t, a)

	var got []struct {
		Type   string `json:"type"`
		Value  string `json:"value"`
		Filter string `json:"filter"`
	}
	rec := serve(a, http.MethodGet, "/api/suggest?q=g", nil)
	decode(t, rec.Body.Bytes(), &got)
	if len(got) != 0 {
		t.Errorf("expected no suggestions for a single rune, got %+v", got)
	}

	rec = serve(a, http.MethodGet, "/api/suggest?q=go", nil)
	decode(t, rec.Body.Bytes(), &got)
	if len(got) != 2 {
		t.Fatalf("suggestions = %+v", got)
	}
	if got[0].Type != "tag" || got[0].Value != "go" || got[0].Filter != "tag" {
		t.Errorf("first = %+v", got[0])
	}
	if got[1].Type != "post" || got[1].Filter != "all" {
		t.Errorf("second = %+v", got[1])
	}
}

func TestSearchRateLimited(t *testing.T) {
	a := newTestApp(t, newMemSource(), SiteConfig{RateLimit: 2})
	codes := []int{}
	for i := 0; i < 3; i++ {
		codes = append(codes, serve(a, http.MethodGet, "/api/search?q=go", nil).Code)
	}
	if codes[0] != http.StatusOK || codes[1] != http.StatusOK || codes[2] != http.StatusTooManyRequests {
		t.Errorf("codes = %v", codes)
	}
}

func TestHandleTaxonomy(t *testing.T) {
	a := newTestApp(t, newMemSource(), SiteConfig{})

	var entries []taxonomy.Entry
	rec := serve(a, http.MethodGet, "/api/taxonomy/tags", nil)
	decode(t, rec.Body.Bytes(), &entries)
	if len(entries) != 3 || entries[0].Name != "go" || entries[0].Count != 2 || entries[0].FontScale != 2 {
		t.Errorf("entries = %+v", entries)
	}

	var posts []content.Post
	rec = serve(a, http.MethodGet, "/api/taxonomy/categories?value=Programming", nil)
	decode(t, rec.Body.Bytes(), &posts)
	if len(posts) != 2 || posts[0].Filename != "tooling.md" {
		t.Errorf("posts = %+v", posts)
	}

	rec = serve(a, http.MethodGet, "/api/taxonomy/categories?value=programming", nil)
	decode(t, rec.Body.Bytes(), &posts)
	if len(posts) != 0 {
		t.Errorf("filter should be case sensitive, got %+v", posts)
	}

	rec = serve(a, http.MethodGet, "/api/taxonomy/tags", map[string]string{"HX-Request": "true"})
	if !strings.Contains(rec.Body.String(), `class="tag-cloud tag-cloud-tags"`) {
		t.Errorf("cloud fragment = %s", rec.Body)
	}

	rec = serve(a, http.MethodGet, "/api/taxonomy/colours", nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("unknown kind status = %d", rec.Code)
	}
}

func TestHandleGames(t *testing.T) {
	dir := t.TempDir()
	games := filepath.Join(dir, "games.yaml")
	if err := os.WriteFile(games, []byte("- id: 1\n  title: Orbit\n  itchUrl: https://x.itch.io/orbit\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	a := newTestApp(t, newMemSource(), SiteConfig{GamesFile: games})
	rec := serve(a, http.MethodGet, "/api/games", nil)
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"title":"Orbit"`) {
		t.Errorf("games: %d %s", rec.Code, rec.Body)
	}
}

func TestHandleReposFallsBack(t *testing.T) {
	a := newTestApp(t, newMemSource(), SiteConfig{})
	rec := serve(a, http.MethodGet, "/api/repos", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var repos []github.Repo
	decode(t, rec.Body.Bytes(), &repos)
	if len(repos) != 1 || !repos[0].Fallback || repos[0].FullName != "example/example-repo" {
		t.Errorf("repos = %+v", repos)
	}
}

func TestHandleContributionsPlaceholder(t *testing.T) {
	a := newTestApp(t, newMemSource(), SiteConfig{GitHubUser: "someone"})
	rec := serve(a, http.MethodGet, "/api/contributions", nil)
	var years []github.Year
	decode(t, rec.Body.Bytes(), &years)
	if len(years) != 1 || years[0].Year != 2024 || !years[0].Placeholder {
		t.Errorf("years = %+v", years)
	}
}

func TestCodeCSS(t *testing.T) {
	a := newTestApp(t, newMemSource(), SiteConfig{})
	if rec := serve(a, http.MethodGet, "/code.css", nil); rec.Code != http.StatusNotFound {
		t.Errorf("without code style status = %d", rec.Code)
	}

	src := newMemSource()
	src.bodies["intro.md"] = "```go\nfunc main() {}\n```\n"
	a = newTestApp(t, src, SiteConfig{CodeStyle: "github"})
	rec := serve(a, http.MethodGet, "/code.css", nil)
	if rec.Code != http.StatusOK || !strings.HasPrefix(rec.Header().Get("Content-Type"), "text/css") {
		t.Fatalf("status = %d, content type = %q", rec.Code, rec.Header().Get("Content-Type"))
	}
	if !strings.Contains(rec.Body.String(), ".chroma") {
		t.Errorf("css = %s", rec.Body)
	}

	rec = serve(a, http.MethodGet, "/api/posts/intro.md", nil)
	var resp postResponse
	decode(t, rec.Body.Bytes(), &resp)
	if !strings.Contains(resp.HTML, `class="chroma"`) {
		t.Errorf("html = %s", resp.HTML)
	}
}

func TestFeedAndSitemap(t *testing.T) {
	a := newTestApp(t, newMemSource(), SiteConfig{Name: "Folio"})

	rec := serve(a, http.MethodGet, "/feed.xml", nil)
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "application/rss+xml") {
		t.Errorf("feed content type = %q", ct)
	}
	if !strings.Contains(rec.Body.String(), "<link>https://example.com/blog/tooling</link>") {
		t.Errorf("feed = %s", rec.Body)
	}
	if rec.Header().Get("Cache-Control") != "public, max-age=86400" {
		t.Errorf("cache-control = %q", rec.Header().Get("Cache-Control"))
	}

	rec = serve(a, http.MethodGet, "/sitemap.xml", nil)
	body := rec.Body.String()
	if !strings.Contains(body, "<loc>https://example.com/blog/intro</loc><lastmod>2024-01-01</lastmod>") {
		t.Errorf("sitemap = %s", body)
	}
	if !strings.Contains(body, "<loc>https://example.com/blog/recipes</loc></url>") {
		t.Errorf("undated post should have no lastmod: %s", body)
	}
}

func TestUnknownRouteIsJSON404(t *testing.T) {
	a := newTestApp(t, newMemSource(), SiteConfig{})
	rec := serve(a, http.MethodGet, "/api/nothing", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d", rec.Code)
	}
	var resp errorResponse
	decode(t, rec.Body.Bytes(), &resp)
	if resp.Error == "" {
		t.Errorf("expected error body")
	}
}
