package folio

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/eringen/folio/content"
	"github.com/eringen/folio/github"
)

type memSource struct {
	mu       sync.Mutex
	posts    []content.Post
	bodies   map[string]string
	indexErr error
	loads    int
}

func (m *memSource) Index(ctx context.Context) ([]content.Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.loads++
	if m.indexErr != nil {
		return nil, m.indexErr
	}
	return slices.Clone(m.posts), nil
}

func (m *memSource) Body(ctx context.Context, filename string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.bodies[filename]
	if !ok {
		return "", content.ErrNotFound
	}
	return b, nil
}

func (m *memSource) loadCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.loads
}

var errBackend = errors.New("backend down")

func newMemSource() *memSource {
	return &memSource{
		posts: []content.Post{
			{Filename: "intro.md", Title: "Intro to Go", Date: "2024-01-01", Excerpt: "First steps.", Tags: []string{"go"}, Categories: []string{"Programming"}},
			{Filename: "tooling.md", Title: "Tooling", Date: "2024-06-01", Excerpt: "Editors and more.", Tags: []string{"go", "tools"}, Categories: []string{"Programming"}},
			{Filename: "recipes.md", Title: "Recipes", Date: "", Excerpt: "Food.", Tags: []string{"food"}, Categories: []string{"Life"}},
		},
		bodies: map[string]string{
			"intro.md":   "---\ntitle: Intro to Go\n---\n# Intro\nLearning golang basics.\n",
			"tooling.md": "## Setup\nInstall things.\n\n### Editor\nPick one.\n",
			"recipes.md": "Plain body about cooking.\n",
		},
	}
}

var testNow = time.Date(2024, time.June, 10, 0, 0, 0, 0, time.UTC)

type testLogger struct{}

func (testLogger) Infof(string, ...interface{})  {}
func (testLogger) Warnf(string, ...interface{})  {}
func (testLogger) Errorf(string, ...interface{}) {}

func newTestApp(t *testing.T, src content.Source, cfg SiteConfig) *App {
	t.Helper()
	gh := httptest.NewServer(http.NotFoundHandler())
	t.Cleanup(gh.Close)

	if cfg.URL == "" {
		cfg.URL = "https://example.com"
	}
	if cfg.GamesFile == "" {
		cfg.GamesFile = t.TempDir() + "/games.json"
	}
	if cfg.ReposFile == "" {
		cfg.ReposFile = t.TempDir() + "/repos.json"
	}
	a := New(cfg,
		WithSource(src),
		WithGitHub(github.NewClient(github.WithBaseURL(gh.URL), github.WithLogger(testLogger{}))),
		WithClock(func() time.Time { return testNow }),
	)
	if err := a.Init(); err != nil {
		t.Fatalf("Init: %v", err)
	}
	t.Cleanup(func() { _ = a.Close() })
	return a
}

func serve(a *App, method, target string, header map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, nil)
	for k, v := range header {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	a.Echo.ServeHTTP(rec, req)
	return rec
}
