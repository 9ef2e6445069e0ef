package folio

import (
	"time"

	"github.com/eringen/folio/content"
	"github.com/eringen/folio/github"
)

// SiteConfig holds all configuration for a folio site.
type SiteConfig struct {
	Name        string // Site name (default "Blog")
	URL         string // Canonical URL (default "http://localhost:3000")
	Description string // Site description for RSS
	Author      string // Author name for JSON-LD

	Addr      string // Listen address (default ":3000")
	PostsDir  string // Local Markdown directory (default "public/posts")
	PostsURL  string // Remote posts base URL; overrides PostsDir when set
	StaticDir string // Static assets (default "public")
	GamesFile string // Game projects, JSON or YAML (default "data/game-projects.json")
	ReposFile string // Repository URLs, JSON or YAML (default "data/repos.json")

	GitHubUser  string // Contribution calendar owner
	GitHubToken string // Optional; without it contributions are placeholders
	StartYear   int    // First contribution year (default 2020)

	RawHTML      bool          // Allow sanitised raw HTML in posts
	CodeStyle    string        // Chroma style for server-side code highlighting; empty leaves it to the client
	Watch        bool          // Reload posts when PostsDir changes
	PostCacheTTL time.Duration // Post cache TTL (default 5min)
	RateLimit    int           // Search requests per window and IP (default 30)
	RateWindow   time.Duration // Rate limit window (default 1min)
}

func (c *SiteConfig) setDefaults() {
	if c.Name == "" {
		c.Name = "Blog"
	}
	if c.URL == "" {
		c.URL = "http://localhost:3000"
	}
	if c.Addr == "" {
		c.Addr = ":3000"
	}
	if c.PostsDir == "" {
		c.PostsDir = "public/posts"
	}
	if c.StaticDir == "" {
		c.StaticDir = "public"
	}
	if c.GamesFile == "" {
		c.GamesFile = "data/game-projects.json"
	}
	if c.ReposFile == "" {
		c.ReposFile = "data/repos.json"
	}
	if c.StartYear == 0 {
		c.StartYear = github.DefaultStartYear
	}
	if c.PostCacheTTL == 0 {
		c.PostCacheTTL = 5 * time.Minute
	}
	if c.RateLimit == 0 {
		c.RateLimit = 30
	}
	if c.RateWindow == 0 {
		c.RateWindow = time.Minute
	}
}

// Option configures additional App behavior.
type Option func(*App)

// WithCustomRoutes registers additional routes on the Echo instance.
// The callback receives the App before the server starts.
func WithCustomRoutes(fn func(*App)) Option {
	return func(a *App) {
		a.customRoutes = append(a.customRoutes, fn)
	}
}

// WithSource replaces the post source derived from PostsDir/PostsURL.
func WithSource(src content.Source) Option {
	return func(a *App) {
		a.Source = src
	}
}

// WithGitHub replaces the GitHub client.
func WithGitHub(c *github.Client) Option {
	return func(a *App) {
		a.GitHub = c
	}
}

// WithClock sets the time source used for recency scoring.
func WithClock(now func() time.Time) Option {
	return func(a *App) {
		a.now = now
	}
}
