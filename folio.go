// Package folio serves a read-only portfolio and blog: Markdown posts with
// a search index, taxonomy clouds, tables of contents, feeds, and project
// catalogs, exposed as a JSON API plus HTML fragments.
//
// Content comes from a content.Source (a local directory or a static
// host); folio handles caching, indexing, rendering, and middleware.
package folio

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/eringen/folio/content"
	"github.com/eringen/folio/github"
	"github.com/eringen/folio/markdown"
)

// App is the central folio application. It wires together the post
// source, cache, renderer, GitHub client, handlers and middleware.
type App struct {
	Config   SiteConfig
	Echo     *echo.Echo
	Source   content.Source
	Cache    *PostCache
	Markdown *markdown.Renderer
	GitHub   *github.Client

	limiter      *RateLimiter
	customRoutes []func(*App)
	now          func() time.Time
	stopWatch    func()
}

// New creates a new folio App with the given configuration.
func New(cfg SiteConfig, opts ...Option) *App {
	cfg.setDefaults()

	a := &App{
		Config: cfg,
		Echo:   echo.New(),
		now:    time.Now,
	}
	a.Echo.HideBanner = true

	for _, opt := range opts {
		opt(a)
	}

	if a.Source == nil {
		if cfg.PostsURL != "" {
			a.Source = content.NewHTTPSource(cfg.PostsURL)
		} else {
			a.Source = content.FileSource{Dir: cfg.PostsDir}
		}
	}
	if a.GitHub == nil {
		a.GitHub = github.NewClient(github.WithToken(cfg.GitHubToken), github.WithLogger(a.Echo.Logger))
	}

	var mdOpts []markdown.Option
	if cfg.RawHTML {
		mdOpts = append(mdOpts, markdown.WithRawHTML())
	}
	if cfg.CodeStyle != "" {
		mdOpts = append(mdOpts, markdown.WithCodeStyle(cfg.CodeStyle))
	}
	a.Markdown = markdown.New(mdOpts...)
	return a
}

// Init builds the cache, limiter, middleware and routes without starting
// the listener.
func (a *App) Init() error {
	if a.Cache != nil {
		return nil
	}
	a.Cache = NewPostCache(a.Source, a.Config.PostCacheTTL, a.Echo.Logger)
	a.limiter = NewRateLimiter(a.Config.RateLimit, a.Config.RateWindow)

	if a.Config.Watch && a.Config.PostsURL == "" {
		stop, err := Watch(a.Config.PostsDir, a.Cache, a.Echo.Logger)
		if err != nil {
			return fmt.Errorf("folio: watch posts: %w", err)
		}
		a.stopWatch = stop
	}

	a.setupMiddleware()
	a.setupRoutes()

	for _, fn := range a.customRoutes {
		fn(a)
	}
	return nil
}

// Start initializes the app and starts the server.
func (a *App) Start() error {
	if err := a.Init(); err != nil {
		return err
	}
	if err := a.Echo.Start(a.Config.Addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (a *App) setupRoutes() {
	e := a.Echo

	e.Static("/public", a.Config.StaticDir)
	if a.Config.PostsURL == "" {
		e.Static("/posts", a.Config.PostsDir)
	}

	e.GET("/sitemap.xml", a.handleSitemap)
	e.GET("/feed.xml", a.handleFeed)
	if a.Config.CodeStyle != "" {
		e.GET("/code.css", a.handleCodeCSS)
	}

	api := e.Group("/api")
	api.GET("/posts", a.handlePosts)
	api.GET("/posts/:filename", a.handlePost)
	api.GET("/taxonomy/:kind", a.handleTaxonomy)
	api.GET("/games", a.handleGames)
	api.GET("/repos", a.handleRepos)
	api.GET("/contributions", a.handleContributions)

	limit := a.limiter.Middleware()
	api.GET("/search", a.handleSearch, limit)
	api.GET("/suggest", a.handleSuggest, limit)
}

// Close cleans up resources. Call this when the app is shutting down.
func (a *App) Close() error {
	if a.stopWatch != nil {
		a.stopWatch()
	}
	if a.limiter != nil {
		a.limiter.Close()
	}
	if a.Cache != nil {
		a.Cache.Close()
	}
	return nil
}
