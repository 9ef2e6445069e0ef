package folio

import (
	"errors"
	"net/http"
	"strings"

	"github.com/a-h/templ"
	"github.com/labstack/echo/v4"

	"github.com/eringen/folio/catalog"
	"github.com/eringen/folio/content"
	"github.com/eringen/folio/frontmatter"
	"github.com/eringen/folio/markdown"
	"github.com/eringen/folio/search"
	"github.com/eringen/folio/taxonomy"
	"github.com/eringen/folio/toc"
	"github.com/eringen/folio/views"
)

type errorResponse struct {
	Error string `json:"error"`
}

type postResponse struct {
	Post    content.Post   `json:"post"`
	HTML    string         `json:"html"`
	TOC     []*toc.Node    `json:"toc"`
	Related []content.Post `json:"related"`
}

type searchResult struct {
	search.Result
	Types       []string `json:"types"`
	TitleHTML   string   `json:"titleHtml"`
	ExcerptHTML string   `json:"excerptHtml"`
}

type searchResponse struct {
	Query   string         `json:"query"`
	Filter  search.Filter  `json:"filter"`
	Ready   bool           `json:"ready"`
	Results []searchResult `json:"results"`
}

type suggestion struct {
	search.Suggestion
	Filter search.Filter `json:"filter"`
}

func (a *App) siteView() views.SiteConfig {
	return views.SiteConfig{Name: a.Config.Name, URL: a.Config.URL, Author: a.Config.Author}
}

func (a *App) handlePosts(c echo.Context) error {
	posts, err := a.Cache.ListPosts(c.Request().Context())
	if err != nil {
		return err
	}
	return respond(c, func() templ.Component { return views.PostList(posts) }, posts)
}

func (a *App) handlePost(c echo.Context) error {
	ctx := c.Request().Context()
	filename := c.Param("filename")
	if !content.ValidFilename(filename) {
		return echo.NewHTTPError(http.StatusNotFound, "post not found")
	}
	post, err := a.Cache.GetPost(ctx, filename)
	if errors.Is(err, ErrNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, "post not found")
	}
	if err != nil {
		return err
	}
	raw, err := a.Cache.Body(ctx, filename)
	if errors.Is(err, ErrNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, "post not found")
	}
	if err != nil {
		return err
	}

	rendered, err := a.Markdown.Render([]byte(frontmatter.Parse(raw).Content))
	if err != nil {
		return err
	}
	rendered, headings, err := toc.Annotate(rendered)
	if err != nil {
		return err
	}
	outline := toc.Build(headings)

	posts, err := a.Cache.ListPosts(ctx)
	if err != nil {
		return err
	}
	related := FilterRelatedPosts(post, posts)

	fragment := func() templ.Component {
		return views.Post(a.siteView(), views.PostView{
			Post:    post,
			HTML:    rendered,
			TOC:     toc.NewState(outline),
			Related: related,
		})
	}
	return respond(c, fragment, postResponse{
		Post:    post,
		HTML:    string(rendered),
		TOC:     outline.Children,
		Related: related,
	})
}

func (a *App) handleSearch(c echo.Context) error {
	filter, ok := search.ParseFilter(c.QueryParam("filter"))
	if !ok {
		return echo.NewHTTPError(http.StatusBadRequest, "unknown filter")
	}
	idx, err := a.Cache.Index(c.Request().Context())
	if err != nil {
		return err
	}
	query := strings.TrimSpace(c.QueryParam("q"))
	results := idx.Search(query, filter, a.now())
	ready := idx.State() == search.Ready

	if isHTMX(c) {
		return Render(c, views.SearchResults(views.SearchView{
			Query:   query,
			Filter:  filter,
			Ready:   ready,
			Results: results,
		}))
	}
	resp := searchResponse{Query: query, Filter: filter, Ready: ready, Results: make([]searchResult, 0, len(results))}
	for _, r := range results {
		resp.Results = append(resp.Results, searchResult{
			Result:      r,
			Types:       r.Match.Types(),
			TitleHTML:   search.Highlight(r.Post.Title, query),
			ExcerptHTML: search.Highlight(r.Post.Excerpt, query),
		})
	}
	return c.JSON(http.StatusOK, resp)
}

func (a *App) handleSuggest(c echo.Context) error {
	idx, err := a.Cache.Index(c.Request().Context())
	if err != nil {
		return err
	}
	found := idx.Suggest(c.QueryParam("q"))
	out := make([]suggestion, 0, len(found))
	for _, s := range found {
		out = append(out, suggestion{Suggestion: s, Filter: s.Filter()})
	}
	return c.JSON(http.StatusOK, out)
}

func (a *App) handleTaxonomy(c echo.Context) error {
	kind, err := taxonomy.ParseKind(c.Param("kind"))
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	}
	posts, err := a.Cache.ListPosts(c.Request().Context())
	if err != nil {
		return err
	}

	if c.QueryParams().Has("value") {
		filtered := taxonomy.Filter(posts, kind, c.QueryParam("value"))
		return respond(c, func() templ.Component { return views.PostList(filtered) }, filtered)
	}

	entries := taxonomy.Count(posts, kind)
	return respond(c, func() templ.Component { return views.TagCloud(kind, entries) }, entries)
}

func (a *App) handleGames(c echo.Context) error {
	games, err := catalog.LoadGames(a.Config.GamesFile)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, games)
}

func (a *App) handleRepos(c echo.Context) error {
	urls, err := catalog.LoadRepoURLs(a.Config.ReposFile)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, a.GitHub.Repos(c.Request().Context(), urls))
}

func (a *App) handleContributions(c echo.Context) error {
	years, err := a.GitHub.Contributions(c.Request().Context(), a.Config.GitHubUser, a.Config.StartYear, a.now().Year())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, years)
}

func (a *App) handleSitemap(c echo.Context) error {
	posts, err := a.Cache.ListPosts(c.Request().Context())
	if err != nil {
		return err
	}
	return a.renderSitemap(c, posts)
}

func (a *App) handleFeed(c echo.Context) error {
	posts, err := a.Cache.ListPosts(c.Request().Context())
	if err != nil {
		return err
	}
	return a.renderRSS(c, posts)
}

func (a *App) handleCodeCSS(c echo.Context) error {
	c.Response().Header().Set(echo.HeaderContentType, "text/css; charset=utf-8")
	c.Response().WriteHeader(http.StatusOK)
	if c.Request().Method == http.MethodHead {
		return nil
	}
	return markdown.WriteCodeCSS(c.Response(), a.Config.CodeStyle)
}

func (a *App) httpErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	if errors.Is(err, ErrNotFound) {
		err = echo.NewHTTPError(http.StatusNotFound, "not found")
	}
	code := http.StatusInternalServerError
	msg := "Error loading content. Please try again later."
	var he *echo.HTTPError
	if errors.As(err, &he) {
		code = he.Code
		if m, ok := he.Message.(string); ok {
			msg = m
		}
	}
	if code >= 500 {
		c.Logger().Errorf("server error: %v", err)
		msg = "Error loading content. Please try again later."
	}
	if c.Request().Method == http.MethodHead {
		_ = c.NoContent(code)
		return
	}
	_ = c.JSON(code, errorResponse{Error: msg})
}
