// Package views renders the HTML fragments the site swaps into its pages:
// the article with its outline, search results and taxonomy clouds.
package views

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/a-h/templ"

	"github.com/eringen/folio/content"
	"github.com/eringen/folio/search"
	"github.com/eringen/folio/taxonomy"
	"github.com/eringen/folio/toc"
)

const maxRelated = 3

func esc(s string) string {
	return templ.EscapeString(s)
}

func writeTerms(w *bufio.Writer, class, kind string, terms []string) {
	if len(terms) == 0 {
		return
	}
	fmt.Fprintf(w, `<ul class="%s">`, class)
	for _, t := range terms {
		fmt.Fprintf(w, `<li><a href="%s" hx-get="/api/taxonomy/%s?value=%s" hx-target="#posts">%s</a></li>`,
			esc(FilterHref(kind, t)), kind, esc(url.QueryEscape(t)), esc(t))
	}
	w.WriteString(`</ul>`)
}

// Post renders the article, its related posts and its table of contents.
func Post(cfg SiteConfig, v PostView) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, out io.Writer) error {
		w := bufio.NewWriter(out)
		p := v.Post
		fmt.Fprintf(w, `<article class="post" data-filename="%s"><header class="post-header">`, esc(p.Filename))
		fmt.Fprintf(w, `<h1 class="post-title">%s</h1>`, esc(p.Title))
		if d := FormatDate(p); d != "" {
			fmt.Fprintf(w, `<time class="post-date" datetime="%s">%s</time>`, p.Time().Format("2006-01-02"), esc(d))
		}
		writeTerms(w, "post-categories", "categories", p.Categories)
		writeTerms(w, "post-tags", "tags", p.Tags)
		w.WriteString(`</header><div class="post-content">`)
		w.Write(v.HTML)
		w.WriteString(`</div>`)

		if n := min(len(v.Related), maxRelated); n > 0 {
			w.WriteString(`<aside class="related-posts"><h2>Related posts</h2><ul>`)
			for _, r := range v.Related[:n] {
				fmt.Fprintf(w, `<li><a href="%s">%s</a></li>`, esc(PostHref(r.Filename)), esc(r.Title))
			}
			w.WriteString(`</ul></aside>`)
		}
		w.WriteString(`</article>`)

		if v.TOC != nil && !v.TOC.Root().Empty() {
			w.WriteString(`<nav class="toc" aria-label="Table of contents">`)
			if err := w.Flush(); err != nil {
				return err
			}
			if err := toc.Component(v.TOC).Render(ctx, out); err != nil {
				return err
			}
			w.WriteString(`</nav>`)
		}
		fmt.Fprintf(w, `<script type="application/ld+json">%s</script>`, BlogPostingJsonLD(cfg, p))
		return w.Flush()
	})
}

// SearchResults renders a ranked result list with highlighted matches.
func SearchResults(v SearchView) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, out io.Writer) error {
		w := bufio.NewWriter(out)
		switch {
		case !v.Ready && strings.TrimSpace(v.Query) != "":
			w.WriteString(`<p class="search-status">Loading search index...</p>`)
			return w.Flush()
		case len(v.Results) == 0:
			fmt.Fprintf(w, `<p class="search-status">No posts found for &quot;%s&quot;</p>`, esc(v.Query))
			return w.Flush()
		}
		fmt.Fprintf(w, `<p class="search-status">%d result(s)</p><ul class="search-results">`, len(v.Results))
		for _, r := range v.Results {
			fmt.Fprintf(w, `<li class="search-result"><a href="%s" class="search-result-title">%s</a>`,
				esc(PostHref(r.Post.Filename)), search.Highlight(r.Post.Title, v.Query))
			if d := FormatDate(r.Post); d != "" {
				fmt.Fprintf(w, `<time class="search-result-date">%s</time>`, esc(d))
			}
			if r.Post.Excerpt != "" {
				fmt.Fprintf(w, `<p class="search-result-excerpt">%s</p>`, search.Highlight(r.Post.Excerpt, v.Query))
			}
			if types := r.Match.Types(); len(types) > 0 {
				w.WriteString(`<div class="search-match-types">`)
				for _, t := range types {
					fmt.Fprintf(w, `<span class="search-match-type match-%s">%s</span>`, t, t)
				}
				w.WriteString(`</div>`)
			}
			w.WriteString(`</li>`)
		}
		w.WriteString(`</ul>`)
		return w.Flush()
	})
}

// TagCloud renders taxonomy entries sized by their font scale.
func TagCloud(kind taxonomy.Kind, entries []taxonomy.Entry) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, out io.Writer) error {
		w := bufio.NewWriter(out)
		fmt.Fprintf(w, `<div class="tag-cloud tag-cloud-%s">`, kind)
		for _, e := range entries {
			fmt.Fprintf(w, `<a class="tag-cloud-item" href="%s" style="font-size: %.2fem">%s <span class="tag-count">(%d)</span></a>`,
				esc(FilterHref(string(kind), e.Name)), e.FontScale, esc(e.Name), e.Count)
		}
		w.WriteString(`</div>`)
		return w.Flush()
	})
}

// PostList renders a list of post summaries.
func PostList(posts []content.Post) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, out io.Writer) error {
		w := bufio.NewWriter(out)
		w.WriteString(`<ul class="post-list">`)
		for _, p := range posts {
			fmt.Fprintf(w, `<li class="post-summary"><a href="%s">%s</a>`, esc(PostHref(p.Filename)), esc(p.Title))
			if d := FormatDate(p); d != "" {
				fmt.Fprintf(w, `<time>%s</time>`, esc(d))
			}
			if p.Excerpt != "" {
				fmt.Fprintf(w, `<p>%s</p>`, esc(p.Excerpt))
			}
			w.WriteString(`</li>`)
		}
		w.WriteString(`</ul>`)
		return w.Flush()
	})
}
