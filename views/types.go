package views

import (
	"github.com/eringen/folio/content"
	"github.com/eringen/folio/search"
	"github.com/eringen/folio/toc"
)

// SiteConfig holds the site-wide settings fragments need.
type SiteConfig struct {
	Name   string
	URL    string
	Author string
}

// PostView is everything the article fragment shows for one post.
type PostView struct {
	Post    content.Post
	HTML    []byte
	TOC     *toc.State
	Related []content.Post
}

// SearchView is one page of search results.
type SearchView struct {
	Query   string
	Filter  search.Filter
	Ready   bool
	Results []search.Result
}
