// Package search keeps the plain-text bodies of a post collection in memory
// and ranks free-text queries against them.
//
// An Index moves from Unloaded to Loading when Load is called and to Ready
// once every body fetch has settled. A failed fetch leaves that post with
// an empty body. Searching an index that is not Ready returns no results.
package search

import (
	"cmp"
	"context"
	"errors"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/labstack/gommon/log"
	"golang.org/x/sync/errgroup"
	"golang.org/x/text/cases"

	"github.com/eringen/folio/content"
)

// Relevance weights.
const (
	TitleScore        = 100
	ExactTitleBonus   = 50
	TagScore          = 30
	ExactTagBonus     = 20
	CategoryScore     = 25
	ExcerptScore      = 15
	ContentScore      = 10
	RecentScore       = 5
	RecentWindow      = 30 * 24 * time.Hour
	MinSuggestLength  = 2
	MaxSuggestions    = 8
	defaultConcurrent = 8
)

// ErrSuperseded is returned by Load when a newer Load or Close replaced it
// before it finished.
var ErrSuperseded = errors.New("search: load superseded")

// State is the load state of an Index.
type State int

const (
	Unloaded State = iota
	Loading
	Ready
)

func (s State) String() string {
	switch s {
	case Loading:
		return "loading"
	case Ready:
		return "ready"
	default:
		return "unloaded"
	}
}

// Logger receives warnings about failed body fetches.
type Logger interface {
	Warnf(format string, args ...interface{})
}

// FetchFunc returns the raw Markdown of a post.
type FetchFunc func(ctx context.Context, filename string) (string, error)

// Index is the in-memory search index for one post collection.
type Index struct {
	mu         sync.RWMutex
	state      State
	gen        uint64
	posts      []content.Post
	bodies     map[string]string
	logger     Logger
	concurrent int
}

// Option configures an Index.
type Option func(*Index)

// WithLogger sets the logger used for fetch warnings. A nil logger keeps
// the default.
func WithLogger(l Logger) Option {
	return func(ix *Index) {
		if l != nil {
			ix.logger = l
		}
	}
}

// WithConcurrency limits the number of body fetches in flight.
func WithConcurrency(n int) Option {
	return func(ix *Index) {
		if n > 0 {
			ix.concurrent = n
		}
	}
}

// New returns an empty, Unloaded index.
func New(opts ...Option) *Index {
	ix := &Index{
		logger:     log.New("search"),
		concurrent: defaultConcurrent,
	}
	for _, opt := range opts {
		opt(ix)
	}
	return ix
}

// State returns the current load state.
func (ix *Index) State() State {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return ix.state
}

// Posts returns the collection the index was loaded with.
func (ix *Index) Posts() []content.Post {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return ix.posts
}

// Load replaces the collection and fetches every body concurrently. It
// blocks until all fetches have settled. If ctx is cancelled, or another
// Load or Close happens first, the fetched bodies are discarded.
func (ix *Index) Load(ctx context.Context, posts []content.Post, fetch FetchFunc) error {
	posts = slices.Clone(posts)

	ix.mu.Lock()
	ix.gen++
	gen := ix.gen
	ix.state = Loading
	ix.posts = posts
	ix.bodies = nil
	ix.mu.Unlock()

	texts := make([]string, len(posts))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(ix.concurrent)
	for i, p := range posts {
		g.Go(func() error {
			raw, err := fetch(gctx, p.Filename)
			if err != nil {
				if gctx.Err() == nil {
					ix.logger.Warnf("search: cannot load %s: %v", p.Filename, err)
				}
				return nil
			}
			texts[i] = ExtractText(raw)
			return nil
		})
	}
	_ = g.Wait()

	ix.mu.Lock()
	defer ix.mu.Unlock()
	if ix.gen != gen {
		return ErrSuperseded
	}
	if err := ctx.Err(); err != nil {
		ix.state = Unloaded
		ix.posts = nil
		return err
	}
	bodies := make(map[string]string, len(posts))
	for i, p := range posts {
		bodies[p.Filename] = texts[i]
	}
	ix.bodies = bodies
	ix.state = Ready
	return nil
}

// Close drops the loaded data. A Load still in progress will discard its
// results.
func (ix *Index) Close() {
	ix.mu.Lock()
	ix.gen++
	ix.state = Unloaded
	ix.posts = nil
	ix.bodies = nil
	ix.mu.Unlock()
}

// Filter restricts which fields a query is matched against.
type Filter string

const (
	All      Filter = "all"
	Title    Filter = "title"
	Content  Filter = "content"
	Tag      Filter = "tag"
	Category Filter = "category"
)

// ParseFilter converts a query parameter to a Filter. Empty means All.
func ParseFilter(s string) (Filter, bool) {
	switch f := Filter(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return All, true
	case All, Title, Content, Tag, Category:
		return f, true
	}
	return All, false
}

func (f Filter) allows(field Filter) bool {
	return f == All || f == field
}

// Match records which fields of a post matched a query.
type Match struct {
	Title      bool     `json:"title"`
	Excerpt    bool     `json:"excerpt"`
	Content    bool     `json:"content"`
	Tags       []string `json:"tags"`
	Categories []string `json:"categories"`
}

// Any reports whether at least one field matched.
func (m Match) Any() bool {
	return m.Title || m.Excerpt || m.Content || len(m.Tags) > 0 || len(m.Categories) > 0
}

// Types lists the matched field kinds in display order.
func (m Match) Types() []string {
	var types []string
	if m.Title {
		types = append(types, "title")
	}
	if m.Content {
		types = append(types, "content")
	}
	if len(m.Tags) > 0 {
		types = append(types, "tag")
	}
	if len(m.Categories) > 0 {
		types = append(types, "category")
	}
	if m.Excerpt {
		types = append(types, "excerpt")
	}
	return types
}

// Result is one ranked post.
type Result struct {
	Post  content.Post `json:"post"`
	Match Match        `json:"match"`
	Score int          `json:"score"`
}

// Search ranks the collection against query. An empty query returns every
// known post unscored, in collection order.
func (ix *Index) Search(query string, filter Filter, now time.Time) []Result {
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	query = strings.TrimSpace(query)
	if query == "" {
		results := make([]Result, 0, len(ix.posts))
		for _, p := range ix.posts {
			results = append(results, Result{Post: p})
		}
		return results
	}
	if ix.state != Ready {
		return []Result{}
	}

	fold := cases.Fold()
	q := fold.String(query)
	contains := func(s string) bool {
		return strings.Contains(fold.String(s), q)
	}

	results := []Result{}
	for _, p := range ix.posts {
		m := Match{Tags: []string{}, Categories: []string{}}
		if filter.allows(Title) && contains(p.Title) {
			m.Title = true
		}
		if filter.allows(Content) {
			m.Excerpt = p.Excerpt != "" && contains(p.Excerpt)
			m.Content = contains(ix.bodies[p.Filename])
		}
		if filter.allows(Tag) {
			for _, t := range p.Tags {
				if contains(t) {
					m.Tags = append(m.Tags, t)
				}
			}
		}
		if filter.allows(Category) {
			for _, c := range p.Categories {
				if contains(c) {
					m.Categories = append(m.Categories, c)
				}
			}
		}
		if !m.Any() {
			continue
		}
		results = append(results, Result{
			Post:  p,
			Match: m,
			Score: score(p, m, q, fold, now),
		})
	}

	slices.SortStableFunc(results, func(a, b Result) int {
		return cmp.Compare(b.Score, a.Score)
	})
	return results
}

func score(p content.Post, m Match, q string, fold cases.Caser, now time.Time) int {
	s := 0
	if m.Title {
		s += TitleScore
		if fold.String(p.Title) == q {
			s += ExactTitleBonus
		}
	}
	for _, t := range m.Tags {
		s += TagScore
		if fold.String(t) == q {
			s += ExactTagBonus
		}
	}
	s += len(m.Categories) * CategoryScore
	if m.Excerpt {
		s += ExcerptScore
	}
	if m.Content {
		s += ContentScore
	}
	if t := p.Time(); !t.IsZero() && now.Sub(t) < RecentWindow {
		s += RecentScore
	}
	return s
}

// SuggestionType is the origin of a suggestion.
type SuggestionType string

const (
	PostSuggestion     SuggestionType = "post"
	TagSuggestion      SuggestionType = "tag"
	CategorySuggestion SuggestionType = "category"
)

// Suggestion is one completion for a partial query.
type Suggestion struct {
	Type  SuggestionType `json:"type"`
	Value string         `json:"value"`
}

// Filter returns the filter to activate when the suggestion is chosen.
func (s Suggestion) Filter() Filter {
	switch s.Type {
	case TagSuggestion:
		return Tag
	case CategorySuggestion:
		return Category
	}
	return All
}

// Suggest returns up to MaxSuggestions titles, tags and categories that
// contain query. Exact matches come first, then shorter values.
func (ix *Index) Suggest(query string) []Suggestion {
	query = strings.TrimSpace(query)
	if len([]rune(query)) < MinSuggestLength {
		return []Suggestion{}
	}

	ix.mu.RLock()
	posts := ix.posts
	ix.mu.RUnlock()

	fold := cases.Fold()
	q := fold.String(query)
	contains := func(s string) bool {
		return strings.Contains(fold.String(s), q)
	}

	out := []Suggestion{}
	for _, p := range posts {
		if contains(p.Title) {
			out = append(out, Suggestion{Type: PostSuggestion, Value: p.Title})
		}
	}
	seenTags := map[string]bool{}
	for _, p := range posts {
		for _, t := range p.Tags {
			if !seenTags[t] && contains(t) {
				seenTags[t] = true
				out = append(out, Suggestion{Type: TagSuggestion, Value: t})
			}
		}
	}
	seenCats := map[string]bool{}
	for _, p := range posts {
		for _, c := range p.Categories {
			if !seenCats[c] && contains(c) {
				seenCats[c] = true
				out = append(out, Suggestion{Type: CategorySuggestion, Value: c})
			}
		}
	}

	exact := func(s Suggestion) bool { return fold.String(s.Value) == q }
	slices.SortStableFunc(out, func(a, b Suggestion) int {
		ae, be := exact(a), exact(b)
		switch {
		case ae && !be:
			return -1
		case be && !ae:
			return 1
		}
		return cmp.Compare(len([]rune(a.Value)), len([]rune(b.Value)))
	})
	if len(out) > MaxSuggestions {
		out = out[:MaxSuggestions]
	}
	return out
}
