// Package content loads the post collection and individual post bodies
// from a directory or an HTTP origin, and generates the posts index.
package content

import (
	"errors"
	"regexp"
	"slices"
	"strings"
	"time"

	"github.com/araddon/dateparse"

	"github.com/eringen/folio/frontmatter"
)

// IndexFile is the name of the generated collection index.
const IndexFile = "posts-index.json"

// ExcerptLength is the number of characters kept by Excerpt.
const ExcerptLength = 150

// ErrNotFound is returned when a requested post or the index does not exist.
var ErrNotFound = errors.New("content: not found")

// Post is one entry of the posts index.
type Post struct {
	Filename   string   `json:"filename"`
	Title      string   `json:"title"`
	Date       string   `json:"date"`
	Excerpt    string   `json:"excerpt"`
	Categories []string `json:"categories"`
	Tags       []string `json:"tags"`
}

// Time parses Date. A missing or unparseable date yields the zero time,
// which sorts after every dated post.
func (p Post) Time() time.Time {
	if strings.TrimSpace(p.Date) == "" {
		return time.Time{}
	}
	t, err := dateparse.ParseIn(p.Date, time.UTC)
	if err != nil {
		return time.Time{}
	}
	return t
}

// Normalize fills the title from the filename and replaces nil taxonomy
// slices with empty ones.
func (p *Post) Normalize() {
	if p.Title == "" {
		p.Title = strings.TrimSuffix(p.Filename, ".md")
	}
	if p.Categories == nil {
		p.Categories = []string{}
	}
	if p.Tags == nil {
		p.Tags = []string{}
	}
}

// SortByDate orders posts newest first. Posts without a usable date go
// last and keep their relative order.
func SortByDate(posts []Post) {
	times := make(map[string]time.Time, len(posts))
	for _, p := range posts {
		times[p.Filename] = p.Time()
	}
	slices.SortStableFunc(posts, func(a, b Post) int {
		return times[b.Filename].Compare(times[a.Filename])
	})
}

// BuildPost derives an index entry from a raw Markdown file.
func BuildPost(filename, raw string) Post {
	doc := frontmatter.Parse(raw)
	md := doc.Metadata
	p := Post{
		Filename:   filename,
		Title:      md.String("title"),
		Date:       md.String("date"),
		Excerpt:    md.String("excerpt"),
		Categories: md.List("categories"),
		Tags:       md.List("tags"),
	}
	if p.Excerpt == "" {
		p.Excerpt = Excerpt(doc.Content)
	}
	p.Normalize()
	return p
}

var (
	reExcerptHeading = regexp.MustCompile(`#+\s`)
	reExcerptLink    = regexp.MustCompile(`\[([^\]]+)\]\([^)]+\)`)
)

// Excerpt strips common Markdown syntax from body and truncates it to
// ExcerptLength characters, appending "..." when truncated.
func Excerpt(body string) string {
	s := reExcerptHeading.ReplaceAllString(body, "")
	s = strings.ReplaceAll(s, "**", "")
	s = strings.ReplaceAll(s, "*", "")
	s = reExcerptLink.ReplaceAllString(s, "$1")
	s = strings.ReplaceAll(s, "`", "")
	s = strings.TrimSpace(s)

	r := []rune(s)
	if len(r) > ExcerptLength {
		return string(r[:ExcerptLength]) + "..."
	}
	return s
}
