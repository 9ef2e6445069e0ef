package search

import (
	"html"
	"regexp"
	"strings"
)

// The order matters: images must go before links so alt text is not kept.
var stripRules = []struct {
	re   *regexp.Regexp
	repl string
}{
	{regexp.MustCompile("(?s)```.*?```"), ""},
	{regexp.MustCompile("`[^`]+`"), ""},
	{regexp.MustCompile(`!\[.*?\]\(.*?\)`), ""},
	{regexp.MustCompile(`\[([^\]]+)\]\([^)]+\)`), "$1"},
	{regexp.MustCompile(`#{1,6}\s`), ""},
	{regexp.MustCompile(`\*\*(.*?)\*\*`), "$1"},
	{regexp.MustCompile(`\*(.*?)\*`), "$1"},
	{regexp.MustCompile(`(?m)^\s*[-*+]\s`), ""},
	{regexp.MustCompile(`(?m)^\s*\d+\.\s`), ""},
	{regexp.MustCompile(`(?m)^\s*>\s`), ""},
	{regexp.MustCompile(`\n{2,}`), "\n"},
}

var reLeadingFrontMatter = regexp.MustCompile(`(?s)\A---.*?---\n`)

// ExtractText reduces a Markdown document to searchable plain text.
func ExtractText(markdown string) string {
	s := reLeadingFrontMatter.ReplaceAllString(markdown, "")
	for _, r := range stripRules {
		s = r.re.ReplaceAllString(s, r.repl)
	}
	return strings.TrimSpace(s)
}

// Highlight HTML-escapes text and wraps every case-insensitive occurrence
// of query in a search-highlight span.
func Highlight(text, query string) string {
	if query == "" || text == "" {
		return html.EscapeString(text)
	}
	re, err := regexp.Compile(`(?i)` + regexp.QuoteMeta(query))
	if err != nil {
		return html.EscapeString(text)
	}
	var b strings.Builder
	last := 0
	for _, loc := range re.FindAllStringIndex(text, -1) {
		b.WriteString(html.EscapeString(text[last:loc[0]]))
		b.WriteString(`<span class="search-highlight">`)
		b.WriteString(html.EscapeString(text[loc[0]:loc[1]]))
		b.WriteString(`</span>`)
		last = loc[1]
	}
	b.WriteString(html.EscapeString(text[last:]))
	return b.String()
}
