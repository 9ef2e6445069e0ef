package folio

import (
	"net/url"
	"path"
	"strings"

	"github.com/eringen/folio/content"
)

// BuildURL joins a base URL with path segments.
func BuildURL(base string, pathSegments ...string) string {
	u, err := url.Parse(base)
	if err != nil {
		return base
	}
	u.Path = path.Join(u.Path, path.Join(pathSegments...))
	if len(pathSegments) == 0 && u.Path == "" {
		u.Path = "/"
	}
	return u.String()
}

// PostURL is the canonical URL of a post.
func PostURL(base, filename string) string {
	return BuildURL(base, "blog", strings.TrimSuffix(filename, ".md"))
}

func normalizeTerm(t string) string {
	return strings.ToLower(strings.TrimSpace(t))
}

// FilterRelatedPosts finds posts that share at least one tag or category
// with current, in collection order.
func FilterRelatedPosts(current content.Post, posts []content.Post) []content.Post {
	terms := make(map[string]struct{})
	for _, t := range append(append([]string{}, current.Tags...), current.Categories...) {
		if term := normalizeTerm(t); term != "" {
			terms[term] = struct{}{}
		}
	}
	related := []content.Post{}
	if len(terms) == 0 {
		return related
	}
	for _, p := range posts {
		if p.Filename == current.Filename {
			continue
		}
		for _, t := range append(append([]string{}, p.Tags...), p.Categories...) {
			if _, ok := terms[normalizeTerm(t)]; ok {
				related = append(related, p)
				break
			}
		}
	}
	return related
}
