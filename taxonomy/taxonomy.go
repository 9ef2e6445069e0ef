// Package taxonomy aggregates tag and category counts for cloud views and
// filters posts by a selected value.
package taxonomy

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	"github.com/eringen/folio/content"
)

// Kind selects which post field is aggregated.
type Kind string

const (
	Categories Kind = "categories"
	Tags       Kind = "tags"
)

// ParseKind accepts singular and plural forms.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "categories", "category":
		return Categories, nil
	case "tags", "tag":
		return Tags, nil
	}
	return "", fmt.Errorf("unknown taxonomy %q", s)
}

func (k Kind) values(p content.Post) []string {
	if k == Tags {
		return p.Tags
	}
	return p.Categories
}

// Entry is one value in a taxonomy cloud.
type Entry struct {
	Name      string  `json:"name"`
	Count     int     `json:"count"`
	FontScale float64 `json:"fontScale"`
}

// Count tallies every occurrence of kind across posts. Entries are sorted
// by count, highest first; equal counts keep first-seen order.
func Count(posts []content.Post, kind Kind) []Entry {
	index := map[string]int{}
	entries := []Entry{}
	for _, p := range posts {
		for _, v := range kind.values(p) {
			i, ok := index[v]
			if !ok {
				i = len(entries)
				index[v] = i
				entries = append(entries, Entry{Name: v})
			}
			entries[i].Count++
		}
	}
	if len(entries) == 0 {
		return entries
	}

	slices.SortStableFunc(entries, func(a, b Entry) int {
		return cmp.Compare(b.Count, a.Count)
	})

	lo, hi := entries[len(entries)-1].Count, entries[0].Count
	for i := range entries {
		entries[i].FontScale = FontScale(entries[i].Count, lo, hi)
	}
	return entries
}

// FontScale maps count linearly from [lo, hi] onto [1, 2] em. When every
// count is equal it returns 1.2.
func FontScale(count, lo, hi int) float64 {
	if hi == lo {
		return 1.2
	}
	return 1 + float64(count-lo)/float64(hi-lo)
}

// Filter returns the posts whose kind field contains value exactly.
func Filter(posts []content.Post, kind Kind, value string) []content.Post {
	out := []content.Post{}
	for _, p := range posts {
		if slices.Contains(kind.values(p), value) {
			out = append(out, p)
		}
	}
	return out
}
