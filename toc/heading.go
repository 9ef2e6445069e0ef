// Package toc builds a table of contents from rendered post HTML and keeps
// the per-view collapse and scroll-spy state for it.
package toc

import (
	"bytes"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// MaxLevel is the deepest heading level included in the outline.
const MaxLevel = 4

// Heading is one h1-h4 element of rendered content.
type Heading struct {
	ID    string `json:"id"`
	Text  string `json:"text"`
	Level int    `json:"level"`
}

var (
	reSlugStrip = regexp.MustCompile(`[^\w\x{4e00}-\x{9fa5}\-\s]`)
	reSlugSpace = regexp.MustCompile(`\s+`)
)

// Slug derives an anchor id from heading text. Word characters, CJK
// ideographs and hyphens are kept; whitespace runs become a hyphen.
func Slug(text string) string {
	s := strings.ToLower(strings.TrimSpace(text))
	s = reSlugStrip.ReplaceAllString(s, "")
	return reSlugSpace.ReplaceAllString(s, "-")
}

// AssignIDs sets the ID of every heading from its text. Headings whose
// slug is empty become "section-<index>"; repeated ids get a numeric
// suffix starting at 1.
func AssignIDs(headings []Heading) []Heading {
	out := make([]Heading, len(headings))
	used := make(map[string]bool, len(headings))
	for i, h := range headings {
		base := Slug(h.Text)
		if base == "" {
			base = "section-" + strconv.Itoa(i)
		}
		id := base
		for n := 1; used[id]; n++ {
			id = base + "-" + strconv.Itoa(n)
		}
		used[id] = true
		h.ID = id
		out[i] = h
	}
	return out
}

func headingLevel(n *html.Node) int {
	if n.Type != html.ElementNode {
		return 0
	}
	switch n.DataAtom {
	case atom.H1:
		return 1
	case atom.H2:
		return 2
	case atom.H3:
		return 3
	case atom.H4:
		return 4
	}
	return 0
}

func textContent(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return strings.TrimSpace(b.String())
}

func parse(src []byte) ([]*html.Node, error) {
	ctx := &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
	nodes, err := html.ParseFragment(bytes.NewReader(src), ctx)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}
	return nodes, nil
}

func collect(nodes []*html.Node) []*html.Node {
	var found []*html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if headingLevel(n) > 0 {
			found = append(found, n)
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	for _, n := range nodes {
		walk(n)
	}
	return found
}

// ExtractHeadings returns the h1-h4 headings of an HTML fragment in
// document order, with ids assigned.
func ExtractHeadings(src []byte) ([]Heading, error) {
	nodes, err := parse(src)
	if err != nil {
		return nil, err
	}
	return headingsOf(collect(nodes)), nil
}

func headingsOf(elems []*html.Node) []Heading {
	headings := make([]Heading, len(elems))
	for i, el := range elems {
		headings[i] = Heading{Text: textContent(el), Level: headingLevel(el)}
	}
	return AssignIDs(headings)
}

// Annotate writes the assigned ids onto the headings of an HTML fragment,
// replacing any existing id, and returns the rewritten fragment together
// with the headings.
func Annotate(src []byte) ([]byte, []Heading, error) {
	nodes, err := parse(src)
	if err != nil {
		return nil, nil, err
	}
	elems := collect(nodes)
	headings := headingsOf(elems)
	for i, el := range elems {
		setAttr(el, "id", headings[i].ID)
	}

	var buf bytes.Buffer
	for _, n := range nodes {
		if err := html.Render(&buf, n); err != nil {
			return nil, nil, fmt.Errorf("render html: %w", err)
		}
	}
	return buf.Bytes(), headings, nil
}

func setAttr(n *html.Node, key, val string) {
	for i := range n.Attr {
		if n.Attr[i].Namespace == "" && n.Attr[i].Key == key {
			n.Attr[i].Val = val
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: key, Val: val})
}
