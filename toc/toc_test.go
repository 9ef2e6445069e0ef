package toc

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func headingsAt(levels ...int) []Heading {
	hs := make([]Heading, len(levels))
	for i, l := range levels {
		hs[i] = Heading{Text: "h" + string(rune('a'+i)), Level: l}
	}
	return AssignIDs(hs)
}

func TestSlug(t *testing.T) {
	tests := []struct {
		input, expected string
	}{
		{"Hello World", "hello-world"},
		{"  What's new?  ", "whats-new"},
		{"Go 1.22 release", "go-122-release"},
		{"中文 标题", "中文-标题"},
		{"snake_case-and-dash", "snake_case-and-dash"},
		{"!!!", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, Slug(tt.input), tt.input)
	}
}

func TestAssignIDs(t *testing.T) {
	got := AssignIDs([]Heading{
		{Text: "Foo", Level: 2},
		{Text: "Foo", Level: 2},
		{Text: "???", Level: 2},
		{Text: "Foo", Level: 3},
		{Text: "foo-1", Level: 3},
	})
	ids := make([]string, len(got))
	for i, h := range got {
		ids[i] = h.ID
	}
	assert.Equal(t, []string{"foo", "foo-1", "section-2", "foo-2", "foo-1-1"}, ids)
}

func TestBuildShape(t *testing.T) {
	root := Build(headingsAt(1, 2, 2, 3, 1))
	require.Len(t, root.Children, 2)
	assert.Equal(t, 0, root.Level)

	first := root.Children[0]
	require.Len(t, first.Children, 2)
	assert.Equal(t, 2, first.Children[0].Level)
	require.Len(t, first.Children[1].Children, 1)
	assert.Equal(t, 3, first.Children[1].Children[0].Level)
	assert.Empty(t, first.Children[0].Children)
	assert.Empty(t, root.Children[1].Children)
}

func TestBuildChildrenAreDeeper(t *testing.T) {
	root := Build(headingsAt(2, 4, 3, 1, 3, 2, 4))
	root.Walk(func(n, p *Node) {
		assert.Greater(t, n.Level, p.Level, n.ID)
	})
}

func TestBuildSkipsOutOfRangeLevels(t *testing.T) {
	root := Build([]Heading{{ID: "a", Level: 5}, {ID: "b", Level: 0}, {ID: "c", Level: 2}})
	require.Len(t, root.Children, 1)
	assert.Equal(t, "c", root.Children[0].ID)
}

func TestDefaultCollapse(t *testing.T) {
	// a(1) > b(2) > c(3) > d(4); e(3) has no children
	root := Build(headingsAt(1, 2, 3, 4, 3))
	s := NewState(root)
	assert.False(t, s.Collapsed("ha"))
	assert.False(t, s.Collapsed("hb"))
	assert.True(t, s.Collapsed("hc"))
	assert.False(t, s.Collapsed("hd"))
	assert.False(t, s.Collapsed("he"))
}

func TestToggle(t *testing.T) {
	s := NewState(Build(headingsAt(1, 2)))
	assert.True(t, s.Toggle("ha"))
	assert.True(t, s.Collapsed("ha"))
	assert.False(t, s.Toggle("ha"))
	assert.False(t, s.Toggle("hb"), "leaf cannot collapse")
	assert.False(t, s.Toggle("missing"))
}

func TestActivateExpandsAncestorsOnly(t *testing.T) {
	// a(1) > b(3) > c(4) ; a > d(3) > e(4)
	root := Build(headingsAt(1, 3, 4, 3, 4))
	s := NewState(root)
	require.True(t, s.Collapsed("hb"))
	require.True(t, s.Collapsed("hd"))

	require.True(t, s.Activate("hc"))
	assert.Equal(t, "hc", s.Active())
	assert.False(t, s.Collapsed("hb"))
	assert.True(t, s.Collapsed("hd"), "sibling subtree keeps its state")
	assert.Equal(t, []string{"hb", "ha"}, s.Ancestors("hc"))

	assert.False(t, s.Activate("nope"))
	assert.Equal(t, "hc", s.Active())
}

func TestSpySelect(t *testing.T) {
	spy := DefaultSpy()
	obs := []Observation{
		{ID: "below", Top: 500, Bottom: 540},
		{ID: "second", Top: 120, Bottom: 160},
		{ID: "first", Top: 40, Bottom: 80},
		{ID: "above", Top: -200, Bottom: -160},
	}
	assert.Equal(t, "first", spy.Select(obs, 1000))
	assert.Equal(t, "", spy.Select(obs[:1], 1000))
	assert.Equal(t, "", spy.Select(nil, 1000))
}

func TestObserve(t *testing.T) {
	root := Build(headingsAt(1, 2, 3, 4))
	s := NewState(root)
	spy := DefaultSpy()

	active := s.Observe(spy, []Observation{{ID: "hd", Top: 10, Bottom: 30}}, 800)
	assert.Equal(t, "hd", active)
	assert.False(t, s.Collapsed("hc"))

	active = s.Observe(spy, []Observation{{ID: "hd", Top: 700, Bottom: 730}}, 800)
	assert.Equal(t, "", active)
}

func TestAnnotate(t *testing.T) {
	src := []byte(`<h1 id="old">Intro</h1><p>text</p><h2>Intro</h2><div><h3>Deep <em>dive</em></h3></div><h5>skip</h5>`)
	out, headings, err := Annotate(src)
	require.NoError(t, err)
	assert.Equal(t, []Heading{
		{ID: "intro", Text: "Intro", Level: 1},
		{ID: "intro-1", Text: "Intro", Level: 2},
		{ID: "deep-dive", Text: "Deep dive", Level: 3},
	}, headings)

	html := string(out)
	assert.Contains(t, html, `<h1 id="intro">Intro</h1>`)
	assert.Contains(t, html, `<h2 id="intro-1">`)
	assert.Contains(t, html, `<h3 id="deep-dive">Deep <em>dive</em></h3>`)
	assert.NotContains(t, html, `id="old"`)
	assert.Contains(t, html, `<h5>skip</h5>`)
}

func TestExtractHeadings(t *testing.T) {
	headings, err := ExtractHeadings([]byte("<p>no headings</p>"))
	require.NoError(t, err)
	assert.Empty(t, headings)
}

func TestComponent(t *testing.T) {
	root := Build(AssignIDs([]Heading{
		{Text: "A & B", Level: 1},
		{Text: "Child", Level: 3},
		{Text: "Grandchild", Level: 4},
	}))
	s := NewState(root)

	var buf bytes.Buffer
	require.NoError(t, Component(s).Render(context.Background(), &buf))
	out := buf.String()
	assert.True(t, strings.HasPrefix(out, `<ul class="toc-root">`))
	assert.Contains(t, out, `A &amp; B`)
	assert.Contains(t, out, `<li class="toc-item has-children collapsed">`)
	assert.Contains(t, out, `href="#child"`)

	s.Activate("grandchild")
	buf.Reset()
	require.NoError(t, Component(s).Render(context.Background(), &buf))
	assert.Contains(t, buf.String(), `class="toc-link toc-level-4 active"`)
	assert.NotContains(t, buf.String(), "collapsed")
}

func TestComponentEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Component(NewState(Build(nil))).Render(context.Background(), &buf))
	assert.Empty(t, buf.String())
}
