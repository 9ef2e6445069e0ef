package toc

import (
	"context"
	"io"
	"strconv"
	"strings"

	"github.com/a-h/templ"
)

// Component renders the outline held by s as nested lists.
func Component(s *State) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if s == nil || s.root.Empty() {
			return nil
		}
		var b strings.Builder
		writeNodes(&b, s, s.root.Children, true)
		_, err := io.WriteString(w, b.String())
		return err
	})
}

func writeNodes(b *strings.Builder, s *State, nodes []*Node, root bool) {
	if root {
		b.WriteString(`<ul class="toc-root">`)
	} else {
		b.WriteString(`<ul class="toc-children">`)
	}
	for _, n := range nodes {
		class := "toc-item"
		if len(n.Children) > 0 {
			class += " has-children"
			if s.Collapsed(n.ID) {
				class += " collapsed"
			}
		}
		b.WriteString(`<li class="` + class + `"><div class="toc-row">`)
		if len(n.Children) > 0 {
			expanded := strconv.FormatBool(!s.Collapsed(n.ID))
			b.WriteString(`<span class="toc-toggle" role="button" tabindex="0" aria-expanded="` + expanded + `"></span>`)
		} else {
			b.WriteString(`<span class="toc-toggle" style="visibility:hidden"></span>`)
		}
		link := "toc-link toc-level-" + strconv.Itoa(n.Level)
		if s.Active() == n.ID {
			link += " active"
		}
		b.WriteString(`<a class="` + link + `" href="#` + templ.EscapeString(n.ID) + `">`)
		b.WriteString(templ.EscapeString(n.Text))
		b.WriteString(`</a></div>`)
		if len(n.Children) > 0 {
			writeNodes(b, s, n.Children, false)
		}
		b.WriteString(`</li>`)
	}
	b.WriteString(`</ul>`)
}
