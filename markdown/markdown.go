// Package markdown renders post Markdown to sanitised HTML and exposes it as
// a templ component.
package markdown

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/url"
	"regexp"
	"strings"

	"github.com/a-h/templ"
	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/styles"
	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"
	highlighting "github.com/yuin/goldmark-highlighting/v2"
)

// DefaultImageBase is prepended to relative image paths.
const DefaultImageBase = "/posts/"

// Renderer converts Markdown to HTML. It is safe for concurrent use.
type Renderer struct {
	md        goldmark.Markdown
	policy    *bluemonday.Policy
	rawHTML   bool
	imageBase string
	codeStyle string
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithRawHTML passes HTML embedded in the Markdown through to the output.
// It is still sanitised.
func WithRawHTML() Option {
	return func(r *Renderer) {
		r.rawHTML = true
	}
}

// WithImageBase sets the prefix for relative image paths.
func WithImageBase(base string) Option {
	return func(r *Renderer) {
		r.imageBase = base
	}
}

// WithCodeStyle highlights fenced code blocks on the server using the named
// chroma style. Tokens carry CSS classes; see WriteCodeCSS. Without it, code
// blocks keep only their language-* class.
func WithCodeStyle(style string) Option {
	return func(r *Renderer) {
		r.codeStyle = style
	}
}

// New returns a Renderer with GFM and hard line breaks enabled.
func New(opts ...Option) *Renderer {
	r := &Renderer{imageBase: DefaultImageBase}
	for _, opt := range opts {
		opt(r)
	}

	rendererOpts := []renderer.Option{html.WithHardWraps(), html.WithXHTML()}
	if r.rawHTML {
		rendererOpts = append(rendererOpts, html.WithUnsafe())
	}
	extensions := []goldmark.Extender{extension.GFM}
	if r.codeStyle != "" {
		extensions = append(extensions, highlighting.NewHighlighting(
			highlighting.WithStyle(r.codeStyle),
			highlighting.WithFormatOptions(chromahtml.WithClasses(true), chromahtml.TabWidth(4)),
		))
	}
	r.md = goldmark.New(
		goldmark.WithExtensions(extensions...),
		goldmark.WithParserOptions(
			parser.WithASTTransformers(util.Prioritized(&linkTransformer{imageBase: r.imageBase}, 100)),
		),
		goldmark.WithRendererOptions(rendererOpts...),
	)
	r.policy = newPolicy()
	return r
}

func newPolicy() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()
	p.AllowAttrs("class").Matching(regexp.MustCompile(`^language-[\w+#-]+$`)).OnElements("code")
	p.AllowAttrs("class").Matching(regexp.MustCompile(`^[\w -]+$`)).OnElements("pre", "span")
	p.AllowAttrs("type", "checked", "disabled").OnElements("input")
	p.AllowURLSchemes("tel")
	p.AddTargetBlankToFullyQualifiedLinks(true)
	return p
}

// Render converts src to sanitised HTML.
func (r *Renderer) Render(src []byte) ([]byte, error) {
	var buf bytes.Buffer
	if err := r.md.Convert(src, &buf); err != nil {
		return nil, fmt.Errorf("render markdown: %w", err)
	}
	return r.policy.SanitizeBytes(buf.Bytes()), nil
}

// Component returns a templ.Component that renders content as HTML.
func (r *Renderer) Component(content string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		out, err := r.Render([]byte(content))
		if err != nil {
			return err
		}
		_, err = w.Write(out)
		return err
	})
}

// WriteCodeCSS writes the stylesheet for the classes emitted with
// WithCodeStyle. Unknown style names fall back to chroma's default.
func WriteCodeCSS(w io.Writer, style string) error {
	return chromahtml.New(chromahtml.WithClasses(true)).WriteCSS(w, styles.Get(style))
}

var defaultRenderer = New()

// Markdown returns a templ.Component that renders content with the default
// renderer.
func Markdown(content string) templ.Component {
	return defaultRenderer.Component(content)
}

// linkTransformer rewrites relative image paths and unwraps links whose
// destination is not a safe URL, keeping their text.
type linkTransformer struct {
	imageBase string
}

func (t *linkTransformer) Transform(doc *ast.Document, _ text.Reader, _ parser.Context) {
	var unsafe []*ast.Link
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch v := n.(type) {
		case *ast.Image:
			v.Destination = []byte(ResolveImage(string(v.Destination), t.imageBase))
		case *ast.Link:
			if SafeURL(string(v.Destination)) == "" {
				unsafe = append(unsafe, v)
			}
		}
		return ast.WalkContinue, nil
	})

	for _, l := range unsafe {
		parent := l.Parent()
		for c := l.FirstChild(); c != nil; {
			next := c.NextSibling()
			parent.InsertBefore(parent, l, c)
			c = next
		}
		parent.RemoveChild(parent, l)
	}
}

// ResolveImage prefixes base to image paths that are neither absolute URLs
// nor rooted at "/".
func ResolveImage(dest, base string) string {
	if dest == "" ||
		strings.HasPrefix(dest, "http://") ||
		strings.HasPrefix(dest, "https://") ||
		strings.HasPrefix(dest, "/") {
		return dest
	}
	return base + strings.TrimPrefix(dest, "./")
}

// SafeURL returns raw trimmed if it is a relative reference, a fragment, or
// an http, https, mailto or tel URL. Anything else yields "".
func SafeURL(raw string) string {
	val := strings.TrimSpace(raw)
	if val == "" {
		return ""
	}
	if strings.HasPrefix(val, "/") || strings.HasPrefix(val, "#") {
		return val
	}
	parsed, err := url.Parse(val)
	if err != nil {
		return ""
	}
	switch strings.ToLower(parsed.Scheme) {
	case "":
		return val
	case "http", "https", "mailto", "tel":
		return val
	default:
		return ""
	}
}
