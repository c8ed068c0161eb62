// Package render turns rewritten document text into HTML or terminal-ready
// markdown.
package render

import (
	"bytes"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/text"

	"github.com/semtext/semtext/internal/slugs"
	"github.com/semtext/semtext/internal/wikilink"
)

// Options controls how plain wiki links become hrefs.
type Options struct {
	// BaseURL is prefixed to every page href.
	BaseURL string
	// Extension is appended to every page href, e.g. ".html".
	Extension string
}

// Renderer renders rewritten text. It is safe for concurrent use.
type Renderer struct {
	md   goldmark.Markdown
	opts Options
}

// New returns a renderer with GitHub flavored markdown enabled. Raw HTML is
// passed through so inline error markers survive.
func New(opts Options) *Renderer {
	return &Renderer{
		md: goldmark.New(
			goldmark.WithExtensions(extension.GFM),
			goldmark.WithParserOptions(parser.WithAutoHeadingID()),
			goldmark.WithRendererOptions(html.WithUnsafe()),
		),
		opts: opts,
	}
}

// Href returns the link for a page and optional fragment.
func (r *Renderer) Href(target, fragment string) string {
	href := ""
	if target != "" {
		href = r.opts.BaseURL + slugs.TitleSlug(target) + r.opts.Extension
	}
	if fragment != "" {
		href += "#" + slugs.AnchorSlug(fragment)
	}
	return href
}

// Markdown replaces plain wiki links with markdown links.
func (r *Renderer) Markdown(src string) string {
	matches := wikilink.FindAll(src)
	if len(matches) == 0 {
		return src
	}
	var b strings.Builder
	last := 0
	for _, m := range matches {
		b.WriteString(src[last:m.Start])
		b.WriteString("[")
		b.WriteString(m.Text())
		b.WriteString("](")
		b.WriteString(r.Href(m.Target, m.Fragment))
		b.WriteString(")")
		last = m.End
	}
	b.WriteString(src[last:])
	return b.String()
}

// HTML renders src to an HTML fragment.
func (r *Renderer) HTML(src string) (string, error) {
	var buf bytes.Buffer
	if err := r.md.Convert([]byte(r.Markdown(src)), &buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// Heading is a section heading of a document.
type Heading struct {
	Level  int    `json:"level"`
	Text   string `json:"text"`
	Anchor string `json:"anchor"`
}

// Headings lists the headings of src in document order.
func (r *Renderer) Headings(src string) []Heading {
	source := []byte(src)
	doc := r.md.Parser().Parse(text.NewReader(source))

	var headings []Heading
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		h, ok := n.(*ast.Heading)
		if !entering || !ok {
			return ast.WalkContinue, nil
		}
		var sb strings.Builder
		for c := h.FirstChild(); c != nil; c = c.NextSibling() {
			if t, ok := c.(*ast.Text); ok {
				sb.Write(t.Segment.Value(source))
			}
		}
		title := strings.TrimSpace(sb.String())
		if title != "" {
			headings = append(headings, Heading{Level: h.Level, Text: title, Anchor: slugs.AnchorSlug(title)})
		}
		return ast.WalkSkipChildren, nil
	})
	return headings
}
