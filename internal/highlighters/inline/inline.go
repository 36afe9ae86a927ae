// Package inline renders plain text as HTML with keyword markers.
package inline

import (
	"context"
	"fmt"
	"html"
	"strings"
	"unicode/utf8"

	"github.com/custodia-labs/sercha-view/internal/core/domain"
	"github.com/custodia-labs/sercha-view/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-view/internal/highlighters/match"
	"github.com/custodia-labs/sercha-view/internal/highlighters/palette"
)

// HTMLContentType is the MIME type of rendered documents.
const HTMLContentType = "text/html; charset=utf-8"

// Highlight escapes text for HTML and wraps every keyword occurrence in a
// colored mark element. Empty text yields the empty string.
func Highlight(text string, as palette.Assignment) string {
	if text == "" {
		return ""
	}
	var b strings.Builder
	b.Grow(len(text) + 64)
	for _, seg := range match.Split(text, as) {
		if !seg.Matched {
			b.WriteString(html.EscapeString(seg.Text))
			continue
		}
		fmt.Fprintf(&b, `<mark class="hl" data-keyword="%s" style="background-color:%s">%s</mark>`,
			html.EscapeString(seg.Keyword), seg.Color.CSS(), html.EscapeString(seg.Text))
	}
	return b.String()
}

// Ensure Highlighter implements the interface.
var _ driven.SnippetHighlighter = (*Highlighter)(nil)

// Highlighter highlights text snippets for a raw query.
type Highlighter struct {
	alloc *palette.Allocator
}

// New creates a Highlighter using alloc for colors.
func New(alloc *palette.Allocator) *Highlighter {
	return &Highlighter{alloc: alloc}
}

// HighlightString highlights text for the whitespace-separated keywords of query.
func (h *Highlighter) HighlightString(text, query string) string {
	return h.HighlightSnippet(text, domain.ParseKeywords(query))
}

// HighlightSnippet highlights text for keywords.
func (h *Highlighter) HighlightSnippet(text string, keywords domain.Keywords) string {
	return Highlight(text, h.alloc.Allocate(keywords))
}

// Ensure Document implements the interface.
var _ driven.Highlighter = (*Document)(nil)

// Document renders a whole plain-text object as a standalone HTML page.
type Document struct {
	alloc *palette.Allocator
}

// NewDocument creates a plain-text document highlighter.
func NewDocument(alloc *palette.Allocator) *Document {
	return &Document{alloc: alloc}
}

// Format returns domain.FormatPlainText.
func (d *Document) Format() domain.Format {
	return domain.FormatPlainText
}

// ContentType returns the HTML MIME type.
func (d *Document) ContentType() string {
	return HTMLContentType
}

// Highlight renders data as HTML. Invalid UTF-8 and text without any
// keyword occurrence yield nil.
func (d *Document) Highlight(ctx context.Context, data []byte, keywords domain.Keywords) ([]byte, error) {
	if keywords.Empty() {
		return nil, fmt.Errorf("%w: no keywords", domain.ErrInvalidInput)
	}
	if !utf8.Valid(data) {
		return nil, fmt.Errorf("%w: text is not valid UTF-8", domain.ErrRenderFailed)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	as := d.alloc.Allocate(keywords)
	text := string(data)
	if !match.AnyMatched(match.Split(text, as)) {
		return nil, domain.ErrNoMatches
	}

	var b strings.Builder
	b.WriteString("<!DOCTYPE html>\n<html>\n<head>\n<meta charset=\"utf-8\">\n")
	fmt.Fprintf(&b, "<title>%s</title>\n", html.EscapeString(keywords.String()))
	b.WriteString("<style>body{margin:2em;font-family:monospace}pre{white-space:pre-wrap}</style>\n")
	b.WriteString("</head>\n<body>\n<pre>")
	b.WriteString(Highlight(text, as))
	b.WriteString("</pre>\n</body>\n</html>\n")
	return []byte(b.String()), nil
}
