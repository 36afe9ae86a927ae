package html

import (
	"context"
	"maps"
	"strings"

	xhtml "golang.org/x/net/html"

	"github.com/custodia-labs/sercha-view/internal/core/domain"
	"github.com/custodia-labs/sercha-view/internal/core/ports/driven"
)

// Ensure Normaliser implements the interface.
var _ driven.Normaliser = (*Normaliser)(nil)

// Normaliser handles HTML documents.
type Normaliser struct{}

// New creates a new HTML normaliser.
func New() *Normaliser {
	return &Normaliser{}
}

// SupportedMIMETypes returns the MIME types this normaliser handles.
func (n *Normaliser) SupportedMIMETypes() []string {
	return []string{"text/html", "application/xhtml+xml"}
}

// Priority returns the selection priority.
func (n *Normaliser) Priority() int {
	return 50 // Generic MIME normaliser, higher than plaintext
}

// Normalise extracts the readable text and the <title> of an HTML document.
func (n *Normaliser) Normalise(_ context.Context, raw *domain.RawDocument) (*driven.NormaliseResult, error) {
	if raw == nil {
		return nil, domain.ErrInvalidInput
	}

	title, content := extract(string(raw.Content))
	if title == "" {
		title = raw.FallbackTitle()
	}

	doc := domain.Document{
		Name:     raw.Name,
		URI:      raw.URI,
		Title:    title,
		Content:  content,
		Metadata: maps.Clone(raw.Metadata),
	}
	if doc.Metadata == nil {
		doc.Metadata = make(map[string]any)
	}
	doc.Metadata["mime_type"] = raw.MIMEType
	doc.Metadata["format"] = "html"

	return &driven.NormaliseResult{
		Document: doc,
	}, nil
}

// Elements whose content is never text.
var skipped = map[string]bool{
	"script":   true,
	"style":    true,
	"noscript": true,
	"svg":      true,
	"template": true,
}

// Elements that start a new line.
var blocks = map[string]bool{
	"p": true, "div": true, "br": true, "hr": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	"li": true, "tr": true, "blockquote": true, "pre": true, "table": true,
	"section": true, "article": true, "header": true, "footer": true, "nav": true,
}

// Elements separated by a space.
var cells = map[string]bool{"td": true, "th": true}

// Text returns the readable text of an HTML fragment or page.
func Text(content string) string {
	_, text := extract(content)
	return text
}

// extract walks the token stream once and returns the title and the text.
func extract(content string) (title, text string) {
	z := xhtml.NewTokenizer(strings.NewReader(content))

	var (
		b       strings.Builder
		t       strings.Builder
		skip    int
		inHead  bool
		inTitle bool
	)

	for {
		tt := z.Next()
		switch tt {
		case xhtml.ErrorToken:
			// io.EOF or a read error; either way the text so far is kept.
			return strings.TrimSpace(t.String()), tidy(b.String())

		case xhtml.TextToken:
			switch {
			case inTitle:
				t.Write(z.Text())
			case skip == 0 && !inHead:
				b.Write(z.Text())
			}

		case xhtml.StartTagToken, xhtml.SelfClosingTagToken:
			name, _ := z.TagName()
			tag := string(name)
			switch {
			case skipped[tag]:
				if tt == xhtml.StartTagToken {
					skip++
				}
			case tag == "head":
				inHead = tt == xhtml.StartTagToken
			case tag == "title":
				inTitle = tt == xhtml.StartTagToken
			case blocks[tag]:
				b.WriteByte('\n')
			case cells[tag]:
				b.WriteByte(' ')
			}

		case xhtml.EndTagToken:
			name, _ := z.TagName()
			tag := string(name)
			switch {
			case skipped[tag]:
				if skip > 0 {
					skip--
				}
			case tag == "head":
				inHead = false
			case tag == "title":
				inTitle = false
			case blocks[tag]:
				b.WriteByte('\n')
			}
		}
	}
}

// tidy collapses runs of spaces and drops blank lines.
func tidy(s string) string {
	lines := strings.Split(s, "\n")
	out := lines[:0]
	for _, line := range lines {
		line = strings.Join(strings.Fields(line), " ")
		if line != "" {
			out = append(out, line)
		}
	}
	return strings.Join(out, "\n")
}
