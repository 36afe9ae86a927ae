// Package markdown normalises Markdown files to plain text for indexing.
package markdown

import (
	"context"
	"maps"
	"regexp"
	"strings"

	"github.com/custodia-labs/sercha-view/internal/core/domain"
	"github.com/custodia-labs/sercha-view/internal/core/ports/driven"
)

// Ensure Normaliser implements the interface.
var _ driven.Normaliser = (*Normaliser)(nil)

// Normaliser handles Markdown documents.
type Normaliser struct{}

// New creates a new Markdown normaliser.
func New() *Normaliser {
	return &Normaliser{}
}

// SupportedMIMETypes returns the MIME types this normaliser handles.
func (n *Normaliser) SupportedMIMETypes() []string {
	return []string{"text/markdown", "text/x-markdown"}
}

// Priority returns the selection priority.
func (n *Normaliser) Priority() int {
	return 50 // Generic MIME normaliser, higher than plaintext
}

// Normalise strips Markdown syntax from raw. Fenced code is kept as text
// so identifiers inside it stay searchable. The title is the front matter
// title, else the first level-one heading, else derived from the name.
func (n *Normaliser) Normalise(_ context.Context, raw *domain.RawDocument) (*driven.NormaliseResult, error) {
	if raw == nil {
		return nil, domain.ErrInvalidInput
	}

	text := strings.ReplaceAll(string(raw.Content), "\r\n", "\n")

	title, text := frontMatter(text)
	if title == "" {
		title = headingTitle(text)
	}
	if title == "" {
		title = raw.FallbackTitle()
	}

	doc := domain.Document{
		Name:     raw.Name,
		URI:      raw.URI,
		Title:    title,
		Content:  stripMarkdown(text),
		Metadata: maps.Clone(raw.Metadata),
	}
	if doc.Metadata == nil {
		doc.Metadata = make(map[string]any)
	}
	doc.Metadata["mime_type"] = raw.MIMEType
	doc.Metadata["format"] = "markdown"

	return &driven.NormaliseResult{
		Document: doc,
	}, nil
}

// Pre-compiled regular expressions for Markdown stripping.
var (
	fences        = regexp.MustCompile("(?m)^\\s*(```|~~~).*$")
	inlineCode    = regexp.MustCompile("`([^`]+)`")
	images        = regexp.MustCompile(`!\[([^\]]*)\]\([^)]+\)`)
	links         = regexp.MustCompile(`\[([^\]]+)\]\([^)]+\)`)
	headings      = regexp.MustCompile(`(?m)^\s{0,3}#{1,6}\s+`)
	underlines    = regexp.MustCompile(`(?m)^\s*=+\s*$`)
	emphasis      = regexp.MustCompile(`(\*\*|__|\*|~~)`)
	blockquotes   = regexp.MustCompile(`(?m)^\s*>\s?`)
	rules         = regexp.MustCompile(`(?m)^\s*([-*_]\s*){3,}$`)
	bullets       = regexp.MustCompile(`(?m)^\s*[-*+]\s+`)
	numbered      = regexp.MustCompile(`(?m)^\s*\d+[.)]\s+`)
	multiNewlines = regexp.MustCompile(`\n{3,}`)
)

// frontMatter splits a leading "---" delimited block from text and returns
// its title field along with the remaining body.
func frontMatter(text string) (title, body string) {
	rest, ok := strings.CutPrefix(text, "---\n")
	if !ok {
		return "", text
	}
	block, body, ok := strings.Cut(rest, "\n---")
	if !ok {
		return "", text
	}
	if i := strings.IndexByte(body, '\n'); i >= 0 {
		body = body[i+1:]
	} else {
		body = ""
	}

	for _, line := range strings.Split(block, "\n") {
		key, value, ok := strings.Cut(line, ":")
		if ok && strings.TrimSpace(key) == "title" {
			title = strings.Trim(strings.TrimSpace(value), `"'`)
		}
	}
	return title, body
}

// headingTitle returns the text of the first level-one heading, ATX or
// setext, or "".
func headingTitle(text string) string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "# ") {
			return strings.TrimSpace(strings.TrimPrefix(line, "#"))
		}
		if line != "" && i+1 < len(lines) && underlines.MatchString(lines[i+1]) {
			return line
		}
	}
	return ""
}

// stripMarkdown removes common Markdown formatting.
func stripMarkdown(text string) string {
	text = fences.ReplaceAllString(text, "")
	text = inlineCode.ReplaceAllString(text, "$1")
	text = images.ReplaceAllString(text, "$1")
	text = links.ReplaceAllString(text, "$1")
	text = headings.ReplaceAllString(text, "")
	text = underlines.ReplaceAllString(text, "")
	text = rules.ReplaceAllString(text, "")
	text = bullets.ReplaceAllString(text, "")
	text = numbered.ReplaceAllString(text, "")
	text = blockquotes.ReplaceAllString(text, "")
	text = emphasis.ReplaceAllString(text, "")
	text = multiNewlines.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text)
}
