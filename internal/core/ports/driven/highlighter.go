package driven

import (
	"context"

	"github.com/custodia-labs/sercha-view/internal/core/domain"
)

// Highlighter renders a copy of a document with keywords visually marked.
// Each domain.Format is bound to exactly one Highlighter.
type Highlighter interface {
	// Format returns the document format this highlighter renders.
	Format() domain.Format

	// ContentType is the MIME type of the rendered bytes.
	// Empty means the source content type is kept.
	ContentType() string

	// Highlight returns the rendered bytes, or nil when nothing could be rendered.
	// A nil result is never fatal; the caller serves the unmodified source instead.
	// The error, if any, explains why the render is nil.
	Highlight(ctx context.Context, data []byte, keywords domain.Keywords) ([]byte, error)
}

// HighlighterRegistry resolves the Highlighter bound to a format.
type HighlighterRegistry interface {
	// For returns the Highlighter for f. It never returns nil.
	For(f domain.Format) Highlighter
}

// SnippetHighlighter marks keywords inside a text snippet as HTML.
type SnippetHighlighter interface {
	// HighlightSnippet returns HTML-escaped text with every keyword
	// occurrence wrapped in a colored marker.
	HighlightSnippet(text string, keywords domain.Keywords) string
}
