// Package plaintext normalises UTF-8 text files. It is the lowest priority
// normaliser and catches every text-like type nothing richer claims.
package plaintext

import (
	"bytes"
	"context"
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/custodia-labs/sercha-view/internal/core/domain"
	"github.com/custodia-labs/sercha-view/internal/core/ports/driven"
)

// sniffLen is how much of the content is checked for NUL bytes.
const sniffLen = 8 << 10

var bom = []byte{0xEF, 0xBB, 0xBF}

// formats maps each handled MIME type to its "format" metadata value.
var formats = map[string]string{
	"text/plain":       "text",
	"text/csv":         "csv",
	"text/markdown":    "markdown",
	"text/x-log":       "log",
	"application/json": "json",
	"application/xml":  "xml",
}

// Ensure Normaliser implements the interface.
var _ driven.Normaliser = (*Normaliser)(nil)

// Normaliser handles plain text documents.
type Normaliser struct{}

// New creates a new plain text normaliser.
func New() *Normaliser {
	return &Normaliser{}
}

// SupportedMIMETypes returns the MIME types this normaliser handles.
func (n *Normaliser) SupportedMIMETypes() []string {
	return slices.Sorted(maps.Keys(formats))
}

// Priority returns the selection priority.
func (n *Normaliser) Priority() int {
	return 5
}

// Normalise returns the text of raw with a leading byte order mark removed
// and line endings unified. Invalid UTF-8 becomes U+FFFD. Content with NUL
// bytes near the start is treated as binary and rejected.
func (n *Normaliser) Normalise(_ context.Context, raw *domain.RawDocument) (*driven.NormaliseResult, error) {
	if raw == nil {
		return nil, domain.ErrInvalidInput
	}

	data := bytes.TrimPrefix(raw.Content, bom)
	if bytes.IndexByte(data[:min(len(data), sniffLen)], 0) >= 0 {
		return nil, fmt.Errorf("%w: binary content in %s", domain.ErrInvalidInput, raw.Name)
	}

	content := strings.ToValidUTF8(string(data), "�")
	content = strings.ReplaceAll(content, "\r\n", "\n")

	doc := domain.Document{
		Name:     raw.Name,
		URI:      raw.URI,
		Title:    raw.FallbackTitle(),
		Content:  content,
		Metadata: maps.Clone(raw.Metadata),
	}
	if doc.Metadata == nil {
		doc.Metadata = make(map[string]any)
	}
	doc.Metadata["mime_type"] = raw.MIMEType
	doc.Metadata["format"] = format(raw.MIMEType)

	return &driven.NormaliseResult{Document: doc}, nil
}

// format returns the metadata format for a MIME type, ignoring parameters.
func format(mimeType string) string {
	base, _, _ := strings.Cut(mimeType, ";")
	if f, ok := formats[strings.ToLower(strings.TrimSpace(base))]; ok {
		return f
	}
	return "text"
}
