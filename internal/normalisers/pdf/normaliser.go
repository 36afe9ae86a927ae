// Package pdf extracts the text layer of PDF documents.
package pdf

import (
	"bytes"
	"context"
	"fmt"
	"maps"
	"math"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/custodia-labs/sercha-view/internal/core/domain"
	"github.com/custodia-labs/sercha-view/internal/core/ports/driven"
)

// MIMEType is the content type of PDF files.
const MIMEType = "application/pdf"

const (
	// lineShift is the baseline change, relative to the font size, that starts a new line.
	lineShift = 0.5
	// wordGap is the horizontal gap, relative to the font size, read as a space.
	wordGap = 0.2
)

// Ensure Normaliser implements the interface.
var _ driven.Normaliser = (*Normaliser)(nil)

// Normaliser handles PDF documents in memory.
type Normaliser struct{}

// New creates a new PDF normaliser.
func New() *Normaliser {
	return &Normaliser{}
}

// SupportedMIMETypes returns the MIME types this normaliser handles.
func (n *Normaliser) SupportedMIMETypes() []string {
	return []string{MIMEType}
}

// Priority returns the selection priority.
func (n *Normaliser) Priority() int {
	return 50 // Generic MIME normaliser
}

// Normalise extracts the text of every page. Pages are separated by a blank line.
func (n *Normaliser) Normalise(ctx context.Context, raw *domain.RawDocument) (*driven.NormaliseResult, error) {
	if raw == nil {
		return nil, domain.ErrInvalidInput
	}
	if len(raw.Content) == 0 {
		return nil, fmt.Errorf("%w: empty pdf", domain.ErrInvalidInput)
	}

	content, title, pages, err := extract(ctx, raw.Content)
	if err != nil {
		return nil, err
	}
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
	doc.Metadata["format"] = "pdf"
	doc.Metadata["pages"] = pages

	return &driven.NormaliseResult{
		Document: doc,
	}, nil
}

// extract decodes data and returns its text, Info title and page count.
// Decoder panics on damaged files become domain.ErrInvalidInput.
func extract(ctx context.Context, data []byte) (content, title string, pages int, err error) {
	defer func() {
		if r := recover(); r != nil {
			content, title, pages = "", "", 0
			err = fmt.Errorf("%w: decode pdf: %v", domain.ErrInvalidInput, r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", "", 0, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}

	pages = reader.NumPage()
	texts := make([]string, 0, pages)
	for i := 1; i <= pages; i++ {
		if err := ctx.Err(); err != nil {
			return "", "", 0, err
		}
		p := reader.Page(i)
		if p.V.IsNull() {
			continue
		}
		if text := pageText(p.Content().Text); text != "" {
			texts = append(texts, text)
		}
	}

	title = strings.TrimSpace(reader.Trailer().Key("Info").Key("Title").Text())
	return strings.Join(texts, "\n\n"), title, pages, nil
}

// pageText flattens positioned glyphs into lines of text.
func pageText(glyphs []pdf.Text) string {
	var (
		b     strings.Builder
		prev  pdf.Text
		first = true
	)
	for _, g := range glyphs {
		if g.S == "" {
			continue
		}
		size := math.Abs(g.FontSize)
		if size == 0 {
			size = 1
		}
		if !first {
			switch {
			case math.Abs(g.Y-prev.Y) > size*lineShift:
				b.WriteByte('\n')
			case g.X-(prev.X+prev.W) > size*wordGap && g.S != " " && prev.S != " ":
				b.WriteByte(' ')
			}
		}
		b.WriteString(g.S)
		prev = g
		first = false
	}

	var out []string
	for _, ln := range strings.Split(b.String(), "\n") {
		if ln = strings.Join(strings.Fields(ln), " "); ln != "" {
			out = append(out, ln)
		}
	}
	return strings.Join(out, "\n")
}
