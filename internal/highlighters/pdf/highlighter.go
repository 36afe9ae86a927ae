// Package pdf highlights keywords in PDF documents with annotations.
//
// Glyph positions come from github.com/ledongthuc/pdf. The highlighted copy
// is parsed and re-encoded with github.com/pdfcpu/pdfcpu, which accepts
// classic cross-reference tables as well as cross-reference and object
// streams. Only annotations are added; content streams are never rewritten.
package pdf

import (
	"context"
	"fmt"
	"os"

	"github.com/ledongthuc/pdf"

	"github.com/custodia-labs/sercha-view/internal/core/domain"
	"github.com/custodia-labs/sercha-view/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-view/internal/highlighters/palette"
)

// Ensure Highlighter implements the interface.
var _ driven.Highlighter = (*Highlighter)(nil)

// annotationAuthor is written to the /T entry of every annotation.
const annotationAuthor = "sercha-view"

// Highlighter renders highlighted copies of paged documents.
type Highlighter struct {
	alloc      *palette.Allocator
	scratchDir string
}

// New creates a paged document highlighter. Decoding materialises the
// document in scratchDir; empty means os.TempDir.
func New(alloc *palette.Allocator, scratchDir string) *Highlighter {
	return &Highlighter{alloc: alloc, scratchDir: scratchDir}
}

// Format returns domain.FormatPagedDoc.
func (h *Highlighter) Format() domain.Format {
	return domain.FormatPagedDoc
}

// ContentType is empty; the rendered copy keeps the source type.
func (h *Highlighter) ContentType() string {
	return ""
}

// Highlight returns data with a highlight annotation over every keyword
// occurrence. It returns nil when the document cannot be decoded or
// re-encoded, has no pages, or has no occurrence.
func (h *Highlighter) Highlight(ctx context.Context, data []byte, keywords domain.Keywords) ([]byte, error) {
	if keywords.Empty() {
		return nil, fmt.Errorf("%w: no keywords", domain.ErrInvalidInput)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	as := h.alloc.Allocate(keywords)

	regions, pageCount, err := h.locate(ctx, data, as)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrRenderFailed, err)
	}
	if pageCount == 0 {
		return nil, fmt.Errorf("%w: document has no pages", domain.ErrRenderFailed)
	}
	if len(regions) == 0 {
		return nil, domain.ErrNoMatches
	}

	out, err := annotate(data, regions)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrRenderFailed, err)
	}
	return out, nil
}

// locate decodes a scratch copy of data and returns every keyword region.
// The scratch file is removed on every return path.
func (h *Highlighter) locate(ctx context.Context, data []byte, as palette.Assignment) (regions []region, pages int, err error) {
	tmp, err := os.CreateTemp(h.scratchDir, "sercha-*.pdf")
	if err != nil {
		return nil, 0, fmt.Errorf("create scratch file: %w", err)
	}
	path := tmp.Name()
	defer os.Remove(path)

	_, werr := tmp.Write(data)
	if cerr := tmp.Close(); werr == nil {
		werr = cerr
	}
	if werr != nil {
		return nil, 0, fmt.Errorf("write scratch file: %w", werr)
	}

	defer func() {
		if r := recover(); r != nil {
			regions, pages, err = nil, 0, fmt.Errorf("decode: %v", r)
		}
	}()

	f, reader, err := pdf.Open(path)
	if err != nil {
		return nil, 0, fmt.Errorf("open: %w", err)
	}
	defer f.Close()

	pages = reader.NumPage()
	for i := 1; i <= pages; i++ {
		if err := ctx.Err(); err != nil {
			return nil, 0, err
		}
		glyphs, err := pageGlyphs(reader.Page(i))
		if err != nil {
			return nil, 0, fmt.Errorf("page %d: %w", i, err)
		}
		regions = append(regions, pageRegions(i, glyphs, as)...)
	}
	return regions, pages, nil
}
