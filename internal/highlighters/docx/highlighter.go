// Package docx highlights keywords inside Word (OOXML) documents.
//
// The container is rewritten in memory. Only the runs of content parts
// (document body, headers, footers, notes) that contain a keyword are
// split; every other byte of the part and every other zip entry is carried
// over unchanged. Runs nested inside other runs, such as text box content
// under mc:AlternateContent, are split too.
//
// Keywords are matched within a single w:t element. A keyword that Word
// stored across two runs or two w:t elements is not highlighted.
package docx

import (
	"archive/zip"
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/custodia-labs/sercha-view/internal/core/domain"
	"github.com/custodia-labs/sercha-view/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-view/internal/highlighters/palette"
)

// Ensure Highlighter implements the interface.
var _ driven.Highlighter = (*Highlighter)(nil)

const mainPart = "word/document.xml"

// Highlighter renders highlighted copies of structured documents.
type Highlighter struct {
	alloc *palette.Allocator
}

// New creates a structured document highlighter.
func New(alloc *palette.Allocator) *Highlighter {
	return &Highlighter{alloc: alloc}
}

// Format returns domain.FormatStructuredDoc.
func (h *Highlighter) Format() domain.Format {
	return domain.FormatStructuredDoc
}

// ContentType is empty; the rendered copy keeps the source type.
func (h *Highlighter) ContentType() string {
	return ""
}

// Highlight returns data with every keyword occurrence moved into its own
// shaded run. It returns nil when the container cannot be decoded or
// re-encoded, or when no keyword occurs.
func (h *Highlighter) Highlight(ctx context.Context, data []byte, keywords domain.Keywords) ([]byte, error) {
	if keywords.Empty() {
		return nil, fmt.Errorf("%w: no keywords", domain.ErrInvalidInput)
	}
	reader, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("%w: open container: %v", domain.ErrRenderFailed, err)
	}
	if !hasEntry(reader, mainPart) {
		return nil, fmt.Errorf("%w: %s missing", domain.ErrRenderFailed, mainPart)
	}

	rw := &partRewriter{as: h.alloc.Allocate(keywords)}
	out := new(bytes.Buffer)
	zw := zip.NewWriter(out)
	for _, f := range reader.File {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if !isContentPart(f.Name) {
			if err := zw.Copy(f); err != nil {
				return nil, fmt.Errorf("%w: copy %s: %v", domain.ErrRenderFailed, f.Name, err)
			}
			continue
		}
		if err := rewriteEntry(zw, f, rw); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", domain.ErrRenderFailed, f.Name, err)
		}
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("%w: close container: %v", domain.ErrRenderFailed, err)
	}
	if rw.runs == 0 {
		return nil, domain.ErrNoMatches
	}
	return out.Bytes(), nil
}

func hasEntry(r *zip.Reader, name string) bool {
	for _, f := range r.File {
		if f.Name == name {
			return true
		}
	}
	return false
}

func rewriteEntry(zw *zip.Writer, f *zip.File, rw *partRewriter) error {
	rc, err := f.Open()
	if err != nil {
		return err
	}
	part, err := io.ReadAll(rc)
	rc.Close()
	if err != nil {
		return err
	}
	rewritten, err := rw.rewrite(part)
	if err != nil {
		return err
	}
	w, err := zw.CreateHeader(&zip.FileHeader{
		Name:     f.Name,
		Method:   f.Method,
		Modified: f.Modified,
	})
	if err != nil {
		return err
	}
	_, err = w.Write(rewritten)
	return err
}
