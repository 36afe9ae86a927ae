package highlighters

import (
	"context"
	"sort"
	"sync"

	"github.com/custodia-labs/sercha-view/internal/core/domain"
	"github.com/custodia-labs/sercha-view/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-view/internal/highlighters/docx"
	"github.com/custodia-labs/sercha-view/internal/highlighters/inline"
	"github.com/custodia-labs/sercha-view/internal/highlighters/palette"
	"github.com/custodia-labs/sercha-view/internal/highlighters/pdf"
)

// Ensure Registry implements the interface.
var _ driven.HighlighterRegistry = (*Registry)(nil)

// Registry maps each format to exactly one highlighter.
// Formats without a binding resolve to None.
type Registry struct {
	mu    sync.RWMutex
	byFmt map[domain.Format]driven.Highlighter
}

// NewRegistry creates a registry with the given highlighters bound.
func NewRegistry(hs ...driven.Highlighter) *Registry {
	r := &Registry{byFmt: make(map[domain.Format]driven.Highlighter)}
	for _, h := range hs {
		r.Register(h)
	}
	return r
}

// NewDefaultRegistry binds the built-in highlighters using cfg's palette
// and scratch directory.
func NewDefaultRegistry(cfg domain.Config) *Registry {
	alloc := palette.New(cfg.Palette)
	return NewRegistry(
		inline.NewDocument(alloc),
		docx.New(alloc),
		pdf.New(alloc, cfg.ScratchDir),
		None{},
	)
}

// Register binds h to its format, replacing any previous binding.
func (r *Registry) Register(h driven.Highlighter) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byFmt[h.Format()] = h
}

// For returns the highlighter bound to f.
func (r *Registry) For(f domain.Format) driven.Highlighter {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if h, ok := r.byFmt[f]; ok {
		return h
	}
	return None{Fmt: f}
}

// Formats returns the bound formats sorted by value.
func (r *Registry) Formats() []domain.Format {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.Format, 0, len(r.byFmt))
	for f := range r.byFmt {
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Ensure None implements the interface.
var _ driven.Highlighter = None{}

// None never renders. It is bound to formats without a highlighter.
type None struct {
	Fmt domain.Format
}

// Format returns the format None stands in for.
func (n None) Format() domain.Format { return n.Fmt }

// ContentType is empty.
func (None) ContentType() string { return "" }

// Highlight always returns nil with domain.ErrUnsupportedFormat.
func (n None) Highlight(_ context.Context, _ []byte, _ domain.Keywords) ([]byte, error) {
	return nil, domain.ErrUnsupportedFormat
}
