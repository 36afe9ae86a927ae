// Package palette assigns highlight colors to query keywords.
package palette

import (
	"strings"

	"github.com/custodia-labs/sercha-view/internal/core/domain"
)

// Allocator maps keywords to colors from a fixed palette.
// It holds no per-request state and is safe for concurrent use.
type Allocator struct {
	colors []domain.Color
}

// New creates an Allocator over colors.
// An empty palette falls back to domain.DefaultPalette.
func New(colors []domain.Color) *Allocator {
	if len(colors) == 0 {
		colors = domain.DefaultPalette
	}
	return &Allocator{colors: append([]domain.Color(nil), colors...)}
}

// Size returns the number of palette entries.
func (a *Allocator) Size() int {
	return len(a.colors)
}

// Allocate assigns each unique lowercased keyword the color at its first
// position in keywords, modulo the palette size.
func (a *Allocator) Allocate(keywords []string) Assignment {
	as := Assignment{index: make(map[string]int, len(keywords))}
	for pos, kw := range keywords {
		key := strings.ToLower(kw)
		if key == "" {
			continue
		}
		if _, seen := as.index[key]; seen {
			continue
		}
		as.index[key] = len(as.entries)
		as.entries = append(as.entries, Entry{
			Keyword: key,
			Color:   a.colors[pos%len(a.colors)],
		})
	}
	return as
}

// Entry is one keyword and its color.
type Entry struct {
	Keyword string
	Color   domain.Color
}

// Assignment is the ordered keyword to color mapping of one request.
type Assignment struct {
	entries []Entry
	index   map[string]int
}

// Len returns the number of distinct keywords.
func (as Assignment) Len() int {
	return len(as.entries)
}

// Entries returns the keywords in first-seen order with their colors.
func (as Assignment) Entries() []Entry {
	return append([]Entry(nil), as.entries...)
}

// Keywords returns the distinct lowercased keywords in first-seen order.
func (as Assignment) Keywords() []string {
	out := make([]string, len(as.entries))
	for i, e := range as.entries {
		out[i] = e.Keyword
	}
	return out
}

// Color looks up the color of keyword, ignoring case.
func (as Assignment) Color(keyword string) (domain.Color, bool) {
	i, ok := as.index[strings.ToLower(keyword)]
	if !ok {
		return domain.Color{}, false
	}
	return as.entries[i].Color, true
}
