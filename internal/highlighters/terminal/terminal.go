// Package terminal highlights snippets with ANSI colors for command line output.
package terminal

import (
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"golang.org/x/term"

	"github.com/custodia-labs/sercha-view/internal/core/domain"
	"github.com/custodia-labs/sercha-view/internal/highlighters/match"
	"github.com/custodia-labs/sercha-view/internal/highlighters/palette"
)

// Highlighter paints each keyword occurrence with its palette color.
// Output is raw terminal text with ANSI escapes and is never HTML escaped,
// so it cannot stand in for the HTML snippets of search results.
type Highlighter struct {
	alloc    *palette.Allocator
	renderer *lipgloss.Renderer
}

// New creates a Highlighter writing for w. Colors are dropped when w is not
// a terminal.
func New(alloc *palette.Allocator, w io.Writer) *Highlighter {
	r := lipgloss.NewRenderer(w)
	if !IsTerminal(w) {
		r.SetColorProfile(termenv.Ascii)
	}
	return &Highlighter{alloc: alloc, renderer: r}
}

// NewWithProfile creates a Highlighter with a fixed color profile.
func NewWithProfile(alloc *palette.Allocator, w io.Writer, profile termenv.Profile) *Highlighter {
	r := lipgloss.NewRenderer(w)
	r.SetColorProfile(profile)
	return &Highlighter{alloc: alloc, renderer: r}
}

// HighlightSnippet returns text with every keyword occurrence styled.
func (h *Highlighter) HighlightSnippet(text string, keywords domain.Keywords) string {
	if text == "" {
		return ""
	}
	as := h.alloc.Allocate(keywords)

	styles := make(map[string]lipgloss.Style, as.Len())
	var b strings.Builder
	for _, seg := range match.Split(text, as) {
		if !seg.Matched {
			b.WriteString(seg.Text)
			continue
		}
		st, ok := styles[seg.Keyword]
		if !ok {
			st = h.renderer.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("#000000")).
				Background(lipgloss.Color(seg.Color.CSS()))
			styles[seg.Keyword] = st
		}
		b.WriteString(st.Render(seg.Text))
	}
	return b.String()
}

// IsTerminal reports whether w is an interactive terminal.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// Width returns the column count of w, or fallback when w is not a terminal.
func Width(w io.Writer, fallback int) int {
	f, ok := w.(*os.File)
	if !ok {
		return fallback
	}
	width, _, err := term.GetSize(int(f.Fd()))
	if err != nil || width <= 0 {
		return fallback
	}
	return width
}
