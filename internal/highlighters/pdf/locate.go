package pdf

import (
	"fmt"
	"math"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/custodia-labs/sercha-view/internal/highlighters/match"
	"github.com/custodia-labs/sercha-view/internal/highlighters/palette"
)

// Glyph box proportions relative to the font size.
const (
	descent      = 0.22
	ascent       = 0.88
	defaultWidth = 0.5
	wordGap      = 0.25
	lineShift    = 0.5
)

// rect is an axis-aligned box in default user space.
type rect struct {
	x0, y0, x1, y1 float64
}

// region is one keyword occurrence on a page.
type region struct {
	page  int // 1-based
	entry palette.Entry
	box   rect
}

// line is a run of glyphs sharing a baseline, flattened to text.
type line struct {
	text   strings.Builder
	glyphs []pdf.Text
	// owner maps each byte of text to a glyph index, or -1 for an inserted space.
	owner []int
}

func (ln *line) add(g pdf.Text, idx int) {
	ln.text.WriteString(g.S)
	for i := 0; i < len(g.S); i++ {
		ln.owner = append(ln.owner, idx)
	}
}

func (ln *line) space() {
	ln.text.WriteByte(' ')
	ln.owner = append(ln.owner, -1)
}

func glyphSize(g pdf.Text) float64 {
	if s := math.Abs(g.FontSize); s > 0 {
		return s
	}
	return 1
}

func glyphRight(g pdf.Text) float64 {
	w := g.W
	if w <= 0 {
		w = glyphSize(g) * defaultWidth
	}
	return g.X + w
}

// lines groups content-stream glyphs into text lines by baseline and
// horizontal progress. Matches spanning two lines are not found.
func lines(glyphs []pdf.Text) []*line {
	var out []*line
	var cur *line
	var prev pdf.Text
	for _, g := range glyphs {
		if g.S == "" || g.S == "\n" {
			continue
		}
		size := glyphSize(g)
		if cur != nil {
			sameLine := math.Abs(g.Y-prev.Y) <= size*lineShift && g.X >= prev.X-size*lineShift
			if !sameLine {
				cur = nil
			} else if g.X-glyphRight(prev) > size*wordGap && g.S != " " && !strings.HasSuffix(cur.text.String(), " ") {
				cur.space()
			}
		}
		if cur == nil {
			cur = &line{}
			out = append(out, cur)
		}
		cur.glyphs = append(cur.glyphs, g)
		cur.add(g, len(cur.glyphs)-1)
		prev = g
	}
	return out
}

// box returns the bounding box of the glyphs behind text[start:end].
func (ln *line) box(start, end int) (rect, bool) {
	r := rect{x0: math.Inf(1), y0: math.Inf(1), x1: math.Inf(-1), y1: math.Inf(-1)}
	found := false
	last := -1
	for i := start; i < end && i < len(ln.owner); i++ {
		idx := ln.owner[i]
		if idx < 0 || idx == last {
			continue
		}
		last = idx
		g := ln.glyphs[idx]
		size := glyphSize(g)
		r.x0 = math.Min(r.x0, g.X)
		r.x1 = math.Max(r.x1, glyphRight(g))
		r.y0 = math.Min(r.y0, g.Y-size*descent)
		r.y1 = math.Max(r.y1, g.Y+size*ascent)
		found = true
	}
	return r, found
}

// pageRegions finds every keyword occurrence on one page. Each keyword is
// searched independently, like a viewer's find command.
func pageRegions(num int, glyphs []pdf.Text, as palette.Assignment) []region {
	var out []region
	lns := lines(glyphs)
	for _, e := range as.Entries() {
		for _, ln := range lns {
			text := ln.text.String()
			for _, sp := range match.AllFold(text, e.Keyword) {
				if b, ok := ln.box(sp.Start, sp.End); ok {
					out = append(out, region{page: num, entry: e, box: b})
				}
			}
		}
	}
	return out
}

// pageGlyphs extracts positioned glyphs, turning decoder panics into errors.
func pageGlyphs(p pdf.Page) (glyphs []pdf.Text, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("decode page content: %v", r)
		}
	}()
	if p.V.IsNull() {
		return nil, nil
	}
	return p.Content().Text, nil
}
