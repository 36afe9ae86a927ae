// Package match finds keywords in text and splits text into highlighted
// and plain segments.
//
// Keywords are applied one at a time in assignment order. Each pass only
// searches segments no earlier keyword has claimed, so the first keyword
// wins on overlapping text and nothing is ever wrapped twice.
package match

import (
	"unicode"
	"unicode/utf8"

	"github.com/custodia-labs/sercha-view/internal/core/domain"
	"github.com/custodia-labs/sercha-view/internal/highlighters/palette"
)

// Span is a half-open byte range [Start, End).
type Span struct {
	Start, End int
}

// IndexFold returns the first case-insensitive occurrence of sub in s.
// ok is false when there is none or sub is empty.
func IndexFold(s, sub string) (span Span, ok bool) {
	if sub == "" {
		return Span{}, false
	}
	for i := 0; i < len(s); {
		if n, found := prefixFold(s[i:], sub); found {
			return Span{Start: i, End: i + n}, true
		}
		_, size := utf8.DecodeRuneInString(s[i:])
		i += size
	}
	return Span{}, false
}

// AllFold returns every non-overlapping case-insensitive occurrence of sub in s,
// scanning left to right.
func AllFold(s, sub string) []Span {
	var spans []Span
	offset := 0
	for offset < len(s) {
		sp, ok := IndexFold(s[offset:], sub)
		if !ok {
			break
		}
		spans = append(spans, Span{Start: offset + sp.Start, End: offset + sp.End})
		offset += sp.End
	}
	return spans
}

// prefixFold reports whether s starts with prefix under simple case folding
// and returns the byte length of the matched part of s.
func prefixFold(s, prefix string) (int, bool) {
	j := 0
	for _, pr := range prefix {
		if j >= len(s) {
			return 0, false
		}
		sr, size := utf8.DecodeRuneInString(s[j:])
		if !equalFoldRune(sr, pr) {
			return 0, false
		}
		j += size
	}
	return j, true
}

func equalFoldRune(a, b rune) bool {
	if a == b {
		return true
	}
	for r := unicode.SimpleFold(a); r != a; r = unicode.SimpleFold(r) {
		if r == b {
			return true
		}
	}
	return false
}

// Segment is a piece of text, either plain or claimed by a keyword.
type Segment struct {
	Text string

	// Matched is true when a keyword claimed this segment.
	Matched bool

	// Keyword and Color are set when Matched.
	Keyword string
	Color   domain.Color
}

// Split divides text into segments using the keywords of as, in order.
// Concatenating the segment texts yields text unchanged.
func Split(text string, as palette.Assignment) []Segment {
	if text == "" {
		return nil
	}
	segs := []Segment{{Text: text}}
	for _, e := range as.Entries() {
		next := make([]Segment, 0, len(segs))
		for _, seg := range segs {
			if seg.Matched {
				next = append(next, seg)
				continue
			}
			next = append(next, splitOne(seg.Text, e)...)
		}
		segs = next
	}
	return segs
}

func splitOne(text string, e palette.Entry) []Segment {
	spans := AllFold(text, e.Keyword)
	if len(spans) == 0 {
		return []Segment{{Text: text}}
	}
	out := make([]Segment, 0, 2*len(spans)+1)
	prev := 0
	for _, sp := range spans {
		if sp.Start > prev {
			out = append(out, Segment{Text: text[prev:sp.Start]})
		}
		out = append(out, Segment{
			Text:    text[sp.Start:sp.End],
			Matched: true,
			Keyword: e.Keyword,
			Color:   e.Color,
		})
		prev = sp.End
	}
	if prev < len(text) {
		out = append(out, Segment{Text: text[prev:]})
	}
	return out
}

// AnyMatched reports whether any segment was claimed by a keyword.
func AnyMatched(segs []Segment) bool {
	for _, s := range segs {
		if s.Matched {
			return true
		}
	}
	return false
}
