package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// Keywords is the ordered token sequence of a query.
// Duplicates are kept; they share a highlight color.
type Keywords []string

// ParseKeywords splits a raw query on whitespace.
func ParseKeywords(query string) Keywords {
	return Keywords(strings.Fields(query))
}

// Empty reports whether there is nothing to highlight.
func (k Keywords) Empty() bool {
	return len(k) == 0
}

// String joins the keywords back into a query.
func (k Keywords) String() string {
	return strings.Join(k, " ")
}

// Color is a highlight color.
type Color struct {
	// Name is a human-readable label.
	Name string

	// Hex is six upper-case hex digits without a leading '#'.
	Hex string
}

// ParseColor builds a Color from "#RRGGBB" or "RRGGBB".
func ParseColor(name, hex string) (Color, error) {
	h := strings.ToUpper(strings.TrimPrefix(strings.TrimSpace(hex), "#"))
	if len(h) != 6 {
		return Color{}, fmt.Errorf("%w: color %q must have 6 hex digits", ErrInvalidInput, hex)
	}
	if _, err := strconv.ParseUint(h, 16, 32); err != nil {
		return Color{}, fmt.Errorf("%w: color %q: %v", ErrInvalidInput, hex, err)
	}
	if name == "" {
		name = "#" + h
	}
	return Color{Name: name, Hex: h}, nil
}

// CSS returns the color as a CSS hex literal.
func (c Color) CSS() string {
	return "#" + c.Hex
}

// RGB returns the color components scaled to 0..1.
func (c Color) RGB() (r, g, b float64) {
	v, err := strconv.ParseUint(c.Hex, 16, 32)
	if err != nil {
		return 1, 1, 0
	}
	return float64(v>>16&0xff) / 255, float64(v>>8&0xff) / 255, float64(v&0xff) / 255
}

// DefaultPalette is the reference 8-entry highlight palette.
var DefaultPalette = []Color{
	{Name: "yellow", Hex: "FFFF00"},
	{Name: "lightgreen", Hex: "90EE90"},
	{Name: "lightblue", Hex: "ADD8E6"},
	{Name: "pink", Hex: "FFB6C1"},
	{Name: "orange", Hex: "FFA500"},
	{Name: "plum", Hex: "DDA0DD"},
	{Name: "paleturquoise", Hex: "AFEEEE"},
	{Name: "khaki", Hex: "F0E68C"},
}
