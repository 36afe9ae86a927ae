package pdf

import (
	"bytes"
	"fmt"
	"unicode/utf16"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
)

func init() {
	// pdfcpu otherwise installs a configuration directory under the user's home.
	api.DisableConfigDir()
}

// writeConfig produces a classic cross-reference table without object
// streams, whatever layout the source used.
func writeConfig() *model.Configuration {
	conf := model.NewDefaultConfiguration()
	conf.WriteObjectStream = false
	conf.WriteXRefStream = false
	return conf
}

// annotate parses data, adds one highlight annotation per region to the
// page it belongs to and re-encodes the whole document. Existing
// annotations are kept; content streams are carried over as read.
func annotate(data []byte, regions []region) (out []byte, err error) {
	defer func() {
		if r := recover(); r != nil {
			out, err = nil, fmt.Errorf("encode: %v", r)
		}
	}()

	ctx, err := api.ReadContext(bytes.NewReader(data), writeConfig())
	if err != nil {
		return nil, fmt.Errorf("parse: %w", err)
	}
	if err := ctx.EnsurePageCount(); err != nil {
		return nil, fmt.Errorf("page count: %w", err)
	}

	byPage := make(map[int][]region)
	for _, r := range regions {
		if r.page >= 1 && r.page <= ctx.PageCount {
			byPage[r.page] = append(byPage[r.page], r)
		}
	}
	if len(byPage) == 0 {
		return nil, fmt.Errorf("regions do not map to pages")
	}

	for num := 1; num <= ctx.PageCount; num++ {
		if rs := byPage[num]; len(rs) > 0 {
			if err := annotatePage(ctx, num, rs); err != nil {
				return nil, fmt.Errorf("page %d: %w", num, err)
			}
		}
	}

	var buf bytes.Buffer
	if err := api.WriteContext(ctx, &buf); err != nil {
		return nil, fmt.Errorf("write: %w", err)
	}
	return buf.Bytes(), nil
}

// annotatePage appends the annotations for rs to the /Annots of page num.
func annotatePage(ctx *model.Context, num int, rs []region) error {
	pageDict, pageRef, _, err := ctx.PageDict(num, false)
	if err != nil {
		return err
	}
	if pageDict == nil || pageRef == nil {
		return fmt.Errorf("missing page dictionary")
	}

	annots, err := ctx.DereferenceArray(pageDict["Annots"])
	if err != nil {
		return fmt.Errorf("annots: %w", err)
	}
	merged := make(types.Array, 0, len(annots)+len(rs))
	merged = append(merged, annots...)
	for _, r := range rs {
		apRef, err := ctx.IndRefForNewObject(appearance(r))
		if err != nil {
			return err
		}
		annotRef, err := ctx.IndRefForNewObject(highlightAnnot(r, *pageRef, *apRef))
		if err != nil {
			return err
		}
		merged = append(merged, *annotRef)
	}
	pageDict["Annots"] = merged
	return nil
}

func numbers(vs ...float64) types.Array {
	a := make(types.Array, len(vs))
	for i, v := range vs {
		a[i] = types.Float(v)
	}
	return a
}

// highlightAnnot builds a /Highlight annotation dictionary.
func highlightAnnot(r region, pageRef, ap types.IndirectRef) types.Dict {
	b := r.box
	cr, cg, cb := r.entry.Color.RGB()
	return types.Dict{
		"Type":       types.Name("Annot"),
		"Subtype":    types.Name("Highlight"),
		"Rect":       numbers(b.x0, b.y0, b.x1, b.y1),
		"QuadPoints": numbers(b.x0, b.y1, b.x1, b.y1, b.x0, b.y0, b.x1, b.y0),
		"C":          numbers(cr, cg, cb),
		"CA":         types.Float(1),
		"F":          types.Integer(4),
		"P":          pageRef,
		"T":          textString(annotationAuthor),
		"Contents":   textString(r.entry.Keyword),
		"AP":         types.Dict{"N": ap},
	}
}

// appearance builds a form XObject painting the region with multiply blending.
func appearance(r region) types.StreamDict {
	b := r.box
	cr, cg, cb := r.entry.Color.RGB()
	content := []byte(fmt.Sprintf("/GS0 gs %.3f %.3f %.3f rg %.2f %.2f %.2f %.2f re f",
		cr, cg, cb, b.x0, b.y0, b.x1-b.x0, b.y1-b.y0))
	length := int64(len(content))
	return types.StreamDict{
		Dict: types.Dict{
			"Type":    types.Name("XObject"),
			"Subtype": types.Name("Form"),
			"BBox":    numbers(b.x0, b.y0, b.x1, b.y1),
			"Resources": types.Dict{
				"ExtGState": types.Dict{
					"GS0": types.Dict{"Type": types.Name("ExtGState"), "BM": types.Name("Multiply")},
				},
			},
			"Length": types.Integer(length),
		},
		StreamLength: &length,
		Raw:          content,
		Content:      content,
	}
}

// textString encodes s as a PDF text string: a literal for printable ASCII,
// UTF-16BE with a byte order mark otherwise.
func textString(s string) types.Object {
	ascii := true
	for i := 0; i < len(s); i++ {
		if s[i] < 0x20 || s[i] > 0x7e {
			ascii = false
			break
		}
	}
	if ascii {
		var b bytes.Buffer
		for i := 0; i < len(s); i++ {
			if c := s[i]; c == '(' || c == ')' || c == '\\' {
				b.WriteByte('\\')
			}
			b.WriteByte(s[i])
		}
		return types.StringLiteral(b.String())
	}
	var b bytes.Buffer
	b.WriteString("FEFF")
	for _, u := range utf16.Encode([]rune(s)) {
		fmt.Fprintf(&b, "%04X", u)
	}
	return types.HexLiteral(b.String())
}
