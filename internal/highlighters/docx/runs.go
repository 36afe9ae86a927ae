package docx

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/custodia-labs/sercha-view/internal/highlighters/match"
	"github.com/custodia-labs/sercha-view/internal/highlighters/palette"
)

const wordNamespace = "http://schemas.openxmlformats.org/wordprocessingml/2006/main"

// rPr children that follow w:shd in the schema sequence.
var afterShading = map[string]bool{
	"fitText": true, "vertAlign": true, "rtl": true, "cs": true, "em": true,
	"lang": true, "eastAsianLayout": true, "specVanish": true, "oMath": true,
	"rPrChange": true,
}

// partRewriter rewrites the runs of one WordprocessingML part.
type partRewriter struct {
	as     palette.Assignment
	prefix string
	runs   int // runs that received at least one highlight
}

// rewrite streams part through, replacing runs that contain keywords.
func (p *partRewriter) rewrite(part []byte) ([]byte, error) {
	dec := xml.NewDecoder(bytes.NewReader(part))
	var w xmlWriter
	rootSeen := false
	for {
		tok, err := dec.RawToken()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		start, ok := tok.(xml.StartElement)
		if !ok {
			w.token(tok)
			continue
		}
		if !rootSeen {
			rootSeen = true
			p.prefix = namespacePrefix(start)
		}
		if start.Name.Space != p.prefix || start.Name.Local != "r" {
			w.token(start)
			continue
		}
		run, err := readElement(dec, start)
		if err != nil {
			return nil, err
		}
		p.writeRun(&w, run)
	}
	if !rootSeen {
		return nil, fmt.Errorf("part has no root element")
	}
	return w.bytes(), nil
}

// namespacePrefix returns the prefix bound to the main namespace on the root.
func namespacePrefix(root xml.StartElement) string {
	for _, a := range root.Attr {
		if a.Value != wordNamespace {
			continue
		}
		if a.Name.Space == "xmlns" {
			return a.Name.Local
		}
		if a.Name.Space == "" && a.Name.Local == "xmlns" {
			return ""
		}
	}
	return "w"
}

// writeRun emits run unchanged when no keyword occurs in it, otherwise the
// sequence of plain and highlighted runs that replaces it.
func (p *partRewriter) writeRun(w *xmlWriter, run *element) {
	for _, r := range p.splitRun(run) {
		w.element(r)
	}
}

// splitRun returns the runs that replace run. Runs nested inside it, such as
// text box content under mc:AlternateContent, are split as well.
func (p *partRewriter) splitRun(run *element) []*element {
	nested := p.descend(run)

	var props *element
	var content []any
	splits := make(map[*element][]match.Segment)
	for _, c := range nested.children {
		child, ok := c.(*element)
		if !ok {
			if cd, isText := c.(xml.CharData); isText && len(bytes.TrimSpace(cd)) == 0 {
				continue
			}
			content = append(content, c)
			continue
		}
		if child.is(p.prefix, "rPr") {
			props = child
			continue
		}
		if child.is(p.prefix, "t") {
			if segs := match.Split(child.text(), p.as); match.AnyMatched(segs) {
				splits[child] = segs
			}
		}
		content = append(content, child)
	}
	if len(splits) == 0 {
		return []*element{nested}
	}
	p.runs++

	var runs []*element
	var pending []any
	flush := func() {
		if len(pending) == 0 {
			return
		}
		runs = append(runs, p.newRun(run.start, props, pending...))
		pending = nil
	}
	for _, c := range content {
		child, ok := c.(*element)
		segs, split := splits[child]
		if !ok || !split {
			pending = append(pending, c)
			continue
		}
		for _, seg := range segs {
			if !seg.Matched {
				pending = append(pending, p.newText(seg.Text))
				continue
			}
			flush()
			runs = append(runs, p.newRun(run.start, p.shaded(props, seg.Color.Hex), p.newText(seg.Text)))
		}
	}
	flush()
	return runs
}

// descend returns el with every run below it split. el itself is returned
// when nothing below it changes.
func (p *partRewriter) descend(el *element) *element {
	var children []any
	changed := false
	for _, c := range el.children {
		child, ok := c.(*element)
		if !ok {
			children = append(children, c)
			continue
		}
		var repl []*element
		if child.is(p.prefix, "r") {
			repl = p.splitRun(child)
		} else {
			repl = []*element{p.descend(child)}
		}
		if len(repl) != 1 || repl[0] != child {
			changed = true
		}
		for _, r := range repl {
			children = append(children, r)
		}
	}
	if !changed {
		return el
	}
	return &element{start: el.start, children: children}
}

func (p *partRewriter) name(local string) xml.Name {
	return xml.Name{Space: p.prefix, Local: local}
}

func (p *partRewriter) newRun(start xml.StartElement, props *element, children ...any) *element {
	run := &element{start: start.Copy()}
	if props != nil {
		run.children = append(run.children, props)
	}
	run.children = append(run.children, children...)
	return run
}

func (p *partRewriter) newText(s string) *element {
	return &element{
		start: xml.StartElement{
			Name: p.name("t"),
			Attr: []xml.Attr{{Name: xml.Name{Space: "xml", Local: "space"}, Value: "preserve"}},
		},
		children: []any{xml.CharData(s)},
	}
}

// shaded copies props with its shading set to fill. An existing shading or
// highlight is dropped so the fill is visible.
func (p *partRewriter) shaded(props *element, fill string) *element {
	shd := &element{start: xml.StartElement{
		Name: p.name("shd"),
		Attr: []xml.Attr{
			{Name: p.name("val"), Value: "clear"},
			{Name: p.name("color"), Value: "auto"},
			{Name: p.name("fill"), Value: fill},
		},
	}}
	out := &element{start: xml.StartElement{Name: p.name("rPr")}}
	if props != nil {
		out.start = props.start.Copy()
	}
	inserted := false
	if props != nil {
		for _, c := range props.children {
			child, ok := c.(*element)
			if !ok {
				continue
			}
			if child.is(p.prefix, "shd") || child.is(p.prefix, "highlight") {
				continue
			}
			if !inserted && child.start.Name.Space == p.prefix && afterShading[child.start.Name.Local] {
				out.children = append(out.children, shd)
				inserted = true
			}
			out.children = append(out.children, child)
		}
	}
	if !inserted {
		out.children = append(out.children, shd)
	}
	return out
}

// isContentPart reports whether a zip entry holds highlightable runs.
func isContentPart(name string) bool {
	if !strings.HasPrefix(name, "word/") || !strings.HasSuffix(name, ".xml") || strings.Count(name, "/") != 1 {
		return false
	}
	base := strings.TrimSuffix(strings.TrimPrefix(name, "word/"), ".xml")
	switch {
	case base == "document", base == "footnotes", base == "endnotes":
		return true
	case strings.HasPrefix(base, "header"), strings.HasPrefix(base, "footer"):
		return true
	}
	return false
}
