package docx

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"strings"
)

// element is a subtree captured from the raw token stream.
// Children are *element or copied xml tokens (CharData, Comment, ProcInst).
type element struct {
	start    xml.StartElement
	children []any
}

func (e *element) is(prefix, local string) bool {
	return e.start.Name.Space == prefix && e.start.Name.Local == local
}

// text concatenates the character data directly inside e.
func (e *element) text() string {
	var b strings.Builder
	for _, c := range e.children {
		if cd, ok := c.(xml.CharData); ok {
			b.Write(cd)
		}
	}
	return b.String()
}

// readElement consumes tokens up to the end tag matching start.
// Prefixes are kept as written because tokens come from RawToken.
func readElement(dec *xml.Decoder, start xml.StartElement) (*element, error) {
	el := &element{start: start.Copy()}
	for {
		tok, err := dec.RawToken()
		if err != nil {
			return nil, fmt.Errorf("reading <%s>: %w", qname(start.Name), err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			child, err := readElement(dec, t)
			if err != nil {
				return nil, err
			}
			el.children = append(el.children, child)
		case xml.EndElement:
			if t.Name != start.Name {
				return nil, fmt.Errorf("mismatched </%s> inside <%s>", qname(t.Name), qname(start.Name))
			}
			return el, nil
		default:
			el.children = append(el.children, xml.CopyToken(t))
		}
	}
}

func qname(n xml.Name) string {
	if n.Space == "" {
		return n.Local
	}
	return n.Space + ":" + n.Local
}

var (
	textEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;", "\r", "&#xD;")
	attrEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;", `"`, "&quot;",
		"\n", "&#xA;", "\r", "&#xD;", "\t", "&#x9;")
)

// xmlWriter serialises raw tokens back to bytes.
type xmlWriter struct {
	buf bytes.Buffer
}

func (w *xmlWriter) token(tok xml.Token) {
	switch t := tok.(type) {
	case xml.StartElement:
		w.buf.WriteByte('<')
		w.buf.WriteString(qname(t.Name))
		for _, a := range t.Attr {
			w.buf.WriteByte(' ')
			w.buf.WriteString(qname(a.Name))
			w.buf.WriteString(`="`)
			w.buf.WriteString(attrEscaper.Replace(a.Value))
			w.buf.WriteByte('"')
		}
		w.buf.WriteByte('>')
	case xml.EndElement:
		w.buf.WriteString("</")
		w.buf.WriteString(qname(t.Name))
		w.buf.WriteByte('>')
	case xml.CharData:
		w.buf.WriteString(textEscaper.Replace(string(t)))
	case xml.Comment:
		w.buf.WriteString("<!--")
		w.buf.Write(t)
		w.buf.WriteString("-->")
	case xml.ProcInst:
		w.buf.WriteString("<?")
		w.buf.WriteString(t.Target)
		if len(t.Inst) > 0 {
			w.buf.WriteByte(' ')
			w.buf.Write(t.Inst)
		}
		w.buf.WriteString("?>")
	case xml.Directive:
		w.buf.WriteString("<!")
		w.buf.Write(t)
		w.buf.WriteByte('>')
	}
}

func (w *xmlWriter) element(e *element) {
	w.token(e.start)
	for _, c := range e.children {
		if child, ok := c.(*element); ok {
			w.element(child)
			continue
		}
		w.token(c)
	}
	w.token(e.start.End())
}

func (w *xmlWriter) bytes() []byte {
	return w.buf.Bytes()
}
