// Package testutil builds small document fixtures for package tests.
package testutil

import (
	"archive/zip"
	"bytes"
	"fmt"
	"strings"
)

// PDF assembles a classic single-revision PDF with one page per entry of
// lines, each drawn in 12pt Helvetica at (72, 720). pageExtra is inserted
// into every page dictionary. Cross-reference offsets are computed.
func PDF(pageExtra string, lines ...string) []byte {
	objects := pdfObjects(pageExtra, lines)

	var b bytes.Buffer
	b.WriteString("%PDF-1.4\n")
	offsets := writeObjects(&b, objects)
	xref := b.Len()
	fmt.Fprintf(&b, "xref\n0 %d\n0000000000 65535 f \n", len(objects)+1)
	for _, off := range offsets {
		fmt.Fprintf(&b, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&b, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(objects)+1, xref)
	return b.Bytes()
}

// PDFXRefStream is PDF with the PDF 1.5 layout: the cross-reference table is
// an uncompressed /XRef stream and there is no trailer dictionary.
func PDFXRefStream(pageExtra string, lines ...string) []byte {
	objects := pdfObjects(pageExtra, lines)

	var b bytes.Buffer
	b.WriteString("%PDF-1.5\n")
	offsets := writeObjects(&b, objects)
	xref := b.Len()
	offsets = append(offsets, xref)

	// W [1 4 2]: type, offset, generation.
	var rows bytes.Buffer
	rows.Write([]byte{0, 0, 0, 0, 0, 0xff, 0xff})
	for _, off := range offsets {
		rows.Write([]byte{1, byte(off >> 24), byte(off >> 16), byte(off >> 8), byte(off), 0, 0})
	}
	size := len(offsets) + 1
	fmt.Fprintf(&b, "%d 0 obj\n<< /Type /XRef /Size %d /W [1 4 2] /Index [0 %d] /Root 1 0 R /Length %d >>\nstream\n",
		size-1, size, size, rows.Len())
	b.Write(rows.Bytes())
	fmt.Fprintf(&b, "\nendstream\nendobj\nstartxref\n%d\n%%%%EOF\n", xref)
	return b.Bytes()
}

// pdfObjects returns the catalog, page tree, font, then a content stream and
// page dictionary per line. Object i has number i+1.
func pdfObjects(pageExtra string, lines []string) []string {
	widths := strings.TrimSpace(strings.Repeat("500 ", 95))
	objects := []string{
		"<< /Type /Catalog /Pages 2 0 R >>",
		"", // page tree, filled below
		fmt.Sprintf("<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica /Encoding /WinAnsiEncoding /FirstChar 32 /LastChar 126 /Widths [%s] >>", widths),
	}
	var kids []string
	for _, text := range lines {
		content := fmt.Sprintf("BT /F1 12 Tf 72 720 Td (%s) Tj ET", text)
		objects = append(objects, fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", len(content), content))
		contentRef := len(objects)
		objects = append(objects, fmt.Sprintf(
			"<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Resources << /Font << /F1 3 0 R >> >> /Contents %d 0 R%s >>",
			contentRef, pageExtra))
		kids = append(kids, fmt.Sprintf("%d 0 R", len(objects)))
	}
	objects[1] = fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d >>", strings.Join(kids, " "), len(kids))
	return objects
}

func writeObjects(b *bytes.Buffer, objects []string) []int {
	offsets := make([]int, len(objects))
	for i, obj := range objects {
		offsets[i] = b.Len()
		fmt.Fprintf(b, "%d 0 obj\n%s\nendobj\n", i+1, obj)
	}
	return offsets
}

// DOCX builds a minimal WordprocessingML container around body, the inner
// XML of w:body. An empty body omits word/document.xml. Entries of extra are
// added verbatim.
func DOCX(body string, extra map[string]string) []byte {
	buf := new(bytes.Buffer)
	w := zip.NewWriter(buf)

	contentTypes, _ := w.Create("[Content_Types].xml")
	contentTypes.Write([]byte(`<?xml version="1.0" encoding="UTF-8"?>
<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">
<Default Extension="xml" ContentType="application/xml"/>
</Types>`))

	if body != "" {
		doc, _ := w.Create("word/document.xml")
		doc.Write([]byte(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>` + body + `</w:body></w:document>`))
	}

	for name, content := range extra {
		f, _ := w.Create(name)
		f.Write([]byte(content))
	}

	w.Close()
	return buf.Bytes()
}

// Paragraph returns a w:p with one run per text.
func Paragraph(texts ...string) string {
	var b strings.Builder
	b.WriteString("<w:p>")
	for _, t := range texts {
		fmt.Fprintf(&b, `<w:r><w:t xml:space="preserve">%s</w:t></w:r>`, t)
	}
	b.WriteString("</w:p>")
	return b.String()
}
