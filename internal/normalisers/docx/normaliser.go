// Package docx extracts the text of WordprocessingML documents.
package docx

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"maps"
	"strings"

	"github.com/custodia-labs/sercha-view/internal/core/domain"
	"github.com/custodia-labs/sercha-view/internal/core/ports/driven"
)

// MIMEType is the content type of .docx files.
const MIMEType = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"

const (
	documentPart = "word/document.xml"
	corePart     = "docProps/core.xml"
)

// Ensure Normaliser implements the interface.
var _ driven.Normaliser = (*Normaliser)(nil)

// Normaliser handles DOCX documents.
type Normaliser struct{}

// New creates a new DOCX normaliser.
func New() *Normaliser {
	return &Normaliser{}
}

// SupportedMIMETypes returns the MIME types this normaliser handles.
func (n *Normaliser) SupportedMIMETypes() []string {
	return []string{MIMEType}
}

// Priority returns the selection priority.
func (n *Normaliser) Priority() int {
	return 50 // Generic MIME normaliser
}

// Normalise extracts paragraph text from word/document.xml, including text
// inside tables, hyperlinks and content controls.
func (n *Normaliser) Normalise(_ context.Context, raw *domain.RawDocument) (*driven.NormaliseResult, error) {
	if raw == nil {
		return nil, domain.ErrInvalidInput
	}

	zr, err := zip.NewReader(bytes.NewReader(raw.Content), int64(len(raw.Content)))
	if err != nil {
		return nil, fmt.Errorf("%w: not a docx container: %v", domain.ErrInvalidInput, err)
	}

	var content string
	if part, err := readPart(zr, documentPart); err == nil {
		if content, err = documentText(part); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", domain.ErrInvalidInput, documentPart, err)
		}
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s: %v", domain.ErrInvalidInput, documentPart, err)
	}

	title := coreTitle(zr)
	if title == "" {
		title = raw.FallbackTitle()
	}

	doc := domain.Document{
		Name:     raw.Name,
		URI:      raw.URI,
		Title:    title,
		Content:  content,
		Metadata: maps.Clone(raw.Metadata),
	}
	if doc.Metadata == nil {
		doc.Metadata = make(map[string]any)
	}
	doc.Metadata["mime_type"] = raw.MIMEType
	doc.Metadata["format"] = "docx"

	return &driven.NormaliseResult{
		Document: doc,
	}, nil
}

// readPart returns the bytes of one zip entry or domain.ErrNotFound.
func readPart(zr *zip.Reader, name string) ([]byte, error) {
	for _, f := range zr.File {
		if f.Name != name {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, err
		}
		defer rc.Close()
		return io.ReadAll(rc)
	}
	return nil, domain.ErrNotFound
}

// documentText streams the part and joins the text of each paragraph.
// Tabs and breaks inside runs keep their whitespace meaning.
func documentText(part []byte) (string, error) {
	dec := xml.NewDecoder(bytes.NewReader(part))

	var (
		b      strings.Builder
		inText bool
	)
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "t":
				inText = true
			case "tab":
				b.WriteByte('\t')
			case "br", "cr":
				b.WriteByte('\n')
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case "p":
				b.WriteByte('\n')
			}
		case xml.CharData:
			if inText {
				b.Write(t)
			}
		}
	}
	return strings.TrimSpace(b.String()), nil
}

// coreProperties is the subset of docProps/core.xml used for titles.
type coreProperties struct {
	Title string `xml:"title"`
}

// coreTitle returns dc:title from the package properties, or "".
func coreTitle(zr *zip.Reader) string {
	part, err := readPart(zr, corePart)
	if err != nil {
		return ""
	}
	var core coreProperties
	if err := xml.Unmarshal(part, &core); err != nil {
		return ""
	}
	return strings.TrimSpace(core.Title)
}
