// Package eml normalises RFC 822 email messages.
package eml

import (
	"bytes"
	"context"
	"encoding/base64"
	"io"
	"maps"
	"mime"
	"mime/multipart"
	"mime/quotedprintable"
	"net/mail"
	"strings"

	"github.com/custodia-labs/sercha-view/internal/core/domain"
	"github.com/custodia-labs/sercha-view/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-view/internal/normalisers/html"
)

// Ensure Normaliser implements the interface.
var _ driven.Normaliser = (*Normaliser)(nil)

// maxDepth bounds multipart nesting.
const maxDepth = 8

// Normaliser handles EML (email) documents.
type Normaliser struct{}

// New creates a new EML normaliser.
func New() *Normaliser {
	return &Normaliser{}
}

// SupportedMIMETypes returns the MIME types this normaliser handles.
func (n *Normaliser) SupportedMIMETypes() []string {
	return []string{"message/rfc822"}
}

// Priority returns the selection priority.
func (n *Normaliser) Priority() int {
	return 50
}

// Normalise indexes the addressing headers and the readable body of an email.
// The subject becomes the title.
func (n *Normaliser) Normalise(_ context.Context, raw *domain.RawDocument) (*driven.NormaliseResult, error) {
	if raw == nil || len(raw.Content) == 0 {
		return nil, domain.ErrInvalidInput
	}

	msg, err := mail.ReadMessage(bytes.NewReader(raw.Content))
	if err != nil {
		return nil, domain.ErrInvalidInput
	}

	headers := []struct{ key, value string }{
		{"From", decodeHeader(msg.Header.Get("From"))},
		{"To", decodeHeader(msg.Header.Get("To"))},
		{"Date", msg.Header.Get("Date")},
		{"Subject", decodeHeader(msg.Header.Get("Subject"))},
	}

	var content strings.Builder
	for _, h := range headers {
		if h.value != "" {
			content.WriteString(h.key + ": " + h.value + "\n")
		}
	}
	content.WriteString("\n")
	content.WriteString(body(msg.Header.Get("Content-Type"), msg.Header.Get("Content-Transfer-Encoding"), msg.Body, 0))

	title := headers[3].value
	if title == "" {
		title = raw.FallbackTitle()
	}

	doc := domain.Document{
		Name:     raw.Name,
		URI:      raw.URI,
		Title:    title,
		Content:  strings.TrimSpace(content.String()),
		Metadata: maps.Clone(raw.Metadata),
	}
	if doc.Metadata == nil {
		doc.Metadata = make(map[string]any)
	}
	doc.Metadata["mime_type"] = raw.MIMEType
	doc.Metadata["format"] = "eml"
	for _, h := range headers[:3] {
		if h.value != "" {
			doc.Metadata[strings.ToLower(h.key)] = h.value
		}
	}

	return &driven.NormaliseResult{Document: doc}, nil
}

// decodeHeader decodes RFC 2047 encoded words, keeping the raw value on failure.
func decodeHeader(header string) string {
	if header == "" {
		return ""
	}
	decoded, err := new(mime.WordDecoder).DecodeHeader(header)
	if err != nil {
		return header
	}
	return decoded
}

// body returns the readable text of one MIME entity. Plain text parts win
// over HTML alternatives. Attachments are skipped.
func body(contentType, encoding string, r io.Reader, depth int) string {
	if contentType == "" {
		contentType = "text/plain"
	}
	mediaType, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		mediaType = "text/plain"
	}

	if strings.HasPrefix(mediaType, "multipart/") {
		if depth >= maxDepth || params["boundary"] == "" {
			return ""
		}
		return multipartBody(r, params["boundary"], depth)
	}

	data, err := io.ReadAll(decodeTransfer(encoding, r))
	if err != nil {
		return ""
	}
	switch mediaType {
	case "text/plain":
		return string(data)
	case "text/html":
		return html.Text(string(data))
	default:
		return ""
	}
}

func multipartBody(r io.Reader, boundary string, depth int) string {
	mr := multipart.NewReader(r, boundary)
	var plain, rich []string

	for {
		part, err := mr.NextPart()
		if err != nil {
			break
		}
		if disp, _, _ := mime.ParseMediaType(part.Header.Get("Content-Disposition")); disp == "attachment" {
			part.Close()
			continue
		}

		ct := part.Header.Get("Content-Type")
		text := body(ct, part.Header.Get("Content-Transfer-Encoding"), part, depth+1)
		part.Close()
		if strings.TrimSpace(text) == "" {
			continue
		}
		if mediaType, _, _ := mime.ParseMediaType(ct); mediaType == "text/html" {
			rich = append(rich, text)
		} else {
			plain = append(plain, text)
		}
	}

	if len(plain) > 0 {
		return strings.Join(plain, "\n")
	}
	return strings.Join(rich, "\n")
}

// decodeTransfer undoes the Content-Transfer-Encoding of a part.
// multipart.Reader already decodes quoted-printable parts itself.
func decodeTransfer(encoding string, r io.Reader) io.Reader {
	switch strings.ToLower(strings.TrimSpace(encoding)) {
	case "base64":
		return base64.NewDecoder(base64.StdEncoding, r)
	case "quoted-printable":
		return quotedprintable.NewReader(r)
	default:
		return r
	}
}
