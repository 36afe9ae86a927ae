package domain

import (
	"path"
	"strings"
)

// RawDocument represents opaque bytes read from the object store or a connector.
// It is the input of normalisation.
type RawDocument struct {
	// Name is the object name.
	Name string

	// URI is the original location (file path, URL, etc).
	URI string

	// MIMEType is the content type (e.g., "application/pdf").
	MIMEType string

	// Content is the raw bytes.
	Content []byte

	// Metadata contains connector-specific key-value pairs.
	Metadata map[string]any
}

// FallbackTitle returns Metadata["title"] when set, otherwise a title
// derived from the base name of the object.
func (r *RawDocument) FallbackTitle() string {
	if title, ok := r.Metadata["title"].(string); ok && title != "" {
		return title
	}
	name := r.Name
	if name == "" {
		name = r.URI
	}
	return TitleFromName(path.Base(strings.ReplaceAll(name, "\\", "/")))
}

// ChangeType represents the type of document change.
type ChangeType int

const (
	// ChangeCreated indicates a new document.
	ChangeCreated ChangeType = iota

	// ChangeUpdated indicates a modified document.
	ChangeUpdated

	// ChangeDeleted indicates a removed document.
	ChangeDeleted
)

// RawDocumentChange represents a change event from a connector.
// Used by the filesystem watcher.
type RawDocumentChange struct {
	// Type is the kind of change.
	Type ChangeType

	// Document is the affected document.
	Document RawDocument
}

// IngestReport summarises a connector sync.
type IngestReport struct {
	// Ingested is the number of documents stored and indexed.
	Ingested int

	// Removed is the number of documents deleted.
	Removed int

	// Failed is the number of documents skipped because of an error.
	Failed int
}
