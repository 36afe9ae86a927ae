package driven

import (
	"context"

	"github.com/custodia-labs/sercha-view/internal/core/domain"
)

// Normaliser extracts searchable text from a source object.
// Each normaliser handles specific MIME types (e.g., PDF, Word).
type Normaliser interface {
	// SupportedMIMETypes returns the MIME types this normaliser handles.
	SupportedMIMETypes() []string

	// Priority returns the selection priority (higher = preferred).
	// Generic MIME normalisers should return 50-89.
	// Fallback normalisers should return 1-9.
	Priority() int

	// Normalise transforms a raw document into its text form.
	Normalise(ctx context.Context, raw *domain.RawDocument) (*NormaliseResult, error)
}

// NormaliseResult contains the output of normalisation.
type NormaliseResult struct {
	// Document is the normalised document with Content field populated.
	Document domain.Document
}
