package driven

import (
	"context"

	"github.com/custodia-labs/sercha-view/internal/core/domain"
)

// Connector fetches source documents from outside the object store.
type Connector interface {
	// Type returns the connector type identifier.
	Type() string

	// Validate checks if the connector is properly configured.
	// For filesystem, this checks the path exists and is readable.
	Validate(ctx context.Context) error

	// FullSync fetches all documents from the source.
	// Returns channels for documents and errors.
	FullSync(ctx context.Context) (<-chan domain.RawDocument, <-chan error)

	// Watch listens for real-time changes until ctx is cancelled.
	Watch(ctx context.Context) (<-chan domain.RawDocumentChange, error)

	// Close releases resources.
	Close() error
}
