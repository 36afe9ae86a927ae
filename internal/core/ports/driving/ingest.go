package driving

import (
	"context"

	"github.com/custodia-labs/sercha-view/internal/core/domain"
	"github.com/custodia-labs/sercha-view/internal/core/ports/driven"
)

// IngestService loads source objects into the store and keeps the index in sync.
type IngestService interface {
	// Ingest stores a source document and indexes its text.
	// Returns domain.ErrReservedName for names in the derived namespace.
	Ingest(ctx context.Context, raw domain.RawDocument) error

	// Remove deletes a source object, its derived artifact and its index entry.
	Remove(ctx context.Context, name string) error

	// Reindex rebuilds the index from every source object in the store.
	// Returns the number of indexed objects.
	Reindex(ctx context.Context) (int, error)

	// Sync ingests every document a connector yields.
	// Per-document failures are counted, not returned.
	Sync(ctx context.Context, conn driven.Connector) (domain.IngestReport, error)

	// Watch applies connector changes until ctx is cancelled.
	Watch(ctx context.Context, conn driven.Connector) error
}
