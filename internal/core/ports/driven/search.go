package driven

import (
	"context"

	"github.com/custodia-labs/sercha-view/internal/core/domain"
)

// SearchEngine provides full-text search operations.
// Backed by Bleve for keyword search.
type SearchEngine interface {
	// Index adds or updates a document in the search index.
	Index(ctx context.Context, doc domain.IndexDocument) error

	// Delete removes a document from the search index.
	Delete(ctx context.Context, name string) error

	// Search returns hits requiring every query term, in relevance order.
	// Failures wrap domain.ErrSearchUnavailable.
	Search(ctx context.Context, query string, opts domain.SearchOptions) ([]domain.SearchHit, error)

	// Count returns the number of indexed documents.
	Count(ctx context.Context) (uint64, error)

	// Close releases resources.
	Close() error
}
