package driving

import (
	"context"

	"github.com/custodia-labs/sercha-view/internal/core/domain"
)

// SearchService provides search capabilities to external actors.
type SearchService interface {
	// Search runs query against the index and enriches every hit with
	// highlighted content and a view URL.
	// Returns domain.ErrInvalidInput for an empty query and
	// domain.ErrSearchUnavailable when the engine fails.
	Search(ctx context.Context, query string, opts domain.SearchOptions) ([]domain.EnrichedHit, error)

	// ViewURL signs an access URL for an unmodified source object.
	ViewURL(ctx context.Context, name string) (string, error)
}
