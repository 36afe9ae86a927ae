package mcp

import (
	"context"

	"github.com/custodia-labs/sercha-view/internal/core/domain"
	"github.com/custodia-labs/sercha-view/internal/core/ports/driving"
)

// Ensure mockSearchService implements the interface.
var _ driving.SearchService = (*mockSearchService)(nil)

// mockSearchService is a mock implementation of driving.SearchService.
type mockSearchService struct {
	results   []domain.EnrichedHit
	err       error
	urlErr    error
	lastOpts  domain.SearchOptions
	lastQuery string
}

func (m *mockSearchService) Search(
	_ context.Context,
	query string,
	opts domain.SearchOptions,
) ([]domain.EnrichedHit, error) {
	m.lastQuery = query
	m.lastOpts = opts
	return m.results, m.err
}

func (m *mockSearchService) ViewURL(_ context.Context, name string) (string, error) {
	if m.urlErr != nil {
		return "", m.urlErr
	}
	return "http://localhost:8080/objects/" + name + "?sig=test", nil
}
