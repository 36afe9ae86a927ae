package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/custodia-labs/sercha-view/internal/core/domain"
	"github.com/custodia-labs/sercha-view/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-view/internal/core/ports/driving"
	"github.com/custodia-labs/sercha-view/internal/logger"
)

// Ensure SearchService implements the interface.
var _ driving.SearchService = (*SearchService)(nil)

// SearchService runs keyword queries and enriches every hit for display.
type SearchService struct {
	searchIndex driven.SearchEngine
	store       driven.ObjectStore
	enricher    *Enricher
	artifacts   *ArtifactStore
	limit       int
	metrics     driven.Metrics
}

// NewSearchService creates a new search service.
func NewSearchService(
	searchIndex driven.SearchEngine,
	store driven.ObjectStore,
	enricher *Enricher,
	artifacts *ArtifactStore,
	cfg domain.Config,
	metrics driven.Metrics,
) *SearchService {
	if metrics == nil {
		metrics = driven.NopMetrics{}
	}
	limit := cfg.SearchLimit
	if limit <= 0 {
		limit = domain.DefaultSearchLimit
	}
	return &SearchService{
		searchIndex: searchIndex,
		store:       store,
		enricher:    enricher,
		artifacts:   artifacts,
		limit:       limit,
		metrics:     metrics,
	}
}

// Search runs query and returns enriched hits in relevance order.
// No results is an empty, non-nil slice.
func (s *SearchService) Search(
	ctx context.Context, query string, opts domain.SearchOptions,
) ([]domain.EnrichedHit, error) {
	if logger.RequestID(ctx) == "" {
		ctx = logger.WithRequestID(ctx, "")
	}
	log := logger.Ctx(ctx)

	logger.Section("Search Execution")
	logger.Debug("Query: %q", query)

	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("%w: empty query", domain.ErrInvalidInput)
	}
	if s.searchIndex == nil {
		return nil, fmt.Errorf("%w: no search engine configured", domain.ErrSearchUnavailable)
	}

	if opts.Limit <= 0 {
		opts.Limit = s.limit
	}
	if opts.Offset < 0 {
		opts.Offset = 0
	}
	logger.Debug("Limit: %d, Offset: %d", opts.Limit, opts.Offset)

	start := time.Now()
	hits, err := s.searchIndex.Search(ctx, query, opts)
	if err != nil {
		s.metrics.ObserveSearch(false, 0, time.Since(start))
		log.Warn().Err(err).Str("query", query).Msg("search failed")
		if errors.Is(err, domain.ErrSearchUnavailable) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrSearchUnavailable, err)
	}
	logger.Debug("Raw results: %d hits", len(hits))

	results := s.enricher.Enrich(ctx, hits, domain.ParseKeywords(query))
	if err := ctx.Err(); err != nil {
		s.metrics.ObserveSearch(false, 0, time.Since(start))
		return nil, err
	}

	s.metrics.ObserveSearch(true, len(results), time.Since(start))
	log.Info().Str("query", query).Int("hits", len(results)).Dur("elapsed", time.Since(start)).Msg("search")
	return results, nil
}

// ViewURL signs an inline read URL for an unmodified source object.
func (s *SearchService) ViewURL(ctx context.Context, name string) (string, error) {
	if err := domain.ValidateSourceName(name); err != nil {
		return "", err
	}
	exists, err := s.store.Exists(ctx, name)
	if err != nil {
		return "", storeError("exists", name, err)
	}
	if !exists {
		return "", fmt.Errorf("%w: %s", domain.ErrNotFound, name)
	}
	return s.artifacts.SignOriginal(ctx, name)
}
