package services

import (
	"context"
	"errors"

	"golang.org/x/sync/errgroup"

	"github.com/custodia-labs/sercha-view/internal/core/domain"
	"github.com/custodia-labs/sercha-view/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-view/internal/logger"
)

// Fallback reasons recorded when a hit is served without a derived artifact.
const (
	FallbackMissing     = "missing"
	FallbackStore       = "store"
	FallbackNoKeywords  = "no_keywords"
	FallbackUnsupported = "unsupported"
	FallbackNoMatches   = "no_matches"
	FallbackRender      = "render"
	FallbackPublish     = "publish"
)

// Enricher turns search hits into display-ready hits carrying a highlighted
// snippet, a view URL and object metadata.
type Enricher struct {
	store       driven.ObjectStore
	snippets    driven.SnippetHighlighter
	renders     *RenderPool
	artifacts   *ArtifactStore
	concurrency int
	metrics     driven.Metrics
}

// NewEnricher creates an Enricher processing up to cfg.EnrichConcurrency hits at once.
func NewEnricher(
	store driven.ObjectStore,
	snippets driven.SnippetHighlighter,
	renders *RenderPool,
	artifacts *ArtifactStore,
	cfg domain.Config,
	metrics driven.Metrics,
) *Enricher {
	if metrics == nil {
		metrics = driven.NopMetrics{}
	}
	concurrency := cfg.EnrichConcurrency
	if concurrency < 1 {
		concurrency = 1
	}
	return &Enricher{
		store:       store,
		snippets:    snippets,
		renders:     renders,
		artifacts:   artifacts,
		concurrency: concurrency,
		metrics:     metrics,
	}
}

// Enrich processes hits concurrently. The output has the same length and
// order as hits. A failure on one hit only degrades that hit.
func (e *Enricher) Enrich(ctx context.Context, hits []domain.SearchHit, keywords domain.Keywords) []domain.EnrichedHit {
	out := make([]domain.EnrichedHit, len(hits))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.concurrency)
	for i := range hits {
		g.Go(func() error {
			out[i] = e.enrichOne(gctx, hits[i], keywords)
			return nil
		})
	}
	_ = g.Wait()

	return out
}

func (e *Enricher) enrichOne(ctx context.Context, hit domain.SearchHit, keywords domain.Keywords) domain.EnrichedHit {
	res := domain.EnrichedHit{
		Name:     hit.Name,
		Path:     hit.Path,
		Content:  hit.Content,
		Score:    hit.Score,
		FileType: domain.FileTypeFromName(hit.Name),
	}
	if hit.Content != "" {
		res.HighlightedContent = e.snippets.HighlightSnippet(hit.Content, keywords)
	}
	if hit.Name == "" || domain.IsDerivedName(hit.Name) {
		return res
	}

	exists, err := e.store.Exists(ctx, hit.Name)
	if err != nil {
		logger.Warn("enrich: %s: %v", hit.Name, err)
		e.metrics.ObserveFallback(FallbackStore)
		return res
	}
	if !exists {
		logger.Debug("enrich: %s not in store", hit.Name)
		e.metrics.ObserveFallback(FallbackMissing)
		return res
	}

	if info, err := e.store.Properties(ctx, hit.Name); err == nil {
		size := info.Size
		modified := info.LastModified.UTC()
		res.FileSize = &size
		res.LastModified = &modified
	} else {
		logger.Debug("enrich: properties of %s: %v", hit.Name, err)
	}

	url, reason := e.highlighted(ctx, hit.Name, keywords)
	if reason == "" {
		res.ViewURL = &url
		res.Highlighted = true
		return res
	}

	e.metrics.ObserveFallback(reason)
	url, err = e.artifacts.SignOriginal(ctx, hit.Name)
	if err != nil {
		logger.Warn("enrich: sign %s: %v", hit.Name, err)
		return res
	}
	res.ViewURL = &url
	return res
}

// highlighted renders and publishes the derived artifact of name.
// It returns the artifact URL, or the fallback reason when none was published.
func (e *Enricher) highlighted(ctx context.Context, name string, keywords domain.Keywords) (url, reason string) {
	if keywords.Empty() {
		return "", FallbackNoKeywords
	}

	data, err := e.store.Read(ctx, name)
	if err != nil {
		logger.Warn("enrich: read %s: %v", name, err)
		return "", FallbackStore
	}

	format := domain.FormatFromName(name)
	rendered, contentType, err := e.renders.Render(ctx, format, data, keywords)
	if err != nil {
		logger.Debug("enrich: render %s as %s: %v", name, format, err)
		switch {
		case errors.Is(err, domain.ErrUnsupportedFormat):
			return "", FallbackUnsupported
		case errors.Is(err, domain.ErrNoMatches):
			return "", FallbackNoMatches
		default:
			return "", FallbackRender
		}
	}

	url, err = e.artifacts.Publish(ctx, name, rendered, contentType)
	if err != nil {
		logger.Warn("enrich: publish %s: %v", name, err)
		return "", FallbackPublish
	}
	return url, ""
}
