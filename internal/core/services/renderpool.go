package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/custodia-labs/sercha-view/internal/core/domain"
	"github.com/custodia-labs/sercha-view/internal/core/ports/driven"
)

// RenderPool runs highlighters on a bounded number of workers so that
// document decoding cannot starve request goroutines.
type RenderPool struct {
	sem      *semaphore.Weighted
	registry driven.HighlighterRegistry
	metrics  driven.Metrics
}

// NewRenderPool creates a pool of cfg.RenderWorkers workers.
func NewRenderPool(registry driven.HighlighterRegistry, cfg domain.Config, metrics driven.Metrics) *RenderPool {
	workers := cfg.RenderWorkers
	if workers < 1 {
		workers = 1
	}
	if metrics == nil {
		metrics = driven.NopMetrics{}
	}
	return &RenderPool{
		sem:      semaphore.NewWeighted(int64(workers)),
		registry: registry,
		metrics:  metrics,
	}
}

// Render highlights data with the highlighter bound to format.
// It returns the rendered bytes and their content type, or an error
// explaining why nothing was rendered. An empty render is reported as
// domain.ErrNoMatches.
func (p *RenderPool) Render(
	ctx context.Context, format domain.Format, data []byte, keywords domain.Keywords,
) (out []byte, contentType string, err error) {
	if err := p.sem.Acquire(ctx, 1); err != nil {
		return nil, "", err
	}
	defer p.sem.Release(1)

	h := p.registry.For(format)
	start := time.Now()
	defer func() {
		p.metrics.ObserveRender(format, renderOutcome(err), time.Since(start))
	}()

	out, err = safeHighlight(ctx, h, data, keywords)
	if err != nil {
		return nil, "", err
	}
	if len(out) == 0 {
		return nil, "", domain.ErrNoMatches
	}
	return out, h.ContentType(), nil
}

func safeHighlight(
	ctx context.Context, h driven.Highlighter, data []byte, keywords domain.Keywords,
) (out []byte, err error) {
	defer func() {
		if r := recover(); r != nil {
			out = nil
			err = fmt.Errorf("%w: highlighter panic: %v", domain.ErrRenderFailed, r)
		}
	}()
	return h.Highlight(ctx, data, keywords)
}

func renderOutcome(err error) string {
	switch {
	case err == nil:
		return driven.OutcomeRendered
	case errors.Is(err, domain.ErrNoMatches), errors.Is(err, domain.ErrUnsupportedFormat):
		return driven.OutcomeEmpty
	default:
		return driven.OutcomeFailed
	}
}
