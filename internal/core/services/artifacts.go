package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/custodia-labs/sercha-view/internal/core/domain"
	"github.com/custodia-labs/sercha-view/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-view/internal/logger"
)

// ArtifactStore publishes derived artifacts and issues their access URLs.
// Publishing never checks for a concurrent writer: the last write wins.
type ArtifactStore struct {
	store   driven.ObjectStore
	ttl     time.Duration
	metrics driven.Metrics
}

// NewArtifactStore creates an ArtifactStore issuing URLs valid for cfg.URLTTL.
func NewArtifactStore(store driven.ObjectStore, cfg domain.Config, metrics driven.Metrics) *ArtifactStore {
	if metrics == nil {
		metrics = driven.NopMetrics{}
	}
	return &ArtifactStore{
		store:   store,
		ttl:     cfg.URLTTL,
		metrics: metrics,
	}
}

// Publish writes derived under the derived name of sourceName, replacing any
// previous artifact, and returns an inline read URL for it.
// The URL is only issued after the write has completed.
func (a *ArtifactStore) Publish(
	ctx context.Context, sourceName string, derived []byte, contentType string,
) (string, error) {
	if len(derived) == 0 {
		return "", fmt.Errorf("%w: empty artifact for %q", domain.ErrInvalidInput, sourceName)
	}

	name := domain.DerivedName(sourceName)
	if contentType == "" {
		contentType = domain.ContentTypeFromName(sourceName)
	}

	err := a.store.Write(ctx, name, derived, domain.WriteOptions{
		Overwrite:   true,
		ContentType: contentType,
	})
	if err != nil {
		a.metrics.ObservePublish(false)
		return "", storeError("write", name, err)
	}

	opts := domain.ReadInline(a.ttl)
	opts.ContentType = contentType
	url, err := a.store.Sign(ctx, name, opts)
	if err != nil {
		a.metrics.ObservePublish(false)
		return "", storeError("sign", name, err)
	}

	a.metrics.ObservePublish(true)
	logger.Debug("artifacts: published %s (%d bytes)", name, len(derived))
	return url, nil
}

// SignOriginal returns an inline read URL for an unmodified source object.
func (a *ArtifactStore) SignOriginal(ctx context.Context, name string) (string, error) {
	url, err := a.store.Sign(ctx, name, domain.ReadInline(a.ttl))
	if err != nil {
		return "", storeError("sign", name, err)
	}
	return url, nil
}

// storeError wraps err in domain.ErrStoreUnavailable unless it already
// carries it or is a context error.
func storeError(op, name string, err error) error {
	switch {
	case errors.Is(err, domain.ErrStoreUnavailable),
		errors.Is(err, context.Canceled),
		errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("%s %s: %w", op, name, err)
	default:
		return fmt.Errorf("%w: %s %s: %w", domain.ErrStoreUnavailable, op, name, err)
	}
}
