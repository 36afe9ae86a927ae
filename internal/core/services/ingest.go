package services

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/benbjohnson/clock"
	"golang.org/x/sync/errgroup"

	"github.com/custodia-labs/sercha-view/internal/core/domain"
	"github.com/custodia-labs/sercha-view/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-view/internal/core/ports/driving"
	"github.com/custodia-labs/sercha-view/internal/logger"
)

// Ensure Indexer implements the interface.
var _ driving.IngestService = (*Indexer)(nil)

// Indexer stores source documents and feeds their text to the search engine.
type Indexer struct {
	store       driven.ObjectStore
	registry    driven.NormaliserRegistry
	searchIndex driven.SearchEngine
	clock       clock.Clock
	workers     int
}

// NewIndexer creates an indexer. Reindex uses cfg.RenderWorkers workers.
// A nil clock uses the wall clock.
func NewIndexer(
	store driven.ObjectStore,
	registry driven.NormaliserRegistry,
	searchIndex driven.SearchEngine,
	cfg domain.Config,
	clk clock.Clock,
) *Indexer {
	if clk == nil {
		clk = clock.New()
	}
	workers := cfg.RenderWorkers
	if workers < 1 {
		workers = 1
	}
	return &Indexer{
		store:       store,
		registry:    registry,
		searchIndex: searchIndex,
		clock:       clk,
		workers:     workers,
	}
}

// Ingest writes raw to the store, replacing any previous version, and indexes it.
func (ix *Indexer) Ingest(ctx context.Context, raw domain.RawDocument) error {
	if err := domain.ValidateSourceName(raw.Name); err != nil {
		return err
	}
	if raw.MIMEType == "" {
		raw.MIMEType = domain.ContentTypeFromName(raw.Name)
	}
	if raw.URI == "" {
		raw.URI = raw.Name
	}

	err := ix.store.Write(ctx, raw.Name, raw.Content, domain.WriteOptions{
		Overwrite:   true,
		ContentType: raw.MIMEType,
	})
	if err != nil {
		return storeError("write", raw.Name, err)
	}

	return ix.index(ctx, &raw, ix.clock.Now())
}

// Remove deletes a source object, its derived artifact and its index entry.
// Returns domain.ErrNotFound when the source object did not exist.
func (ix *Indexer) Remove(ctx context.Context, name string) error {
	if err := domain.ValidateSourceName(name); err != nil {
		return err
	}

	storeErr := ix.store.Delete(ctx, name)
	if storeErr != nil && !errors.Is(storeErr, domain.ErrNotFound) {
		return storeError("delete", name, storeErr)
	}

	derived := domain.DerivedName(name)
	if err := ix.store.Delete(ctx, derived); err != nil && !errors.Is(err, domain.ErrNotFound) {
		logger.Warn("ingest: delete %s: %v", derived, err)
	}

	if err := ix.searchIndex.Delete(ctx, name); err != nil {
		return fmt.Errorf("unindex %s: %w", name, err)
	}
	if storeErr != nil {
		return fmt.Errorf("%w: %s", domain.ErrNotFound, name)
	}
	return nil
}

// Reindex indexes every source object of the store again.
// Objects that cannot be read or indexed are logged and skipped.
func (ix *Indexer) Reindex(ctx context.Context) (int, error) {
	infos, err := ix.store.List(ctx, "")
	if err != nil {
		return 0, storeError("list", "", err)
	}

	var indexed atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(ix.workers)
	for _, info := range infos {
		if domain.IsDerivedName(info.Name) {
			continue
		}
		g.Go(func() error {
			data, err := ix.store.Read(gctx, info.Name)
			if err != nil {
				logger.Warn("ingest: read %s: %v", info.Name, err)
				return nil
			}
			raw := domain.RawDocument{
				Name:     info.Name,
				URI:      info.Name,
				MIMEType: info.ContentType,
				Content:  data,
			}
			if err := ix.index(gctx, &raw, info.LastModified); err != nil {
				logger.Warn("ingest: %v", err)
				return nil
			}
			indexed.Add(1)
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return int(indexed.Load()), err
	}
	logger.Info("ingest: reindexed %d objects", indexed.Load())
	return int(indexed.Load()), nil
}

// Sync ingests every document yielded by a connector's full sync.
func (ix *Indexer) Sync(ctx context.Context, conn driven.Connector) (domain.IngestReport, error) {
	var report domain.IngestReport

	if err := conn.Validate(ctx); err != nil {
		return report, fmt.Errorf("validate %s connector: %w", conn.Type(), err)
	}

	docsCh, errsCh := conn.FullSync(ctx)
	for docsCh != nil || errsCh != nil {
		select {
		case <-ctx.Done():
			return report, ctx.Err()

		case err, ok := <-errsCh:
			if !ok {
				errsCh = nil
				continue
			}
			if err != nil {
				report.Failed++
				logger.Warn("ingest: %s connector: %v", conn.Type(), err)
			}

		case raw, ok := <-docsCh:
			if !ok {
				docsCh = nil
				continue
			}
			logger.Debug("Processing: %s", raw.URI)
			if err := ix.Ingest(ctx, raw); err != nil {
				report.Failed++
				logger.Warn("ingest: %s: %v", raw.URI, err)
				continue
			}
			report.Ingested++
		}
	}

	logger.Info("ingest: synced %d documents (%d failed)", report.Ingested, report.Failed)
	return report, nil
}

// Watch applies change events from conn until ctx is cancelled or the
// connector closes its channel.
func (ix *Indexer) Watch(ctx context.Context, conn driven.Connector) error {
	changes, err := conn.Watch(ctx)
	if err != nil {
		return fmt.Errorf("watch %s connector: %w", conn.Type(), err)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case change, ok := <-changes:
			if !ok {
				return nil
			}
			doc := change.Document
			switch change.Type {
			case domain.ChangeCreated, domain.ChangeUpdated:
				logger.Debug("Processing: %s", doc.URI)
				if err := ix.Ingest(ctx, doc); err != nil {
					logger.Warn("ingest: %s: %v", doc.URI, err)
				}

			case domain.ChangeDeleted:
				logger.Debug("Deleting: %s", doc.URI)
				if err := ix.Remove(ctx, doc.Name); err != nil && !errors.Is(err, domain.ErrNotFound) {
					logger.Warn("ingest: remove %s: %v", doc.Name, err)
				}
			}
		}
	}
}

// index extracts the text of raw and adds it to the search engine.
// A document no normaliser understands is still indexed by name.
func (ix *Indexer) index(ctx context.Context, raw *domain.RawDocument, modified time.Time) error {
	doc := domain.IndexDocument{
		Name:       raw.Name,
		Path:       raw.URI,
		ModifiedAt: modified,
	}

	result, err := ix.registry.Normalise(ctx, raw)
	switch {
	case err == nil:
		doc.Title = result.Document.Title
		doc.Content = result.Document.Content
	case errors.Is(err, domain.ErrUnsupportedFormat):
		logger.Debug("ingest: no normaliser for %s (%s)", raw.Name, raw.MIMEType)
	default:
		logger.Warn("ingest: normalise %s: %v", raw.Name, err)
	}

	if err := ix.searchIndex.Index(ctx, doc); err != nil {
		return fmt.Errorf("index %s: %w", raw.Name, err)
	}
	return nil
}
