package main

import (
	"errors"
	"fmt"

	"github.com/custodia-labs/sercha-view/internal/adapters/driven/config"
	"github.com/custodia-labs/sercha-view/internal/adapters/driven/config/file"
	"github.com/custodia-labs/sercha-view/internal/adapters/driven/search/bleveindex"
	"github.com/custodia-labs/sercha-view/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/sercha-view/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/sercha-view/internal/adapters/driven/urlsign"
	"github.com/custodia-labs/sercha-view/internal/adapters/driving/cli"
	"github.com/custodia-labs/sercha-view/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-view/internal/core/services"
	"github.com/custodia-labs/sercha-view/internal/highlighters"
	"github.com/custodia-labs/sercha-view/internal/highlighters/inline"
	"github.com/custodia-labs/sercha-view/internal/highlighters/palette"
	"github.com/custodia-labs/sercha-view/internal/logger"
	"github.com/custodia-labs/sercha-view/internal/metrics"
	"github.com/custodia-labs/sercha-view/internal/normalisers"
)

// load reads the config file at path and wires every component.
func load(path string) (*cli.App, error) {
	cfgStore, err := file.NewConfigStore(path)
	if err != nil {
		return nil, fmt.Errorf("opening config: %w", err)
	}
	settings, err := config.Build(cfgStore)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	return wire(settings)
}

// wire builds the application from settings.
func wire(settings config.Settings) (*cli.App, error) {
	if settings.LogFormat != "" {
		if err := logger.SetFormat(settings.LogFormat); err != nil {
			return nil, err
		}
	}

	signer, err := urlsign.New(settings.PublicURL, settings.SigningKey)
	if err != nil {
		return nil, fmt.Errorf("url signer: %w", err)
	}

	var store driven.ObjectStore
	switch settings.StorageDriver {
	case config.DriverMemory:
		store = memory.NewObjectStore(signer, nil)
	default:
		store, err = sqlite.NewStore(settings.StoragePath, signer, nil)
		if err != nil {
			return nil, fmt.Errorf("object store: %w", err)
		}
	}

	index, err := bleveindex.Open(settings.IndexPath)
	if err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("search index: %w", err)
	}

	cfg := settings.Core
	m := metrics.New()

	artifacts := services.NewArtifactStore(store, cfg, m)
	renders := services.NewRenderPool(highlighters.NewDefaultRegistry(cfg), cfg, m)
	snippets := inline.New(palette.New(cfg.Palette))
	enricher := services.NewEnricher(store, snippets, renders, artifacts, cfg, m)

	return &cli.App{
		Search:    services.NewSearchService(index, store, enricher, artifacts, cfg, m),
		Ingest:    services.NewIndexer(store, normalisers.NewDefaultRegistry(), index, cfg, nil),
		Sweeper:   services.NewSweeper(store, cfg, nil, m),
		Store:     store,
		Palette:   cfg.Palette,
		Signer:    signer,
		Metrics:   m.Handler(),
		Addr:      settings.ServerAddr,
		CorpusDir: settings.CorpusDir,
		Close: func() error {
			return errors.Join(index.Close(), store.Close())
		},
	}, nil
}
