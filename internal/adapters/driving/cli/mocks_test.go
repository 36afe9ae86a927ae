package cli

import (
	"bytes"
	"context"
	"sync"
	"testing"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/sercha-view/internal/core/domain"
	"github.com/custodia-labs/sercha-view/internal/core/ports/driven"
)

type mockSearch struct {
	hits     []domain.EnrichedHit
	err      error
	urls     map[string]string
	lastOpts domain.SearchOptions
}

func (m *mockSearch) Search(_ context.Context, _ string, opts domain.SearchOptions) ([]domain.EnrichedHit, error) {
	m.lastOpts = opts
	if m.err != nil {
		return nil, m.err
	}
	return m.hits, nil
}

func (m *mockSearch) ViewURL(_ context.Context, name string) (string, error) {
	if u, ok := m.urls[name]; ok {
		return u, nil
	}
	return "", domain.ErrNotFound
}

type mockIngest struct {
	mu        sync.Mutex
	ingested  []domain.RawDocument
	removed   []string
	synced    int
	watched   int
	ingestErr error
	removeErr error
	reindexed int
}

func (m *mockIngest) Ingest(_ context.Context, raw domain.RawDocument) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ingestErr != nil {
		return m.ingestErr
	}
	m.ingested = append(m.ingested, raw)
	return nil
}

func (m *mockIngest) Remove(_ context.Context, name string) error {
	if m.removeErr != nil {
		return m.removeErr
	}
	m.removed = append(m.removed, name)
	return nil
}

func (m *mockIngest) Reindex(context.Context) (int, error) {
	return m.reindexed, nil
}

func (m *mockIngest) Sync(ctx context.Context, conn driven.Connector) (domain.IngestReport, error) {
	var report domain.IngestReport
	docs, errs := conn.FullSync(ctx)
	for docs != nil || errs != nil {
		select {
		case d, ok := <-docs:
			if !ok {
				docs = nil
				continue
			}
			if err := m.Ingest(ctx, d); err != nil {
				report.Failed++
				continue
			}
			report.Ingested++
		case _, ok := <-errs:
			if !ok {
				errs = nil
				continue
			}
			report.Failed++
		}
	}
	m.mu.Lock()
	m.synced++
	m.mu.Unlock()
	return report, nil
}

func (m *mockIngest) Watch(ctx context.Context, _ driven.Connector) error {
	m.mu.Lock()
	m.watched++
	m.mu.Unlock()
	<-ctx.Done()
	return ctx.Err()
}

type mockSweeper struct {
	report  domain.SweepReport
	mu      sync.Mutex
	started bool
	stopped bool
}

func (m *mockSweeper) Start(ctx context.Context) error {
	m.mu.Lock()
	m.started = true
	m.mu.Unlock()
	<-ctx.Done()
	return ctx.Err()
}

func (m *mockSweeper) Stop() error {
	m.mu.Lock()
	m.stopped = true
	m.mu.Unlock()
	return nil
}

func (m *mockSweeper) SweepOnce(context.Context) domain.SweepReport {
	return m.report
}

// setupTestApp installs a with mock services as the current application
// and returns a buffer capturing command output.
func setupTestApp(t *testing.T, a *App) *bytes.Buffer {
	t.Helper()

	oldApp, oldLoader := app, loader
	app = a
	loader = nil

	resetContexts(rootCmd)
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)

	t.Cleanup(func() {
		app, loader = oldApp, oldLoader
		rootCmd.SetArgs(nil)
		resetContexts(rootCmd)
		searchJSON = false
		searchLimit = domain.DefaultSearchLimit
		ingestName = ""
		serveAddr, serveWatch, serveNoSweep = "", "", false
		mcpAddr = ""
	})
	return buf
}

// resetContexts clears the context cobra stores on cmd and its subcommands
// during Execute. A subcommand keeps the first context it saw, so a context
// cancelled by one test would otherwise leak into the next.
func resetContexts(cmd *cobra.Command) {
	cmd.SetContext(nil) //nolint:staticcheck // nil makes cobra inherit the parent context
	for _, sub := range cmd.Commands() {
		resetContexts(sub)
	}
}

func execute(args ...string) error {
	rootCmd.SetArgs(args)
	return rootCmd.Execute()
}

func strPtr(s string) *string { return &s }
