package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/sercha-view/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/sercha-view/internal/adapters/driven/urlsign"
	"github.com/custodia-labs/sercha-view/internal/core/domain"
	"github.com/custodia-labs/sercha-view/internal/core/ports/driven"
)

// --- Mock implementations for service testing ---

// faultyStore wraps an in-memory store and injects errors per operation.
type faultyStore struct {
	*memory.ObjectStore

	mu         sync.Mutex
	existsErr  error
	readErr    error
	writeErr   error
	signErr    error
	listErr    error
	propsErr   map[string]error
	deleteErr  map[string]error
	writes     []string
	signed     []string
	deleted    []string
	afterWrite func(name string)
}

func newFaultyStore(t *testing.T) (*faultyStore, *clock.Mock) {
	t.Helper()
	signer, err := urlsign.New("http://localhost:8080", []byte("test-key"))
	require.NoError(t, err)
	clk := clock.NewMock()
	clk.Set(time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC))
	return &faultyStore{
		ObjectStore: memory.NewObjectStore(signer, clk),
		propsErr:    make(map[string]error),
		deleteErr:   make(map[string]error),
	}, clk
}

func (m *faultyStore) Exists(ctx context.Context, name string) (bool, error) {
	if m.existsErr != nil {
		return false, m.existsErr
	}
	return m.ObjectStore.Exists(ctx, name)
}

func (m *faultyStore) Read(ctx context.Context, name string) ([]byte, error) {
	if m.readErr != nil {
		return nil, m.readErr
	}
	return m.ObjectStore.Read(ctx, name)
}

func (m *faultyStore) Write(ctx context.Context, name string, data []byte, opts domain.WriteOptions) error {
	if m.writeErr != nil {
		return m.writeErr
	}
	if err := m.ObjectStore.Write(ctx, name, data, opts); err != nil {
		return err
	}
	m.mu.Lock()
	m.writes = append(m.writes, name)
	hook := m.afterWrite
	m.mu.Unlock()
	if hook != nil {
		hook(name)
	}
	return nil
}

func (m *faultyStore) Delete(ctx context.Context, name string) error {
	m.mu.Lock()
	err := m.deleteErr[name]
	m.mu.Unlock()
	if err != nil {
		return err
	}
	if err := m.ObjectStore.Delete(ctx, name); err != nil {
		return err
	}
	m.mu.Lock()
	m.deleted = append(m.deleted, name)
	m.mu.Unlock()
	return nil
}

func (m *faultyStore) List(ctx context.Context, prefix string) ([]domain.ObjectInfo, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	return m.ObjectStore.List(ctx, prefix)
}

func (m *faultyStore) Properties(ctx context.Context, name string) (*domain.ObjectInfo, error) {
	m.mu.Lock()
	err := m.propsErr[name]
	m.mu.Unlock()
	if err != nil {
		return nil, err
	}
	return m.ObjectStore.Properties(ctx, name)
}

func (m *faultyStore) Sign(ctx context.Context, name string, opts domain.SignOptions) (string, error) {
	if m.signErr != nil {
		return "", m.signErr
	}
	m.mu.Lock()
	m.signed = append(m.signed, name)
	m.mu.Unlock()
	return m.ObjectStore.Sign(ctx, name, opts)
}

func (m *faultyStore) put(t *testing.T, name string, data []byte) {
	t.Helper()
	require.NoError(t, m.ObjectStore.Write(context.Background(), name, data, domain.WriteOptions{Overwrite: true}))
}

// recordingMetrics implements driven.Metrics and keeps every observation.
type recordingMetrics struct {
	mu        sync.Mutex
	renders   []string
	publishes []bool
	fallbacks []string
	sweeps    []domain.SweepReport
	searches  []bool
}

func (m *recordingMetrics) ObserveRender(_ domain.Format, outcome string, _ time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.renders = append(m.renders, outcome)
}

func (m *recordingMetrics) ObservePublish(ok bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.publishes = append(m.publishes, ok)
}

func (m *recordingMetrics) ObserveFallback(reason string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fallbacks = append(m.fallbacks, reason)
}

func (m *recordingMetrics) ObserveSweep(report domain.SweepReport) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sweeps = append(m.sweeps, report)
}

func (m *recordingMetrics) ObserveSearch(ok bool, _ int, _ time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.searches = append(m.searches, ok)
}

// mockHighlighter implements driven.Highlighter for testing.
type mockHighlighter struct {
	format      domain.Format
	contentType string
	output      []byte
	err         error
	panicWith   any

	mu    sync.Mutex
	calls int
}

func (m *mockHighlighter) Format() domain.Format { return m.format }
func (m *mockHighlighter) ContentType() string   { return m.contentType }

func (m *mockHighlighter) Highlight(_ context.Context, _ []byte, _ domain.Keywords) ([]byte, error) {
	m.mu.Lock()
	m.calls++
	m.mu.Unlock()
	if m.panicWith != nil {
		panic(m.panicWith)
	}
	return m.output, m.err
}

// mockRegistry implements driven.HighlighterRegistry for testing.
type mockRegistry map[domain.Format]driven.Highlighter

func (m mockRegistry) For(f domain.Format) driven.Highlighter {
	if h, ok := m[f]; ok {
		return h
	}
	return &mockHighlighter{format: f, err: domain.ErrUnsupportedFormat}
}

// upperSnippets implements driven.SnippetHighlighter by marking the whole text.
type upperSnippets struct{}

func (upperSnippets) HighlightSnippet(text string, _ domain.Keywords) string {
	return "<mark>" + text + "</mark>"
}

// mockSearchEngine implements driven.SearchEngine for testing.
type mockSearchEngine struct {
	mu        sync.Mutex
	hits      []domain.SearchHit
	searchErr error
	indexErr  error
	indexed   map[string]domain.IndexDocument
	deleted   []string
	lastOpts  domain.SearchOptions
}

func newMockSearchEngine() *mockSearchEngine {
	return &mockSearchEngine{indexed: make(map[string]domain.IndexDocument)}
}

func (m *mockSearchEngine) Index(_ context.Context, doc domain.IndexDocument) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.indexErr != nil {
		return m.indexErr
	}
	m.indexed[doc.Name] = doc
	return nil
}

func (m *mockSearchEngine) Delete(_ context.Context, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.indexed, name)
	m.deleted = append(m.deleted, name)
	return nil
}

func (m *mockSearchEngine) Search(_ context.Context, _ string, opts domain.SearchOptions) ([]domain.SearchHit, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastOpts = opts
	if m.searchErr != nil {
		return nil, m.searchErr
	}
	return m.hits, nil
}

func (m *mockSearchEngine) Count(_ context.Context) (uint64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return uint64(len(m.indexed)), nil
}

func (m *mockSearchEngine) Close() error {
	return nil
}

// mockConnector implements driven.Connector for testing.
type mockConnector struct {
	docs        []domain.RawDocument
	errs        []error
	changes     []domain.RawDocumentChange
	validateErr error
	watchErr    error
}

func (m *mockConnector) Type() string { return "mock" }

func (m *mockConnector) Validate(_ context.Context) error { return m.validateErr }

func (m *mockConnector) FullSync(_ context.Context) (<-chan domain.RawDocument, <-chan error) {
	docs := make(chan domain.RawDocument, len(m.docs))
	errs := make(chan error, len(m.errs))
	for _, d := range m.docs {
		docs <- d
	}
	for _, e := range m.errs {
		errs <- e
	}
	close(errs)
	close(docs)
	return docs, errs
}

func (m *mockConnector) Watch(_ context.Context) (<-chan domain.RawDocumentChange, error) {
	if m.watchErr != nil {
		return nil, m.watchErr
	}
	ch := make(chan domain.RawDocumentChange, len(m.changes))
	for _, c := range m.changes {
		ch <- c
	}
	close(ch)
	return ch, nil
}

func (m *mockConnector) Close() error { return nil }

// stubNormalisers implements driven.NormaliserRegistry by echoing text content.
type stubNormalisers struct {
	err error
}

func (s *stubNormalisers) Normalise(_ context.Context, raw *domain.RawDocument) (*driven.NormaliseResult, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &driven.NormaliseResult{Document: domain.Document{
		Name:    raw.Name,
		Title:   raw.FallbackTitle(),
		Content: string(raw.Content),
	}}, nil
}

func (s *stubNormalisers) Register(driven.Normaliser) {}

func (s *stubNormalisers) SupportedMIMETypes() []string { return nil }

func testConfig() domain.Config {
	cfg := domain.DefaultConfig()
	cfg.RenderWorkers = 2
	return cfg
}
