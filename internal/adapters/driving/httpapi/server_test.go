package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/sercha-view/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/sercha-view/internal/adapters/driven/urlsign"
	"github.com/custodia-labs/sercha-view/internal/core/domain"
	"github.com/custodia-labs/sercha-view/internal/core/ports/driving"
	"github.com/custodia-labs/sercha-view/internal/logger"
)

// Ensure mockSearchService implements the interface.
var _ driving.SearchService = (*mockSearchService)(nil)

// mockSearchService is a test double for driving.SearchService.
type mockSearchService struct {
	hits      []domain.EnrichedHit
	err       error
	lastQuery string
	lastOpts  domain.SearchOptions
	lastReqID string
}

func (m *mockSearchService) Search(ctx context.Context, query string, opts domain.SearchOptions) ([]domain.EnrichedHit, error) {
	m.lastQuery = query
	m.lastOpts = opts
	m.lastReqID = logger.RequestID(ctx)
	if m.err != nil {
		return nil, m.err
	}
	if strings.TrimSpace(query) == "" {
		return nil, domain.ErrInvalidInput
	}
	if m.hits == nil {
		return []domain.EnrichedHit{}, nil
	}
	return m.hits, nil
}

func (m *mockSearchService) ViewURL(_ context.Context, name string) (string, error) {
	return "http://localhost/objects/" + name, nil
}

type fixture struct {
	search  *mockSearchService
	store   *memory.ObjectStore
	clock   *clock.Mock
	handler http.Handler
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	signer, err := urlsign.New("http://localhost:8080", []byte("test-key"))
	require.NoError(t, err)
	clk := clock.NewMock()
	clk.Set(time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC))
	store := memory.NewObjectStore(signer, clk)
	search := &mockSearchService{}
	metrics := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("# metrics\n"))
	})
	mcp := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusAccepted)
		w.(http.Flusher).Flush()
	})
	srv := NewServer(search, store, signer, Options{Clock: clk, Metrics: metrics, MCP: mcp})
	return &fixture{search: search, store: store, clock: clk, handler: srv.Handler()}
}

func (f *fixture) do(method, target string, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	return rec
}

func (f *fixture) sign(t *testing.T, name string, opts domain.SignOptions) string {
	t.Helper()
	link, err := f.store.Sign(context.Background(), name, opts)
	require.NoError(t, err)
	u, err := url.Parse(link)
	require.NoError(t, err)
	return u.RequestURI()
}

func TestSearch_OK(t *testing.T) {
	f := newFixture(t)
	view := "http://localhost:8080/objects/highlighted_a.txt?sig=x"
	size := int64(12)
	f.search.hits = []domain.EnrichedHit{{
		Name:               "a.txt",
		Score:              1.2,
		ViewURL:            &view,
		FileType:           domain.FileTypeText,
		FileSize:           &size,
		HighlightedContent: `<mark>report</mark>`,
		Highlighted:        true,
	}}

	rec := f.do(http.MethodGet, "/api/search?query=report&limit=5", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var got []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Len(t, got, 1)
	assert.Equal(t, "a.txt", got[0]["name"])
	assert.Equal(t, view, got[0]["view_url"])
	assert.Equal(t, "text", got[0]["file_type"])
	assert.Equal(t, float64(12), got[0]["file_size"])
	assert.Equal(t, "<mark>report</mark>", got[0]["highlighted_content"])

	assert.Equal(t, "report", f.search.lastQuery)
	assert.Equal(t, 5, f.search.lastOpts.Limit)
}

func TestSearch_NullViewURL(t *testing.T) {
	f := newFixture(t)
	f.search.hits = []domain.EnrichedHit{{Name: "gone.pdf", FileType: domain.FileTypePDF}}

	rec := f.do(http.MethodGet, "/api/search?query=x", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"view_url":null`)
}

func TestSearch_FormPost(t *testing.T) {
	f := newFixture(t)

	rec := f.do(http.MethodPost, "/api/search", "query=quarterly+report")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "[]\n", rec.Body.String())
	assert.Equal(t, "quarterly report", f.search.lastQuery)
}

func TestSearch_BadRequests(t *testing.T) {
	f := newFixture(t)

	tests := []struct {
		name   string
		target string
	}{
		{"missing query", "/api/search"},
		{"blank query", "/api/search?query=%20%20"},
		{"bad limit", "/api/search?query=a&limit=abc"},
		{"zero limit", "/api/search?query=a&limit=0"},
		{"huge limit", "/api/search?query=a&limit=1000"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := f.do(http.MethodGet, tt.target, "")
			assert.Equal(t, http.StatusBadRequest, rec.Code)

			var body errorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.NotEmpty(t, body.Error)
		})
	}
}

func TestSearch_Unavailable(t *testing.T) {
	f := newFixture(t)
	f.search.err = errors.Join(domain.ErrSearchUnavailable, errors.New("index closed"))

	rec := f.do(http.MethodGet, "/api/search?query=report", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	var body errorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.NotEmpty(t, body.Error)
	assert.NotContains(t, body.Error, "index closed")
}

func TestRequestID(t *testing.T) {
	f := newFixture(t)

	req := httptest.NewRequest(http.MethodGet, "/api/search?query=a", nil)
	req.Header.Set(RequestIDHeader, "client-42")
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)

	assert.Equal(t, "client-42", rec.Header().Get(RequestIDHeader))
	assert.Equal(t, "client-42", f.search.lastReqID)

	rec = f.do(http.MethodGet, "/healthz", "")
	assert.NotEmpty(t, rec.Header().Get(RequestIDHeader))
}

func TestObject_Serve(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, f.store.Write(ctx, "highlighted_notes/a.txt", []byte("<html>hi</html>"), domain.WriteOptions{}))

	opts := domain.ReadInline(time.Hour)
	opts.ContentType = "text/html; charset=utf-8"
	rec := f.do(http.MethodGet, f.sign(t, "highlighted_notes/a.txt", opts), "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "<html>hi</html>", rec.Body.String())
	assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Equal(t, `inline; filename="a.txt"`, rec.Header().Get("Content-Disposition"))
	assert.NotEmpty(t, rec.Header().Get("ETag"))
}

func TestObject_StoredContentType(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.store.Write(context.Background(), "scan.pdf", []byte("%PDF-1.4"), domain.WriteOptions{}))

	rec := f.do(http.MethodGet, f.sign(t, "scan.pdf", domain.ReadInline(time.Hour)), "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
}

func TestObject_Expired(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.store.Write(context.Background(), "a.txt", []byte("x"), domain.WriteOptions{}))
	target := f.sign(t, "a.txt", domain.ReadInline(time.Hour))

	f.clock.Add(time.Hour + time.Minute)
	rec := f.do(http.MethodGet, target, "")
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Contains(t, rec.Body.String(), "expired")
}

func TestObject_BadSignature(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.store.Write(context.Background(), "a.txt", []byte("x"), domain.WriteOptions{}))
	require.NoError(t, f.store.Write(context.Background(), "b.txt", []byte("y"), domain.WriteOptions{}))

	target := f.sign(t, "a.txt", domain.ReadInline(time.Hour))
	tests := []struct {
		name   string
		target string
	}{
		{"unsigned", "/objects/a.txt"},
		{"other object", strings.Replace(target, "a.txt", "b.txt", 1)},
		{"tampered disposition", strings.Replace(target, "rscd=inline", "rscd=attachment", 1)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := f.do(http.MethodGet, tt.target, "")
			assert.Equal(t, http.StatusForbidden, rec.Code)
		})
	}
}

func TestObject_NotFound(t *testing.T) {
	f := newFixture(t)

	rec := f.do(http.MethodGet, f.sign(t, "highlighted_swept.txt", domain.ReadInline(time.Hour)), "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHealthAndMetrics(t *testing.T) {
	f := newFixture(t)

	rec := f.do(http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())

	rec = f.do(http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "# metrics")
}

func TestMCPMounted(t *testing.T) {
	f := newFixture(t)

	for _, method := range []string{http.MethodGet, http.MethodPost, http.MethodDelete} {
		rec := f.do(method, "/mcp", "")
		assert.Equal(t, http.StatusAccepted, rec.Code, method)
		assert.NotEmpty(t, rec.Header().Get(RequestIDHeader))
	}
}

func TestRouting(t *testing.T) {
	f := newFixture(t)

	assert.Equal(t, http.StatusNotFound, f.do(http.MethodGet, "/nope", "").Code)
	assert.Equal(t, http.StatusMethodNotAllowed, f.do(http.MethodDelete, "/api/search?query=a", "").Code)
}

func TestServer_StartStop(t *testing.T) {
	f := newFixture(t)
	srv := NewServer(f.search, f.store, nil, Options{Addr: "127.0.0.1:0"})

	require.NoError(t, srv.Start())
	defer func() { assert.NoError(t, srv.Stop()) }()

	resp, err := http.Get("http://" + srv.Addr() + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
