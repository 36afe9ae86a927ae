package services

import (
	"context"
	"errors"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/sercha-view/internal/core/domain"
)

type enricherFixture struct {
	store    *faultyStore
	text     *mockHighlighter
	metrics  *recordingMetrics
	enricher *Enricher
}

func newEnricherFixture(t *testing.T) *enricherFixture {
	t.Helper()
	store, _ := newFaultyStore(t)
	text := &mockHighlighter{
		format:      domain.FormatPlainText,
		contentType: "text/html; charset=utf-8",
		output:      []byte("<html>rendered</html>"),
	}
	metrics := &recordingMetrics{}
	cfg := testConfig()
	renders := NewRenderPool(mockRegistry{domain.FormatPlainText: text}, cfg, metrics)
	artifacts := NewArtifactStore(store, cfg, metrics)
	return &enricherFixture{
		store:    store,
		text:     text,
		metrics:  metrics,
		enricher: NewEnricher(store, upperSnippets{}, renders, artifacts, cfg, metrics),
	}
}

func objectPath(t *testing.T, link *string) string {
	t.Helper()
	require.NotNil(t, link)
	u, err := url.Parse(*link)
	require.NoError(t, err)
	return u.Path
}

func TestEnricher_Highlighted(t *testing.T) {
	f := newEnricherFixture(t)
	f.store.put(t, "report.txt", []byte("the quarterly report"))

	hits := []domain.SearchHit{{Name: "report.txt", Path: "/docs/report.txt", Content: "the quarterly report", Score: 1.5}}
	out := f.enricher.Enrich(context.Background(), hits, domain.Keywords{"report"})
	require.Len(t, out, 1)

	res := out[0]
	assert.Equal(t, "report.txt", res.Name)
	assert.Equal(t, "/docs/report.txt", res.Path)
	assert.Equal(t, 1.5, res.Score)
	assert.Equal(t, domain.FileTypeText, res.FileType)
	assert.Equal(t, "<mark>the quarterly report</mark>", res.HighlightedContent)
	assert.True(t, res.Highlighted)
	assert.Equal(t, "/objects/highlighted_report.txt", objectPath(t, res.ViewURL))
	require.NotNil(t, res.FileSize)
	assert.Equal(t, int64(len("the quarterly report")), *res.FileSize)
	require.NotNil(t, res.LastModified)

	data, err := f.store.Read(context.Background(), "highlighted_report.txt")
	require.NoError(t, err)
	assert.Equal(t, "<html>rendered</html>", string(data))
	assert.Empty(t, f.metrics.fallbacks)
}

func TestEnricher_FallsBackToOriginal(t *testing.T) {
	tests := []struct {
		name     string
		object   string
		keywords domain.Keywords
		setup    func(f *enricherFixture)
		reason   string
	}{
		{"no keywords", "report.txt", nil, func(*enricherFixture) {}, FallbackNoKeywords},
		{"unsupported format", "data.bin", domain.Keywords{"report"}, func(*enricherFixture) {}, FallbackUnsupported},
		{"no matches", "report.txt", domain.Keywords{"report"}, func(f *enricherFixture) {
			f.text.output, f.text.err = nil, domain.ErrNoMatches
		}, FallbackNoMatches},
		{"render failure", "report.txt", domain.Keywords{"report"}, func(f *enricherFixture) {
			f.text.panicWith = "boom"
		}, FallbackRender},
		{"read failure", "report.txt", domain.Keywords{"report"}, func(f *enricherFixture) {
			f.store.readErr = errors.New("io timeout")
		}, FallbackStore},
		{"publish failure", "report.txt", domain.Keywords{"report"}, func(f *enricherFixture) {
			f.store.writeErr = errors.New("quota exceeded")
		}, FallbackPublish},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newEnricherFixture(t)
			f.store.put(t, tt.object, []byte("the report"))
			tt.setup(f)

			out := f.enricher.Enrich(context.Background(), []domain.SearchHit{{Name: tt.object}}, tt.keywords)
			require.Len(t, out, 1)

			assert.False(t, out[0].Highlighted)
			assert.Equal(t, "/objects/"+tt.object, objectPath(t, out[0].ViewURL))
			assert.NotNil(t, out[0].FileSize, "metadata survives a render fallback")
			assert.Equal(t, []string{tt.reason}, f.metrics.fallbacks)

			ok, _ := f.store.ObjectStore.Exists(context.Background(), domain.DerivedName(tt.object))
			assert.False(t, ok)
		})
	}
}

func TestEnricher_MissingObject(t *testing.T) {
	f := newEnricherFixture(t)

	out := f.enricher.Enrich(context.Background(), []domain.SearchHit{{Name: "gone.pdf", Content: "old text"}}, domain.Keywords{"text"})
	require.Len(t, out, 1)

	res := out[0]
	assert.Nil(t, res.ViewURL)
	assert.Nil(t, res.FileSize)
	assert.Nil(t, res.LastModified)
	assert.Equal(t, domain.FileTypePDF, res.FileType)
	assert.Equal(t, "<mark>old text</mark>", res.HighlightedContent)
	assert.Equal(t, []string{FallbackMissing}, f.metrics.fallbacks)
}

func TestEnricher_StoreUnavailable(t *testing.T) {
	f := newEnricherFixture(t)
	f.store.existsErr = errors.New("connection reset")

	out := f.enricher.Enrich(context.Background(), []domain.SearchHit{{Name: "report.txt"}}, domain.Keywords{"report"})
	require.Len(t, out, 1)
	assert.Nil(t, out[0].ViewURL)
	assert.Equal(t, []string{FallbackStore}, f.metrics.fallbacks)
}

func TestEnricher_SignFailure(t *testing.T) {
	f := newEnricherFixture(t)
	f.store.put(t, "report.txt", []byte("the report"))
	f.store.signErr = errors.New("no signer")

	out := f.enricher.Enrich(context.Background(), []domain.SearchHit{{Name: "report.txt"}}, domain.Keywords{"report"})
	require.Len(t, out, 1)
	assert.Nil(t, out[0].ViewURL)
	assert.False(t, out[0].Highlighted)
	assert.NotNil(t, out[0].FileSize)
}

func TestEnricher_SkipsDerivedHits(t *testing.T) {
	f := newEnricherFixture(t)
	f.store.put(t, "highlighted_report.txt", []byte("x"))

	out := f.enricher.Enrich(context.Background(), []domain.SearchHit{{Name: "highlighted_report.txt"}}, domain.Keywords{"x"})
	require.Len(t, out, 1)
	assert.Nil(t, out[0].ViewURL)
	assert.Equal(t, 0, f.text.calls)
}

func TestEnricher_PreservesOrder(t *testing.T) {
	f := newEnricherFixture(t)
	names := []string{"e.txt", "d.txt", "c.bin", "b.txt", "a.txt", "missing.txt"}
	var hits []domain.SearchHit
	for _, n := range names {
		if n != "missing.txt" {
			f.store.put(t, n, []byte("report"))
		}
		hits = append(hits, domain.SearchHit{Name: n})
	}

	out := f.enricher.Enrich(context.Background(), hits, domain.Keywords{"report"})
	require.Len(t, out, len(names))
	for i, n := range names {
		assert.Equal(t, n, out[i].Name)
	}
	assert.True(t, out[0].Highlighted)
	assert.False(t, out[2].Highlighted)
	assert.Nil(t, out[5].ViewURL)
}

func TestEnricher_Empty(t *testing.T) {
	f := newEnricherFixture(t)

	out := f.enricher.Enrich(context.Background(), nil, domain.Keywords{"x"})
	assert.NotNil(t, out)
	assert.Empty(t, out)
}
