package bleveindex

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/sercha-view/internal/core/domain"
)

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	e, err := Open("")
	require.NoError(t, err)
	t.Cleanup(func() { _ = e.Close() })

	ctx := context.Background()
	docs := []domain.IndexDocument{
		{Name: "notes.docx", Path: "/corpus/notes.docx", Content: "Meeting notes and the quarterly report draft"},
		{Name: "summary.pdf", Path: "/corpus/summary.pdf", Content: "Executive summary of the annual report"},
		{Name: "readme.txt", Path: "/corpus/readme.txt", Content: "Read me first. This report explains the layout."},
		{Name: "budget-report.xlsx", Path: "/corpus/budget-report.xlsx", Content: "numbers only"},
	}
	for _, d := range docs {
		d.ModifiedAt = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
		require.NoError(t, e.Index(ctx, d))
	}
	return e
}

func names(hits []domain.SearchHit) []string {
	out := make([]string, 0, len(hits))
	for _, h := range hits {
		out = append(out, h.Name)
	}
	return out
}

func TestEngine_SearchMatchesContentAndTitle(t *testing.T) {
	e := newTestEngine(t)

	hits, err := e.Search(context.Background(), "report", domain.SearchOptions{Limit: 10})
	require.NoError(t, err)
	assert.ElementsMatch(t,
		[]string{"notes.docx", "summary.pdf", "readme.txt", "budget-report.xlsx"}, names(hits))

	for _, h := range hits {
		assert.NotEmpty(t, h.Path)
		assert.Greater(t, h.Score, 0.0)
		if h.Name == "readme.txt" {
			assert.Equal(t, "Read me first. This report explains the layout.", h.Content)
		}
	}
}

func TestEngine_SearchRequiresEveryTerm(t *testing.T) {
	e := newTestEngine(t)

	hits, err := e.Search(context.Background(), "annual REPORT", domain.SearchOptions{})
	require.NoError(t, err)
	assert.Equal(t, []string{"summary.pdf"}, names(hits))

	hits, err = e.Search(context.Background(), "annual meeting", domain.SearchOptions{})
	require.NoError(t, err)
	assert.Empty(t, hits)
}

func TestEngine_SearchLimitAndOffset(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()

	first, err := e.Search(ctx, "report", domain.SearchOptions{Limit: 2})
	require.NoError(t, err)
	assert.Len(t, first, 2)

	rest, err := e.Search(ctx, "report", domain.SearchOptions{Limit: 10, Offset: 2})
	require.NoError(t, err)
	assert.Len(t, rest, 2)
	assert.NotContains(t, names(rest), first[0].Name)
}

func TestEngine_EmptyQuery(t *testing.T) {
	e := newTestEngine(t)
	_, err := e.Search(context.Background(), "   ", domain.SearchOptions{})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestEngine_ReindexReplacesAndDeleteRemoves(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()

	require.NoError(t, e.Index(ctx, domain.IndexDocument{Name: "readme.txt", Content: "nothing relevant"}))
	hits, err := e.Search(ctx, "layout", domain.SearchOptions{})
	require.NoError(t, err)
	assert.Empty(t, hits)

	n, err := e.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(4), n)

	require.NoError(t, e.Delete(ctx, "summary.pdf"))
	require.NoError(t, e.Delete(ctx, "never-indexed.txt"))
	n, err = e.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(3), n)
}

func TestEngine_IndexRejectsEmptyName(t *testing.T) {
	e := newTestEngine(t)
	err := e.Index(context.Background(), domain.IndexDocument{Content: "x"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestEngine_ClosedIsUnavailable(t *testing.T) {
	e := newTestEngine(t)
	require.NoError(t, e.Close())
	require.NoError(t, e.Close())

	_, err := e.Search(context.Background(), "report", domain.SearchOptions{})
	assert.ErrorIs(t, err, domain.ErrSearchUnavailable)
	_, err = e.Count(context.Background())
	assert.ErrorIs(t, err, domain.ErrSearchUnavailable)
	assert.ErrorIs(t, e.Index(context.Background(), domain.IndexDocument{Name: "a"}), domain.ErrSearchUnavailable)
}

func TestOpen_OnDiskPersists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "index.bleve")
	ctx := context.Background()

	e, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, e.Index(ctx, domain.IndexDocument{Name: "a.txt", Content: "persistent words"}))
	require.NoError(t, e.Close())

	reopened, err := Open(path)
	require.NoError(t, err)
	defer reopened.Close()

	hits, err := reopened.Search(ctx, "persistent", domain.SearchOptions{})
	require.NoError(t, err)
	assert.Equal(t, []string{"a.txt"}, names(hits))
}

func TestIndex_TitleAndNameBothSearchable(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()

	require.NoError(t, e.Index(ctx, domain.IndexDocument{
		Name:    "q3_forecast.docx",
		Title:   "Quarterly Outlook",
		Content: "numbers",
	}))

	for _, q := range []string{"outlook", "forecast"} {
		hits, err := e.Search(ctx, q, domain.SearchOptions{})
		require.NoError(t, err)
		assert.Equal(t, []string{"q3_forecast.docx"}, names(hits), q)
	}
}
