package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/sercha-view/internal/core/domain"
)

// sweepCount returns the number of recorded sweeps.
func (m *recordingMetrics) sweepCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sweeps)
}

func TestSweeper_DeletesOnlyExpired(t *testing.T) {
	store, clk := newFaultyStore(t)
	sweeper := NewSweeper(store, testConfig(), clk, nil)
	ctx := context.Background()

	store.put(t, "report.txt", []byte("source"))
	store.put(t, "highlighted_old.txt", []byte("old"))
	clk.Add(3 * time.Minute)
	store.put(t, "highlighted_new.txt", []byte("new"))
	clk.Add(30 * time.Second)

	report := sweeper.SweepOnce(ctx)
	assert.Equal(t, domain.SweepReport{Scanned: 2, Expired: 1, Deleted: 1}, report)

	ok, _ := store.Exists(ctx, "highlighted_old.txt")
	assert.False(t, ok)
	ok, _ = store.Exists(ctx, "highlighted_new.txt")
	assert.True(t, ok)
	ok, _ = store.Exists(ctx, "report.txt")
	assert.True(t, ok, "source objects are never swept")
}

func TestSweeper_RetentionBoundary(t *testing.T) {
	store, clk := newFaultyStore(t)
	sweeper := NewSweeper(store, testConfig(), clk, nil)

	store.put(t, "highlighted_a.txt", []byte("a"))
	clk.Add(domain.DefaultRetention)

	report := sweeper.SweepOnce(context.Background())
	assert.Equal(t, 0, report.Deleted)

	clk.Add(time.Second)
	report = sweeper.SweepOnce(context.Background())
	assert.Equal(t, 1, report.Deleted)
}

func TestSweeper_OverwriteResetsAge(t *testing.T) {
	store, clk := newFaultyStore(t)
	sweeper := NewSweeper(store, testConfig(), clk, nil)

	store.put(t, "highlighted_a.txt", []byte("v1"))
	clk.Add(3 * time.Minute)
	store.put(t, "highlighted_a.txt", []byte("v2"))

	report := sweeper.SweepOnce(context.Background())
	assert.Equal(t, domain.SweepReport{Scanned: 1}, report)
}

func TestSweeper_DeleteFailureDoesNotStopCycle(t *testing.T) {
	store, clk := newFaultyStore(t)
	metrics := &recordingMetrics{}
	sweeper := NewSweeper(store, testConfig(), clk, metrics)

	store.put(t, "highlighted_a.txt", []byte("a"))
	store.put(t, "highlighted_b.txt", []byte("b"))
	store.put(t, "highlighted_c.txt", []byte("c"))
	store.deleteErr["highlighted_b.txt"] = errors.New("permission denied")
	clk.Add(5 * time.Minute)

	report := sweeper.SweepOnce(context.Background())
	assert.Equal(t, domain.SweepReport{Scanned: 3, Expired: 3, Deleted: 2, Failed: 1}, report)
	assert.Equal(t, []string{"highlighted_a.txt", "highlighted_c.txt"}, store.deleted)
	assert.Equal(t, []domain.SweepReport{report}, metrics.sweeps)
}

func TestSweeper_PropertiesFailure(t *testing.T) {
	store, clk := newFaultyStore(t)
	sweeper := NewSweeper(store, testConfig(), clk, nil)

	store.put(t, "highlighted_a.txt", []byte("a"))
	store.put(t, "highlighted_b.txt", []byte("b"))
	store.propsErr["highlighted_a.txt"] = errors.New("timeout")
	store.propsErr["highlighted_b.txt"] = domain.ErrNotFound
	clk.Add(5 * time.Minute)

	report := sweeper.SweepOnce(context.Background())
	assert.Equal(t, domain.SweepReport{Scanned: 2, Failed: 1}, report, "a vanished object is not a failure")
}

func TestSweeper_ListFailure(t *testing.T) {
	store, clk := newFaultyStore(t)
	store.listErr = errors.New("store offline")
	metrics := &recordingMetrics{}
	sweeper := NewSweeper(store, testConfig(), clk, metrics)

	report := sweeper.SweepOnce(context.Background())
	assert.Equal(t, domain.SweepReport{}, report)
	assert.Len(t, metrics.sweeps, 1)
}

func TestSweeper_DeleteRate(t *testing.T) {
	store, clk := newFaultyStore(t)
	cfg := testConfig()
	cfg.DeleteRate = 1000
	sweeper := NewSweeper(store, cfg, clk, nil)
	require.NotNil(t, sweeper.limiter)

	store.put(t, "highlighted_a.txt", []byte("a"))
	store.put(t, "highlighted_b.txt", []byte("b"))
	clk.Add(5 * time.Minute)

	report := sweeper.SweepOnce(context.Background())
	assert.Equal(t, 2, report.Deleted)
}

func TestSweeper_StartStop(t *testing.T) {
	store, clk := newFaultyStore(t)
	metrics := &recordingMetrics{}
	sweeper := NewSweeper(store, testConfig(), clk, metrics)

	var wg sync.WaitGroup
	var startErr error
	wg.Add(1)
	go func() {
		defer wg.Done()
		startErr = sweeper.Start(context.Background())
	}()

	require.Eventually(t, func() bool { return metrics.sweepCount() == 1 }, time.Second, time.Millisecond,
		"first cycle runs immediately")

	clk.Add(domain.DefaultSweepInterval)
	require.Eventually(t, func() bool { return metrics.sweepCount() == 2 }, time.Second, time.Millisecond)

	require.NoError(t, sweeper.Stop())
	wg.Wait()
	assert.NoError(t, startErr)

	// Stop on a stopped sweeper is a no-op.
	assert.NoError(t, sweeper.Stop())
}

func TestSweeper_StartCancelled(t *testing.T) {
	store, clk := newFaultyStore(t)
	sweeper := NewSweeper(store, testConfig(), clk, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- sweeper.Start(ctx) }()

	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("Start did not return after cancel")
	}
}

func TestSweeper_CancelledCycle(t *testing.T) {
	store, clk := newFaultyStore(t)
	sweeper := NewSweeper(store, testConfig(), clk, nil)

	store.put(t, "highlighted_a.txt", []byte("a"))
	clk.Add(5 * time.Minute)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	report := sweeper.SweepOnce(ctx)
	assert.Equal(t, 0, report.Scanned)
}
