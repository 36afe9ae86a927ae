package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"golang.org/x/time/rate"

	"github.com/custodia-labs/sercha-view/internal/core/domain"
	"github.com/custodia-labs/sercha-view/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-view/internal/core/ports/driving"
	"github.com/custodia-labs/sercha-view/internal/logger"
)

// Ensure Sweeper implements the interface.
var _ driving.Sweeper = (*Sweeper)(nil)

// Sweeper deletes derived artifacts older than the retention window.
// It runs concurrently with requests against the same object store.
// Per-object failures are logged and skipped; a cycle never fails.
type Sweeper struct {
	store     driven.ObjectStore
	clock     clock.Clock
	interval  time.Duration
	retention time.Duration
	limiter   *rate.Limiter
	metrics   driven.Metrics

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	wg      sync.WaitGroup
}

// NewSweeper creates a sweeper with the interval, retention and delete rate of cfg.
// A nil clock uses the wall clock.
func NewSweeper(store driven.ObjectStore, cfg domain.Config, clk clock.Clock, metrics driven.Metrics) *Sweeper {
	if clk == nil {
		clk = clock.New()
	}
	if metrics == nil {
		metrics = driven.NopMetrics{}
	}
	s := &Sweeper{
		store:     store,
		clock:     clk,
		interval:  cfg.SweepInterval,
		retention: cfg.Retention,
		metrics:   metrics,
	}
	if cfg.DeleteRate > 0 {
		s.limiter = rate.NewLimiter(rate.Limit(cfg.DeleteRate), 1)
	}
	return s
}

// Start runs a sweep immediately and then once per interval.
// This method blocks until Stop is called or ctx is cancelled.
func (s *Sweeper) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return nil // Already running
	}
	s.running = true
	s.stopCh = make(chan struct{})
	stopCh := s.stopCh
	s.wg.Add(1)
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.running = false
		s.mu.Unlock()
		s.wg.Done()
	}()

	logger.Info("sweeper: started (interval %s, retention %s)", s.interval, s.retention)

	ticker := s.clock.Ticker(s.interval)
	defer ticker.Stop()

	s.SweepOnce(ctx)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-stopCh:
			return nil
		case <-ticker.C:
			s.SweepOnce(ctx)
		}
	}
}

// Stop ends the loop and waits for an in-flight cycle to finish.
func (s *Sweeper) Stop() error {
	s.mu.Lock()
	if !s.running || s.stopCh == nil {
		s.mu.Unlock()
		return nil
	}
	select {
	case <-s.stopCh:
	default:
		close(s.stopCh)
	}
	s.mu.Unlock()

	s.wg.Wait()
	return nil
}

// SweepOnce lists derived artifacts and deletes the expired ones.
func (s *Sweeper) SweepOnce(ctx context.Context) domain.SweepReport {
	var report domain.SweepReport
	defer func() { s.metrics.ObserveSweep(report) }()

	infos, err := s.store.List(ctx, domain.DerivedPrefix)
	if err != nil {
		logger.Warn("sweeper: list failed: %v", err)
		return report
	}

	for _, info := range infos {
		if !domain.IsDerivedName(info.Name) {
			continue
		}
		if ctx.Err() != nil {
			break
		}
		report.Scanned++

		expired, err := s.sweepObject(ctx, info.Name)
		if expired {
			report.Expired++
		}
		switch {
		case err == nil && expired:
			report.Deleted++
		case errors.Is(err, domain.ErrNotFound):
			logger.Debug("sweeper: %s already gone", info.Name)
		case err != nil:
			report.Failed++
			logger.Warn("sweeper: %s: %v", info.Name, err)
		}
	}

	if report.Scanned > 0 {
		logger.Info("sweeper: scanned %d, expired %d, deleted %d, failed %d",
			report.Scanned, report.Expired, report.Deleted, report.Failed)
	}
	return report
}

// sweepObject re-reads the creation time of name, since it may have been
// overwritten after listing, and deletes it once past retention.
func (s *Sweeper) sweepObject(ctx context.Context, name string) (expired bool, err error) {
	props, err := s.store.Properties(ctx, name)
	if err != nil {
		return false, err
	}
	if s.clock.Now().Sub(props.CreatedAt) <= s.retention {
		return false, nil
	}
	if s.limiter != nil {
		if err := s.limiter.Wait(ctx); err != nil {
			return true, err
		}
	}
	return true, s.store.Delete(ctx, name)
}
