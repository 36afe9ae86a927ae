package driven

import (
	"time"

	"github.com/custodia-labs/sercha-view/internal/core/domain"
)

// Render outcomes.
const (
	OutcomeRendered = "rendered"
	OutcomeEmpty    = "empty"
	OutcomeFailed   = "failed"
)

// Metrics records operational counters.
type Metrics interface {
	// ObserveRender records one highlighter invocation.
	ObserveRender(format domain.Format, outcome string, elapsed time.Duration)

	// ObservePublish records a derived artifact publish attempt.
	ObservePublish(ok bool)

	// ObserveFallback records a hit served without a derived artifact.
	ObserveFallback(reason string)

	// ObserveSweep records one sweeper cycle.
	ObserveSweep(report domain.SweepReport)

	// ObserveSearch records a search request.
	ObserveSearch(ok bool, hits int, elapsed time.Duration)
}

// NopMetrics discards everything.
type NopMetrics struct{}

func (NopMetrics) ObserveRender(domain.Format, string, time.Duration) {}
func (NopMetrics) ObservePublish(bool)                                {}
func (NopMetrics) ObserveFallback(string)                             {}
func (NopMetrics) ObserveSweep(domain.SweepReport)                    {}
func (NopMetrics) ObserveSearch(bool, int, time.Duration)             {}
