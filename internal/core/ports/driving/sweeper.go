package driving

import (
	"context"

	"github.com/custodia-labs/sercha-view/internal/core/domain"
)

// Sweeper removes expired derived artifacts in the background.
type Sweeper interface {
	// Start runs sweep cycles on a fixed interval.
	// Blocks until context is cancelled or Stop is called.
	Start(ctx context.Context) error

	// Stop gracefully stops the loop and waits for an in-flight cycle.
	Stop() error

	// SweepOnce runs a single cycle. It never fails; errors are logged and counted.
	SweepOnce(ctx context.Context) domain.SweepReport
}
