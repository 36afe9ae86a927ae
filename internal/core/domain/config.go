package domain

import (
	"fmt"
	"runtime"
	"time"
)

// Config is the immutable runtime configuration.
// It is built once at startup and passed to each component by value.
type Config struct {
	// Palette holds the highlight colors, cycled by keyword position.
	Palette []Color

	// RenderWorkers bounds concurrent document renders.
	RenderWorkers int

	// ScratchDir holds temporary files used while decoding paged documents.
	// Empty means os.TempDir.
	ScratchDir string

	// URLTTL is how long an access URL stays valid.
	URLTTL time.Duration

	// Retention is how long a derived artifact lives before the sweeper removes it.
	Retention time.Duration

	// SweepInterval is the time between sweeper cycles.
	SweepInterval time.Duration

	// DeleteRate caps sweeper deletions per second. Zero means unlimited.
	DeleteRate float64

	// SearchLimit is the default number of hits per query.
	SearchLimit int

	// EnrichConcurrency bounds how many hits of one request are enriched at once.
	EnrichConcurrency int
}

// Reference policy values.
const (
	DefaultURLTTL            = time.Hour
	DefaultRetention         = 2 * time.Minute
	DefaultSweepInterval     = time.Minute
	DefaultSearchLimit       = 10
	DefaultEnrichConcurrency = 4
)

// DefaultConfig returns the reference configuration.
func DefaultConfig() Config {
	return Config{
		Palette:           append([]Color(nil), DefaultPalette...),
		RenderWorkers:     runtime.NumCPU(),
		URLTTL:            DefaultURLTTL,
		Retention:         DefaultRetention,
		SweepInterval:     DefaultSweepInterval,
		SearchLimit:       DefaultSearchLimit,
		EnrichConcurrency: DefaultEnrichConcurrency,
	}
}

// Validate checks that every setting is usable.
func (c Config) Validate() error {
	switch {
	case len(c.Palette) == 0:
		return fmt.Errorf("%w: palette must not be empty", ErrInvalidInput)
	case c.RenderWorkers < 1:
		return fmt.Errorf("%w: render workers must be positive", ErrInvalidInput)
	case c.URLTTL <= 0:
		return fmt.Errorf("%w: url ttl must be positive", ErrInvalidInput)
	case c.Retention <= 0:
		return fmt.Errorf("%w: retention must be positive", ErrInvalidInput)
	case c.SweepInterval <= 0:
		return fmt.Errorf("%w: sweep interval must be positive", ErrInvalidInput)
	case c.DeleteRate < 0:
		return fmt.Errorf("%w: delete rate must not be negative", ErrInvalidInput)
	case c.SearchLimit < 1:
		return fmt.Errorf("%w: search limit must be positive", ErrInvalidInput)
	case c.EnrichConcurrency < 1:
		return fmt.Errorf("%w: enrich concurrency must be positive", ErrInvalidInput)
	}
	return nil
}
