package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/sercha-view/internal/core/domain"
)

func TestSweepCmd(t *testing.T) {
	t.Run("prints report", func(t *testing.T) {
		sweeper := &mockSweeper{report: domain.SweepReport{Scanned: 4, Expired: 2, Deleted: 2}}
		buf := setupTestApp(t, &App{Sweeper: sweeper})

		err := execute("sweep")

		require.NoError(t, err)
		assert.Contains(t, buf.String(), "Scanned 4, expired 2, deleted 2, failed 0")
	})

	t.Run("failures are an error", func(t *testing.T) {
		sweeper := &mockSweeper{report: domain.SweepReport{Scanned: 2, Expired: 2, Deleted: 1, Failed: 1}}
		setupTestApp(t, &App{Sweeper: sweeper})

		err := execute("sweep")

		require.Error(t, err)
		assert.Contains(t, err.Error(), "could not be deleted")
	})

	t.Run("not configured", func(t *testing.T) {
		setupTestApp(t, &App{})

		err := execute("sweep")

		require.Error(t, err)
		assert.Contains(t, err.Error(), "sweeper not configured")
	})
}
