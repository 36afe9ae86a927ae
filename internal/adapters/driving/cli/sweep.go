package cli

import (
	"errors"

	"github.com/spf13/cobra"
)

var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Delete expired highlighted copies",
	Long: `Runs one cleanup cycle: every highlighted copy older than the
retention window is deleted. Source documents are never touched.`,
	Args: cobra.NoArgs,
	RunE: runSweep,
}

func init() {
	rootCmd.AddCommand(sweepCmd)
}

func runSweep(cmd *cobra.Command, _ []string) error {
	a, err := currentApp()
	if err != nil {
		return err
	}
	if a.Sweeper == nil {
		return errors.New("sweeper not configured")
	}

	report := a.Sweeper.SweepOnce(cmd.Context())
	cmd.Printf("Scanned %d, expired %d, deleted %d, failed %d\n",
		report.Scanned, report.Expired, report.Deleted, report.Failed)
	if report.Failed > 0 {
		return errors.New("some objects could not be deleted")
	}
	return nil
}
