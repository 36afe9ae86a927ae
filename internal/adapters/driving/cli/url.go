package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/sercha-view/internal/core/domain"
)

var urlCmd = &cobra.Command{
	Use:   "url [name]",
	Short: "Print a signed view URL for a stored document",
	Args:  cobra.ExactArgs(1),
	RunE:  runURL,
}

func init() {
	rootCmd.AddCommand(urlCmd)
}

func runURL(cmd *cobra.Command, args []string) error {
	a, err := currentApp()
	if err != nil {
		return err
	}
	if a.Search == nil {
		return errors.New("search service not configured")
	}

	link, err := a.Search.ViewURL(cmd.Context(), args[0])
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("document not found: %s", args[0])
		}
		return err
	}
	cmd.Println(link)
	return nil
}
