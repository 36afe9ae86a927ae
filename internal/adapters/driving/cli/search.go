package cli

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/sercha-view/internal/core/domain"
	"github.com/custodia-labs/sercha-view/internal/highlighters/palette"
	"github.com/custodia-labs/sercha-view/internal/highlighters/terminal"
)

// snippetWidth caps printed snippets on narrow terminals.
const snippetWidth = 120

var (
	searchLimit int
	searchJSON  bool
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search indexed documents",
	Long: `Runs a keyword search across all indexed documents.
Each result carries a signed URL to a copy of the document with the
query terms highlighted, or to the original when no copy could be made.`,
	Args: cobra.ExactArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "n", domain.DefaultSearchLimit, "maximum number of results")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "output results as JSON")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	a, err := currentApp()
	if err != nil {
		return err
	}
	if a.Search == nil {
		return errors.New("search service not configured")
	}

	results, err := a.Search.Search(cmd.Context(), args[0], domain.SearchOptions{Limit: searchLimit})
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if searchJSON {
		return outputSearchJSON(cmd, results)
	}
	hl := terminal.New(palette.New(a.Palette), cmd.OutOrStdout())
	return outputSearchTable(cmd, results, func(text string) string {
		return hl.HighlightSnippet(text, domain.ParseKeywords(args[0]))
	})
}

func outputSearchJSON(cmd *cobra.Command, results []domain.EnrichedHit) error {
	data, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal results: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

// outputSearchTable prints one block per hit. highlight styles the snippet.
func outputSearchTable(cmd *cobra.Command, results []domain.EnrichedHit, highlight func(string) string) error {
	if len(results) == 0 {
		cmd.Println("No results found.")
		return nil
	}

	cmd.Println("Results:")
	cmd.Println()
	for i := range results {
		r := &results[i]
		// Format: [N] name (score)
		cmd.Printf("  [%d] %s (%.2f)\n", i+1, r.Name, r.Score)
		if r.ViewURL != nil {
			label := "Original"
			if r.Highlighted {
				label = "Highlighted"
			}
			cmd.Printf("      %s: %s\n", label, *r.ViewURL)
		}
		if r.Content != "" {
			width := terminal.Width(cmd.OutOrStdout(), snippetWidth) - 6
			cmd.Printf("      %s\n", highlight(truncate(r.Content, width)))
		}
		cmd.Println()
	}
	return nil
}

// truncate shortens s to at most width runes, marking the cut.
func truncate(s string, width int) string {
	if width < 4 {
		width = 4
	}
	runes := []rune(s)
	if len(runes) <= width {
		return s
	}
	return string(runes[:width-3]) + "..."
}
