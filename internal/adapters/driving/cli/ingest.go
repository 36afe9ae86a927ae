package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/sercha-view/internal/connectors/filesystem"
	"github.com/custodia-labs/sercha-view/internal/core/domain"
)

var ingestName string

var ingestCmd = &cobra.Command{
	Use:   "ingest [path...]",
	Short: "Store and index documents",
	Long: `Stores files in the object store and indexes their text.
A directory is walked recursively and each file is named by its path
relative to the directory. A single file is named by its base name
unless --name is given.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runIngest,
}

var removeCmd = &cobra.Command{
	Use:   "remove [name]",
	Short: "Delete a stored document",
	Long:  `Deletes a source object together with its highlighted copy and its index entry.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runRemove,
}

var reindexCmd = &cobra.Command{
	Use:   "reindex",
	Short: "Rebuild the search index from the object store",
	Args:  cobra.NoArgs,
	RunE:  runReindex,
}

func init() {
	ingestCmd.Flags().StringVar(&ingestName, "name", "", "object name for a single file")
	rootCmd.AddCommand(ingestCmd)
	rootCmd.AddCommand(removeCmd)
	rootCmd.AddCommand(reindexCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	a, err := currentApp()
	if err != nil {
		return err
	}
	if a.Ingest == nil {
		return errors.New("ingest service not configured")
	}
	if ingestName != "" && len(args) > 1 {
		return errors.New("--name needs exactly one file")
	}

	ctx := cmd.Context()
	for _, path := range args {
		info, err := os.Stat(path)
		if err != nil {
			return fmt.Errorf("ingest %s: %w", path, err)
		}

		if info.IsDir() {
			conn := filesystem.New(path)
			report, err := a.Ingest.Sync(ctx, conn)
			_ = conn.Close()
			if err != nil {
				return fmt.Errorf("ingest %s: %w", path, err)
			}
			cmd.Printf("%s: %d ingested, %d failed\n", path, report.Ingested, report.Failed)
			continue
		}

		name := ingestName
		if name == "" {
			name = filepath.Base(path)
		}
		content, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("ingest %s: %w", path, err)
		}
		err = a.Ingest.Ingest(ctx, domain.RawDocument{
			Name:     name,
			URI:      path,
			MIMEType: domain.ContentTypeFromName(name),
			Content:  content,
		})
		if err != nil {
			return fmt.Errorf("ingest %s: %w", path, err)
		}
		cmd.Printf("Ingested %s\n", name)
	}
	return nil
}

func runRemove(cmd *cobra.Command, args []string) error {
	a, err := currentApp()
	if err != nil {
		return err
	}
	if a.Ingest == nil {
		return errors.New("ingest service not configured")
	}

	if err := a.Ingest.Remove(cmd.Context(), args[0]); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("document not found: %s", args[0])
		}
		return fmt.Errorf("remove failed: %w", err)
	}
	cmd.Printf("Removed %s\n", args[0])
	return nil
}

func runReindex(cmd *cobra.Command, _ []string) error {
	a, err := currentApp()
	if err != nil {
		return err
	}
	if a.Ingest == nil {
		return errors.New("ingest service not configured")
	}

	n, err := a.Ingest.Reindex(cmd.Context())
	if err != nil {
		return fmt.Errorf("reindex failed: %w", err)
	}
	cmd.Printf("Reindexed %d documents.\n", n)
	return nil
}
