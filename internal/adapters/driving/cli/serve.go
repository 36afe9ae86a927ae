package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/custodia-labs/sercha-view/internal/adapters/driving/httpapi"
	"github.com/custodia-labs/sercha-view/internal/connectors/filesystem"
	"github.com/custodia-labs/sercha-view/internal/logger"
)

var (
	serveAddr    string
	serveWatch   string
	serveNoSweep bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP search server",
	Long: `Serves the search API and the signed object URLs.

The lifecycle sweeper runs in the background and deletes highlighted
copies once they pass the retention window. When a corpus directory is
configured (or given with --watch) it is ingested at startup and then
watched for changes.

Endpoints:
  GET|POST /api/search?query=...   enriched search results
  GET      /objects/{name}         signed object download
  GET      /healthz                liveness
  GET      /metrics                Prometheus metrics
  *        /mcp                    MCP streamable HTTP transport`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default from config)")
	serveCmd.Flags().StringVar(&serveWatch, "watch", "", "directory to ingest and watch")
	serveCmd.Flags().BoolVar(&serveNoSweep, "no-sweep", false, "do not run the lifecycle sweeper")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	a, err := currentApp()
	if err != nil {
		return err
	}
	if a.Search == nil {
		return errors.New("search service not configured")
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	addr := serveAddr
	if addr == "" {
		addr = a.Addr
	}
	dir := serveWatch
	if dir == "" {
		dir = a.CorpusDir
	}

	var conn *filesystem.Connector
	if dir != "" && a.Ingest != nil {
		conn = filesystem.New(dir)
		defer conn.Close()

		report, err := a.Ingest.Sync(ctx, conn)
		if err != nil {
			return fmt.Errorf("ingest %s: %w", dir, err)
		}
		cmd.Printf("Ingested %d documents from %s (%d failed)\n", report.Ingested, dir, report.Failed)
	}

	mcpServer, err := newMCPServer()
	if err != nil {
		return err
	}
	srv := httpapi.NewServer(a.Search, a.Store, a.Signer, httpapi.Options{
		Addr:    addr,
		Metrics: a.Metrics,
		MCP:     mcpServer.Handler(),
	})
	if err := srv.Start(); err != nil {
		return err
	}
	cmd.Printf("Serving on http://%s\n", srv.Addr())

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		err := srv.Wait(gctx)
		if stopErr := srv.Stop(); stopErr != nil {
			logger.Warn("http: shutdown: %v", stopErr)
		}
		return err
	})

	if a.Sweeper != nil && !serveNoSweep {
		g.Go(func() error {
			return ignoreCancel(a.Sweeper.Start(gctx))
		})
	}

	if conn != nil {
		g.Go(func() error {
			if err := ignoreCancel(a.Ingest.Watch(gctx, conn)); err != nil {
				logger.Warn("watch %s: %v", dir, err)
			}
			return nil
		})
	}

	err = g.Wait()
	if a.Sweeper != nil {
		_ = a.Sweeper.Stop()
	}
	return err
}

func ignoreCancel(err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return nil
	}
	return err
}
