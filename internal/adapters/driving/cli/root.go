// Package cli implements the sercha-view command line.
package cli

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/sercha-view/internal/core/domain"
	"github.com/custodia-labs/sercha-view/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-view/internal/core/ports/driving"
	"github.com/custodia-labs/sercha-view/internal/logger"
)

// App holds the wired components the commands drive.
type App struct {
	Search  driving.SearchService
	Ingest  driving.IngestService
	Sweeper driving.Sweeper
	Store   driven.ObjectStore
	Signer  driven.URLSigner

	// Palette colors keywords in terminal output.
	Palette []domain.Color

	// Metrics is served by the HTTP server when set.
	Metrics http.Handler

	// Addr is the default HTTP listen address.
	Addr string

	// CorpusDir is ingested and watched by serve when set.
	CorpusDir string

	// Close releases the stores and the index.
	Close func() error
}

// Loader builds an App from the config file at path. An empty path uses
// the default location.
type Loader func(path string) (*App, error)

var (
	version    = "dev"
	configPath string
	verbose    bool

	loader Loader
	app    *App
)

var rootCmd = &cobra.Command{
	Use:   "sercha-view",
	Short: "Search documents and view them with the query highlighted",
	Long: `sercha-view indexes a document corpus and answers keyword queries.
Every hit links to a copy of the document with the query terms highlighted,
served through a short-lived signed URL.`,
	SilenceUsage: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "config file (default ~/.sercha-view/config.toml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}

// Execute runs the root command. load is called the first time a command
// needs the wired application.
func Execute(v string, load Loader) error {
	if v != "" {
		version = v
	}
	loader = load
	defer closeApp()
	return rootCmd.Execute()
}

// currentApp returns the application, building it on first use.
func currentApp() (*App, error) {
	if app != nil {
		return app, nil
	}
	if loader == nil {
		return nil, errors.New("application not configured")
	}
	a, err := loader(configPath)
	if err != nil {
		return nil, fmt.Errorf("loading application: %w", err)
	}
	app = a
	return app, nil
}

func closeApp() {
	if app == nil {
		return
	}
	if app.Close != nil {
		if err := app.Close(); err != nil {
			logger.Warn("close: %v", err)
		}
	}
	app = nil
}
