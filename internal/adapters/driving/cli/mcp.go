package cli

import (
	"github.com/spf13/cobra"

	"github.com/custodia-labs/sercha-view/internal/adapters/driving/mcp"
)

var mcpAddr string

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Model Context Protocol integration",
}

var mcpServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve search to MCP clients",
	Long: `Serves the search_documents and get_document_url tools and the
stored objects as resources.

Without --addr a single session runs over stdin and stdout, which is what
desktop assistants expect when they launch the binary themselves. With
--addr the streamable HTTP transport is served instead.

Examples:
  sercha-view mcp serve
  sercha-view mcp serve --addr 127.0.0.1:8081`,
	Args: cobra.NoArgs,
	RunE: runMCPServe,
}

func init() {
	mcpServeCmd.Flags().StringVar(&mcpAddr, "addr", "", "HTTP listen address (empty = stdio)")
	mcpCmd.AddCommand(mcpServeCmd)
	rootCmd.AddCommand(mcpCmd)
}

func newMCPServer() (*mcp.Server, error) {
	a, err := currentApp()
	if err != nil {
		return nil, err
	}
	return mcp.NewServer(&mcp.Ports{Search: a.Search, Store: a.Store})
}

func runMCPServe(cmd *cobra.Command, _ []string) error {
	server, err := newMCPServer()
	if err != nil {
		return err
	}
	if mcpAddr == "" {
		return server.Run(cmd.Context())
	}
	return server.ListenAndServe(cmd.Context(), mcpAddr)
}
