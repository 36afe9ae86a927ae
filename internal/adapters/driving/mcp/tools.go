package mcp

import (
	"context"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/sercha-view/internal/core/domain"
	"github.com/custodia-labs/sercha-view/internal/logger"
)

// SearchInput is the input schema for the search_documents tool.
type SearchInput struct {
	Query string `json:"query" jsonschema:"keywords to search for; every keyword must match"`
	Limit int    `json:"limit,omitempty" jsonschema:"maximum number of results to return (default 10)"`
}

// SearchOutput is the output schema for the search_documents tool.
type SearchOutput struct {
	Results []SearchResultOutput `json:"results"`
	Count   int                  `json:"count"`
}

// SearchResultOutput represents a single search result.
type SearchResultOutput struct {
	Name         string     `json:"name"`
	Path         string     `json:"path,omitempty"`
	Score        float64    `json:"score"`
	FileType     string     `json:"file_type"`
	FileSize     *int64     `json:"file_size,omitempty"`
	LastModified *time.Time `json:"last_modified,omitempty"`
	ViewURL      string     `json:"view_url,omitempty"`
	Highlighted  bool       `json:"highlighted"`
	Content      string     `json:"content,omitempty"`
}

// URLInput is the input schema for the get_document_url tool.
type URLInput struct {
	Name string `json:"name" jsonschema:"object name as returned by search_documents"`
}

// URLOutput is the output schema for the get_document_url tool.
type URLOutput struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "search_documents",
		Description: "Search stored documents by keyword. Each result links to a copy with the keywords highlighted.",
	}, s.handleSearch)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "get_document_url",
		Description: "Get a temporary link to the unmodified original of a stored document",
	}, s.handleDocumentURL)
}

// handleSearch handles the search_documents tool invocation.
func (s *Server) handleSearch(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SearchInput,
) (*mcp.CallToolResult, SearchOutput, error) {
	ctx = logger.WithRequestID(ctx, "")

	limit := input.Limit
	if limit <= 0 {
		limit = domain.DefaultSearchLimit
	}

	opts := domain.SearchOptions{Limit: limit}
	results, err := s.ports.Search.Search(ctx, input.Query, opts)
	if err != nil {
		return nil, SearchOutput{}, err
	}

	output := SearchOutput{
		Results: make([]SearchResultOutput, len(results)),
		Count:   len(results),
	}

	for i := range results {
		r := &results[i]
		out := SearchResultOutput{
			Name:         r.Name,
			Path:         r.Path,
			Score:        r.Score,
			FileType:     string(r.FileType),
			FileSize:     r.FileSize,
			LastModified: r.LastModified,
			Highlighted:  r.Highlighted,
			Content:      r.Content,
		}
		if r.ViewURL != nil {
			out.ViewURL = *r.ViewURL
		}
		output.Results[i] = out
	}

	return nil, output, nil
}

// handleDocumentURL handles the get_document_url tool invocation.
func (s *Server) handleDocumentURL(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input URLInput,
) (*mcp.CallToolResult, URLOutput, error) {
	url, err := s.ports.Search.ViewURL(ctx, input.Name)
	if err != nil {
		return nil, URLOutput{}, err
	}
	return nil, URLOutput{Name: input.Name, URL: url}, nil
}
