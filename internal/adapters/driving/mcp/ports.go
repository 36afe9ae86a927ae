package mcp

import (
	"github.com/custodia-labs/sercha-view/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-view/internal/core/ports/driving"
)

// Ports holds what the MCP tools and resources call into.
type Ports struct {
	// Search runs queries and signs original URLs. Required.
	Search driving.SearchService

	// Store backs the objects resources. Without it only the tools are useful.
	Store driven.ObjectStore
}

// Validate reports a missing required port.
func (p *Ports) Validate() error {
	if p.Search == nil {
		return ErrMissingSearchService
	}
	return nil
}
