// Package mcp exposes document search over the Model Context Protocol, so
// assistants can query the store and open highlighted copies.
package mcp

import "errors"

// ErrMissingSearchService means Ports.Search was nil.
var ErrMissingSearchService = errors.New("mcp: search service is required")
