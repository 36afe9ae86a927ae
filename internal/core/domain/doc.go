// Package domain defines the core business entities for sercha-view.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Keywords and Color: the parsed query and its highlight palette
//   - Format and FileType: how a source object is rendered and labelled
//   - ObjectInfo: metadata of a stored source or derived object
//   - SearchHit and EnrichedHit: search results before and after enrichment
//   - Config: the immutable runtime configuration
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
