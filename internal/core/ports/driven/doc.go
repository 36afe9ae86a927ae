// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
// These must be provided for the application to function:
//
//   - ObjectStore: Source and derived object persistence with signed URLs
//   - URLSigner: Issues and verifies the access URLs handed to clients
//   - SearchEngine: Full-text search over extracted document text (Bleve)
//   - Highlighter: Renders a highlighted copy of one document format
//   - SnippetHighlighter: Marks keywords in the text snippet of a hit
//   - ConfigStore: Application configuration
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - Normaliser / NormaliserRegistry: Text extraction for indexing
//   - Connector: Feeds source objects from outside (filesystem)
//   - Metrics: Operational counters. A no-op recorder is used when nil.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter, connector, or normaliser package
package driven
