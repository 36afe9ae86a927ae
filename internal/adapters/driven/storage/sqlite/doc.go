// Package sqlite provides a SQLite-backed implementation of driven.ObjectStore.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that requires
// no CGO, enabling easy cross-compilation. Source documents and their highlighted
// copies share one objects table.
//
// # Schema
//
// The database schema is managed through versioned migrations stored in the
// migrations/ directory. Each migration is a pair of .up.sql and .down.sql files.
//
// # Storage
//
// Blobs are compressed with zstd when that makes them smaller. ETags are the
// hex BLAKE3 digest of the uncompressed contents. Timestamps are stored as
// Unix nanoseconds taken from the injected clock.
//
// # Data Location
//
// By default, the database is stored at ~/.sercha-view/objects.db
//
// # Thread Safety
//
// All operations are thread-safe. The store uses database-level locking provided
// by SQLite in WAL mode.
package sqlite
