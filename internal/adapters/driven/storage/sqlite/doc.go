// Package sqlite provides the persistent vector index and sync run history.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that
// requires no CGO. One database file holds every collection:
//
//   - VectorStore: named collections of vector records
//   - SyncRunStore: the history of sync runs
//
// # Schema
//
// The schema is managed through versioned migrations embedded from the
// migrations/ directory. Each migration is a pair of .up.sql and .down.sql
// files; applied versions are tracked in schema_migrations.
//
// # Vectors
//
// Embeddings are stored as little-endian float32 blobs. Queries compute
// cosine distance over every record of the collection, so results are exact.
//
// # Data Location
//
// By default, the database is stored at ~/.threadrag/data/vectors.db
//
// # Thread Safety
//
// All operations are safe for concurrent use. SQLite runs in WAL mode with
// a busy timeout; lock contention surfaces as a transient error.
package sqlite
