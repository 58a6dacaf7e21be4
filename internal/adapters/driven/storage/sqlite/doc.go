// Package sqlite provides a SQLite-backed implementation of the vector index.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that requires
// no CGO, enabling easy cross-compilation. Chunks are stored one row each with their
// provenance columns and a little-endian float32 embedding BLOB. Similarity search is
// a cosine scan over all stored embeddings.
//
// # Schema
//
// The database schema is managed through versioned migrations stored in the
// migrations/ directory. Each migration is a pair of .up.sql and .down.sql files.
//
// # Data Location
//
// By default, the database is stored at ~/.railkm/index/index.db
//
// # Thread Safety
//
// All operations are thread-safe. Writes are serialised by the store and readers
// never observe a partially applied batch. SQLite runs in WAL mode.
package sqlite
