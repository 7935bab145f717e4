// Package store provides the backing key-value text store used by the
// secure store: an atomic edit operation, point lookups, and a change stream
// that emits a full snapshot after every committed edit.
//
// Two backends are available:
//
//   - a JSON file backend for single-process local use;
//   - an SQL backend over SQLite or PostgreSQL with embedded goose
//     migrations.
//
// Storage failures caused by I/O are classified and wrapped in [*IOError]
// so that readers can tell them apart from programming errors with
// [IsStorageIO].
package store
