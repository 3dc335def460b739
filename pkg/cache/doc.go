// Package cache persists compiled forms between requests.
//
// A Store maps a fingerprint to serialised bytes. GetOrCreate returns the
// stored bytes when they satisfy the freshness Conditions and otherwise runs
// the Producer and persists its result. Concurrent callers for the same key
// inside one process share a single Producer run. Across processes the cache
// is best effort: two processes may both produce, and the last writer wins.
// No store provides a cross-process lock.
//
// Three stores are provided: FileStore (one file per key, written through a
// temp file and rename), MemoryStore (freecache, bounded in bytes) and
// SQLStore (a single table in SQLite via modernc.org/sqlite).
package cache
