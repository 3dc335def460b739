package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

const sqlSchema = `CREATE TABLE IF NOT EXISTS formidable_cache (
	cache_key  TEXT PRIMARY KEY,
	payload    BLOB NOT NULL,
	written_at INTEGER NOT NULL
)`

// SQLStore keeps entries in a single SQLite table. Writes are upserts, so
// concurrent processes sharing the database settle on the last writer.
type SQLStore struct {
	*core
	db    *sql.DB
	owned bool
}

var _ Store = (*SQLStore)(nil)

// OpenSQLStore opens (or creates) the SQLite database at dsn and prepares the
// cache table. The store owns the handle and closes it on Close.
func OpenSQLStore(ctx context.Context, dsn string, opts ...Option) (*SQLStore, error) {
	if dsn == "" {
		return nil, fmt.Errorf("cache: sqlite dsn is required")
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("cache: open sqlite %s: %w", dsn, err)
	}
	if dsn == ":memory:" {
		// Every connection to :memory: is a separate database.
		db.SetMaxOpenConns(1)
	}
	store, err := NewSQLStore(ctx, db, opts...)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	store.owned = true
	return store, nil
}

// NewSQLStore prepares the cache table on an existing handle. The caller keeps
// ownership of db.
func NewSQLStore(ctx context.Context, db *sql.DB, opts ...Option) (*SQLStore, error) {
	if db == nil {
		return nil, fmt.Errorf("cache: sql handle is required")
	}
	if _, err := db.ExecContext(ctx, sqlSchema); err != nil {
		return nil, fmt.Errorf("cache: create schema: %w", err)
	}
	return &SQLStore{core: newCore("sqlite", opts), db: db}, nil
}

func (s *SQLStore) GetOrCreate(ctx context.Context, key string, cond Conditions, produce Producer) ([]byte, error) {
	return s.getOrCreate(ctx, s, key, cond, produce)
}

// Delete removes the entry for key.
func (s *SQLStore) Delete(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM formidable_cache WHERE cache_key = ?", key); err != nil {
		return fmt.Errorf("cache: delete %s: %w", key, err)
	}
	return nil
}

// Close releases the database handle when the store opened it.
func (s *SQLStore) Close() error {
	if !s.owned {
		return nil
	}
	return s.db.Close()
}

func (s *SQLStore) load(ctx context.Context, key string) ([]byte, time.Time, bool, error) {
	var (
		payload []byte
		written int64
	)
	err := s.db.QueryRowContext(ctx,
		"SELECT payload, written_at FROM formidable_cache WHERE cache_key = ?",
		key,
	).Scan(&payload, &written)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, time.Time{}, false, nil
	}
	if err != nil {
		return nil, time.Time{}, false, err
	}
	return payload, time.Unix(0, written), true, nil
}

func (s *SQLStore) save(ctx context.Context, key string, payload []byte, written time.Time) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO formidable_cache (cache_key, payload, written_at) VALUES (?, ?, ?)
		ON CONFLICT(cache_key) DO UPDATE SET payload = excluded.payload, written_at = excluded.written_at`,
		key, payload, written.UnixNano(),
	)
	return err
}
