package cache

import (
	"context"
	"encoding/binary"
	"errors"
	"time"

	"github.com/coocood/freecache"
)

// DefaultMemorySize is the freecache arena size used when none is given.
const DefaultMemorySize = 8 * 1024 * 1024

const stampSize = 8

// MemoryStore keeps entries in a freecache arena. Each value is prefixed with
// its write time in unix nanoseconds. Entries are evicted when the arena is
// full, which simply turns the next lookup into a miss.
type MemoryStore struct {
	*core
	cache *freecache.Cache
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore creates a store backed by a freecache arena of size bytes.
// Sizes below freecache's minimum are rounded up by freecache itself.
func NewMemoryStore(size int, opts ...Option) *MemoryStore {
	if size <= 0 {
		size = DefaultMemorySize
	}
	return &MemoryStore{core: newCore("memory", opts), cache: freecache.NewCache(size)}
}

func (s *MemoryStore) GetOrCreate(ctx context.Context, key string, cond Conditions, produce Producer) ([]byte, error) {
	return s.getOrCreate(ctx, s, key, cond, produce)
}

// Delete evicts key.
func (s *MemoryStore) Delete(key string) {
	s.cache.Del([]byte(key))
}

// Len reports the number of stored entries.
func (s *MemoryStore) Len() int64 {
	return s.cache.EntryCount()
}

func (s *MemoryStore) load(_ context.Context, key string) ([]byte, time.Time, bool, error) {
	value, err := s.cache.Get([]byte(key))
	if errors.Is(err, freecache.ErrNotFound) {
		return nil, time.Time{}, false, nil
	}
	if err != nil {
		return nil, time.Time{}, false, err
	}
	if len(value) < stampSize {
		s.cache.Del([]byte(key))
		return nil, time.Time{}, false, nil
	}
	written := time.Unix(0, int64(binary.LittleEndian.Uint64(value[:stampSize])))
	return value[stampSize:], written, true, nil
}

func (s *MemoryStore) save(_ context.Context, key string, payload []byte, written time.Time) error {
	value := make([]byte, stampSize+len(payload))
	binary.LittleEndian.PutUint64(value[:stampSize], uint64(written.UnixNano()))
	copy(value[stampSize:], payload)
	return s.cache.Set([]byte(key), value, 0)
}
