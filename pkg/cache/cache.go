package cache

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"regexp"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

var (
	// ErrInvalidKey is returned for empty keys or keys that are not safe to use
	// as file names.
	ErrInvalidKey = errors.New("cache: invalid key")
	// ErrNilProducer is returned when GetOrCreate is called without a producer.
	ErrNilProducer = errors.New("cache: producer is required")
)

var keyPattern = regexp.MustCompile(`^[A-Za-z0-9._-]{1,128}$`)

// Producer builds the bytes for a missing or stale key. It runs at most once
// per key at a time within a process.
type Producer func(ctx context.Context) ([]byte, error)

// Conditions restrict which stored entries count as fresh.
type Conditions struct {
	// YoungerThan names a file; entries written before its modification time
	// are stale.
	YoungerThan string
	// MaxAge expires entries older than the duration. Zero disables it.
	MaxAge time.Duration
}

// Store is the cache adapter contract consumed by forms.
type Store interface {
	// GetOrCreate returns the fresh bytes stored under key, or runs produce and
	// persists its result. The returned slice must not be modified.
	GetOrCreate(ctx context.Context, key string, cond Conditions, produce Producer) ([]byte, error)
}

// Option configures a store.
type Option func(*core)

// WithLogger sets the store logger. Hits, misses and produce runs are logged
// at debug level, persistence failures at warn.
func WithLogger(logger *zap.Logger) Option {
	return func(c *core) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithClock overrides the time source used to stamp and age entries.
func WithClock(now func() time.Time) Option {
	return func(c *core) {
		if now != nil {
			c.now = now
		}
	}
}

// backend is the storage half of a store; core supplies the policy.
type backend interface {
	load(ctx context.Context, key string) (payload []byte, written time.Time, found bool, err error)
	save(ctx context.Context, key string, payload []byte, written time.Time) error
}

type core struct {
	name   string
	group  singleflight.Group
	logger *zap.Logger
	now    func() time.Time
}

func newCore(name string, opts []Option) *core {
	c := &core{name: name, logger: zap.NewNop(), now: time.Now}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	c.logger = c.logger.With(zap.String("store", name))
	return c
}

func (c *core) getOrCreate(ctx context.Context, b backend, key string, cond Conditions, produce Producer) ([]byte, error) {
	if !keyPattern.MatchString(key) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	if produce == nil {
		return nil, ErrNilProducer
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if data, ok := c.lookup(ctx, b, key, cond, true); ok {
		return data, nil
	}

	value, err, shared := c.group.Do(key, func() (any, error) {
		// Another caller may have stored the entry while this one waited.
		if data, ok := c.lookup(ctx, b, key, cond, false); ok {
			return data, nil
		}
		data, err := produce(ctx)
		if err != nil {
			return nil, err
		}
		if err := b.save(ctx, key, data, c.now()); err != nil {
			observe(c.name, outcomeError)
			c.logger.Warn("cache write failed", zap.String("key", key), zap.Error(err))
		}
		c.logger.Debug("cache produced", zap.String("key", key), zap.Int("bytes", len(data)))
		return data, nil
	})
	if err != nil {
		return nil, fmt.Errorf("cache: produce %s: %w", key, err)
	}

	data := value.([]byte)
	if shared {
		data = bytes.Clone(data)
	}
	return data, nil
}

// lookup loads key and applies the freshness conditions. Only recorded
// lookups count towards the metrics.
func (c *core) lookup(ctx context.Context, b backend, key string, cond Conditions, record bool) ([]byte, bool) {
	data, written, found, err := b.load(ctx, key)
	outcome, reason := outcomeHit, ""
	switch {
	case err != nil:
		outcome = outcomeError
		c.logger.Warn("cache read failed", zap.String("key", key), zap.Error(err))
	case !found:
		outcome = outcomeMiss
	default:
		if fresh, why := cond.fresh(written, c.now()); !fresh {
			outcome, reason = outcomeStale, why
		}
	}
	if !record {
		return data, outcome == outcomeHit
	}
	observe(c.name, outcome)
	c.logger.Debug("cache lookup", zap.String("key", key), zap.String("outcome", outcome), zap.String("reason", reason))
	return data, outcome == outcomeHit
}

// fresh reports whether an entry written at written satisfies the conditions.
// A YoungerThan file that cannot be stat'ed makes the entry stale.
func (cond Conditions) fresh(written, now time.Time) (bool, string) {
	if cond.MaxAge > 0 && now.Sub(written) > cond.MaxAge {
		return false, "max age exceeded"
	}
	if cond.YoungerThan != "" {
		info, err := os.Stat(cond.YoungerThan)
		if err != nil {
			return false, "source not readable"
		}
		if written.Before(info.ModTime()) {
			return false, "source modified"
		}
	}
	return true, ""
}
