package cache

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/url"
	"sync"
	"time"

	"yatube/internal/middleware"
	"yatube/internal/observability"

	"github.com/redis/go-redis/v9"
)

const (
	viewKeyPrefix = "view:"
	// localSweepSize is the entry count above which Set drops expired local entries.
	localSweepSize = 1024
)

// Store is a JSON cache-aside store over Redis. Without a client it keeps
// values in process memory with the same TTLs. A nil Store caches nothing.
type Store struct {
	rdb *redis.Client

	mu    sync.Mutex
	local map[string]localEntry
	now   func() time.Time
}

type localEntry struct {
	raw     []byte
	expires time.Time
}

// NewStore wraps rdb, which may be nil.
func NewStore(rdb *redis.Client) *Store {
	return &Store{rdb: rdb, local: make(map[string]localEntry), now: time.Now}
}

// Enabled reports whether values are actually stored.
func (s *Store) Enabled() bool {
	return s != nil
}

// Shared reports whether values live in Redis and are seen by every instance.
func (s *Store) Shared() bool {
	return s != nil && s.rdb != nil
}

// ViewKey builds the cache key of a rendered view from its route and query parameters.
// Parameters are encoded in sorted order so equivalent queries share a key.
func ViewKey(route string, params url.Values) string {
	if len(params) == 0 {
		return viewKeyPrefix + route
	}
	return viewKeyPrefix + route + "?" + params.Encode()
}

// Get decodes the cached value at key into dest.
// It reports false on a miss, a Redis failure or an undecodable value.
func (s *Store) Get(ctx context.Context, key string, dest any) bool {
	if !s.Enabled() {
		return false
	}
	raw, ok := s.read(ctx, key)
	if !ok {
		return false
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		middleware.Logger.WarnContext(ctx, "cache value undecodable", slog.String("key", key), slog.String("error", err.Error()))
		return false
	}
	return true
}

// Set stores value as JSON under key for ttl. Failures are logged, not returned.
func (s *Store) Set(ctx context.Context, key string, value any, ttl time.Duration) {
	if !s.Enabled() || ttl <= 0 {
		return
	}
	raw, err := json.Marshal(value)
	if err != nil {
		middleware.Logger.WarnContext(ctx, "cache value unencodable", slog.String("key", key), slog.String("error", err.Error()))
		return
	}
	if !s.Shared() {
		s.writeLocal(key, raw, ttl)
		return
	}
	if err := s.rdb.Set(ctx, key, raw, ttl).Err(); err != nil {
		middleware.Logger.WarnContext(ctx, "cache write failed", slog.String("key", key), slog.String("error", err.Error()))
	}
}

// Invalidate removes key.
func (s *Store) Invalidate(ctx context.Context, key string) {
	if !s.Enabled() {
		return
	}
	if !s.Shared() {
		s.mu.Lock()
		delete(s.local, key)
		s.mu.Unlock()
		return
	}
	s.rdb.Del(ctx, key)
}

func (s *Store) read(ctx context.Context, key string) ([]byte, bool) {
	if !s.Shared() {
		return s.readLocal(key)
	}
	raw, err := s.rdb.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			middleware.Logger.WarnContext(ctx, "cache read failed", slog.String("key", key), slog.String("error", err.Error()))
		}
		return nil, false
	}
	return raw, true
}

func (s *Store) readLocal(key string) ([]byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.local[key]
	if !ok {
		return nil, false
	}
	if !s.now().Before(entry.expires) {
		delete(s.local, key)
		return nil, false
	}
	return entry.raw, true
}

func (s *Store) writeLocal(key string, raw []byte, ttl time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	if len(s.local) >= localSweepSize {
		for k, entry := range s.local {
			if !now.Before(entry.expires) {
				delete(s.local, k)
			}
		}
	}
	s.local[key] = localEntry{raw: raw, expires: now.Add(ttl)}
}

// Aside fills dest from the cache, or runs fetch and caches dest for ttl.
// fetch must populate dest. view labels the hit/miss metric.
func (s *Store) Aside(ctx context.Context, view, key string, dest any, ttl time.Duration, fetch func() error) error {
	if s.Get(ctx, key, dest) {
		observability.ViewCacheRequests.WithLabelValues(view, "hit").Inc()
		return nil
	}
	observability.ViewCacheRequests.WithLabelValues(view, "miss").Inc()

	if err := fetch(); err != nil {
		return err
	}
	s.Set(ctx, key, dest, ttl)
	return nil
}
