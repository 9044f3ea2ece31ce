// README: Quote cache stores: in-process map and Redis (shared across instances).
package quotecache

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Store holds cached quotes with a TTL. Implementations must be safe for
// concurrent use.
type Store interface {
	Get(ctx context.Context, key string) (Entry, bool, error)
	Set(ctx context.Context, key string, e Entry, ttl time.Duration) error
	// Sweep removes entries that expired before now. A no-op for backends
	// with native expiry.
	Sweep(ctx context.Context, now time.Time) error
}

// MemoryStore is the default single-process store.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
}

type memoryEntry struct {
	entry     Entry
	expiresAt time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string]memoryEntry)}
}

func (s *MemoryStore) Get(_ context.Context, key string) (Entry, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	me, ok := s.entries[key]
	if !ok || time.Now().After(me.expiresAt) {
		return Entry{}, false, nil
	}
	return me.entry, true, nil
}

func (s *MemoryStore) Set(_ context.Context, key string, e Entry, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key] = memoryEntry{entry: e, expiresAt: time.Now().Add(ttl)}
	return nil
}

func (s *MemoryStore) Sweep(_ context.Context, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for key, me := range s.entries {
		if now.After(me.expiresAt) {
			delete(s.entries, key)
		}
	}
	return nil
}

const redisKeyPrefix = "quote:%s"

// RedisStore shares the cache across service instances. Expiry is delegated
// to Redis TTLs.
type RedisStore struct {
	redis *redis.Client
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{redis: client}
}

func (s *RedisStore) Get(ctx context.Context, key string) (Entry, bool, error) {
	val, err := s.redis.Get(ctx, redisKey(key)).Result()
	if err == redis.Nil {
		return Entry{}, false, nil
	}
	if err != nil {
		return Entry{}, false, err
	}
	var e Entry
	if err := json.Unmarshal([]byte(val), &e); err != nil {
		return Entry{}, false, fmt.Errorf("decode cached quote: %w", err)
	}
	return e, true, nil
}

func (s *RedisStore) Set(ctx context.Context, key string, e Entry, ttl time.Duration) error {
	data, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("encode quote: %w", err)
	}
	return s.redis.Set(ctx, redisKey(key), data, ttl).Err()
}

func (s *RedisStore) Sweep(context.Context, time.Time) error { return nil }

func redisKey(key string) string {
	return fmt.Sprintf(redisKeyPrefix, key)
}
