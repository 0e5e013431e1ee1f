// Package tilecache is the read-through cache around the MVT builder,
// backed by Redis, per spec.md §4.6. It replaces chartos/redis.py's
// aioredis-backed RedisPool and the invalidate_* helpers of
// chartos/layer_cache.py with redis/go-redis/v9.
package tilecache

import (
	"context"
	"time"

	"github.com/DGEXSolutions/chartos/internal/chartoserr"
	"github.com/redis/go-redis/v9"
)

// Store is the subset of redis.Cmdable tilecache needs, narrowed so fakes
// in tests don't have to implement the whole client surface.
type Store interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
	Scan(ctx context.Context, cursor uint64, match string, count int64) *redis.ScanCmd
}

// Cache is the TileCache component.
type Cache struct {
	store Store
}

// New builds a Cache over the given Redis-compatible store.
func New(store Store) *Cache {
	return &Cache{store: store}
}

// Get returns the cached bytes for key, or (nil, nil) on a cache miss.
func (c *Cache) Get(ctx context.Context, key string) ([]byte, error) {
	b, err := c.store.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, &chartoserr.CacheError{Op: "get", Err: err}
	}
	return b, nil
}

// Put stores bytes under key with the given TTL.
func (c *Cache) Put(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	if err := c.store.Set(ctx, key, data, ttl).Err(); err != nil {
		return &chartoserr.CacheError{Op: "put", Err: err}
	}
	return nil
}

// Delete removes the given keys in one batch. A no-op on an empty slice,
// matching chartos/layer_cache.py's invalidate_cache early-return.
func (c *Cache) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	if err := c.store.Del(ctx, keys...).Err(); err != nil {
		return &chartoserr.CacheError{Op: "delete", Err: err}
	}
	return nil
}

// PurgePrefix resolves every key matching the glob pattern via SCAN and
// deletes them. SCAN is used instead of KEYS (as the Python source does)
// because KEYS blocks the whole Redis instance while it walks the keyspace.
func (c *Cache) PurgePrefix(ctx context.Context, pattern string) error {
	var cursor uint64
	var toDelete []string
	for {
		keys, next, err := c.store.Scan(ctx, cursor, pattern, 1000).Result()
		if err != nil {
			return &chartoserr.CacheError{Op: "purge_prefix scan", Err: err}
		}
		toDelete = append(toDelete, keys...)
		cursor = next
		if cursor == 0 {
			break
		}
	}
	return c.Delete(ctx, toDelete...)
}
