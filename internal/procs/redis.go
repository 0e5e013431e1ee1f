package procs

import (
	"context"

	"github.com/redis/go-redis/v9"
)

// RedisPool owns the redis.Client used by tilecache.Cache and the
// httpapi health check, replacing chartos/redis.py's RedisPool
// (aioredis-backed) with go-redis/v9's connection-pooled Client.
type RedisPool struct {
	url    string
	client *redis.Client
}

// NewRedisPool builds a RedisPool around a redis:// URL.
func NewRedisPool(url string) *RedisPool {
	return &RedisPool{url: url}
}

// Start parses the URL and opens the client, mirroring
// RedisPool.on_startup's aioredis.from_url call.
func (p *RedisPool) Start(ctx context.Context) error {
	opts, err := redis.ParseURL(p.url)
	if err != nil {
		return err
	}
	p.client = redis.NewClient(opts)
	return p.client.Ping(ctx).Err()
}

// Stop closes the client, mirroring RedisPool.on_shutdown's
// connection.close().
func (p *RedisPool) Stop(ctx context.Context) error {
	if p.client != nil {
		return p.client.Close()
	}
	return nil
}

// Client returns the underlying redis.Client. Panics if Start has not run.
func (p *RedisPool) Client() *redis.Client {
	if p.client == nil {
		panic("procs: RedisPool.Client() called before Start")
	}
	return p.client
}
