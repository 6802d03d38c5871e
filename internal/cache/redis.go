// file: internal/cache/redis.go
// version: 1.0.0
// guid: 99a2a2e2-e6a2-4fda-9e10-2360b35749d1

package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisCache stores JSON-encoded values under a key prefix so that several
// replicas share one suggestion cache. Redis failures degrade to cache
// misses.
type RedisCache[T any] struct {
	client    redis.UniversalClient
	prefix    string
	ttl       time.Duration
	opTimeout time.Duration
}

// NewRedisClient creates a client for addr and verifies it with PING.
func NewRedisClient(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           db,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
		MinIdleConns: 2,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	return rdb, nil
}

// NewRedis wraps client. Keys are stored as prefix + key.
func NewRedis[T any](client redis.UniversalClient, prefix string, ttl time.Duration) *RedisCache[T] {
	return &RedisCache[T]{
		client:    client,
		prefix:    prefix,
		ttl:       ttl,
		opTimeout: 2 * time.Second,
	}
}

func (r *RedisCache[T]) opContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), r.opTimeout)
}

// Get retrieves and decodes a value.
func (r *RedisCache[T]) Get(key string) (T, bool) {
	var zero T
	ctx, cancel := r.opContext()
	defer cancel()

	data, err := r.client.Get(ctx, r.prefix+key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			log.Printf("[WARN] redis cache get %s: %v", key, err)
		}
		return zero, false
	}
	var value T
	if err := json.Unmarshal(data, &value); err != nil {
		log.Printf("[WARN] redis cache decode %s: %v", key, err)
		return zero, false
	}
	return value, true
}

// Set encodes and stores a value with the cache TTL.
func (r *RedisCache[T]) Set(key string, value T) {
	data, err := json.Marshal(value)
	if err != nil {
		log.Printf("[WARN] redis cache encode %s: %v", key, err)
		return
	}
	ctx, cancel := r.opContext()
	defer cancel()
	if err := r.client.Set(ctx, r.prefix+key, data, r.ttl).Err(); err != nil {
		log.Printf("[WARN] redis cache set %s: %v", key, err)
	}
}

// InvalidateAll deletes every key under the prefix.
func (r *RedisCache[T]) InvalidateAll() {
	ctx, cancel := r.opContext()
	defer cancel()

	iter := r.client.Scan(ctx, 0, r.prefix+"*", 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		log.Printf("[WARN] redis cache scan: %v", err)
		return
	}
	if len(keys) == 0 {
		return
	}
	if err := r.client.Del(ctx, keys...).Err(); err != nil {
		log.Printf("[WARN] redis cache invalidate: %v", err)
	}
}

var _ Store[string] = (*Cache[string])(nil)
var _ Store[string] = (*RedisCache[string])(nil)
