package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	appErrors "github.com/noah-isme/campus-virtual-api/pkg/errors"
)

// scanBatch bounds both the SCAN page and each UNLINK call.
const scanBatch = 100

// CacheRepository keeps JSON documents in Redis. Without a client every read
// misses and every write is discarded.
type CacheRepository struct {
	rdb redis.UniversalClient
}

// NewCacheRepository wraps rdb, which may be nil.
func NewCacheRepository(rdb redis.UniversalClient) *CacheRepository {
	return &CacheRepository{rdb: rdb}
}

// Get decodes the document at key into dest.
func (r *CacheRepository) Get(ctx context.Context, key string, dest interface{}) error {
	if r.rdb == nil {
		return appErrors.ErrCacheMiss
	}
	raw, err := r.rdb.Get(ctx, key).Bytes()
	switch {
	case errors.Is(err, redis.Nil):
		return appErrors.ErrCacheMiss
	case err != nil:
		return fmt.Errorf("cache get %q: %w", key, err)
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		// A document that no longer decodes is treated as absent and evicted.
		_ = r.rdb.Unlink(ctx, key).Err()
		return appErrors.ErrCacheMiss
	}
	return nil
}

// Set encodes value and stores it for ttl.
func (r *CacheRepository) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if r.rdb == nil {
		return nil
	}
	doc, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("cache encode %q: %w", key, err)
	}
	return r.rdb.Set(ctx, key, doc, ttl).Err()
}

// DeleteByPattern unlinks every key matching a glob pattern, page by page.
func (r *CacheRepository) DeleteByPattern(ctx context.Context, pattern string) error {
	if r.rdb == nil {
		return nil
	}
	var cursor uint64
	for {
		keys, next, err := r.rdb.Scan(ctx, cursor, pattern, scanBatch).Result()
		if err != nil {
			return fmt.Errorf("cache scan %q: %w", pattern, err)
		}
		if len(keys) > 0 {
			if err := r.rdb.Unlink(ctx, keys...).Err(); err != nil {
				return fmt.Errorf("cache unlink %q: %w", pattern, err)
			}
		}
		if next == 0 {
			return nil
		}
		cursor = next
	}
}

// Ping is the readiness probe for Redis.
func (r *CacheRepository) Ping(ctx context.Context) error {
	if r.rdb == nil {
		return nil
	}
	return r.rdb.Ping(ctx).Err()
}

// Close releases the client.
func (r *CacheRepository) Close() error {
	if r.rdb == nil {
		return nil
	}
	return r.rdb.Close()
}
