package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	appErrors "github.com/noah-isme/campus-virtual-api/pkg/errors"
)

// CacheRepository is the key/value store behind CacheService. Get returns
// appErrors.ErrCacheMiss for absent keys.
type CacheRepository interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	DeleteByPattern(ctx context.Context, pattern string) error
}

// CacheService is a best-effort read-through cache. Store failures are logged
// and counted as misses; callers always fall back to the loader.
type CacheService struct {
	store   CacheRepository
	metrics *MetricsService
	ttl     time.Duration
	logger  *zap.Logger
}

// NewCacheService wires a store. A nil store yields a disabled cache.
func NewCacheService(store CacheRepository, metrics *MetricsService, ttl time.Duration, logger *zap.Logger) *CacheService {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CacheService{store: store, metrics: metrics, ttl: ttl, logger: logger.Named("cache")}
}

// Enabled reports whether a store is attached.
func (s *CacheService) Enabled() bool {
	return s != nil && s.store != nil
}

// Remember returns the cached value under key, or calls load and caches its
// result. Errors from load are returned as is and nothing is cached.
func Remember[T any](ctx context.Context, s *CacheService, key string, load func(context.Context) (T, error)) (T, error) {
	var cached T
	if s.lookup(ctx, key, &cached) {
		return cached, nil
	}
	value, err := load(ctx)
	if err != nil {
		return value, err
	}
	s.save(ctx, key, value)
	return value, nil
}

// Forget drops every key matching pattern.
func (s *CacheService) Forget(ctx context.Context, pattern string) error {
	if !s.Enabled() {
		return nil
	}
	if err := s.store.DeleteByPattern(ctx, pattern); err != nil {
		s.logger.Warn("invalidate failed", zap.String("pattern", pattern), zap.Error(err))
		return err
	}
	return nil
}

func (s *CacheService) lookup(ctx context.Context, key string, dest interface{}) bool {
	if !s.Enabled() {
		return false
	}
	started := time.Now()
	err := s.store.Get(ctx, key, dest)
	s.metrics.RecordCacheOperation(err == nil, time.Since(started))
	if err != nil && !errors.Is(err, appErrors.ErrCacheMiss) {
		s.logger.Warn("read failed", zap.String("key", key), zap.Error(err))
	}
	return err == nil
}

func (s *CacheService) save(ctx context.Context, key string, value interface{}) {
	if !s.Enabled() {
		return
	}
	started := time.Now()
	err := s.store.Set(ctx, key, value, s.ttl)
	s.metrics.ObserveCacheWrite(time.Since(started))
	if err != nil {
		s.logger.Warn("write failed", zap.String("key", key), zap.Error(err))
	}
}
