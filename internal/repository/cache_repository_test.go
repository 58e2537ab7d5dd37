package repository

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"

	appErrors "github.com/noah-isme/campus-virtual-api/pkg/errors"
)

func TestCacheRepositoryWithoutClient(t *testing.T) {
	repo := NewCacheRepository(nil)
	ctx := context.Background()

	var dest map[string]string
	assert.ErrorIs(t, repo.Get(ctx, "k", &dest), appErrors.ErrCacheMiss)
	assert.NoError(t, repo.Set(ctx, "k", map[string]string{"a": "b"}, time.Minute))
	assert.NoError(t, repo.DeleteByPattern(ctx, "k*"))
	assert.NoError(t, repo.Ping(ctx))
	assert.NoError(t, repo.Close())
}

func TestCacheRepositoryReportsUnreachableRedis(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", DialTimeout: 50 * time.Millisecond, MaxRetries: -1})
	repo := NewCacheRepository(client)
	defer repo.Close()
	ctx := context.Background()

	var dest map[string]string
	err := repo.Get(ctx, "campus:grades:s:c", &dest)
	assert.Error(t, err)
	assert.NotErrorIs(t, err, appErrors.ErrCacheMiss)
	assert.Error(t, repo.Set(ctx, "k", "v", time.Minute))
	assert.Error(t, repo.DeleteByPattern(ctx, "campus:grades:*"))
	assert.Error(t, repo.Ping(ctx))
}
