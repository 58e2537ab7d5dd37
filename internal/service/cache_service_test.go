package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/campus-virtual-api/internal/models"
)

type brokenCache struct{}

func (brokenCache) Get(context.Context, string, interface{}) error {
	return errors.New("connection refused")
}
func (brokenCache) Set(context.Context, string, interface{}, time.Duration) error {
	return errors.New("connection refused")
}
func (brokenCache) DeleteByPattern(context.Context, string) error {
	return errors.New("connection refused")
}

func countingLoader(calls *int, average float64) func(context.Context) (models.CourseGrade, error) {
	return func(context.Context) (models.CourseGrade, error) {
		*calls++
		return models.CourseGrade{Average: average}, nil
	}
}

func TestRememberLoadsOnceAndRecordsLookups(t *testing.T) {
	metrics := NewMetricsService()
	svc := NewCacheService(newMemoryCache(), metrics, 0, nil)
	ctx := context.Background()
	calls := 0

	first, err := Remember(ctx, svc, "campus:grades:a:b", countingLoader(&calls, 77))
	require.NoError(t, err)
	second, err := Remember(ctx, svc, "campus:grades:a:b", countingLoader(&calls, 10))
	require.NoError(t, err)

	assert.Equal(t, 1, calls)
	assert.Equal(t, 77.0, first.Average)
	assert.Equal(t, 77.0, second.Average)
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.cacheLookups.WithLabelValues("hit")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.cacheLookups.WithLabelValues("miss")))
	assert.Equal(t, 0.5, testutil.ToFloat64(metrics.cacheHitRatio))
}

func TestRememberDoesNotCacheLoaderErrors(t *testing.T) {
	store := newMemoryCache()
	svc := NewCacheService(store, nil, time.Minute, nil)

	_, err := Remember(context.Background(), svc, "k", func(context.Context) (models.CourseGrade, error) {
		return models.CourseGrade{}, errors.New("db down")
	})
	assert.Error(t, err)
	assert.Empty(t, store.values)
}

func TestForgetDropsMatchingKeys(t *testing.T) {
	store := newMemoryCache()
	svc := NewCacheService(store, nil, time.Minute, nil)
	ctx := context.Background()
	calls := 0

	_, _ = Remember(ctx, svc, "campus:grades:s1:c1", countingLoader(&calls, 1))
	_, _ = Remember(ctx, svc, "campus:grades:s2:c1", countingLoader(&calls, 2))
	require.NoError(t, svc.Forget(ctx, "campus:grades:s1:*"))

	assert.NotContains(t, store.values, "campus:grades:s1:c1")
	assert.Contains(t, store.values, "campus:grades:s2:c1")
}

func TestCacheServiceWithoutStoreAlwaysLoads(t *testing.T) {
	svc := NewCacheService(nil, nil, time.Minute, nil)
	calls := 0
	for i := 0; i < 2; i++ {
		_, err := Remember(context.Background(), svc, "k", countingLoader(&calls, 1))
		require.NoError(t, err)
	}
	assert.Equal(t, 2, calls)
	assert.False(t, svc.Enabled())

	var nilSvc *CacheService
	assert.False(t, nilSvc.Enabled())
	assert.NoError(t, nilSvc.Forget(context.Background(), "k*"))
}

func TestGradeServiceSurvivesCacheOutage(t *testing.T) {
	items := &fakeGradeItems{items: map[string][]models.GradedItem{
		"s/c": {{Title: "Parcial", TotalPoints: 10, Weight: 1, Grade: floatPtr(9)}},
	}}
	svc := NewGradeService(items, &fakeEnrollments{}, NewCacheService(brokenCache{}, nil, 0, nil), 0, nil)

	grade, err := svc.CourseGrade(context.Background(), "s", "c")
	require.NoError(t, err)
	assert.Equal(t, 90.0, grade.Average)
	svc.Invalidate(context.Background(), "s")
}
