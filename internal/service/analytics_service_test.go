package service

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/tutortrack/scheduling-analytics-api/internal/models"
	appErrors "github.com/tutortrack/scheduling-analytics-api/pkg/errors"
)

type stubCacheRepo struct {
	store   map[string][]byte
	deleted []string
}

func (s *stubCacheRepo) Get(_ context.Context, key string, dest interface{}) error {
	if s.store == nil {
		return appErrors.ErrCacheMiss
	}
	payload, ok := s.store[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(payload, dest)
}

func (s *stubCacheRepo) Set(_ context.Context, key string, value interface{}, _ time.Duration) error {
	if s.store == nil {
		s.store = make(map[string][]byte)
	}
	payload, err := json.Marshal(value)
	if err != nil {
		return err
	}
	s.store[key] = payload
	return nil
}

func (s *stubCacheRepo) DeleteByPattern(_ context.Context, pattern string) error {
	s.deleted = append(s.deleted, pattern)
	prefix := strings.TrimSuffix(pattern, "*")
	for key := range s.store {
		if strings.HasPrefix(key, prefix) {
			delete(s.store, key)
		}
	}
	return nil
}

func newAnalyticsFixture(t *testing.T, cacheRepo CacheRepository) (*AnalyticsService, *stubDatasetSource) {
	t.Helper()
	source := &stubDatasetSource{dataset: rawFixture()}
	dataset := NewDatasetService(source, nil, zap.NewNop())
	require.NoError(t, dataset.Reload(context.Background()))

	enabled := cacheRepo != nil
	cacheSvc := NewCacheService(cacheRepo, nil, time.Minute, zap.NewNop(), enabled)
	svc := NewAnalyticsService(AnalyticsServiceParams{
		Dataset:  dataset,
		Cache:    cacheSvc,
		Metrics:  NewMetricsService(),
		Logger:   zap.NewNop(),
		CacheTTL: time.Minute,
	})
	return svc, source
}

func TestAnalyticsServiceAggregateUnknownName(t *testing.T) {
	svc, _ := newAnalyticsFixture(t, nil)

	_, _, err := svc.Aggregate(context.Background(), "appointments_per_galaxy", models.FilterSpec{})
	require.Error(t, err)
	assert.ErrorIs(t, err, appErrors.ErrUnknownAggregation)
}

func TestAnalyticsServiceAggregateComputesAndCaches(t *testing.T) {
	cacheRepo := &stubCacheRepo{}
	svc, _ := newAnalyticsFixture(t, cacheRepo)
	ctx := context.Background()

	result, cacheHit, err := svc.Aggregate(ctx, "appointments_per_tutor", models.FilterSpec{})
	require.NoError(t, err)
	assert.False(t, cacheHit)
	assert.Equal(t, "appointments_per_tutor", result.Name)
	require.Len(t, result.Series, 1)
	assert.Equal(t, "Dana Reyes", result.Series[0].Label)
	assert.Equal(t, 1, result.Summary.TotalAppointments)

	cached, cacheHit2, err := svc.Aggregate(ctx, "appointments_per_tutor", models.FilterSpec{})
	require.NoError(t, err)
	assert.True(t, cacheHit2)
	assert.Equal(t, result, cached)
}

func TestAnalyticsServiceAggregateDistinctFiltersDistinctKeys(t *testing.T) {
	cacheRepo := &stubCacheRepo{}
	svc, _ := newAnalyticsFixture(t, cacheRepo)
	ctx := context.Background()

	_, _, err := svc.Aggregate(ctx, "appointments_per_tutor", models.FilterSpec{})
	require.NoError(t, err)
	_, hit, err := svc.Aggregate(ctx, "appointments_per_tutor", models.FilterSpec{Statuses: []string{"cancelled"}})
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Len(t, cacheRepo.store, 2)
}

func TestAnalyticsServiceSummary(t *testing.T) {
	svc, _ := newAnalyticsFixture(t, nil)

	summary, cacheHit, err := svc.Summary(context.Background(), models.FilterSpec{})
	require.NoError(t, err)
	assert.False(t, cacheHit)
	assert.Equal(t, 1, summary.TotalAppointments)
	assert.InDelta(t, 1.5, summary.TotalHours, 1e-9)
}

func TestAnalyticsServiceSummaryEmptyAfterFilter(t *testing.T) {
	svc, _ := newAnalyticsFixture(t, nil)

	summary, _, err := svc.Summary(context.Background(), models.FilterSpec{Statuses: []string{"no-show"}})
	require.NoError(t, err)
	assert.Equal(t, models.Summary{}, *summary)
}

func TestAnalyticsServiceReloadInvalidatesCaches(t *testing.T) {
	cacheRepo := &stubCacheRepo{}
	svc, _ := newAnalyticsFixture(t, cacheRepo)
	ctx := context.Background()

	_, _, err := svc.Aggregate(ctx, "appointments_per_tutor", models.FilterSpec{})
	require.NoError(t, err)
	require.NotEmpty(t, cacheRepo.store)

	require.NoError(t, svc.Reload(ctx))
	assert.Contains(t, cacheRepo.deleted, "analytics:*")
	assert.Contains(t, cacheRepo.deleted, "dash:*")
	assert.Empty(t, cacheRepo.store)

	_, hit, err := svc.Aggregate(ctx, "appointments_per_tutor", models.FilterSpec{})
	require.NoError(t, err)
	assert.False(t, hit)
}

func TestAnalyticsServiceNames(t *testing.T) {
	svc, _ := newAnalyticsFixture(t, nil)
	names := svc.Names()
	assert.Len(t, names, 21)
	assert.Contains(t, names, "shift_coverage")
}

func TestAnalyticsServiceDatasetUnavailable(t *testing.T) {
	dataset := NewDatasetService(&stubDatasetSource{dataset: rawFixture()}, nil, zap.NewNop())
	cacheSvc := NewCacheService(nil, nil, time.Minute, zap.NewNop(), false)
	svc := NewAnalyticsService(AnalyticsServiceParams{Dataset: dataset, Cache: cacheSvc, Metrics: NewMetricsService(), Logger: zap.NewNop()})

	_, _, err := svc.Aggregate(context.Background(), "appointments_per_tutor", models.FilterSpec{})
	require.Error(t, err)
	assert.ErrorIs(t, err, appErrors.ErrDatasetUnavailable)
}
