package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/tutortrack/scheduling-analytics-api/internal/models"
	appErrors "github.com/tutortrack/scheduling-analytics-api/pkg/errors"
)

const (
	cachePrefixAggregation = "analytics:agg:"
	cachePrefixSummary     = "analytics:summary:"
)

// AnalyticsService ties the snapshot pipeline, the filter engine and
// the aggregation registry together behind the HTTP layer.
type AnalyticsService struct {
	dataset *DatasetService
	cache   *CacheService
	metrics *MetricsService
	logger  *zap.Logger
	ttl     time.Duration
}

// AnalyticsServiceParams bundles dependencies for NewAnalyticsService.
type AnalyticsServiceParams struct {
	Dataset  *DatasetService
	Cache    *CacheService
	Metrics  *MetricsService
	Logger   *zap.Logger
	CacheTTL time.Duration
}

// NewAnalyticsService constructs the analytics service.
func NewAnalyticsService(params AnalyticsServiceParams) *AnalyticsService {
	logger := params.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AnalyticsService{
		dataset: params.Dataset,
		cache:   params.Cache,
		metrics: params.Metrics,
		logger:  logger,
		ttl:     params.CacheTTL,
	}
}

// Names lists every registered aggregation.
func (s *AnalyticsService) Names() []string {
	return AggregationNames()
}

// Aggregate runs one named aggregation over the filtered snapshot. The
// boolean reports whether the result came from cache.
func (s *AnalyticsService) Aggregate(ctx context.Context, name string, spec models.FilterSpec) (*models.AggregationResult, bool, error) {
	fn, ok := LookupAggregation(name)
	if !ok {
		return nil, false, appErrors.ErrUnknownAggregation
	}

	key := fmt.Sprintf("%s%s:%s", cachePrefixAggregation, name, spec.CacheKey())
	var cached models.AggregationResult
	if hit, err := s.cache.Get(ctx, key, &cached); err == nil && hit {
		return &cached, true, nil
	}

	snap, err := s.dataset.Snapshot()
	if err != nil {
		return nil, false, err
	}

	filtered := ApplyFilter(snap.Appointments, spec)
	result := &models.AggregationResult{
		Name: name,
		Series: fn(AggregationInput{
			Records:          filtered,
			Lookups:          snap.Lookups,
			Shifts:           snap.Shifts,
			ShiftAssignments: snap.ShiftAssignments,
			Availability:     snap.Availability,
		}),
		Summary: Summarize(filtered),
	}

	if err := s.cache.Set(ctx, key, result, s.ttl); err != nil {
		s.logger.Debug("aggregation cache write skipped", zap.String("name", name), zap.Error(err))
	}
	return result, false, nil
}

// Summary computes the KPI block over the filtered snapshot without an
// aggregation series.
func (s *AnalyticsService) Summary(ctx context.Context, spec models.FilterSpec) (*models.Summary, bool, error) {
	key := cachePrefixSummary + spec.CacheKey()
	var cached models.Summary
	if hit, err := s.cache.Get(ctx, key, &cached); err == nil && hit {
		return &cached, true, nil
	}

	snap, err := s.dataset.Snapshot()
	if err != nil {
		return nil, false, err
	}

	summary := Summarize(ApplyFilter(snap.Appointments, spec))
	if err := s.cache.Set(ctx, key, summary, s.ttl); err != nil {
		s.logger.Debug("summary cache write skipped", zap.Error(err))
	}
	return &summary, false, nil
}

// SystemMetrics exposes the instrumentation snapshot for operators.
func (s *AnalyticsService) SystemMetrics() models.SystemMetrics {
	return s.metrics.Snapshot()
}

// Reload refreshes the dataset snapshot and drops every derived cache
// entry so subsequent requests see the new data.
func (s *AnalyticsService) Reload(ctx context.Context) error {
	if err := s.dataset.Reload(ctx); err != nil {
		return err
	}
	for _, pattern := range []string{"analytics:*", "dash:*"} {
		if err := s.cache.Invalidate(ctx, pattern); err != nil {
			s.logger.Warn("cache invalidation after reload failed", zap.String("pattern", pattern), zap.Error(err))
		}
	}
	return nil
}

// DatasetLoadedAt reports when the active snapshot was built, or the
// zero time when no snapshot is loaded yet.
func (s *AnalyticsService) DatasetLoadedAt() time.Time {
	snap, err := s.dataset.Snapshot()
	if err != nil {
		return time.Time{}
	}
	return snap.LoadedAt
}
