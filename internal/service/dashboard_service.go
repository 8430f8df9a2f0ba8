package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/tutortrack/scheduling-analytics-api/internal/models"
)

const cachePrefixDashboard = "dash:overview:"

// DashboardService composes the overview payload the dashboard renders
// on load, so the frontend needs a single request instead of six.
type DashboardService struct {
	dataset    *DatasetService
	cache      *CacheService
	logger     *zap.Logger
	ttl        time.Duration
	topTutors  int
	topCourses int
	now        func() time.Time
}

// DashboardServiceParams bundles dependencies for NewDashboardService.
type DashboardServiceParams struct {
	Dataset    *DatasetService
	Cache      *CacheService
	Logger     *zap.Logger
	CacheTTL   time.Duration
	TopTutors  int
	TopCourses int
}

// NewDashboardService constructs the dashboard service.
func NewDashboardService(params DashboardServiceParams) *DashboardService {
	logger := params.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	topTutors := params.TopTutors
	if topTutors <= 0 {
		topTutors = 5
	}
	topCourses := params.TopCourses
	if topCourses <= 0 {
		topCourses = 5
	}
	return &DashboardService{
		dataset:    params.Dataset,
		cache:      params.Cache,
		logger:     logger,
		ttl:        params.CacheTTL,
		topTutors:  topTutors,
		topCourses: topCourses,
		now:        time.Now,
	}
}

// Overview builds the composed dashboard payload over the filtered
// snapshot. The boolean reports whether the result came from cache.
func (s *DashboardService) Overview(ctx context.Context, spec models.FilterSpec) (*models.DashboardOverview, bool, error) {
	key := cachePrefixDashboard + spec.CacheKey()
	var cached models.DashboardOverview
	if hit, err := s.cache.Get(ctx, key, &cached); err == nil && hit {
		return &cached, true, nil
	}

	snap, err := s.dataset.Snapshot()
	if err != nil {
		return nil, false, err
	}

	filtered := ApplyFilter(snap.Appointments, spec)
	in := AggregationInput{
		Records:          filtered,
		Lookups:          snap.Lookups,
		Shifts:           snap.Shifts,
		ShiftAssignments: snap.ShiftAssignments,
		Availability:     snap.Availability,
	}

	overview := &models.DashboardOverview{
		Summary:              Summarize(filtered),
		TopTutors:            limit(appointmentsPerTutor(in), s.topTutors),
		TopCourses:           limit(appointmentsPerCourse(in), s.topCourses),
		AppointmentsByDay:    appointmentsPerWeekday(in),
		DurationDistribution: durationDistribution(in),
		ShiftCoverage:        shiftCoverage(in),
		DatasetLoadedAt:      snap.LoadedAt,
		GeneratedAt:          s.now().UTC(),
	}

	if err := s.cache.Set(ctx, key, overview, s.ttl); err != nil {
		s.logger.Debug("dashboard cache write skipped", zap.Error(err))
	}
	return overview, false, nil
}
