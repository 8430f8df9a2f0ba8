package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/tutortrack/scheduling-analytics-api/internal/models"
)

func newDashboardFixture(t *testing.T, cacheRepo CacheRepository, topTutors int) *DashboardService {
	t.Helper()
	raw := rawFixture()
	raw.Appointments = append(raw.Appointments, models.Appointment{
		ID:        "a2",
		TutorID:   "t2",
		CourseID:  "c2",
		Date:      time.Date(2024, 3, 9, 0, 0, 0, 0, time.UTC),
		StartTime: models.ParseClockTime("10:00"),
		EndTime:   models.ParseClockTime("12:00"),
		Status:    models.StatusScheduled,
	})
	raw.Shifts = []models.Shift{{ID: "s1", Name: "Morning", IsActive: true}}
	raw.ShiftAssignments = []models.ShiftAssignment{{ID: "sa1", ShiftID: "s1", TutorID: "t1", IsActive: true}}

	dataset := NewDatasetService(&stubDatasetSource{dataset: raw}, nil, zap.NewNop())
	require.NoError(t, dataset.Reload(context.Background()))

	enabled := cacheRepo != nil
	return NewDashboardService(DashboardServiceParams{
		Dataset:   dataset,
		Cache:     NewCacheService(cacheRepo, nil, time.Minute, zap.NewNop(), enabled),
		Logger:    zap.NewNop(),
		CacheTTL:  time.Minute,
		TopTutors: topTutors,
	})
}

func TestDashboardOverviewComposition(t *testing.T) {
	svc := newDashboardFixture(t, nil, 5)

	overview, cacheHit, err := svc.Overview(context.Background(), models.FilterSpec{})
	require.NoError(t, err)
	assert.False(t, cacheHit)

	assert.Equal(t, 2, overview.Summary.TotalAppointments)
	assert.Len(t, overview.TopTutors, 2)
	assert.Len(t, overview.AppointmentsByDay, 7)
	assert.Len(t, overview.DurationDistribution, 5)
	require.Len(t, overview.ShiftCoverage, 1)
	assert.Equal(t, models.LabeledValue{Label: "Morning", Value: 1}, overview.ShiftCoverage[0])
	assert.False(t, overview.DatasetLoadedAt.IsZero())
	assert.False(t, overview.GeneratedAt.IsZero())
}

func TestDashboardOverviewRespectsTopLimit(t *testing.T) {
	svc := newDashboardFixture(t, nil, 1)

	overview, _, err := svc.Overview(context.Background(), models.FilterSpec{})
	require.NoError(t, err)
	assert.Len(t, overview.TopTutors, 1)
}

func TestDashboardOverviewCached(t *testing.T) {
	cacheRepo := &stubCacheRepo{}
	svc := newDashboardFixture(t, cacheRepo, 5)
	ctx := context.Background()

	first, hit, err := svc.Overview(ctx, models.FilterSpec{})
	require.NoError(t, err)
	assert.False(t, hit)

	second, hit, err := svc.Overview(ctx, models.FilterSpec{})
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, first.Summary, second.Summary)
	assert.Equal(t, first.TopTutors, second.TopTutors)
}

func TestDashboardOverviewAppliesFilter(t *testing.T) {
	svc := newDashboardFixture(t, nil, 5)

	overview, _, err := svc.Overview(context.Background(), models.FilterSpec{Statuses: []string{"completed"}})
	require.NoError(t, err)
	assert.Equal(t, 1, overview.Summary.TotalAppointments)
	assert.Len(t, overview.TopTutors, 1)
}
