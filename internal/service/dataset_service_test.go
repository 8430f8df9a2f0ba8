package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/tutortrack/scheduling-analytics-api/internal/models"
	appErrors "github.com/tutortrack/scheduling-analytics-api/pkg/errors"
)

type stubDatasetSource struct {
	dataset *models.RawDataset
	err     error
	calls   int
}

func (s *stubDatasetSource) Load(_ context.Context) (*models.RawDataset, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.dataset, nil
}

func rawFixture() *models.RawDataset {
	return &models.RawDataset{
		Appointments: []models.Appointment{
			{
				ID:        "a1",
				TutorID:   "t1",
				CourseID:  "c1",
				Date:      time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC),
				StartTime: models.ParseClockTime("09:00"),
				EndTime:   models.ParseClockTime("10:30"),
				Status:    models.StatusCompleted,
			},
		},
		Tutors: []models.Tutor{
			{ID: "t1", UserID: "u1"},
			{ID: "t2", UserID: "u-missing"},
		},
		Users: []models.User{
			{ID: "u1", FullName: "Dana Reyes", Email: "dana@example.com"},
		},
		Courses: []models.Course{
			{ID: "c1", Name: "Calculus I"},
			{ID: "c2", Name: ""},
		},
	}
}

func TestDatasetServiceSnapshotBeforeLoad(t *testing.T) {
	svc := NewDatasetService(&stubDatasetSource{dataset: rawFixture()}, nil, zap.NewNop())

	_, err := svc.Snapshot()
	require.Error(t, err)
	assert.ErrorIs(t, err, appErrors.ErrDatasetUnavailable)
}

func TestDatasetServiceReloadBuildsSnapshot(t *testing.T) {
	source := &stubDatasetSource{dataset: rawFixture()}
	svc := NewDatasetService(source, nil, zap.NewNop())

	require.NoError(t, svc.Reload(context.Background()))

	snap, err := svc.Snapshot()
	require.NoError(t, err)
	require.Len(t, snap.Appointments, 1)

	// Derived fields applied during the load, not per request.
	appt := snap.Appointments[0]
	assert.True(t, appt.DurationValid)
	assert.InDelta(t, 1.5, appt.DurationHours, 1e-9)
	assert.Equal(t, "Monday", appt.DayOfWeek)
	assert.Equal(t, 9, appt.StartHour)

	// Tutor-user left join with raw-ID fallback.
	assert.Equal(t, "Dana Reyes", snap.Lookups.TutorLabel("t1"))
	assert.Equal(t, "t2", snap.Lookups.TutorLabel("t2"))

	// Unnamed courses fall back to their ID.
	assert.Equal(t, "Calculus I", snap.Lookups.CourseLabel("c1"))
	assert.Equal(t, "c2", snap.Lookups.CourseLabel("c2"))

	assert.False(t, snap.LoadedAt.IsZero())
}

func TestDatasetServiceReloadSwapsSnapshot(t *testing.T) {
	source := &stubDatasetSource{dataset: rawFixture()}
	svc := NewDatasetService(source, nil, zap.NewNop())
	require.NoError(t, svc.Reload(context.Background()))

	first, err := svc.Snapshot()
	require.NoError(t, err)

	bigger := rawFixture()
	bigger.Appointments = append(bigger.Appointments, models.Appointment{
		ID:      "a2",
		TutorID: "t2",
		Date:    time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC),
	})
	source.dataset = bigger

	require.NoError(t, svc.Reload(context.Background()))
	second, err := svc.Snapshot()
	require.NoError(t, err)

	assert.Len(t, first.Appointments, 1)
	assert.Len(t, second.Appointments, 2)
	assert.Equal(t, 2, source.calls)
}

func TestDatasetServiceReloadFailureKeepsOldSnapshot(t *testing.T) {
	source := &stubDatasetSource{dataset: rawFixture()}
	svc := NewDatasetService(source, nil, zap.NewNop())
	require.NoError(t, svc.Reload(context.Background()))

	source.err = assert.AnError
	err := svc.Reload(context.Background())
	require.Error(t, err)

	snap, snapErr := svc.Snapshot()
	require.NoError(t, snapErr)
	assert.Len(t, snap.Appointments, 1)
}
