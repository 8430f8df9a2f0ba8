package service

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/tutortrack/scheduling-analytics-api/internal/models"
	appErrors "github.com/tutortrack/scheduling-analytics-api/pkg/errors"
)

// DatasetSource abstracts where the seven collaborator tables come
// from (CSV directory or Postgres).
type DatasetSource interface {
	Load(ctx context.Context) (*models.RawDataset, error)
}

// Snapshot is an immutable view of the loaded dataset with derived
// fields and enrichment lookups applied. Aggregations only ever read
// from a snapshot, so no locking is needed around them.
type Snapshot struct {
	Appointments     []models.Appointment
	Tutors           []models.Tutor
	Users            []models.User
	Courses          []models.Course
	Shifts           []models.Shift
	ShiftAssignments []models.ShiftAssignment
	Availability     []models.Availability
	Lookups          models.Lookups
	LoadedAt         time.Time
}

// DatasetService owns the load/derive/enrich pipeline and publishes
// snapshots atomically. Reload is single-writer; readers always see
// either the previous or the fully loaded snapshot, never a partial
// state.
type DatasetService struct {
	source   DatasetSource
	metrics  *MetricsService
	logger   *zap.Logger
	now      func() time.Time
	reloadMu sync.Mutex
	current  atomic.Pointer[Snapshot]
}

// NewDatasetService constructs a dataset service.
func NewDatasetService(source DatasetSource, metrics *MetricsService, logger *zap.Logger) *DatasetService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DatasetService{source: source, metrics: metrics, logger: logger, now: time.Now}
}

// Snapshot returns the current dataset snapshot.
func (s *DatasetService) Snapshot() (*Snapshot, error) {
	snap := s.current.Load()
	if snap == nil {
		return nil, appErrors.ErrDatasetUnavailable
	}
	return snap, nil
}

// Reload fully re-runs the load and derive steps and swaps in the new
// snapshot. Concurrent reloads are serialised.
func (s *DatasetService) Reload(ctx context.Context) error {
	s.reloadMu.Lock()
	defer s.reloadMu.Unlock()

	start := s.now()
	raw, err := s.source.Load(ctx)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "dataset load failed")
	}

	snap := buildSnapshot(raw, s.now().UTC())
	s.current.Store(snap)

	duration := s.now().Sub(start)
	if s.metrics != nil {
		s.metrics.ObserveDatasetLoad(duration)
		s.metrics.SetSnapshotSize(len(snap.Appointments))
	}
	s.logger.Info("dataset reloaded",
		zap.Int("appointments", len(snap.Appointments)),
		zap.Int("tutors", len(snap.Tutors)),
		zap.Int("courses", len(snap.Courses)),
		zap.Duration("took", duration),
	)
	return nil
}

// buildSnapshot applies derived fields, the tutor-user left join and
// the enrichment lookups to a freshly loaded dataset.
func buildSnapshot(raw *models.RawDataset, loadedAt time.Time) *Snapshot {
	usersByID := make(map[string]models.User, len(raw.Users))
	for _, user := range raw.Users {
		usersByID[user.ID] = user
	}

	tutors := make([]models.Tutor, len(raw.Tutors))
	tutorNames := make(map[string]string, len(raw.Tutors))
	for i, tutor := range raw.Tutors {
		if user, ok := usersByID[tutor.UserID]; ok && user.FullName != "" {
			tutor.DisplayName = user.FullName
			tutor.Email = user.Email
		} else {
			tutor.DisplayName = tutor.ID
		}
		tutors[i] = tutor
		tutorNames[tutor.ID] = tutor.DisplayName
	}

	courseNames := make(map[string]string, len(raw.Courses))
	for _, course := range raw.Courses {
		if course.Name != "" {
			courseNames[course.ID] = course.Name
		}
	}

	appointments := make([]models.Appointment, len(raw.Appointments))
	for i, appt := range raw.Appointments {
		appt.Derive()
		appointments[i] = appt
	}

	return &Snapshot{
		Appointments:     appointments,
		Tutors:           tutors,
		Users:            raw.Users,
		Courses:          raw.Courses,
		Shifts:           raw.Shifts,
		ShiftAssignments: raw.ShiftAssignments,
		Availability:     raw.Availability,
		Lookups: models.Lookups{
			TutorNames:  tutorNames,
			CourseNames: courseNames,
		},
		LoadedAt: loadedAt,
	}
}
