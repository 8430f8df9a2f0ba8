package repository

import (
	"context"
	"encoding/csv"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/tutortrack/scheduling-analytics-api/internal/models"
)

// CSV file names expected inside the data directory. A missing file
// yields an empty table for that entity, never a load failure.
const (
	appointmentsFile     = "appointments.csv"
	tutorsFile           = "tutors.csv"
	usersFile            = "users.csv"
	coursesFile          = "courses.csv"
	shiftsFile           = "shifts.csv"
	shiftAssignmentsFile = "shift_assignments.csv"
	availabilityFile     = "availability.csv"
)

// CSVDatasetRepository loads the collaborator tables from a directory
// of CSV files, the storage format of the legacy dashboard.
type CSVDatasetRepository struct {
	dataDir string
	logger  *zap.Logger
}

// NewCSVDatasetRepository constructs a CSV-backed dataset source.
func NewCSVDatasetRepository(dataDir string, logger *zap.Logger) *CSVDatasetRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CSVDatasetRepository{dataDir: dataDir, logger: logger}
}

// Load reads all seven tables. Rows with an unusable identifier or
// date are skipped and counted; the load itself only fails on broken
// CSV framing.
func (r *CSVDatasetRepository) Load(ctx context.Context) (*models.RawDataset, error) {
	dataset := &models.RawDataset{}

	if err := r.loadTable(ctx, appointmentsFile, func(row csvRow) bool {
		appt := models.Appointment{
			ID:                 row.get("appointment_id"),
			TutorID:            row.get("tutor_id"),
			StudentName:        row.get("student_name"),
			StudentEmail:       row.get("student_email"),
			CourseID:           row.get("course_id"),
			StartTime:          models.ParseClockTime(row.get("start_time")),
			EndTime:            models.ParseClockTime(row.get("end_time")),
			Status:             strings.ToLower(row.get("status")),
			BookingType:        strings.ToLower(row.get("booking_type")),
			ConfirmationStatus: strings.ToLower(row.get("confirmation_status")),
			Notes:              row.get("notes"),
		}
		if appt.ID == "" {
			return false
		}
		date, ok := models.ParseDate(row.get("appointment_date"))
		if !ok {
			return false
		}
		appt.Date = date
		if ts, ok := models.ParseDate(row.get("created_at")); ok {
			appt.CreatedAt = ts
		}
		if ts, ok := models.ParseDate(row.get("updated_at")); ok {
			appt.UpdatedAt = ts
		}
		dataset.Appointments = append(dataset.Appointments, appt)
		return true
	}); err != nil {
		return nil, err
	}

	if err := r.loadTable(ctx, tutorsFile, func(row csvRow) bool {
		tutor := models.Tutor{
			ID:          row.get("tutor_id"),
			UserID:      row.get("user_id"),
			Bio:         row.get("bio"),
			IsAvailable: models.ParseBool(row.get("is_available")),
		}
		if tutor.ID == "" {
			return false
		}
		if raw := row.get("specializations"); raw != "" {
			for _, part := range strings.Split(raw, ",") {
				if trimmed := strings.TrimSpace(part); trimmed != "" {
					tutor.Specializations = append(tutor.Specializations, trimmed)
				}
			}
		}
		if max, err := strconv.Atoi(row.get("max_appointments_per_day")); err == nil {
			tutor.MaxAppointmentsPerDay = max
		}
		if date, ok := models.ParseDate(row.get("joined_date")); ok {
			tutor.JoinedDate = date
		}
		dataset.Tutors = append(dataset.Tutors, tutor)
		return true
	}); err != nil {
		return nil, err
	}

	if err := r.loadTable(ctx, usersFile, func(row csvRow) bool {
		user := models.User{
			ID:       row.get("user_id"),
			Email:    row.get("email"),
			FullName: row.get("full_name"),
			Role:     row.get("role"),
			IsActive: models.ParseBool(row.get("is_active")),
		}
		if user.ID == "" {
			return false
		}
		dataset.Users = append(dataset.Users, user)
		return true
	}); err != nil {
		return nil, err
	}

	if err := r.loadTable(ctx, coursesFile, func(row csvRow) bool {
		course := models.Course{
			ID:         row.get("course_id"),
			Code:       row.get("course_code"),
			Name:       row.get("course_name"),
			Department: row.get("department"),
			IsActive:   models.ParseBool(row.get("is_active")),
		}
		if course.ID == "" {
			return false
		}
		dataset.Courses = append(dataset.Courses, course)
		return true
	}); err != nil {
		return nil, err
	}

	if err := r.loadTable(ctx, shiftsFile, func(row csvRow) bool {
		shift := models.Shift{
			ID:        row.get("shift_id"),
			Name:      row.get("name"),
			DayOfWeek: row.get("day_of_week"),
			StartTime: models.ParseClockTime(row.get("start_time")),
			EndTime:   models.ParseClockTime(row.get("end_time")),
			IsActive:  models.ParseBool(row.get("is_active")),
		}
		if shift.ID == "" {
			return false
		}
		dataset.Shifts = append(dataset.Shifts, shift)
		return true
	}); err != nil {
		return nil, err
	}

	if err := r.loadTable(ctx, shiftAssignmentsFile, func(row csvRow) bool {
		assignment := models.ShiftAssignment{
			ID:       row.get("assignment_id"),
			ShiftID:  row.get("shift_id"),
			TutorID:  row.get("tutor_id"),
			IsActive: models.ParseBool(row.get("is_active")),
		}
		if assignment.ShiftID == "" || assignment.TutorID == "" {
			return false
		}
		dataset.ShiftAssignments = append(dataset.ShiftAssignments, assignment)
		return true
	}); err != nil {
		return nil, err
	}

	if err := r.loadTable(ctx, availabilityFile, func(row csvRow) bool {
		slot := models.Availability{
			ID:        row.get("availability_id"),
			TutorID:   row.get("tutor_id"),
			DayOfWeek: row.get("day_of_week"),
			StartTime: models.ParseClockTime(row.get("start_time")),
			EndTime:   models.ParseClockTime(row.get("end_time")),
			IsActive:  models.ParseBool(row.get("is_active")),
		}
		if slot.TutorID == "" {
			return false
		}
		dataset.Availability = append(dataset.Availability, slot)
		return true
	}); err != nil {
		return nil, err
	}

	return dataset, nil
}

type csvRow struct {
	columns map[string]int
	record  []string
}

func (r csvRow) get(column string) string {
	idx, ok := r.columns[column]
	if !ok || idx >= len(r.record) {
		return ""
	}
	return strings.TrimSpace(r.record[idx])
}

func (r *CSVDatasetRepository) loadTable(ctx context.Context, filename string, consume func(csvRow) bool) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	path := filepath.Join(r.dataDir, filename)
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			r.logger.Debug("dataset file absent, using empty table", zap.String("file", filename))
			return nil
		}
		return err
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	headers, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return err
	}

	columns := make(map[string]int, len(headers))
	for i, header := range headers {
		columns[strings.ToLower(strings.TrimSpace(header))] = i
	}

	skipped := 0
	for {
		record, err := reader.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return err
		}
		if len(record) == 0 {
			continue
		}
		if !consume(csvRow{columns: columns, record: record}) {
			skipped++
		}
	}

	if skipped > 0 {
		r.logger.Warn("skipped malformed rows", zap.String("file", filename), zap.Int("rows", skipped))
	}
	return nil
}
