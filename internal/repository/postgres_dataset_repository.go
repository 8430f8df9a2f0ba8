package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/tutortrack/scheduling-analytics-api/internal/models"
)

// PostgresDatasetRepository loads the collaborator tables from the
// relational store used by deployments that migrated off CSV files.
type PostgresDatasetRepository struct {
	db *sqlx.DB
}

// NewPostgresDatasetRepository instantiates the repository.
func NewPostgresDatasetRepository(db *sqlx.DB) *PostgresDatasetRepository {
	return &PostgresDatasetRepository{db: db}
}

// Load reads all seven tables in a single pass.
func (r *PostgresDatasetRepository) Load(ctx context.Context) (*models.RawDataset, error) {
	dataset := &models.RawDataset{}
	var err error

	if dataset.Appointments, err = r.appointments(ctx); err != nil {
		return nil, err
	}
	if dataset.Tutors, err = r.tutors(ctx); err != nil {
		return nil, err
	}
	if dataset.Users, err = r.users(ctx); err != nil {
		return nil, err
	}
	if dataset.Courses, err = r.courses(ctx); err != nil {
		return nil, err
	}
	if dataset.Shifts, err = r.shifts(ctx); err != nil {
		return nil, err
	}
	if dataset.ShiftAssignments, err = r.shiftAssignments(ctx); err != nil {
		return nil, err
	}
	if dataset.Availability, err = r.availability(ctx); err != nil {
		return nil, err
	}

	return dataset, nil
}

func (r *PostgresDatasetRepository) appointments(ctx context.Context) ([]models.Appointment, error) {
	type row struct {
		ID                 string         `db:"appointment_id"`
		TutorID            string         `db:"tutor_id"`
		StudentName        sql.NullString `db:"student_name"`
		StudentEmail       sql.NullString `db:"student_email"`
		CourseID           sql.NullString `db:"course_id"`
		Date               time.Time      `db:"appointment_date"`
		StartTime          string         `db:"start_time"`
		EndTime            string         `db:"end_time"`
		Status             string         `db:"status"`
		BookingType        sql.NullString `db:"booking_type"`
		ConfirmationStatus sql.NullString `db:"confirmation_status"`
		Notes              sql.NullString `db:"notes"`
		CreatedAt          time.Time      `db:"created_at"`
		UpdatedAt          time.Time      `db:"updated_at"`
	}

	const query = `SELECT appointment_id, tutor_id, student_name, student_email, course_id,
        appointment_date,
        to_char(start_time, 'HH24:MI') AS start_time,
        to_char(end_time, 'HH24:MI') AS end_time,
        status, booking_type, confirmation_status, notes, created_at, updated_at
        FROM appointments
        ORDER BY appointment_date, start_time, appointment_id`

	var rows []row
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("query appointments: %w", err)
	}

	appointments := make([]models.Appointment, 0, len(rows))
	for _, rec := range rows {
		appointments = append(appointments, models.Appointment{
			ID:                 rec.ID,
			TutorID:            rec.TutorID,
			StudentName:        rec.StudentName.String,
			StudentEmail:       rec.StudentEmail.String,
			CourseID:           rec.CourseID.String,
			Date:               rec.Date,
			StartTime:          models.ParseClockTime(rec.StartTime),
			EndTime:            models.ParseClockTime(rec.EndTime),
			Status:             strings.ToLower(rec.Status),
			BookingType:        strings.ToLower(rec.BookingType.String),
			ConfirmationStatus: strings.ToLower(rec.ConfirmationStatus.String),
			Notes:              rec.Notes.String,
			CreatedAt:          rec.CreatedAt,
			UpdatedAt:          rec.UpdatedAt,
		})
	}
	return appointments, nil
}

func (r *PostgresDatasetRepository) tutors(ctx context.Context) ([]models.Tutor, error) {
	type row struct {
		ID              string         `db:"tutor_id"`
		UserID          sql.NullString `db:"user_id"`
		Bio             sql.NullString `db:"bio"`
		Specializations sql.NullString `db:"specializations"`
		MaxPerDay       sql.NullInt64  `db:"max_appointments_per_day"`
		IsAvailable     bool           `db:"is_available"`
		JoinedDate      sql.NullTime   `db:"joined_date"`
	}

	const query = `SELECT tutor_id, user_id, bio, specializations, max_appointments_per_day,
        is_available, joined_date FROM tutors ORDER BY tutor_id`

	var rows []row
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("query tutors: %w", err)
	}

	tutors := make([]models.Tutor, 0, len(rows))
	for _, rec := range rows {
		tutor := models.Tutor{
			ID:                    rec.ID,
			UserID:                rec.UserID.String,
			Bio:                   rec.Bio.String,
			MaxAppointmentsPerDay: int(rec.MaxPerDay.Int64),
			IsAvailable:           rec.IsAvailable,
		}
		if rec.Specializations.Valid {
			for _, part := range strings.Split(rec.Specializations.String, ",") {
				if trimmed := strings.TrimSpace(part); trimmed != "" {
					tutor.Specializations = append(tutor.Specializations, trimmed)
				}
			}
		}
		if rec.JoinedDate.Valid {
			tutor.JoinedDate = rec.JoinedDate.Time
		}
		tutors = append(tutors, tutor)
	}
	return tutors, nil
}

func (r *PostgresDatasetRepository) users(ctx context.Context) ([]models.User, error) {
	var users []models.User
	type row struct {
		ID       string         `db:"user_id"`
		Email    sql.NullString `db:"email"`
		FullName sql.NullString `db:"full_name"`
		Role     sql.NullString `db:"role"`
		IsActive bool           `db:"is_active"`
	}

	const query = `SELECT user_id, email, full_name, role, is_active FROM users ORDER BY user_id`

	var rows []row
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("query users: %w", err)
	}
	for _, rec := range rows {
		users = append(users, models.User{
			ID:       rec.ID,
			Email:    rec.Email.String,
			FullName: rec.FullName.String,
			Role:     rec.Role.String,
			IsActive: rec.IsActive,
		})
	}
	return users, nil
}

func (r *PostgresDatasetRepository) courses(ctx context.Context) ([]models.Course, error) {
	type row struct {
		ID         string         `db:"course_id"`
		Code       sql.NullString `db:"course_code"`
		Name       sql.NullString `db:"course_name"`
		Department sql.NullString `db:"department"`
		IsActive   bool           `db:"is_active"`
	}

	const query = `SELECT course_id, course_code, course_name, department, is_active
        FROM courses ORDER BY course_id`

	var rows []row
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("query courses: %w", err)
	}

	courses := make([]models.Course, 0, len(rows))
	for _, rec := range rows {
		courses = append(courses, models.Course{
			ID:         rec.ID,
			Code:       rec.Code.String,
			Name:       rec.Name.String,
			Department: rec.Department.String,
			IsActive:   rec.IsActive,
		})
	}
	return courses, nil
}

func (r *PostgresDatasetRepository) shifts(ctx context.Context) ([]models.Shift, error) {
	type row struct {
		ID        string         `db:"shift_id"`
		Name      sql.NullString `db:"name"`
		DayOfWeek sql.NullString `db:"day_of_week"`
		StartTime string         `db:"start_time"`
		EndTime   string         `db:"end_time"`
		IsActive  bool           `db:"is_active"`
	}

	const query = `SELECT shift_id, name, day_of_week,
        to_char(start_time, 'HH24:MI') AS start_time,
        to_char(end_time, 'HH24:MI') AS end_time,
        is_active FROM shifts ORDER BY shift_id`

	var rows []row
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("query shifts: %w", err)
	}

	shifts := make([]models.Shift, 0, len(rows))
	for _, rec := range rows {
		shifts = append(shifts, models.Shift{
			ID:        rec.ID,
			Name:      rec.Name.String,
			DayOfWeek: rec.DayOfWeek.String,
			StartTime: models.ParseClockTime(rec.StartTime),
			EndTime:   models.ParseClockTime(rec.EndTime),
			IsActive:  rec.IsActive,
		})
	}
	return shifts, nil
}

func (r *PostgresDatasetRepository) shiftAssignments(ctx context.Context) ([]models.ShiftAssignment, error) {
	type row struct {
		ID       string `db:"assignment_id"`
		ShiftID  string `db:"shift_id"`
		TutorID  string `db:"tutor_id"`
		IsActive bool   `db:"is_active"`
	}

	const query = `SELECT assignment_id, shift_id, tutor_id, is_active
        FROM shift_assignments ORDER BY assignment_id`

	var rows []row
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("query shift assignments: %w", err)
	}

	assignments := make([]models.ShiftAssignment, 0, len(rows))
	for _, rec := range rows {
		assignments = append(assignments, models.ShiftAssignment{
			ID:       rec.ID,
			ShiftID:  rec.ShiftID,
			TutorID:  rec.TutorID,
			IsActive: rec.IsActive,
		})
	}
	return assignments, nil
}

func (r *PostgresDatasetRepository) availability(ctx context.Context) ([]models.Availability, error) {
	type row struct {
		ID        string         `db:"availability_id"`
		TutorID   string         `db:"tutor_id"`
		DayOfWeek sql.NullString `db:"day_of_week"`
		StartTime string         `db:"start_time"`
		EndTime   string         `db:"end_time"`
		IsActive  bool           `db:"is_active"`
	}

	const query = `SELECT availability_id, tutor_id, day_of_week,
        to_char(start_time, 'HH24:MI') AS start_time,
        to_char(end_time, 'HH24:MI') AS end_time,
        is_active FROM availability ORDER BY availability_id`

	var rows []row
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("query availability: %w", err)
	}

	slots := make([]models.Availability, 0, len(rows))
	for _, rec := range rows {
		slots = append(slots, models.Availability{
			ID:        rec.ID,
			TutorID:   rec.TutorID,
			DayOfWeek: rec.DayOfWeek.String,
			StartTime: models.ParseClockTime(rec.StartTime),
			EndTime:   models.ParseClockTime(rec.EndTime),
			IsActive:  rec.IsActive,
		})
	}
	return slots, nil
}
