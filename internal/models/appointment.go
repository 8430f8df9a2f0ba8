package models

import (
	"strconv"
	"strings"
	"time"
)

// Appointment statuses recognised by the analytics pipeline.
const (
	StatusScheduled = "scheduled"
	StatusCompleted = "completed"
	StatusCancelled = "cancelled"
	StatusPending   = "pending"
	StatusNoShow    = "no-show"
)

// Booking types.
const (
	BookingStudent   = "student_booked"
	BookingAdmin     = "admin_scheduled"
	BookingRecurring = "recurring"
)

// Confirmation statuses.
const (
	ConfirmationPending   = "pending"
	ConfirmationConfirmed = "confirmed"
	ConfirmationCancelled = "cancelled"
)

// ClockTime is a time of day expressed as minutes since midnight.
// The zero-capable sentinel ClockInvalid marks an unparsable value.
type ClockTime int

// ClockInvalid marks a missing or unparsable time of day.
const ClockInvalid ClockTime = -1

// Valid reports whether the clock time carries a real value.
func (t ClockTime) Valid() bool {
	return t >= 0 && t < 24*60
}

// Hour returns the hour component (0-23), or -1 for invalid times.
func (t ClockTime) Hour() int {
	if !t.Valid() {
		return -1
	}
	return int(t) / 60
}

// String renders the time as HH:MM; invalid times render empty.
func (t ClockTime) String() string {
	if !t.Valid() {
		return ""
	}
	h, m := int(t)/60, int(t)%60
	return pad2(h) + ":" + pad2(m)
}

func pad2(v int) string {
	if v < 10 {
		return "0" + strconv.Itoa(v)
	}
	return strconv.Itoa(v)
}

// ParseClockTime accepts HH:MM or HH:MM:SS; anything else yields ClockInvalid.
func ParseClockTime(raw string) ClockTime {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ClockInvalid
	}
	parts := strings.Split(raw, ":")
	if len(parts) != 2 && len(parts) != 3 {
		return ClockInvalid
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil {
		return ClockInvalid
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil {
		return ClockInvalid
	}
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return ClockInvalid
	}
	return ClockTime(hour*60 + minute)
}

// ParseDate accepts calendar dates in YYYY-MM-DD form.
func ParseDate(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, false
	}
	parsed, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return time.Time{}, false
	}
	return parsed, true
}

// ParseBool normalises textual truthy representations.
func ParseBool(raw string) bool {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "1", "true", "yes", "y", "t":
		return true
	}
	return false
}

// Appointment is a scheduled tutoring session. The derived fields are
// computed once at load time and never recomputed per aggregation.
type Appointment struct {
	ID                 string    `json:"appointment_id"`
	TutorID            string    `json:"tutor_id"`
	StudentName        string    `json:"student_name"`
	StudentEmail       string    `json:"student_email"`
	CourseID           string    `json:"course_id"`
	Date               time.Time `json:"appointment_date"`
	StartTime          ClockTime `json:"start_time"`
	EndTime            ClockTime `json:"end_time"`
	Status             string    `json:"status"`
	BookingType        string    `json:"booking_type"`
	ConfirmationStatus string    `json:"confirmation_status"`
	Notes              string    `json:"notes,omitempty"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`

	// Derived at load time.
	DurationHours float64 `json:"duration_hours"`
	DurationValid bool    `json:"-"`
	DayOfWeek     string  `json:"day_of_week"`
	StartHour     int     `json:"start_hour"`
}

// Derive computes duration, weekday and start hour from the raw fields.
// Overnight or reversed windows produce a zero, invalid duration so the
// record is excluded from duration-based aggregations without aborting
// the load.
func (a *Appointment) Derive() {
	a.DurationHours = 0
	a.DurationValid = false
	if a.StartTime.Valid() && a.EndTime.Valid() && a.EndTime >= a.StartTime {
		a.DurationHours = float64(a.EndTime-a.StartTime) / 60.0
		a.DurationValid = true
	}

	a.DayOfWeek = ""
	if !a.Date.IsZero() {
		a.DayOfWeek = a.Date.Weekday().String()
	}

	a.StartHour = a.StartTime.Hour()
}
