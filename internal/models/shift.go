package models

// Shift is a template staffing window.
type Shift struct {
	ID        string    `json:"shift_id"`
	Name      string    `json:"name"`
	DayOfWeek string    `json:"day_of_week"`
	StartTime ClockTime `json:"start_time"`
	EndTime   ClockTime `json:"end_time"`
	IsActive  bool      `json:"is_active"`
}

// ShiftAssignment binds a tutor to a shift.
type ShiftAssignment struct {
	ID       string `json:"assignment_id"`
	ShiftID  string `json:"shift_id"`
	TutorID  string `json:"tutor_id"`
	IsActive bool   `json:"is_active"`
}

// Availability is a recurring tutor availability window, consumed only
// by coverage aggregations.
type Availability struct {
	ID        string    `json:"availability_id"`
	TutorID   string    `json:"tutor_id"`
	DayOfWeek string    `json:"day_of_week"`
	StartTime ClockTime `json:"start_time"`
	EndTime   ClockTime `json:"end_time"`
	IsActive  bool      `json:"is_active"`
}

// Hours returns the window length in hours, zero for reversed or
// unparsable windows.
func (a Availability) Hours() float64 {
	if !a.StartTime.Valid() || !a.EndTime.Valid() || a.EndTime < a.StartTime {
		return 0
	}
	return float64(a.EndTime-a.StartTime) / 60.0
}
