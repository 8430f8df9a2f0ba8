package models

import "time"

// DashboardOverview is the composed payload behind the dashboard
// landing page: one KPI block plus the charts it renders on load.
type DashboardOverview struct {
	Summary              Summary        `json:"summary"`
	TopTutors            []LabeledValue `json:"top_tutors"`
	TopCourses           []LabeledValue `json:"top_courses"`
	AppointmentsByDay    []LabeledValue `json:"appointments_by_weekday"`
	DurationDistribution []LabeledValue `json:"duration_distribution"`
	ShiftCoverage        []LabeledValue `json:"shift_coverage"`
	DatasetLoadedAt      time.Time      `json:"dataset_loaded_at"`
	GeneratedAt          time.Time      `json:"generated_at"`
}
