package models

import "time"

// LabeledValue is one entry of an ordered aggregation result.
type LabeledValue struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
}

// Lookups carries the precomputed ID to display-name mappings built
// once per load and shared by every aggregation in a request.
type Lookups struct {
	TutorNames  map[string]string
	CourseNames map[string]string
}

// TutorLabel resolves a tutor ID to its display name, falling back to
// the raw ID when unmatched.
func (l Lookups) TutorLabel(id string) string {
	if name, ok := l.TutorNames[id]; ok && name != "" {
		return name
	}
	return id
}

// CourseLabel resolves a course ID to its name, falling back to the
// raw ID when unmatched.
func (l Lookups) CourseLabel(id string) string {
	if name, ok := l.CourseNames[id]; ok && name != "" {
		return name
	}
	return id
}

// Summary is the fixed-shape KPI block returned alongside any
// aggregation result.
type Summary struct {
	TotalAppointments    int     `json:"total_appointments"`
	TotalHours           float64 `json:"total_hours"`
	ActiveTutors         int     `json:"active_tutors"`
	ActiveCourses        int     `json:"active_courses"`
	AverageDurationHours float64 `json:"average_duration_hours"`
}

// AggregationResult pairs an ordered aggregation series with the
// summary computed over the same filtered record set.
type AggregationResult struct {
	Name    string         `json:"name"`
	Series  []LabeledValue `json:"series"`
	Summary Summary        `json:"summary"`
}

// RawDataset holds the seven collaborator tables exactly as loaded,
// before derived fields and enrichment are applied.
type RawDataset struct {
	Appointments     []Appointment
	Tutors           []Tutor
	Users            []User
	Courses          []Course
	Shifts           []Shift
	ShiftAssignments []ShiftAssignment
	Availability     []Availability
}

// SystemMetrics is an instrumentation snapshot exposed on the
// analytics system endpoint.
type SystemMetrics struct {
	CacheHitRatio            float64   `json:"cache_hit_ratio"`
	CacheHits                uint64    `json:"cache_hits"`
	CacheMisses              uint64    `json:"cache_misses"`
	RequestsTotal            uint64    `json:"requests_total"`
	AverageRequestDurationMs float64   `json:"average_request_duration_ms"`
	DatasetLoads             uint64    `json:"dataset_loads"`
	AverageLoadDurationMs    float64   `json:"average_load_duration_ms"`
	Goroutines               int       `json:"goroutines"`
	GeneratedAt              time.Time `json:"generated_at"`
}
