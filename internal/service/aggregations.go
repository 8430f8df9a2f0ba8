package service

import (
	"sort"
	"strconv"
	"time"

	"github.com/tutortrack/scheduling-analytics-api/internal/models"
)

// defaultTopLimit bounds the explicit top-N ranking aggregations.
const defaultTopLimit = 10

// AggregationInput carries everything an aggregation may read: the
// filtered appointment records, the shared enrichment lookups, and the
// reference tables consumed by coverage views. Aggregations are pure
// functions over this input.
type AggregationInput struct {
	Records          []models.Appointment
	Lookups          models.Lookups
	Shifts           []models.Shift
	ShiftAssignments []models.ShiftAssignment
	Availability     []models.Availability
}

// AggregationFunc produces one ordered label/value series.
type AggregationFunc func(in AggregationInput) []models.LabeledValue

// weekdayOrder is the canonical bucket ordering for day-of-week
// results regardless of locale.
var weekdayOrder = []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}

// durationBuckets are inclusive-low/exclusive-high except the open
// last bucket. All buckets are always present in results.
var durationBuckets = []struct {
	label string
	low   float64
	high  float64
}{
	{"<1h", 0, 1},
	{"1-2h", 1, 2},
	{"2-3h", 2, 3},
	{"3-4h", 3, 4},
	{"4h+", 4, -1},
}

// aggregationRegistry maps endpoint names to implementations.
//
// Ordering conventions: date- and month-keyed series are
// chronological, day-of-week follows calendar order, hour-of-day is
// 0..23, and per-entity results are descending by value.
var aggregationRegistry = map[string]AggregationFunc{
	"appointments_per_tutor":               appointmentsPerTutor,
	"appointments_per_course":              appointmentsPerCourse,
	"appointments_per_status":              appointmentsPerStatus,
	"appointments_per_booking_type":        appointmentsPerBookingType,
	"appointments_per_confirmation_status": appointmentsPerConfirmationStatus,
	"appointments_per_day":                 appointmentsPerDay,
	"appointments_per_month":               appointmentsPerMonth,
	"appointments_per_weekday":             appointmentsPerWeekday,
	"appointments_per_hour":                appointmentsPerHour,
	"hours_per_tutor":                      hoursPerTutor,
	"hours_per_course":                     hoursPerCourse,
	"hours_per_day":                        hoursPerDay,
	"cumulative_appointments":              cumulativeAppointments,
	"cumulative_hours":                     cumulativeHours,
	"average_duration_per_tutor":           averageDurationPerTutor,
	"duration_distribution":                durationDistribution,
	"top_tutors":                           topTutors,
	"top_courses":                          topCourses,
	"tutor_workload":                       tutorWorkload,
	"tutor_availability_hours":             tutorAvailabilityHours,
	"shift_coverage":                       shiftCoverage,
}

// LookupAggregation resolves an aggregation by name.
func LookupAggregation(name string) (AggregationFunc, bool) {
	fn, ok := aggregationRegistry[name]
	return fn, ok
}

// AggregationNames lists all registered aggregations in sorted order.
func AggregationNames() []string {
	names := make([]string, 0, len(aggregationRegistry))
	for name := range aggregationRegistry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Summarize computes the fixed-shape KPI block over a record set.
// Empty input reports all zeros.
func Summarize(records []models.Appointment) models.Summary {
	summary := models.Summary{TotalAppointments: len(records)}
	tutors := make(map[string]struct{})
	courses := make(map[string]struct{})
	validDurations := 0
	for _, record := range records {
		if record.TutorID != "" {
			tutors[record.TutorID] = struct{}{}
		}
		if record.CourseID != "" {
			courses[record.CourseID] = struct{}{}
		}
		if record.DurationValid {
			summary.TotalHours += record.DurationHours
			validDurations++
		}
	}
	summary.ActiveTutors = len(tutors)
	summary.ActiveCourses = len(courses)
	if validDurations > 0 {
		summary.AverageDurationHours = summary.TotalHours / float64(validDurations)
	}
	return summary
}

func appointmentsPerTutor(in AggregationInput) []models.LabeledValue {
	counts := map[string]float64{}
	for _, record := range in.Records {
		counts[in.Lookups.TutorLabel(record.TutorID)]++
	}
	return sortedByValueDesc(counts)
}

func appointmentsPerCourse(in AggregationInput) []models.LabeledValue {
	counts := map[string]float64{}
	for _, record := range in.Records {
		counts[in.Lookups.CourseLabel(record.CourseID)]++
	}
	return sortedByValueDesc(counts)
}

func appointmentsPerStatus(in AggregationInput) []models.LabeledValue {
	counts := map[string]float64{}
	for _, record := range in.Records {
		if record.Status == "" {
			continue
		}
		counts[record.Status]++
	}
	return sortedByValueDesc(counts)
}

func appointmentsPerBookingType(in AggregationInput) []models.LabeledValue {
	counts := map[string]float64{}
	for _, record := range in.Records {
		if record.BookingType == "" {
			continue
		}
		counts[record.BookingType]++
	}
	return sortedByValueDesc(counts)
}

func appointmentsPerConfirmationStatus(in AggregationInput) []models.LabeledValue {
	counts := map[string]float64{}
	for _, record := range in.Records {
		if record.ConfirmationStatus == "" {
			continue
		}
		counts[record.ConfirmationStatus]++
	}
	return sortedByValueDesc(counts)
}

func appointmentsPerDay(in AggregationInput) []models.LabeledValue {
	counts := map[string]float64{}
	for _, record := range in.Records {
		counts[dateLabel(record.Date)]++
	}
	return sortedByLabelAsc(counts)
}

func appointmentsPerMonth(in AggregationInput) []models.LabeledValue {
	counts := map[string]float64{}
	for _, record := range in.Records {
		counts[record.Date.Format("2006-01")]++
	}
	return sortedByLabelAsc(counts)
}

func appointmentsPerWeekday(in AggregationInput) []models.LabeledValue {
	counts := map[string]float64{}
	for _, record := range in.Records {
		counts[record.DayOfWeek]++
	}
	result := make([]models.LabeledValue, 0, len(weekdayOrder))
	for _, day := range weekdayOrder {
		result = append(result, models.LabeledValue{Label: day, Value: counts[day]})
	}
	return result
}

func appointmentsPerHour(in AggregationInput) []models.LabeledValue {
	counts := map[int]float64{}
	for _, record := range in.Records {
		if record.StartHour >= 0 {
			counts[record.StartHour]++
		}
	}
	result := make([]models.LabeledValue, 0, 24)
	for hour := 0; hour < 24; hour++ {
		result = append(result, models.LabeledValue{Label: strconv.Itoa(hour), Value: counts[hour]})
	}
	return result
}

func hoursPerTutor(in AggregationInput) []models.LabeledValue {
	sums := map[string]float64{}
	for _, record := range in.Records {
		if !record.DurationValid {
			continue
		}
		sums[in.Lookups.TutorLabel(record.TutorID)] += record.DurationHours
	}
	return sortedByValueDesc(sums)
}

func hoursPerCourse(in AggregationInput) []models.LabeledValue {
	sums := map[string]float64{}
	for _, record := range in.Records {
		if !record.DurationValid {
			continue
		}
		sums[in.Lookups.CourseLabel(record.CourseID)] += record.DurationHours
	}
	return sortedByValueDesc(sums)
}

func hoursPerDay(in AggregationInput) []models.LabeledValue {
	sums := map[string]float64{}
	for _, record := range in.Records {
		if !record.DurationValid {
			continue
		}
		sums[dateLabel(record.Date)] += record.DurationHours
	}
	return sortedByLabelAsc(sums)
}

func cumulativeAppointments(in AggregationInput) []models.LabeledValue {
	perDay := appointmentsPerDay(in)
	running := 0.0
	for i := range perDay {
		running += perDay[i].Value
		perDay[i].Value = running
	}
	return perDay
}

func cumulativeHours(in AggregationInput) []models.LabeledValue {
	// One point per distinct date present, including zero-hour days.
	sums := map[string]float64{}
	for _, record := range in.Records {
		label := dateLabel(record.Date)
		if record.DurationValid {
			sums[label] += record.DurationHours
		} else {
			sums[label] += 0
		}
	}
	perDay := sortedByLabelAsc(sums)
	running := 0.0
	for i := range perDay {
		running += perDay[i].Value
		perDay[i].Value = running
	}
	return perDay
}

func averageDurationPerTutor(in AggregationInput) []models.LabeledValue {
	sums := map[string]float64{}
	counts := map[string]float64{}
	for _, record := range in.Records {
		if !record.DurationValid {
			continue
		}
		label := in.Lookups.TutorLabel(record.TutorID)
		sums[label] += record.DurationHours
		counts[label]++
	}
	averages := make(map[string]float64, len(sums))
	for label, total := range sums {
		if counts[label] > 0 {
			averages[label] = total / counts[label]
		}
	}
	return sortedByValueDesc(averages)
}

func durationDistribution(in AggregationInput) []models.LabeledValue {
	result := make([]models.LabeledValue, len(durationBuckets))
	for i, bucket := range durationBuckets {
		result[i] = models.LabeledValue{Label: bucket.label}
	}
	for _, record := range in.Records {
		if !record.DurationValid {
			continue
		}
		for i, bucket := range durationBuckets {
			if record.DurationHours >= bucket.low && (bucket.high < 0 || record.DurationHours < bucket.high) {
				result[i].Value++
				break
			}
		}
	}
	return result
}

func topTutors(in AggregationInput) []models.LabeledValue {
	return limit(appointmentsPerTutor(in), defaultTopLimit)
}

func topCourses(in AggregationInput) []models.LabeledValue {
	return limit(appointmentsPerCourse(in), defaultTopLimit)
}

// tutorWorkload scores each tutor as appointment count plus total
// delivered hours, mirroring the legacy dashboard's workload chart.
func tutorWorkload(in AggregationInput) []models.LabeledValue {
	scores := map[string]float64{}
	for _, record := range in.Records {
		label := in.Lookups.TutorLabel(record.TutorID)
		scores[label]++
		if record.DurationValid {
			scores[label] += record.DurationHours
		}
	}
	return sortedByValueDesc(scores)
}

// tutorAvailabilityHours reports offered coverage from the
// availability table, independent of booking demand.
func tutorAvailabilityHours(in AggregationInput) []models.LabeledValue {
	sums := map[string]float64{}
	for _, slot := range in.Availability {
		if !slot.IsActive {
			continue
		}
		sums[in.Lookups.TutorLabel(slot.TutorID)] += slot.Hours()
	}
	return sortedByValueDesc(sums)
}

// shiftCoverage counts active tutor assignments per shift, labelled by
// shift name and ordered alphabetically for stable chart axes.
func shiftCoverage(in AggregationInput) []models.LabeledValue {
	names := make(map[string]string, len(in.Shifts))
	counts := map[string]float64{}
	for _, shift := range in.Shifts {
		if !shift.IsActive {
			continue
		}
		label := shift.Name
		if label == "" {
			label = shift.ID
		}
		names[shift.ID] = label
		counts[label] = 0
	}
	for _, assignment := range in.ShiftAssignments {
		if !assignment.IsActive {
			continue
		}
		label, ok := names[assignment.ShiftID]
		if !ok {
			continue
		}
		counts[label]++
	}
	return sortedByLabelAsc(counts)
}

func dateLabel(date time.Time) string {
	return date.Format("2006-01-02")
}

func sortedByValueDesc(values map[string]float64) []models.LabeledValue {
	result := make([]models.LabeledValue, 0, len(values))
	for label, value := range values {
		result = append(result, models.LabeledValue{Label: label, Value: value})
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Value == result[j].Value {
			return result[i].Label < result[j].Label
		}
		return result[i].Value > result[j].Value
	})
	return result
}

func sortedByLabelAsc(values map[string]float64) []models.LabeledValue {
	result := make([]models.LabeledValue, 0, len(values))
	for label, value := range values {
		result = append(result, models.LabeledValue{Label: label, Value: value})
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Label < result[j].Label
	})
	return result
}

func limit(values []models.LabeledValue, max int) []models.LabeledValue {
	if max > 0 && len(values) > max {
		return values[:max]
	}
	return values
}
