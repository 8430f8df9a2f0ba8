package service

import (
	"strings"
	"time"

	"github.com/tutortrack/scheduling-analytics-api/internal/models"
)

// ApplyFilter returns the subset of records matching every active
// dimension of the spec, preserving input order. Inverted date or
// hour ranges match nothing; empty input yields empty output. The
// function never errors: nonsensical specs degrade to "no data".
func ApplyFilter(records []models.Appointment, spec models.FilterSpec) []models.Appointment {
	result := make([]models.Appointment, 0, len(records))
	if len(records) == 0 {
		return result
	}

	// Inverted ranges logically match nothing.
	if spec.StartDate != nil && spec.EndDate != nil && spec.StartDate.After(*spec.EndDate) {
		return result
	}
	if spec.StartHourFrom != nil && spec.StartHourTo != nil && *spec.StartHourFrom > *spec.StartHourTo {
		return result
	}

	tutorSet := buildSet(spec.TutorIDs, false)
	courseSet := buildSet(spec.CourseIDs, false)
	statusSet := buildSet(spec.Statuses, true)
	bookingSet := buildSet(spec.BookingTypes, true)
	confirmationSet := buildSet(spec.ConfirmationStatuses, true)
	dayType := strings.ToLower(strings.TrimSpace(spec.DayType))
	if dayType == "all" {
		dayType = ""
	}

	for _, record := range records {
		if spec.StartDate != nil && record.Date.Before(*spec.StartDate) {
			continue
		}
		if spec.EndDate != nil && record.Date.After(*spec.EndDate) {
			continue
		}
		if !inSet(tutorSet, record.TutorID) {
			continue
		}
		if !inSet(courseSet, record.CourseID) {
			continue
		}
		if !inSet(statusSet, record.Status) {
			continue
		}
		if !inSet(bookingSet, record.BookingType) {
			continue
		}
		if !inSet(confirmationSet, record.ConfirmationStatus) {
			continue
		}
		if !spec.Duration.Matches(record.DurationHours) {
			continue
		}
		if !matchesDayType(dayType, record.Date.Weekday()) {
			continue
		}
		if spec.StartHourFrom != nil && record.StartHour < *spec.StartHourFrom {
			continue
		}
		if spec.StartHourTo != nil && record.StartHour > *spec.StartHourTo {
			continue
		}
		result = append(result, record)
	}
	return result
}

// buildSet normalises a membership dimension. Empty values and the
// literal "all" are no-ops, matching the legacy dashboard's query
// conventions. Enumeration dimensions fold case; identifier
// dimensions stay case-sensitive.
func buildSet(values []string, fold bool) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, value := range values {
		trimmed := strings.TrimSpace(value)
		if trimmed == "" || strings.EqualFold(trimmed, "all") {
			continue
		}
		if fold {
			trimmed = strings.ToLower(trimmed)
		}
		set[trimmed] = struct{}{}
	}
	if len(set) == 0 {
		return nil
	}
	return set
}

func inSet(set map[string]struct{}, value string) bool {
	if set == nil {
		return true
	}
	_, ok := set[value]
	return ok
}

func matchesDayType(dayType string, weekday time.Weekday) bool {
	switch dayType {
	case "":
		return true
	case models.DayTypeWeekday:
		return weekday >= time.Monday && weekday <= time.Friday
	case models.DayTypeWeekend:
		return weekday == time.Saturday || weekday == time.Sunday
	}
	// Unknown day types match nothing rather than erroring.
	return false
}
