package models

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Day-type filter values.
const (
	DayTypeWeekday = "weekday"
	DayTypeWeekend = "weekend"
)

// durationEpsilon absorbs floating rounding on exact duration matches.
const durationEpsilon = 0.05

// DurationKind tags the duration filter variant.
type DurationKind int

const (
	// DurationExact matches a single value within durationEpsilon.
	DurationExact DurationKind = iota
	// DurationRange matches an inclusive-inclusive numeric range.
	DurationRange
	// DurationMinimum matches any duration greater than or equal to Value.
	DurationMinimum
)

// DurationFilter is the parsed form of a duration criterion such as
// "2", "1-2" or "4+". Parsing happens once when the filter spec is
// constructed, never inside aggregation calls.
type DurationFilter struct {
	Kind  DurationKind
	Value float64
	Low   float64
	High  float64
}

// ParseDurationFilter parses the textual duration criterion. Empty and
// "all" yield nil (no restriction); malformed input is a caller error.
func ParseDurationFilter(raw string) (*DurationFilter, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" || strings.EqualFold(raw, "all") {
		return nil, nil
	}

	if strings.HasSuffix(raw, "+") {
		value, err := strconv.ParseFloat(strings.TrimSuffix(raw, "+"), 64)
		if err != nil || value < 0 {
			return nil, fmt.Errorf("invalid duration filter %q", raw)
		}
		return &DurationFilter{Kind: DurationMinimum, Value: value}, nil
	}

	if low, high, ok := strings.Cut(raw, "-"); ok {
		lowVal, errLow := strconv.ParseFloat(low, 64)
		highVal, errHigh := strconv.ParseFloat(high, 64)
		if errLow != nil || errHigh != nil || lowVal < 0 || highVal < 0 {
			return nil, fmt.Errorf("invalid duration filter %q", raw)
		}
		return &DurationFilter{Kind: DurationRange, Low: lowVal, High: highVal}, nil
	}

	value, err := strconv.ParseFloat(raw, 64)
	if err != nil || value < 0 {
		return nil, fmt.Errorf("invalid duration filter %q", raw)
	}
	return &DurationFilter{Kind: DurationExact, Value: value}, nil
}

// Matches reports whether the given duration satisfies the filter.
// A reversed range matches nothing.
func (f *DurationFilter) Matches(hours float64) bool {
	if f == nil {
		return true
	}
	switch f.Kind {
	case DurationExact:
		diff := hours - f.Value
		return diff >= -durationEpsilon && diff <= durationEpsilon
	case DurationRange:
		return hours >= f.Low && hours <= f.High
	case DurationMinimum:
		return hours >= f.Value
	}
	return false
}

// String renders a canonical representation used in cache keys.
func (f *DurationFilter) String() string {
	if f == nil {
		return ""
	}
	switch f.Kind {
	case DurationExact:
		return fmt.Sprintf("eq%.2f", f.Value)
	case DurationRange:
		return fmt.Sprintf("%.2f-%.2f", f.Low, f.High)
	case DurationMinimum:
		return fmt.Sprintf("%.2f+", f.Value)
	}
	return ""
}

// FilterSpec is a multi-dimensional predicate over the appointment set.
// Every dimension is optional; omitted or empty dimensions pass all
// records through. Dimensions combine with logical AND.
type FilterSpec struct {
	StartDate            *time.Time
	EndDate              *time.Time
	TutorIDs             []string
	CourseIDs            []string
	Statuses             []string
	BookingTypes         []string
	ConfirmationStatuses []string
	Duration             *DurationFilter
	DayType              string
	StartHourFrom        *int
	StartHourTo          *int
}

// CacheKey returns a canonical encoding of the spec suitable for use in
// cache keys. Equivalent specs produce identical keys.
func (s FilterSpec) CacheKey() string {
	parts := []string{
		formatDatePart(s.StartDate),
		formatDatePart(s.EndDate),
		formatSetPart(s.TutorIDs),
		formatSetPart(s.CourseIDs),
		formatSetPart(s.Statuses),
		formatSetPart(s.BookingTypes),
		formatSetPart(s.ConfirmationStatuses),
		s.Duration.String(),
		strings.ToLower(s.DayType),
		formatHourPart(s.StartHourFrom),
		formatHourPart(s.StartHourTo),
	}
	return strings.Join(parts, "|")
}

func formatDatePart(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format("2006-01-02")
}

func formatSetPart(values []string) string {
	if len(values) == 0 {
		return ""
	}
	sorted := append([]string(nil), values...)
	sort.Strings(sorted)
	return strings.Join(sorted, ",")
}

func formatHourPart(hour *int) string {
	if hour == nil {
		return ""
	}
	return strconv.Itoa(*hour)
}
