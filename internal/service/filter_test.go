package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tutortrack/scheduling-analytics-api/internal/models"
)

func makeAppointment(id, tutorID, courseID, status string, date time.Time, start, end string) models.Appointment {
	appt := models.Appointment{
		ID:        id,
		TutorID:   tutorID,
		CourseID:  courseID,
		Status:    status,
		Date:      date,
		StartTime: models.ParseClockTime(start),
		EndTime:   models.ParseClockTime(end),
	}
	appt.Derive()
	return appt
}

func fixtureRecords() []models.Appointment {
	// 2024-03-04 is a Monday, 2024-03-09 a Saturday.
	return []models.Appointment{
		makeAppointment("a1", "t1", "c1", models.StatusCompleted, time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC), "09:00", "10:30"),
		makeAppointment("a2", "t1", "c2", models.StatusScheduled, time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC), "14:00", "16:00"),
		makeAppointment("a3", "t2", "c1", models.StatusCancelled, time.Date(2024, 3, 9, 0, 0, 0, 0, time.UTC), "10:00", "11:00"),
		makeAppointment("a4", "t3", "c3", models.StatusCompleted, time.Date(2024, 3, 9, 0, 0, 0, 0, time.UTC), "18:00", "22:00"),
	}
}

func recordIDs(records []models.Appointment) []string {
	ids := make([]string, 0, len(records))
	for _, r := range records {
		ids = append(ids, r.ID)
	}
	return ids
}

func TestApplyFilterNoDimensionsPassesEverything(t *testing.T) {
	records := fixtureRecords()
	result := ApplyFilter(records, models.FilterSpec{})
	assert.Equal(t, recordIDs(records), recordIDs(result))
}

func TestApplyFilterEmptyInput(t *testing.T) {
	result := ApplyFilter(nil, models.FilterSpec{Statuses: []string{"completed"}})
	assert.Empty(t, result)
}

func TestApplyFilterDateRangeInclusive(t *testing.T) {
	start := time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 3, 9, 0, 0, 0, 0, time.UTC)
	result := ApplyFilter(fixtureRecords(), models.FilterSpec{StartDate: &start, EndDate: &end})
	assert.Equal(t, []string{"a2", "a3", "a4"}, recordIDs(result))
}

func TestApplyFilterInvertedDateRangeMatchesNothing(t *testing.T) {
	start := time.Date(2024, 3, 9, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)
	result := ApplyFilter(fixtureRecords(), models.FilterSpec{StartDate: &start, EndDate: &end})
	assert.Empty(t, result)
}

func TestApplyFilterTutorAndStatusCombineWithAnd(t *testing.T) {
	result := ApplyFilter(fixtureRecords(), models.FilterSpec{
		TutorIDs: []string{"t1"},
		Statuses: []string{"completed"},
	})
	assert.Equal(t, []string{"a1"}, recordIDs(result))
}

func TestApplyFilterStatusFoldsCase(t *testing.T) {
	result := ApplyFilter(fixtureRecords(), models.FilterSpec{Statuses: []string{"COMPLETED"}})
	assert.Equal(t, []string{"a1", "a4"}, recordIDs(result))
}

func TestApplyFilterTutorIDsCaseSensitive(t *testing.T) {
	result := ApplyFilter(fixtureRecords(), models.FilterSpec{TutorIDs: []string{"T1"}})
	assert.Empty(t, result)
}

func TestApplyFilterAllSentinelIsNoOp(t *testing.T) {
	result := ApplyFilter(fixtureRecords(), models.FilterSpec{
		Statuses: []string{"all"},
		TutorIDs: []string{""},
	})
	assert.Len(t, result, 4)
}

func TestApplyFilterDuration(t *testing.T) {
	duration, err := models.ParseDurationFilter("1-2")
	require.NoError(t, err)
	result := ApplyFilter(fixtureRecords(), models.FilterSpec{Duration: duration})
	assert.Equal(t, []string{"a1", "a2", "a3"}, recordIDs(result))

	minimum, err := models.ParseDurationFilter("4+")
	require.NoError(t, err)
	result = ApplyFilter(fixtureRecords(), models.FilterSpec{Duration: minimum})
	assert.Equal(t, []string{"a4"}, recordIDs(result))
}

func TestApplyFilterDayType(t *testing.T) {
	weekdays := ApplyFilter(fixtureRecords(), models.FilterSpec{DayType: "weekday"})
	assert.Equal(t, []string{"a1", "a2"}, recordIDs(weekdays))

	weekends := ApplyFilter(fixtureRecords(), models.FilterSpec{DayType: "Weekend"})
	assert.Equal(t, []string{"a3", "a4"}, recordIDs(weekends))

	unknown := ApplyFilter(fixtureRecords(), models.FilterSpec{DayType: "holiday"})
	assert.Empty(t, unknown)
}

func TestApplyFilterStartHourWindow(t *testing.T) {
	from, to := 10, 17
	result := ApplyFilter(fixtureRecords(), models.FilterSpec{StartHourFrom: &from, StartHourTo: &to})
	assert.Equal(t, []string{"a2", "a3"}, recordIDs(result))
}

func TestApplyFilterInvertedHourWindowMatchesNothing(t *testing.T) {
	from, to := 17, 10
	result := ApplyFilter(fixtureRecords(), models.FilterSpec{StartHourFrom: &from, StartHourTo: &to})
	assert.Empty(t, result)
}

func TestApplyFilterIdempotent(t *testing.T) {
	start := time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 3, 9, 0, 0, 0, 0, time.UTC)
	from, to := 9, 18
	spec := models.FilterSpec{
		StartDate:     &start,
		EndDate:       &end,
		Statuses:      []string{"completed", "cancelled"},
		DayType:       "weekend",
		StartHourFrom: &from,
		StartHourTo:   &to,
	}

	once := ApplyFilter(fixtureRecords(), spec)
	require.Equal(t, []string{"a3", "a4"}, recordIDs(once))

	twice := ApplyFilter(once, spec)
	assert.Equal(t, once, twice)
}

func TestApplyFilterPreservesInputOrder(t *testing.T) {
	records := fixtureRecords()
	result := ApplyFilter(records, models.FilterSpec{Statuses: []string{"completed", "cancelled"}})
	assert.Equal(t, []string{"a1", "a3", "a4"}, recordIDs(result))
}
