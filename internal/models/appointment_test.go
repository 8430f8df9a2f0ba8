package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParseClockTime(t *testing.T) {
	assert.Equal(t, ClockTime(9*60), ParseClockTime("09:00"))
	assert.Equal(t, ClockTime(14*60+30), ParseClockTime("14:30:00"))
	assert.Equal(t, ClockInvalid, ParseClockTime(""))
	assert.Equal(t, ClockInvalid, ParseClockTime("25:00"))
	assert.Equal(t, ClockInvalid, ParseClockTime("09:75"))
	assert.Equal(t, ClockInvalid, ParseClockTime("soon"))
}

func TestClockTimeString(t *testing.T) {
	assert.Equal(t, "09:05", ClockTime(9*60+5).String())
	assert.Equal(t, "", ClockInvalid.String())
}

func TestDeriveDuration(t *testing.T) {
	appt := Appointment{
		Date:      time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC), // a Monday
		StartTime: ParseClockTime("09:00"),
		EndTime:   ParseClockTime("10:30"),
	}
	appt.Derive()

	assert.True(t, appt.DurationValid)
	assert.InDelta(t, 1.5, appt.DurationHours, 1e-9)
	assert.Equal(t, "Monday", appt.DayOfWeek)
	assert.Equal(t, 9, appt.StartHour)
}

func TestDeriveZeroLengthWindow(t *testing.T) {
	appt := Appointment{
		StartTime: ParseClockTime("12:00"),
		EndTime:   ParseClockTime("12:00"),
	}
	appt.Derive()

	assert.True(t, appt.DurationValid)
	assert.Equal(t, 0.0, appt.DurationHours)
}

func TestDeriveOvernightWindowInvalid(t *testing.T) {
	appt := Appointment{
		StartTime: ParseClockTime("22:00"),
		EndTime:   ParseClockTime("01:00"),
	}
	appt.Derive()

	assert.False(t, appt.DurationValid)
	assert.Equal(t, 0.0, appt.DurationHours)
}

func TestDeriveMissingTimesInvalid(t *testing.T) {
	appt := Appointment{StartTime: ClockInvalid, EndTime: ParseClockTime("10:00")}
	appt.Derive()

	assert.False(t, appt.DurationValid)
	assert.Equal(t, -1, appt.StartHour)
	assert.Equal(t, "", appt.DayOfWeek)
}

func TestLookupsFallBackToRawID(t *testing.T) {
	lookups := Lookups{
		TutorNames:  map[string]string{"t1": "Dana Reyes"},
		CourseNames: map[string]string{"c1": "Calculus I"},
	}

	assert.Equal(t, "Dana Reyes", lookups.TutorLabel("t1"))
	assert.Equal(t, "t9", lookups.TutorLabel("t9"))
	assert.Equal(t, "Calculus I", lookups.CourseLabel("c1"))
	assert.Equal(t, "c9", lookups.CourseLabel("c9"))
}
