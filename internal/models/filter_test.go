package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDurationFilterVariants(t *testing.T) {
	exact, err := ParseDurationFilter("2")
	require.NoError(t, err)
	require.NotNil(t, exact)
	assert.Equal(t, DurationExact, exact.Kind)
	assert.Equal(t, 2.0, exact.Value)

	rng, err := ParseDurationFilter("1.5-3")
	require.NoError(t, err)
	require.NotNil(t, rng)
	assert.Equal(t, DurationRange, rng.Kind)
	assert.Equal(t, 1.5, rng.Low)
	assert.Equal(t, 3.0, rng.High)

	min, err := ParseDurationFilter("4+")
	require.NoError(t, err)
	require.NotNil(t, min)
	assert.Equal(t, DurationMinimum, min.Kind)
	assert.Equal(t, 4.0, min.Value)
}

func TestParseDurationFilterNoRestriction(t *testing.T) {
	for _, raw := range []string{"", "  ", "all", "All"} {
		filter, err := ParseDurationFilter(raw)
		require.NoError(t, err)
		assert.Nil(t, filter, "input %q", raw)
	}
}

func TestParseDurationFilterMalformed(t *testing.T) {
	for _, raw := range []string{"abc", "-1", "1-x", "+", "2++"} {
		_, err := ParseDurationFilter(raw)
		assert.Error(t, err, "input %q", raw)
	}
}

func TestDurationFilterMatchesExactWithinEpsilon(t *testing.T) {
	filter := &DurationFilter{Kind: DurationExact, Value: 1.5}
	assert.True(t, filter.Matches(1.5))
	assert.True(t, filter.Matches(1.52))
	assert.True(t, filter.Matches(1.46))
	assert.False(t, filter.Matches(1.6))
}

func TestDurationFilterMatchesRangeInclusive(t *testing.T) {
	filter := &DurationFilter{Kind: DurationRange, Low: 1, High: 2}
	assert.True(t, filter.Matches(1))
	assert.True(t, filter.Matches(2))
	assert.False(t, filter.Matches(2.01))
	assert.False(t, filter.Matches(0.99))
}

func TestDurationFilterReversedRangeMatchesNothing(t *testing.T) {
	filter := &DurationFilter{Kind: DurationRange, Low: 3, High: 1}
	assert.False(t, filter.Matches(2))
	assert.False(t, filter.Matches(3))
	assert.False(t, filter.Matches(1))
}

func TestDurationFilterNilMatchesEverything(t *testing.T) {
	var filter *DurationFilter
	assert.True(t, filter.Matches(0))
	assert.True(t, filter.Matches(99))
}

func TestFilterSpecCacheKeyCanonical(t *testing.T) {
	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	hour := 9

	a := FilterSpec{
		StartDate:     &start,
		TutorIDs:      []string{"t2", "t1"},
		Statuses:      []string{"completed"},
		DayType:       "Weekday",
		StartHourFrom: &hour,
	}
	b := FilterSpec{
		StartDate:     &start,
		TutorIDs:      []string{"t1", "t2"},
		Statuses:      []string{"completed"},
		DayType:       "weekday",
		StartHourFrom: &hour,
	}

	assert.Equal(t, a.CacheKey(), b.CacheKey())
	assert.NotEqual(t, a.CacheKey(), FilterSpec{}.CacheKey())
}

func TestFilterSpecCacheKeyIncludesDuration(t *testing.T) {
	duration, err := ParseDurationFilter("1-2")
	require.NoError(t, err)

	with := FilterSpec{Duration: duration}
	without := FilterSpec{}
	assert.NotEqual(t, with.CacheKey(), without.CacheKey())
	assert.Contains(t, with.CacheKey(), "1.00-2.00")
}
