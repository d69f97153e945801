package stats

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/klipach/tutorguru/store"
)

func TestTimeSpentSeriesWeek(t *testing.T) {
	acts := []store.Activity{
		{TimeSpent: 600, Timestamp: time.Date(2024, 5, 13, 10, 0, 0, 0, time.UTC)}, // Monday
		{TimeSpent: 300, Timestamp: wednesday},
		{TimeSpent: 60, Timestamp: wednesday.Add(2 * time.Hour)},
	}

	series := TimeSpentSeries(RangeWeek, wednesday, acts)
	assert.Equal(t, "Time Spent (minutes)", series.Label)
	require.Len(t, series.Data, 7)

	assert.Equal(t, time.Date(2024, 5, 13, 0, 0, 0, 0, time.UTC), series.Data[0].Date)
	assert.Equal(t, 10.0, series.Data[0].Value)
	assert.Equal(t, 0.0, series.Data[1].Value)
	assert.Equal(t, 11.0, series.Data[2].Value) // both Wednesday activities
	assert.Equal(t, 0.0, series.Data[6].Value)
}

func TestTimeSpentSeriesDay(t *testing.T) {
	acts := []store.Activity{
		{TimeSpent: 600, Timestamp: time.Date(2024, 5, 15, 9, 30, 0, 0, time.UTC)},
	}

	series := TimeSpentSeries(RangeDay, wednesday, acts)
	require.Len(t, series.Data, 24)

	assert.Equal(t, time.Date(2024, 5, 15, 9, 0, 0, 0, time.UTC), series.Data[9].Date)
	assert.Equal(t, 10.0, series.Data[9].Value)
	assert.Equal(t, 0.0, series.Data[10].Value)
}

func TestTimeSpentSeriesMonthAndYear(t *testing.T) {
	series := TimeSpentSeries(RangeMonth, wednesday, nil)
	assert.Len(t, series.Data, 31) // May

	february := time.Date(2024, 2, 10, 0, 0, 0, 0, time.UTC)
	series = TimeSpentSeries(RangeMonth, february, nil)
	assert.Len(t, series.Data, 29) // leap year

	acts := []store.Activity{
		{TimeSpent: 120, Timestamp: time.Date(2024, 3, 20, 0, 0, 0, 0, time.UTC)},
	}
	series = TimeSpentSeries(RangeYear, wednesday, acts)
	require.Len(t, series.Data, 12)
	assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), series.Data[2].Date)
	assert.Equal(t, 2.0, series.Data[2].Value)
}

func TestSubjectBreakdown(t *testing.T) {
	subjects := map[string]string{
		"l1": "math",
		"l2": "math",
		"l3": "biology",
	}
	subjectOf := func(id string) string { return subjects[id] }

	acts := []store.Activity{
		{LessonID: "l1", TimeSpent: 600, Timestamp: wednesday},
		{LessonID: "l2", TimeSpent: 300, Timestamp: wednesday},
		{LessonID: "l3", TimeSpent: 60, Timestamp: wednesday},
		{LessonID: "gone", TimeSpent: 600, Timestamp: wednesday}, // unknown lesson
		{TimeSpent: 600, Timestamp: wednesday},                   // no lesson
	}

	got := SubjectBreakdown(acts, subjectOf)
	assert.Equal(t, map[string]float64{"math": 15, "biology": 1}, got)
}
