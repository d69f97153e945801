package stats

import (
	"time"

	"github.com/klipach/tutorguru/store"
)

type TimeSeriesPoint struct {
	Date  time.Time `json:"date"`
	Value float64   `json:"value"`
}

type TimeSeries struct {
	Label string            `json:"label"`
	Data  []TimeSeriesPoint `json:"data"`
}

// TimeSpentSeries buckets time spent (in minutes) over the current period:
// hourly for a day, daily for a week or month, monthly for a year.
func TimeSpentSeries(rng string, now time.Time, acts []store.Activity) TimeSeries {
	rng = NormalizeRange(rng)

	var starts []time.Time
	step := func(t time.Time) time.Time { return t.AddDate(0, 0, 1) }

	switch rng {
	case RangeDay:
		day := midnight(now)
		for h := 0; h < 24; h++ {
			starts = append(starts, day.Add(time.Duration(h)*time.Hour))
		}
		step = func(t time.Time) time.Time { return t.Add(time.Hour) }
	case RangeWeek:
		start := PeriodStart(RangeWeek, now)
		for d := 0; d < 7; d++ {
			starts = append(starts, start.AddDate(0, 0, d))
		}
	case RangeMonth:
		first := PeriodStart(RangeMonth, now)
		// day 0 of the next month normalizes to the last day of this one
		days := time.Date(now.Year(), now.Month()+1, 0, 0, 0, 0, 0, now.Location()).Day()
		for d := 0; d < days; d++ {
			starts = append(starts, first.AddDate(0, 0, d))
		}
	case RangeYear:
		for m := time.January; m <= time.December; m++ {
			starts = append(starts, time.Date(now.Year(), m, 1, 0, 0, 0, 0, now.Location()))
		}
		step = func(t time.Time) time.Time { return t.AddDate(0, 1, 0) }
	}

	data := make([]TimeSeriesPoint, 0, len(starts))
	for _, start := range starts {
		end := step(start)
		seconds := 0
		for _, a := range acts {
			if !a.Timestamp.Before(start) && a.Timestamp.Before(end) {
				seconds += a.TimeSpent
			}
		}
		data = append(data, TimeSeriesPoint{Date: start, Value: float64(seconds) / 60})
	}

	return TimeSeries{Label: "Time Spent (minutes)", Data: data}
}

// SubjectBreakdown sums time spent (in minutes) per subject. subjectOf
// resolves a lesson ID to its subject; activities it cannot resolve are
// skipped.
func SubjectBreakdown(acts []store.Activity, subjectOf func(lessonID string) string) map[string]float64 {
	breakdown := map[string]float64{}
	for _, a := range acts {
		if a.LessonID == "" || a.TimeSpent == 0 {
			continue
		}
		subject := subjectOf(a.LessonID)
		if subject == "" {
			continue
		}
		breakdown[subject] += float64(a.TimeSpent) / 60
	}
	return breakdown
}
