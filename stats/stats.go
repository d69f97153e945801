// Package stats computes dashboard and completion analytics from activity
// records. Everything here is pure; handlers fetch the data and join lesson
// details.
package stats

import (
	"math"
	"time"

	"github.com/klipach/tutorguru/store"
)

// Dashboard time ranges.
const (
	RangeDay   = "day"
	RangeWeek  = "week"
	RangeMonth = "month"
	RangeYear  = "year"
)

// NormalizeRange maps unknown ranges to week.
func NormalizeRange(s string) string {
	switch s {
	case RangeDay, RangeWeek, RangeMonth, RangeYear:
		return s
	default:
		return RangeWeek
	}
}

func midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func dateKey(t time.Time) string {
	return t.Format("2006-01-02")
}

// PeriodStart returns the start of the current period. Weeks start on Monday.
func PeriodStart(rng string, now time.Time) time.Time {
	switch NormalizeRange(rng) {
	case RangeDay:
		return midnight(now)
	case RangeMonth:
		return time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	case RangeYear:
		return time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, now.Location())
	default:
		back := (int(now.Weekday()) + 6) % 7
		return midnight(now).AddDate(0, 0, -back)
	}
}

// PreviousPeriodStart returns the start of the period preceding the current
// one; the previous period ends where the current one starts.
func PreviousPeriodStart(rng string, now time.Time) time.Time {
	start := PeriodStart(rng, now)
	switch NormalizeRange(rng) {
	case RangeDay:
		return start.AddDate(0, 0, -1)
	case RangeMonth:
		return start.AddDate(0, -1, 0)
	case RangeYear:
		return start.AddDate(-1, 0, 0)
	default:
		return start.AddDate(0, 0, -7)
	}
}

type Metric struct {
	Label           string  `json:"label"`
	Value           any     `json:"value"`
	Unit            string  `json:"unit"`
	Change          float64 `json:"change"`
	ChangeDirection string  `json:"change_direction"`
}

// Metrics compares the current period against the previous one. A change is
// reported as zero when the previous period has no baseline.
func Metrics(current, previous []store.Activity) []Metric {
	curTime := totalTimeSpent(current)
	prevTime := totalTimeSpent(previous)

	curCompleted := completionCount(current)
	prevCompleted := completionCount(previous)

	curScore := averageActivityScore(current)
	prevScore := averageActivityScore(previous)

	curDays := activeDayCount(current)
	prevDays := activeDayCount(previous)

	timeChange := percentChange(float64(curTime), float64(prevTime))
	completedChange := percentChange(float64(curCompleted), float64(prevCompleted))
	scoreChange := percentChange(curScore, prevScore)
	daysChange := percentChange(float64(curDays), float64(prevDays))

	return []Metric{
		{
			Label:           "Time Spent",
			Value:           int(math.Ceil(float64(curTime) / 60)),
			Unit:            "min",
			Change:          timeChange,
			ChangeDirection: direction(timeChange),
		},
		{
			Label:           "Lessons Completed",
			Value:           curCompleted,
			Unit:            "",
			Change:          completedChange,
			ChangeDirection: direction(completedChange),
		},
		{
			Label:           "Average Score",
			Value:           round1(curScore),
			Unit:            "%",
			Change:          scoreChange,
			ChangeDirection: direction(scoreChange),
		},
		{
			Label:           "Active Days",
			Value:           curDays,
			Unit:            "days",
			Change:          daysChange,
			ChangeDirection: direction(daysChange),
		},
	}
}

func totalTimeSpent(acts []store.Activity) int {
	total := 0
	for _, a := range acts {
		total += a.TimeSpent
	}
	return total
}

func completionCount(acts []store.Activity) int {
	n := 0
	for _, a := range acts {
		if a.Type == store.ActivityLessonCompletion {
			n++
		}
	}
	return n
}

func averageActivityScore(acts []store.Activity) float64 {
	sum, n := 0.0, 0
	for _, a := range acts {
		if a.Score != nil {
			sum += *a.Score
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

func activeDayCount(acts []store.Activity) int {
	days := map[string]struct{}{}
	for _, a := range acts {
		days[dateKey(a.Timestamp)] = struct{}{}
	}
	return len(days)
}

func percentChange(cur, prev float64) float64 {
	if prev <= 0 {
		return 0
	}
	return (cur - prev) / prev * 100
}

func direction(change float64) string {
	switch {
	case change > 0:
		return "up"
	case change < 0:
		return "down"
	default:
		return "flat"
	}
}

// Streak counts consecutive active days ending today. A streak is not broken
// by a day that is still in progress: when today has no activity yet the
// count starts at yesterday.
func Streak(now time.Time, acts []store.Activity) int {
	days := map[string]struct{}{}
	for _, a := range acts {
		days[dateKey(a.Timestamp)] = struct{}{}
	}

	day := midnight(now)
	if _, ok := days[dateKey(day)]; !ok {
		day = day.AddDate(0, 0, -1)
	}

	streak := 0
	for {
		if _, ok := days[dateKey(day)]; !ok {
			return streak
		}
		streak++
		day = day.AddDate(0, 0, -1)
	}
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
