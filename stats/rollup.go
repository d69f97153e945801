package stats

import (
	"sort"

	"github.com/klipach/tutorguru/store"
)

// LessonInfo is the catalog detail completion rollups join against.
type LessonInfo struct {
	Subject    string
	Difficulty string
}

type SubjectCompletion struct {
	Subject          string   `json:"subject"`
	LessonsCompleted int      `json:"lessons_completed"`
	TotalLessons     int      `json:"total_lessons"`
	CompletionRate   float64  `json:"completion_rate"`
	AverageScore     *float64 `json:"average_score"`
	TotalTimeSpent   int      `json:"total_time_spent"`
}

// AverageScore is nil when no completed lesson carries a score.
func AverageScore(completed []store.CompletedLesson) *float64 {
	sum, n := 0.0, 0
	for _, l := range completed {
		if l.Score != nil {
			sum += *l.Score
			n++
		}
	}
	if n == 0 {
		return nil
	}
	avg := sum / float64(n)
	return &avg
}

// SubjectRollups groups completed lessons by subject. info maps lesson IDs to
// catalog details and totals holds the catalog lesson count per subject;
// completed lessons missing from info are skipped. Results are sorted by
// subject.
func SubjectRollups(completed []store.CompletedLesson, info map[string]LessonInfo, totals map[string]int) []SubjectCompletion {
	type agg struct {
		completed int
		timeSpent int
		scoreSum  float64
		scoreN    int
	}
	bySubject := map[string]*agg{}

	for _, l := range completed {
		li, ok := info[l.LessonID]
		if !ok || li.Subject == "" {
			continue
		}
		a := bySubject[li.Subject]
		if a == nil {
			a = &agg{}
			bySubject[li.Subject] = a
		}
		a.completed++
		a.timeSpent += l.TimeSpent
		if l.Score != nil {
			a.scoreSum += *l.Score
			a.scoreN++
		}
	}

	rollups := make([]SubjectCompletion, 0, len(bySubject))
	for subject, a := range bySubject {
		sc := SubjectCompletion{
			Subject:          subject,
			LessonsCompleted: a.completed,
			TotalLessons:     totals[subject],
			TotalTimeSpent:   a.timeSpent,
		}
		if sc.TotalLessons > 0 {
			sc.CompletionRate = float64(a.completed) / float64(sc.TotalLessons) * 100
		}
		if a.scoreN > 0 {
			avg := a.scoreSum / float64(a.scoreN)
			sc.AverageScore = &avg
		}
		rollups = append(rollups, sc)
	}

	sort.Slice(rollups, func(i, j int) bool { return rollups[i].Subject < rollups[j].Subject })
	return rollups
}

// DifficultyDistribution counts completed lessons per known difficulty.
func DifficultyDistribution(completed []store.CompletedLesson, info map[string]LessonInfo) map[string]int {
	dist := map[string]int{"beginner": 0, "intermediate": 0, "advanced": 0}
	for _, l := range completed {
		li, ok := info[l.LessonID]
		if !ok {
			continue
		}
		if _, known := dist[li.Difficulty]; known {
			dist[li.Difficulty]++
		}
	}
	return dist
}
