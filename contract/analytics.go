package contract

import (
	"time"

	"github.com/klipach/tutorguru/stats"
	"github.com/klipach/tutorguru/store"
)

type CompletedLessonDetail struct {
	LessonID           string    `json:"lesson_id"`
	Title              string    `json:"title"`
	Subject            string    `json:"subject"`
	Topic              string    `json:"topic"`
	Difficulty         string    `json:"difficulty"`
	CompletionDate     time.Time `json:"completion_date"`
	Score              *float64  `json:"score,omitempty"`
	TimeSpent          int       `json:"time_spent"`
	ExercisesCompleted int       `json:"exercises_completed"`
	ExercisesCorrect   int       `json:"exercises_correct"`
}

type CompletedLessonsResponse struct {
	Lessons []CompletedLessonDetail `json:"lessons"`
	Total   int                     `json:"total"`
	Skip    int                     `json:"skip"`
	Limit   int                     `json:"limit"`
}

type CompletionStatsResponse struct {
	TotalLessonsCompleted  int                       `json:"total_lessons_completed"`
	TotalLessonsAvailable  int                       `json:"total_lessons_available"`
	OverallCompletionRate  float64                   `json:"overall_completion_rate"`
	TotalTimeSpent         int                       `json:"total_time_spent"`
	AverageScore           *float64                  `json:"average_score"`
	Subjects               []stats.SubjectCompletion `json:"subjects"`
	DifficultyDistribution map[string]int            `json:"difficulty_distribution"`
	LastActive             *time.Time                `json:"last_active"`
	StreakDays             int                       `json:"streak_days"`
	AchievementsEarned     int                       `json:"achievements_earned"`
}

type ActivityResponse struct {
	Items []store.Activity `json:"items"`
	Total int              `json:"total"`
	Skip  int              `json:"skip"`
	Limit int              `json:"limit"`
}

type DashboardRecommendation struct {
	LessonID        string `json:"lesson_id"`
	Title           string `json:"title"`
	Subject         string `json:"subject"`
	Difficulty      string `json:"difficulty"`
	DurationMinutes int    `json:"duration_minutes"`
}

type DashboardResponse struct {
	TimeRange          string                    `json:"time_range"`
	Metrics            []stats.Metric            `json:"metrics"`
	TimeSeries         []stats.TimeSeries        `json:"time_series"`
	SubjectBreakdown   map[string]float64        `json:"subject_breakdown"`
	RecentAchievements []store.Achievement       `json:"recent_achievements"`
	Recommendations    []DashboardRecommendation `json:"recommendations"`
}
