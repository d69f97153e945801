package contract

import (
	"time"

	"github.com/klipach/tutorguru/store"
)

type LessonGenerateRequest struct {
	Subject                string `json:"subject" validate:"required,min=2,max=50"`
	Topic                  string `json:"topic" validate:"required,min=2,max=100"`
	Difficulty             string `json:"difficulty" validate:"required,oneof=beginner intermediate advanced"`
	DurationMinutes        int    `json:"duration_minutes" validate:"required,min=5,max=120"`
	AdditionalInstructions string `json:"additional_instructions"`
}

// LessonListItem leaves out the lesson body; listings stay light.
type LessonListItem struct {
	ID              string    `json:"id"`
	Title           string    `json:"title"`
	Subject         string    `json:"subject"`
	Topic           string    `json:"topic"`
	Difficulty      string    `json:"difficulty"`
	DurationMinutes int       `json:"duration_minutes"`
	CreatedAt       time.Time `json:"created_at"`
	Tags            []string  `json:"tags"`
	Summary         string    `json:"summary,omitempty"`
}

type LessonListResponse struct {
	Lessons []LessonListItem `json:"lessons"`
	Total   int              `json:"total"`
	Skip    int              `json:"skip"`
	Limit   int              `json:"limit"`
}

// LessonProgressRequest uses pointers where zero is a legal value.
type LessonProgressRequest struct {
	Progress     *float64 `json:"progress" validate:"required,min=0,max=1"`
	TimeSpent    *int     `json:"time_spent" validate:"required,min=0"`
	Completed    bool     `json:"completed"`
	Score        *float64 `json:"score" validate:"omitempty,min=0,max=100"`
	LastPosition string   `json:"last_position"`
	Notes        string   `json:"notes"`
}

type RecommendedLesson struct {
	store.LessonRecord
	RecommendationReason string `json:"recommendation_reason"`
}

type RecommendedLessonsResponse struct {
	Lessons []RecommendedLesson `json:"lessons"`
	Total   int                 `json:"total"`
}

type MyLessonProgress struct {
	Progress       float64    `json:"progress"`
	TimeSpent      int        `json:"time_spent"`
	Completed      bool       `json:"completed"`
	LastAccessed   *time.Time `json:"last_accessed"`
	StartedAt      *time.Time `json:"started_at"`
	CompletionDate *time.Time `json:"completion_date,omitempty"`
	Score          *float64   `json:"score,omitempty"`
}

type MyLesson struct {
	store.LessonRecord
	Progress MyLessonProgress `json:"progress"`
}

type MyLessonsResponse struct {
	Lessons []MyLesson `json:"lessons"`
	Total   int        `json:"total"`
	Skip    int        `json:"skip"`
	Limit   int        `json:"limit"`
}
