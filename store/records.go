package store

import "time"

// QA lifecycle states.
const (
	StatusPending   = "pending"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

// Activity types recorded in the userActivity collection.
const (
	ActivityQAQuestion       = "qa_question"
	ActivityLessonProgress   = "lesson_progress"
	ActivityLessonCompletion = "lesson_completion"
)

type UserProfile struct {
	UID         string         `firestore:"uid" json:"uid"`
	Email       string         `firestore:"email" json:"email"`
	DisplayName string         `firestore:"display_name" json:"display_name"`
	AvatarURL   string         `firestore:"avatar_url" json:"avatar_url,omitempty"`
	Preferences map[string]any `firestore:"preferences" json:"preferences"`
	CreatedAt   time.Time      `firestore:"created_at" json:"created_at"`
	UpdatedAt   time.Time      `firestore:"updated_at" json:"updated_at"`
}

type CompletedLesson struct {
	LessonID       string    `firestore:"lesson_id" json:"lesson_id"`
	Title          string    `firestore:"title" json:"title"`
	Completed      bool      `firestore:"completed" json:"completed"`
	CompletionDate time.Time `firestore:"completion_date" json:"completion_date"`
	Score          *float64  `firestore:"score" json:"score,omitempty"`
	TimeSpent      int       `firestore:"time_spent" json:"time_spent"`
}

type CurrentLesson struct {
	LessonID     string  `firestore:"lesson_id" json:"lesson_id"`
	Title        string  `firestore:"title" json:"title"`
	Progress     float64 `firestore:"progress" json:"progress"`
	LastPosition string  `firestore:"last_position" json:"last_position,omitempty"`
}

// LearningProgress is the per-user rollup document, keyed by uid.
type LearningProgress struct {
	CompletedLessons []CompletedLesson `firestore:"completed_lessons" json:"completed_lessons"`
	CurrentLesson    *CurrentLesson    `firestore:"current_lesson" json:"current_lesson,omitempty"`
	TotalTimeSpent   int               `firestore:"total_time_spent" json:"total_time_spent"`
	Statistics       map[string]any    `firestore:"statistics" json:"statistics"`
	LastActive       time.Time         `firestore:"last_active" json:"last_active"`
}

type ContentSection struct {
	Title    string `firestore:"title" json:"title"`
	Content  string `firestore:"content" json:"content"`
	Order    int    `firestore:"order" json:"order"`
	Type     string `firestore:"type" json:"type,omitempty"`
	MediaURL string `firestore:"media_url" json:"media_url,omitempty"`
}

type Resource struct {
	Title       string `firestore:"title" json:"title"`
	URL         string `firestore:"url" json:"url"`
	Type        string `firestore:"type" json:"type,omitempty"`
	Description string `firestore:"description" json:"description,omitempty"`
}

type Exercise struct {
	Question      string   `firestore:"question" json:"question"`
	Options       []string `firestore:"options" json:"options,omitempty"`
	CorrectAnswer string   `firestore:"correct_answer" json:"correct_answer"`
	Explanation   string   `firestore:"explanation" json:"explanation,omitempty"`
	Difficulty    string   `firestore:"difficulty" json:"difficulty,omitempty"`
}

// LessonRecord is a catalog lesson. The document ID is not stored in the
// document; readers fill ID from the snapshot reference.
type LessonRecord struct {
	ID              string           `firestore:"-" json:"id"`
	Subject         string           `firestore:"subject" json:"subject"`
	Topic           string           `firestore:"topic" json:"topic"`
	Title           string           `firestore:"title" json:"title"`
	Difficulty      string           `firestore:"difficulty" json:"difficulty"`
	DurationMinutes int              `firestore:"duration_minutes" json:"duration_minutes"`
	Summary         string           `firestore:"summary" json:"summary"`
	Content         []ContentSection `firestore:"content" json:"content"`
	Exercises       []Exercise       `firestore:"exercises" json:"exercises,omitempty"`
	Resources       []Resource       `firestore:"resources" json:"resources,omitempty"`
	Tags            []string         `firestore:"tags" json:"tags,omitempty"`
	CreatedAt       time.Time        `firestore:"created_at" json:"created_at"`
	CreatedBy       string           `firestore:"created_by" json:"created_by,omitempty"`
}

// LessonProgressRecord tracks one user against one lesson, keyed
// "<uid>_<lessonID>".
type LessonProgressRecord struct {
	UserID       string    `firestore:"user_id" json:"user_id"`
	LessonID     string    `firestore:"lesson_id" json:"lesson_id"`
	Progress     float64   `firestore:"progress" json:"progress"`
	Completed    bool      `firestore:"completed" json:"completed"`
	TimeSpent    int       `firestore:"time_spent" json:"time_spent"`
	Score        *float64  `firestore:"score" json:"score,omitempty"`
	LastPosition string    `firestore:"last_position" json:"last_position,omitempty"`
	Notes        string    `firestore:"notes" json:"notes,omitempty"`
	StartedAt    time.Time `firestore:"started_at" json:"started_at"`
	LastAccessed time.Time `firestore:"last_accessed" json:"last_accessed"`
	UpdatedAt    time.Time `firestore:"updated_at" json:"updated_at"`
}

type Reference struct {
	Title  string `firestore:"title" json:"title"`
	Source string `firestore:"source" json:"source,omitempty"`
	URL    string `firestore:"url" json:"url,omitempty"`
}

// QARecord is one question/answer exchange. Unlike lessons, the identifier
// is stored inside the document as well.
type QARecord struct {
	ID              string      `firestore:"id"`
	UserID          string      `firestore:"user_id"`
	Question        string      `firestore:"question"`
	Context         string      `firestore:"context"`
	LessonID        string      `firestore:"lesson_id"`
	Status          string      `firestore:"status"`
	Answer          string      `firestore:"answer"`
	Error           string      `firestore:"error"`
	References      []Reference `firestore:"references"`
	CreatedAt       time.Time   `firestore:"created_at"`
	AnswerCreatedAt *time.Time  `firestore:"answer_created_at"`
}

type Activity struct {
	ID          string         `firestore:"-" json:"id"`
	UserID      string         `firestore:"user_id" json:"user_id"`
	Type        string         `firestore:"type" json:"type"`
	Timestamp   time.Time      `firestore:"timestamp" json:"timestamp"`
	LessonID    string         `firestore:"lesson_id" json:"lesson_id,omitempty"`
	LessonTitle string         `firestore:"-" json:"lesson_title,omitempty"`
	TimeSpent   int            `firestore:"time_spent" json:"time_spent,omitempty"`
	Score       *float64       `firestore:"score" json:"score,omitempty"`
	Details     map[string]any `firestore:"details" json:"details,omitempty"`
}

type Achievement struct {
	ID          string    `firestore:"-" json:"id"`
	UserID      string    `firestore:"user_id" json:"user_id"`
	Name        string    `firestore:"name" json:"name"`
	Description string    `firestore:"description" json:"description,omitempty"`
	Type        string    `firestore:"type" json:"type,omitempty"`
	EarnedAt    time.Time `firestore:"earned_at" json:"earned_at"`
}
