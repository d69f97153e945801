// Package contract defines the wire types of the HTTP API.
package contract

import (
	"time"

	"github.com/klipach/tutorguru/store"
)

type QuestionRequest struct {
	Question string `json:"question" validate:"required,min=5,max=1000"`
	Context  string `json:"context" validate:"omitempty,max=2000"`
	LessonID string `json:"lesson_id"`
}

type QuestionResponse struct {
	QuestionID string            `json:"question_id"`
	Question   string            `json:"question"`
	Answer     string            `json:"answer"`
	AnswerHTML string            `json:"answer_html,omitempty"`
	CreatedAt  time.Time         `json:"created_at"`
	LessonID   string            `json:"lesson_id,omitempty"`
	References []store.Reference `json:"references"`
}

type QAItem struct {
	ID         string            `json:"id"`
	Question   string            `json:"question"`
	Answer     string            `json:"answer"`
	CreatedAt  time.Time         `json:"created_at"`
	LessonID   string            `json:"lesson_id,omitempty"`
	References []store.Reference `json:"references"`
}

type QAHistoryResponse struct {
	Items []QAItem `json:"items"`
	Total int      `json:"total"`
	Skip  int      `json:"skip"`
	Limit int      `json:"limit"`
}
