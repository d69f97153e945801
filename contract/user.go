package contract

import (
	"time"

	"github.com/klipach/tutorguru/store"
)

type SignupRequest struct {
	Email       string         `json:"email" validate:"required,email"`
	DisplayName string         `json:"display_name" validate:"required,min=2,max=50"`
	Password    string         `json:"password" validate:"required,password"`
	Preferences map[string]any `json:"preferences"`
}

// UserResponse carries a custom token the client exchanges for an ID token.
type UserResponse struct {
	UID         string `json:"uid"`
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
	Token       string `json:"token"`
}

type PasswordResetRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type VerifyTokenRequest struct {
	Token string `json:"token" validate:"required"`
}

type VerifyTokenResponse struct {
	UID string `json:"uid"`
}

// ProfileUpdateRequest distinguishes absent fields from cleared ones via
// pointers; nil fields are left untouched.
type ProfileUpdateRequest struct {
	DisplayName *string        `json:"display_name" validate:"omitempty,min=2,max=50"`
	AvatarURL   *string        `json:"avatar_url"`
	Preferences map[string]any `json:"preferences"`
}

type ProfileResponse struct {
	UID         string         `json:"uid"`
	Email       string         `json:"email"`
	DisplayName string         `json:"display_name"`
	AvatarURL   string         `json:"avatar_url,omitempty"`
	Preferences map[string]any `json:"preferences"`
	CreatedAt   *time.Time     `json:"created_at,omitempty"`
}

type LearningProgressResponse struct {
	CompletedLessons []store.CompletedLesson `json:"completed_lessons"`
	CurrentLesson    *store.CurrentLesson    `json:"current_lesson"`
	TotalTimeSpent   int                     `json:"total_time_spent"`
	Statistics       map[string]any          `json:"statistics"`
	LastActive       *time.Time              `json:"last_active"`
}

type MessageResponse struct {
	Message string `json:"message"`
}
