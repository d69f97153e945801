package store

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestProgressDocID(t *testing.T) {
	assert.Equal(t, "user-1_lesson-9", progressDocID("user-1", "lesson-9"))
}

func TestProgressUpdateApply(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	started := now.Add(-48 * time.Hour)

	progress := 0.75
	spent := 300
	completed := true
	score := 92.5
	position := "section-3"

	tests := []struct {
		name     string
		rec      LessonProgressRecord
		upd      ProgressUpdate
		expected LessonProgressRecord
	}{
		{
			name: "full update replaces tracked fields",
			rec: LessonProgressRecord{
				UserID:    "u1",
				LessonID:  "l1",
				Progress:  0.25,
				TimeSpent: 600,
				StartedAt: started,
			},
			upd: ProgressUpdate{
				Progress:     &progress,
				TimeSpent:    &spent,
				Completed:    &completed,
				Score:        &score,
				LastPosition: &position,
			},
			expected: LessonProgressRecord{
				UserID:       "u1",
				LessonID:     "l1",
				Progress:     0.75,
				TimeSpent:    300,
				Completed:    true,
				Score:        &score,
				LastPosition: "section-3",
				StartedAt:    started,
				LastAccessed: now,
				UpdatedAt:    now,
			},
		},
		{
			name: "empty update only touches timestamps",
			rec: LessonProgressRecord{
				UserID:    "u1",
				LessonID:  "l1",
				Progress:  0.5,
				TimeSpent: 120,
				StartedAt: started,
			},
			upd: ProgressUpdate{},
			expected: LessonProgressRecord{
				UserID:       "u1",
				LessonID:     "l1",
				Progress:     0.5,
				TimeSpent:    120,
				StartedAt:    started,
				LastAccessed: now,
				UpdatedAt:    now,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := tt.rec
			tt.upd.apply(&rec, now)
			assert.Equal(t, tt.expected, rec)
		})
	}
}
