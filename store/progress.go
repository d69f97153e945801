package store

import (
	"context"
	"time"
)

// ProgressUpdate carries the mutable lessonProgress fields; nil means leave
// the field as is.
type ProgressUpdate struct {
	Progress     *float64
	TimeSpent    *int
	Completed    *bool
	Score        *float64
	LastPosition *string
	Notes        *string
}

func (u ProgressUpdate) apply(rec *LessonProgressRecord, now time.Time) {
	if u.Progress != nil {
		rec.Progress = *u.Progress
	}
	if u.TimeSpent != nil {
		rec.TimeSpent = *u.TimeSpent
	}
	if u.Completed != nil {
		rec.Completed = *u.Completed
	}
	if u.Score != nil {
		rec.Score = u.Score
	}
	if u.LastPosition != nil {
		rec.LastPosition = *u.LastPosition
	}
	if u.Notes != nil {
		rec.Notes = *u.Notes
	}
	rec.LastAccessed = now
	rec.UpdatedAt = now
}

func progressDocID(uid, lessonID string) string {
	return uid + "_" + lessonID
}

// UpsertLessonProgress creates or merges per-lesson progress for a user and
// returns the stored record.
func (s *Store) UpsertLessonProgress(ctx context.Context, uid, lessonID string, upd ProgressUpdate) (*LessonProgressRecord, error) {
	now := time.Now()
	doc := s.fs.Collection(lessonProgressCollection).Doc(progressDocID(uid, lessonID))

	rec := &LessonProgressRecord{}
	snap, err := doc.Get(ctx)
	switch {
	case err == nil:
		if err := snap.DataTo(rec); err != nil {
			return nil, err
		}
	case isNotFound(err):
		rec.UserID = uid
		rec.LessonID = lessonID
		rec.StartedAt = now
	default:
		return nil, err
	}

	upd.apply(rec, now)
	if _, err := doc.Set(ctx, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// TouchLessonAccess stamps last_accessed when a lesson is opened.
func (s *Store) TouchLessonAccess(ctx context.Context, uid, lessonID string) error {
	_, err := s.UpsertLessonProgress(ctx, uid, lessonID, ProgressUpdate{})
	return err
}
