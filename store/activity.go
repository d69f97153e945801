package store

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
)

// LogActivity appends an activity event and mirrors it to the audit logger
// when one is attached. Returns the new document ID.
func (s *Store) LogActivity(ctx context.Context, a *Activity) (string, error) {
	if a.Timestamp.IsZero() {
		a.Timestamp = time.Now()
	}
	ref := s.fs.Collection(activityCollection).NewDoc()
	if _, err := ref.Set(ctx, a); err != nil {
		return "", err
	}
	a.ID = ref.ID

	if s.audit != nil {
		payload := map[string]any{}
		if a.LessonID != "" {
			payload["lesson_id"] = a.LessonID
		}
		if a.TimeSpent > 0 {
			payload["time_spent"] = a.TimeSpent
		}
		if a.Score != nil {
			payload["score"] = *a.Score
		}
		s.audit.Event(a.UserID, a.Type, payload)
	}
	return ref.ID, nil
}

// RecentActivity pages through a user's activity newest first.
func (s *Store) RecentActivity(ctx context.Context, uid string, limit, skip int) ([]Activity, error) {
	iter := s.fs.Collection(activityCollection).
		Where("user_id", "==", uid).
		OrderBy("timestamp", firestore.Desc).
		Offset(skip).
		Limit(limit).
		Documents(ctx)
	defer iter.Stop()

	activities := []Activity{}
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, err
		}
		a := Activity{}
		if err := snap.DataTo(&a); err != nil {
			return nil, err
		}
		a.ID = snap.Ref.ID
		activities = append(activities, a)
	}
	return activities, nil
}

// ActivityBetween returns a user's activity in [from, to), oldest first. A
// zero "to" leaves the range open-ended.
func (s *Store) ActivityBetween(ctx context.Context, uid string, from, to time.Time) ([]Activity, error) {
	query := s.fs.Collection(activityCollection).
		Where("user_id", "==", uid).
		Where("timestamp", ">=", from)
	if !to.IsZero() {
		query = query.Where("timestamp", "<", to)
	}

	iter := query.OrderBy("timestamp", firestore.Asc).Documents(ctx)
	defer iter.Stop()

	activities := []Activity{}
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, err
		}
		a := Activity{}
		if err := snap.DataTo(&a); err != nil {
			return nil, err
		}
		a.ID = snap.Ref.ID
		activities = append(activities, a)
	}
	return activities, nil
}

// RecentAchievements returns the newest achievements, newest first.
func (s *Store) RecentAchievements(ctx context.Context, uid string, limit int) ([]Achievement, error) {
	iter := s.fs.Collection(achievementsCollection).
		Where("user_id", "==", uid).
		OrderBy("earned_at", firestore.Desc).
		Limit(limit).
		Documents(ctx)
	defer iter.Stop()

	achievements := []Achievement{}
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, err
		}
		a := Achievement{}
		if err := snap.DataTo(&a); err != nil {
			return nil, err
		}
		a.ID = snap.Ref.ID
		achievements = append(achievements, a)
	}
	return achievements, nil
}

// AchievementCount counts a user's achievements; only references are fetched.
func (s *Store) AchievementCount(ctx context.Context, uid string) (int, error) {
	iter := s.fs.Collection(achievementsCollection).
		Where("user_id", "==", uid).
		Select().
		Documents(ctx)
	defer iter.Stop()

	count := 0
	for {
		_, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return 0, err
		}
		count++
	}
	return count, nil
}
