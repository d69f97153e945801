package store

import (
	"context"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
)

// LessonQuery filters the lesson catalog. Zero values mean "no filter".
type LessonQuery struct {
	Subject    string
	Difficulty string
	Limit      int
	Skip       int
}

func (s *Store) SaveLesson(ctx context.Context, l *LessonRecord) error {
	_, err := s.fs.Collection(lessonsCollection).Doc(l.ID).Set(ctx, l)
	return err
}

func (s *Store) Lesson(ctx context.Context, id string) (*LessonRecord, error) {
	snap, err := s.fs.Collection(lessonsCollection).Doc(id).Get(ctx)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	l := LessonRecord{}
	if err := snap.DataTo(&l); err != nil {
		return nil, err
	}
	l.ID = snap.Ref.ID
	return &l, nil
}

// Lessons lists the catalog newest first. Skip and limit are applied while
// walking the result stream; the catalog is small enough that cursor
// pagination is not worth the bookkeeping.
func (s *Store) Lessons(ctx context.Context, q LessonQuery) ([]LessonRecord, error) {
	query := s.fs.Collection(lessonsCollection).Query
	if q.Subject != "" {
		query = query.Where("subject", "==", q.Subject)
	}
	if q.Difficulty != "" {
		query = query.Where("difficulty", "==", q.Difficulty)
	}

	iter := query.OrderBy("created_at", firestore.Desc).Documents(ctx)
	defer iter.Stop()

	lessons := []LessonRecord{}
	seen := 0
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, err
		}
		seen++
		if seen <= q.Skip {
			continue
		}
		l := LessonRecord{}
		if err := snap.DataTo(&l); err != nil {
			return nil, err
		}
		l.ID = snap.Ref.ID
		lessons = append(lessons, l)
		if q.Limit > 0 && len(lessons) >= q.Limit {
			break
		}
	}
	return lessons, nil
}

// LessonCount reports catalog size, optionally narrowed to a subject. Only
// document references are fetched.
func (s *Store) LessonCount(ctx context.Context, subject string) (int, error) {
	query := s.fs.Collection(lessonsCollection).Query
	if subject != "" {
		query = query.Where("subject", "==", subject)
	}

	iter := query.Select().Documents(ctx)
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
