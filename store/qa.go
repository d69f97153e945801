package store

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
)

// HistoryQuery selects a window of a user's exchanges.
type HistoryQuery struct {
	LessonID string
	Limit    int
	Skip     int
}

// CreatePendingQuestion writes the initial record. The status is forced to
// pending; an answer may only arrive through AttachAnswer.
func (s *Store) CreatePendingQuestion(ctx context.Context, rec *QARecord) error {
	rec.Status = StatusPending
	if rec.References == nil {
		rec.References = []Reference{}
	}
	_, err := s.fs.Collection(qaCollection).Doc(rec.ID).Set(ctx, rec)
	return err
}

// AttachAnswer completes a pending exchange.
func (s *Store) AttachAnswer(ctx context.Context, id, answer string, refs []Reference, answeredAt time.Time) error {
	if refs == nil {
		refs = []Reference{}
	}
	_, err := s.fs.Collection(qaCollection).Doc(id).Update(ctx, []firestore.Update{
		{Path: "answer", Value: answer},
		{Path: "answer_created_at", Value: answeredAt},
		{Path: "status", Value: StatusCompleted},
		{Path: "references", Value: refs},
	})
	return err
}

func (s *Store) MarkQuestionFailed(ctx context.Context, id, cause string) error {
	_, err := s.fs.Collection(qaCollection).Doc(id).Update(ctx, []firestore.Update{
		{Path: "status", Value: StatusFailed},
		{Path: "error", Value: cause},
	})
	return err
}

func (s *Store) Question(ctx context.Context, id string) (*QARecord, error) {
	snap, err := s.fs.Collection(qaCollection).Doc(id).Get(ctx)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	rec := QARecord{}
	if err := snap.DataTo(&rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

// History returns a user's exchanges newest first, pending and failed ones
// included; callers decide what to surface. Skip and limit are applied while
// walking the stream.
func (s *Store) History(ctx context.Context, uid string, q HistoryQuery) ([]QARecord, error) {
	query := s.fs.Collection(qaCollection).Where("user_id", "==", uid)
	if q.LessonID != "" {
		query = query.Where("lesson_id", "==", q.LessonID)
	}

	iter := query.OrderBy("created_at", firestore.Desc).Documents(ctx)
	defer iter.Stop()

	records := []QARecord{}
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
		rec := QARecord{}
		if err := snap.DataTo(&rec); err != nil {
			return nil, err
		}
		records = append(records, rec)
		if q.Limit > 0 && len(records) >= q.Limit {
			break
		}
	}
	return records, nil
}

// ExpireStalePending fails pending questions created before cutoff so the
// history does not accumulate exchanges nothing will ever answer.
func (s *Store) ExpireStalePending(ctx context.Context, cutoff time.Time) (int, error) {
	iter := s.fs.Collection(qaCollection).
		Where("status", "==", StatusPending).
		Where("created_at", "<", cutoff).
		Documents(ctx)
	defer iter.Stop()

	expired := 0
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return expired, err
		}
		if err := s.MarkQuestionFailed(ctx, snap.Ref.ID, "timed out waiting for an answer"); err != nil {
			return expired, err
		}
		expired++
	}
	return expired, nil
}
