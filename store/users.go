package store

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
)

func (s *Store) CreateProfile(ctx context.Context, p *UserProfile) error {
	_, err := s.fs.Collection(usersCollection).Doc(p.UID).Set(ctx, p)
	return err
}

func (s *Store) Profile(ctx context.Context, uid string) (*UserProfile, error) {
	snap, err := s.fs.Collection(usersCollection).Doc(uid).Get(ctx)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	p := UserProfile{}
	if err := snap.DataTo(&p); err != nil {
		return nil, err
	}
	return &p, nil
}

// ProfileUpdate carries the optional profile fields a user may change; nil
// means leave the field untouched.
type ProfileUpdate struct {
	DisplayName *string
	AvatarURL   *string
	Preferences map[string]any
}

// UpdateProfile applies a partial update and returns the fresh document.
func (s *Store) UpdateProfile(ctx context.Context, uid string, upd ProfileUpdate) (*UserProfile, error) {
	updates := []firestore.Update{{Path: "updated_at", Value: time.Now()}}
	if upd.DisplayName != nil {
		updates = append(updates, firestore.Update{Path: "display_name", Value: *upd.DisplayName})
	}
	if upd.AvatarURL != nil {
		updates = append(updates, firestore.Update{Path: "avatar_url", Value: *upd.AvatarURL})
	}
	if upd.Preferences != nil {
		updates = append(updates, firestore.Update{Path: "preferences", Value: upd.Preferences})
	}
	if _, err := s.fs.Collection(usersCollection).Doc(uid).Update(ctx, updates); err != nil {
		if isNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return s.Profile(ctx, uid)
}

func (s *Store) LearningProgress(ctx context.Context, uid string) (*LearningProgress, error) {
	snap, err := s.fs.Collection(learningProgressCollection).Doc(uid).Get(ctx)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	lp := LearningProgress{}
	if err := snap.DataTo(&lp); err != nil {
		return nil, err
	}
	return &lp, nil
}

// SetLearningProgress overwrites the rollup document and stamps last_active.
func (s *Store) SetLearningProgress(ctx context.Context, uid string, lp *LearningProgress) error {
	lp.LastActive = time.Now()
	_, err := s.fs.Collection(learningProgressCollection).Doc(uid).Set(ctx, lp)
	return err
}
