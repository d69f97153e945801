// Package store holds all Firestore access for the service. One Store
// instance wraps the process-wide client; records never get deleted, only
// written and updated.
package store

import (
	"context"
	"errors"

	"cloud.google.com/go/compute/metadata"
	"cloud.google.com/go/firestore"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/klipach/tutorguru/audit"
)

const (
	usersCollection            = "users"
	learningProgressCollection = "learningProgress"
	lessonsCollection          = "lessons"
	lessonProgressCollection   = "lessonProgress"
	qaCollection               = "qa"
	activityCollection         = "userActivity"
	achievementsCollection     = "userAchievements"
)

// ErrNotFound is returned when a requested document does not exist.
var ErrNotFound = errors.New("not found")

type Store struct {
	fs    *firestore.Client
	audit *audit.Logger
}

func New(fs *firestore.Client) *Store {
	return &Store{fs: fs}
}

// WithAudit mirrors activity writes into Cloud Logging.
func (s *Store) WithAudit(a *audit.Logger) *Store {
	s.audit = a
	return s
}

// Dial creates the Firestore client backing a Store. The project ID falls
// back to the metadata server when not configured.
func Dial(ctx context.Context, projectID, credentialsFile string) (*firestore.Client, error) {
	if projectID == "" {
		pid, err := metadata.ProjectIDWithContext(ctx)
		if err != nil {
			return nil, err
		}
		projectID = pid
	}
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}
	return firestore.NewClient(ctx, projectID, opts...)
}

func isNotFound(err error) bool {
	return status.Code(err) == codes.NotFound
}
