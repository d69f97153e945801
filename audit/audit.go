// Package audit mirrors user activity events into Cloud Logging so product
// analytics can consume them outside Firestore.
package audit

import (
	"context"

	"cloud.google.com/go/compute/metadata"
	"cloud.google.com/go/logging"
)

const logName = "user-activity"

// Logger writes structured activity entries. A nil *Logger is a no-op, so
// callers can run without audit logging configured.
type Logger struct {
	client *logging.Client
	lg     *logging.Logger
}

func New(ctx context.Context, projectID string) (*Logger, error) {
	if projectID == "" {
		pid, err := metadata.ProjectIDWithContext(ctx)
		if err != nil {
			return nil, err
		}
		projectID = pid
	}
	client, err := logging.NewClient(ctx, projectID)
	if err != nil {
		return nil, err
	}
	return &Logger{client: client, lg: client.Logger(logName)}, nil
}

// Event records one activity entry. Delivery is asynchronous; use Close to
// flush on shutdown.
func (l *Logger) Event(userID, activityType string, payload map[string]any) {
	if l == nil {
		return
	}
	entry := map[string]any{
		"user_id": userID,
		"type":    activityType,
	}
	for k, v := range payload {
		entry[k] = v
	}
	l.lg.Log(logging.Entry{
		Severity: logging.Info,
		Payload:  entry,
		Labels:   map[string]string{"user_id": userID},
	})
}

func (l *Logger) Close() error {
	if l == nil {
		return nil
	}
	return l.client.Close()
}
