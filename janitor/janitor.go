// Package janitor fails question records stuck in pending. A function
// instance can die between the pending write and the answer write; the sweep
// keeps such exchanges from looking in-flight forever.
package janitor

import (
	"context"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron"
)

type pendingExpirer interface {
	ExpireStalePending(ctx context.Context, cutoff time.Time) (int, error)
}

type Janitor struct {
	qa        pendingExpirer
	ttl       time.Duration
	scheduler *gocron.Scheduler
}

func New(qa pendingExpirer, ttl, interval time.Duration) *Janitor {
	j := &Janitor{
		qa:        qa,
		ttl:       ttl,
		scheduler: gocron.NewScheduler(time.UTC),
	}
	j.scheduler.Every(interval).Do(j.sweep)
	return j
}

// Start runs the sweep on its interval without blocking.
func (j *Janitor) Start() {
	j.scheduler.StartAsync()
}

func (j *Janitor) Stop() {
	j.scheduler.Stop()
}

func (j *Janitor) sweep() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	cutoff := time.Now().Add(-j.ttl)
	expired, err := j.qa.ExpireStalePending(ctx, cutoff)
	if err != nil {
		slog.Error("error while expiring stale questions", slog.String("errorMsg", err.Error()))
		return
	}
	if expired > 0 {
		slog.Info("expired stale pending questions", slog.Int("count", expired))
	}
}
