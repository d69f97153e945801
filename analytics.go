package tutorguru

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"slices"
	"time"

	"github.com/klipach/tutorguru/contract"
	"github.com/klipach/tutorguru/log"
	"github.com/klipach/tutorguru/stats"
	"github.com/klipach/tutorguru/store"
)

const (
	activityDefaultLimit = 20
	activityMaxLimit     = 100

	streakWindowDays        = 30
	dashboardAchievements   = 3
	dashboardRecommendCount = 3
)

// completedLessons pages the completion ledger newest first and joins each
// entry with its lesson document. Entries whose lesson vanished are dropped.
func (a *app) completedLessons(w http.ResponseWriter, r *http.Request) {
	token, r, ok := a.requireAuth(w, r)
	if !ok {
		return
	}
	ctx := r.Context()
	logger := log.LoggerFromContext(ctx)

	limit, skip := listWindow(r, activityDefaultLimit, activityMaxLimit)

	lp, err := a.users.LearningProgress(ctx, token.UID)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		logger.Error("error while loading learning progress", slog.String(ErrorMsgLogField, err.Error()))
		writeError(w, r, http.StatusInternalServerError, "Failed to retrieve completed lessons")
		return
	}

	var completed []store.CompletedLesson
	if lp != nil {
		completed = slices.Clone(lp.CompletedLessons)
	}
	slices.SortFunc(completed, func(a, b store.CompletedLesson) int {
		return b.CompletionDate.Compare(a.CompletionDate)
	})

	if skip >= len(completed) {
		completed = nil
	} else {
		end := skip + limit
		if end > len(completed) {
			end = len(completed)
		}
		completed = completed[skip:end]
	}

	details := []contract.CompletedLessonDetail{}
	for _, cl := range completed {
		if cl.LessonID == "" {
			continue
		}
		lesson, err := a.lessons.Lesson(ctx, cl.LessonID)
		if errors.Is(err, store.ErrNotFound) {
			continue
		}
		if err != nil {
			logger.Error("error while loading lesson",
				slog.String(lessonIDLogField, cl.LessonID),
				slog.String(ErrorMsgLogField, err.Error()),
			)
			writeError(w, r, http.StatusInternalServerError, "Failed to retrieve completed lessons")
			return
		}
		details = append(details, contract.CompletedLessonDetail{
			LessonID:       cl.LessonID,
			Title:          lesson.Title,
			Subject:        lesson.Subject,
			Topic:          lesson.Topic,
			Difficulty:     lesson.Difficulty,
			CompletionDate: cl.CompletionDate,
			Score:          cl.Score,
			TimeSpent:      cl.TimeSpent,
		})
	}

	writeJSON(w, r, http.StatusOK, contract.CompletedLessonsResponse{
		Lessons: details,
		Total:   len(details),
		Skip:    skip,
		Limit:   limit,
	})
}

func (a *app) completionStats(w http.ResponseWriter, r *http.Request) {
	token, r, ok := a.requireAuth(w, r)
	if !ok {
		return
	}
	ctx := r.Context()
	logger := log.LoggerFromContext(ctx)

	lp, err := a.users.LearningProgress(ctx, token.UID)
	if errors.Is(err, store.ErrNotFound) {
		writeJSON(w, r, http.StatusOK, contract.CompletionStatsResponse{
			Subjects:               []stats.SubjectCompletion{},
			DifficultyDistribution: map[string]int{},
		})
		return
	}
	if err != nil {
		logger.Error("error while loading learning progress", slog.String(ErrorMsgLogField, err.Error()))
		writeError(w, r, http.StatusInternalServerError, "Failed to retrieve completion statistics")
		return
	}

	completed := lp.CompletedLessons

	totalAvailable, err := a.lessons.LessonCount(ctx, "")
	if err != nil {
		logger.Error("error while counting lessons", slog.String(ErrorMsgLogField, err.Error()))
		writeError(w, r, http.StatusInternalServerError, "Failed to retrieve completion statistics")
		return
	}
	rate := 0.0
	if totalAvailable > 0 {
		rate = float64(len(completed)) / float64(totalAvailable) * 100
	}

	info := map[string]stats.LessonInfo{}
	for _, cl := range completed {
		if cl.LessonID == "" {
			continue
		}
		lesson, err := a.lessons.Lesson(ctx, cl.LessonID)
		if errors.Is(err, store.ErrNotFound) {
			continue
		}
		if err != nil {
			logger.Error("error while loading lesson",
				slog.String(lessonIDLogField, cl.LessonID),
				slog.String(ErrorMsgLogField, err.Error()),
			)
			writeError(w, r, http.StatusInternalServerError, "Failed to retrieve completion statistics")
			return
		}
		info[cl.LessonID] = stats.LessonInfo{Subject: lesson.Subject, Difficulty: lesson.Difficulty}
	}

	totals := map[string]int{}
	for _, li := range info {
		if li.Subject == "" {
			continue
		}
		if _, ok := totals[li.Subject]; ok {
			continue
		}
		n, err := a.lessons.LessonCount(ctx, li.Subject)
		if err != nil {
			logger.Error("error while counting subject lessons", slog.String(ErrorMsgLogField, err.Error()))
			writeError(w, r, http.StatusInternalServerError, "Failed to retrieve completion statistics")
			return
		}
		totals[li.Subject] = n
	}

	streak := 0
	var lastActive *time.Time
	if !lp.LastActive.IsZero() {
		la := lp.LastActive
		lastActive = &la

		now := a.now().UTC()
		acts, err := a.activity.ActivityBetween(ctx, token.UID, now.AddDate(0, 0, -streakWindowDays), time.Time{})
		if err != nil {
			logger.Error("error while loading recent activity", slog.String(ErrorMsgLogField, err.Error()))
			writeError(w, r, http.StatusInternalServerError, "Failed to retrieve completion statistics")
			return
		}
		streak = stats.Streak(now, acts)
	}

	earned, err := a.activity.AchievementCount(ctx, token.UID)
	if err != nil {
		logger.Error("error while counting achievements", slog.String(ErrorMsgLogField, err.Error()))
		writeError(w, r, http.StatusInternalServerError, "Failed to retrieve completion statistics")
		return
	}

	writeJSON(w, r, http.StatusOK, contract.CompletionStatsResponse{
		TotalLessonsCompleted:  len(completed),
		TotalLessonsAvailable:  totalAvailable,
		OverallCompletionRate:  rate,
		TotalTimeSpent:         lp.TotalTimeSpent,
		AverageScore:           stats.AverageScore(completed),
		Subjects:               stats.SubjectRollups(completed, info, totals),
		DifficultyDistribution: stats.DifficultyDistribution(completed, info),
		LastActive:             lastActive,
		StreakDays:             streak,
		AchievementsEarned:     earned,
	})
}

// activityFeed lists recent activity with lesson titles joined in. The title
// join is cosmetic and never fails the feed.
func (a *app) activityFeed(w http.ResponseWriter, r *http.Request) {
	token, r, ok := a.requireAuth(w, r)
	if !ok {
		return
	}
	ctx := r.Context()
	logger := log.LoggerFromContext(ctx)

	limit, skip := listWindow(r, activityDefaultLimit, activityMaxLimit)
	items, err := a.activity.RecentActivity(ctx, token.UID, limit, skip)
	if err != nil {
		logger.Error("error while loading activity", slog.String(ErrorMsgLogField, err.Error()))
		writeError(w, r, http.StatusInternalServerError, "Failed to retrieve user activity")
		return
	}

	titles := map[string]string{}
	for i := range items {
		id := items[i].LessonID
		if id == "" {
			continue
		}
		title, ok := titles[id]
		if !ok {
			lesson, err := a.lessons.Lesson(ctx, id)
			if err != nil {
				if !errors.Is(err, store.ErrNotFound) {
					logger.Warn("error while loading lesson title",
						slog.String(lessonIDLogField, id),
						slog.String(ErrorMsgLogField, err.Error()),
					)
				}
				titles[id] = ""
				continue
			}
			title = lesson.Title
			titles[id] = title
		}
		items[i].LessonTitle = title
	}

	writeJSON(w, r, http.StatusOK, contract.ActivityResponse{
		Items: items,
		Total: len(items),
		Skip:  skip,
		Limit: limit,
	})
}

func (a *app) dashboard(w http.ResponseWriter, r *http.Request) {
	token, r, ok := a.requireAuth(w, r)
	if !ok {
		return
	}
	ctx := r.Context()
	logger := log.LoggerFromContext(ctx)

	rng := stats.NormalizeRange(r.URL.Query().Get("time_range"))
	now := a.now().UTC()
	start := stats.PeriodStart(rng, now)
	prevStart := stats.PreviousPeriodStart(rng, now)

	current, err := a.activity.ActivityBetween(ctx, token.UID, start, time.Time{})
	if err != nil {
		logger.Error("error while loading current period activity", slog.String(ErrorMsgLogField, err.Error()))
		writeError(w, r, http.StatusInternalServerError, "Failed to retrieve analytics dashboard")
		return
	}
	previous, err := a.activity.ActivityBetween(ctx, token.UID, prevStart, start)
	if err != nil {
		logger.Error("error while loading previous period activity", slog.String(ErrorMsgLogField, err.Error()))
		writeError(w, r, http.StatusInternalServerError, "Failed to retrieve analytics dashboard")
		return
	}

	breakdown := stats.SubjectBreakdown(current, a.lessonSubjects(ctx))

	achievements, err := a.activity.RecentAchievements(ctx, token.UID, dashboardAchievements)
	if err != nil {
		logger.Error("error while loading achievements", slog.String(ErrorMsgLogField, err.Error()))
		writeError(w, r, http.StatusInternalServerError, "Failed to retrieve analytics dashboard")
		return
	}
	if achievements == nil {
		achievements = []store.Achievement{}
	}

	recommendations := []contract.DashboardRecommendation{}
	for _, l := range a.freshLessons(ctx, token.UID, dashboardRecommendCount) {
		recommendations = append(recommendations, contract.DashboardRecommendation{
			LessonID:        l.ID,
			Title:           l.Title,
			Subject:         l.Subject,
			Difficulty:      l.Difficulty,
			DurationMinutes: l.DurationMinutes,
		})
	}

	writeJSON(w, r, http.StatusOK, contract.DashboardResponse{
		TimeRange:          rng,
		Metrics:            stats.Metrics(current, previous),
		TimeSeries:         []stats.TimeSeries{stats.TimeSpentSeries(rng, now, current)},
		SubjectBreakdown:   breakdown,
		RecentAchievements: achievements,
		Recommendations:    recommendations,
	})
}

// lessonSubjects returns a memoizing lesson-to-subject resolver for the
// subject breakdown; unresolvable lessons map to "".
func (a *app) lessonSubjects(ctx context.Context) func(lessonID string) string {
	logger := log.LoggerFromContext(ctx)
	cache := map[string]string{}

	return func(lessonID string) string {
		if subject, ok := cache[lessonID]; ok {
			return subject
		}
		lesson, err := a.lessons.Lesson(ctx, lessonID)
		if err != nil {
			if !errors.Is(err, store.ErrNotFound) {
				logger.Warn("error while resolving lesson subject",
					slog.String(lessonIDLogField, lessonID),
					slog.String(ErrorMsgLogField, err.Error()),
				)
			}
			cache[lessonID] = ""
			return ""
		}
		cache[lessonID] = lesson.Subject
		return lesson.Subject
	}
}
