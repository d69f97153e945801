package tutorguru

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/klipach/tutorguru/contract"
	"github.com/klipach/tutorguru/gen"
	"github.com/klipach/tutorguru/log"
	"github.com/klipach/tutorguru/store"
	"github.com/klipach/tutorguru/validate"
)

const (
	lessonsDefaultLimit   = 10
	lessonsMaxLimit       = 50
	recommendDefaultLimit = 3
	recommendMaxLimit     = 10
)

func (a *app) listLessons(w http.ResponseWriter, r *http.Request) {
	_, r, ok := a.requireAuth(w, r)
	if !ok {
		return
	}
	ctx := r.Context()
	logger := log.LoggerFromContext(ctx)

	limit, skip := listWindow(r, lessonsDefaultLimit, lessonsMaxLimit)
	lessons, err := a.lessons.Lessons(ctx, store.LessonQuery{
		Subject:    r.URL.Query().Get("subject"),
		Difficulty: r.URL.Query().Get("difficulty"),
		Limit:      limit,
		Skip:       skip,
	})
	if err != nil {
		logger.Error("error while listing lessons", slog.String(ErrorMsgLogField, err.Error()))
		writeError(w, r, http.StatusInternalServerError, "Failed to retrieve lessons")
		return
	}

	items := make([]contract.LessonListItem, 0, len(lessons))
	for _, l := range lessons {
		tags := l.Tags
		if tags == nil {
			tags = []string{}
		}
		items = append(items, contract.LessonListItem{
			ID:              l.ID,
			Title:           l.Title,
			Subject:         l.Subject,
			Topic:           l.Topic,
			Difficulty:      l.Difficulty,
			DurationMinutes: l.DurationMinutes,
			CreatedAt:       l.CreatedAt,
			Tags:            tags,
			Summary:         l.Summary,
		})
	}

	writeJSON(w, r, http.StatusOK, contract.LessonListResponse{
		Lessons: items,
		Total:   len(items),
		Skip:    skip,
		Limit:   limit,
	})
}

// getLesson returns the full lesson body and stamps the caller's
// last_accessed on the way. The stamp is best effort.
func (a *app) getLesson(w http.ResponseWriter, r *http.Request) {
	token, r, ok := a.requireAuth(w, r)
	if !ok {
		return
	}
	ctx := r.Context()
	logger := log.LoggerFromContext(ctx)
	id := r.PathValue("lessonID")

	lesson, err := a.lessons.Lesson(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, r, http.StatusNotFound, "Lesson with ID "+id+" not found")
		return
	}
	if err != nil {
		logger.Error("error while loading lesson",
			slog.String(lessonIDLogField, id),
			slog.String(ErrorMsgLogField, err.Error()),
		)
		writeError(w, r, http.StatusInternalServerError, "Failed to retrieve lesson")
		return
	}

	if err := a.lessons.TouchLessonAccess(ctx, token.UID, id); err != nil {
		logger.Warn("error while stamping lesson access",
			slog.String(lessonIDLogField, id),
			slog.String(ErrorMsgLogField, err.Error()),
		)
	}

	writeJSON(w, r, http.StatusOK, lesson)
}

func (a *app) generateLesson(w http.ResponseWriter, r *http.Request) {
	token, r, ok := a.requireAuth(w, r)
	if !ok {
		return
	}
	ctx := r.Context()
	logger := log.LoggerFromContext(ctx)

	var req contract.LessonGenerateRequest
	if err := decode(r, &req); err != nil {
		logger.Error("error while parsing request", slog.String(ErrorMsgLogField, err.Error()))
		writeError(w, r, http.StatusBadRequest, "Invalid request body")
		return
	}
	req.Difficulty = strings.ToLower(req.Difficulty)
	if err := validate.Struct(req); err != nil {
		writeError(w, r, http.StatusUnprocessableEntity, err.Error())
		return
	}
	if a.gen == nil {
		writeError(w, r, http.StatusServiceUnavailable, "Lesson generation is not configured")
		return
	}

	draft, err := a.gen.Lesson(ctx, gen.LessonSpec{
		Subject:                req.Subject,
		Topic:                  req.Topic,
		Difficulty:             req.Difficulty,
		DurationMinutes:        req.DurationMinutes,
		AdditionalInstructions: req.AdditionalInstructions,
	})
	if err != nil {
		logger.Error("error while generating lesson", slog.String(ErrorMsgLogField, err.Error()))
		writeError(w, r, http.StatusInternalServerError, "Failed to generate lesson")
		return
	}

	rec := &store.LessonRecord{
		ID:              uuid.NewString(),
		Subject:         req.Subject,
		Topic:           req.Topic,
		Title:           draft.Title,
		Difficulty:      req.Difficulty,
		DurationMinutes: req.DurationMinutes,
		Summary:         draft.Summary,
		Content:         draft.Content,
		Exercises:       draft.Exercises,
		Resources:       draft.Resources,
		Tags:            draft.Tags,
		CreatedAt:       a.now().UTC(),
		CreatedBy:       token.UID,
	}
	if err := a.lessons.SaveLesson(ctx, rec); err != nil {
		logger.Error("error while storing lesson",
			slog.String(lessonIDLogField, rec.ID),
			slog.String(ErrorMsgLogField, err.Error()),
		)
		writeError(w, r, http.StatusInternalServerError, "Failed to generate lesson")
		return
	}

	writeJSON(w, r, http.StatusOK, rec)
}

// updateLessonProgress merges the update into lessonProgress and, on
// completion, folds the lesson into the user's learning-progress ledger.
func (a *app) updateLessonProgress(w http.ResponseWriter, r *http.Request) {
	token, r, ok := a.requireAuth(w, r)
	if !ok {
		return
	}
	ctx := r.Context()
	logger := log.LoggerFromContext(ctx)
	lessonID := r.PathValue("lessonID")
	logger = logger.With(slog.String(lessonIDLogField, lessonID))

	var req contract.LessonProgressRequest
	if err := decode(r, &req); err != nil {
		logger.Error("error while parsing request", slog.String(ErrorMsgLogField, err.Error()))
		writeError(w, r, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, r, http.StatusUnprocessableEntity, err.Error())
		return
	}

	if _, err := a.lessons.UpsertLessonProgress(ctx, token.UID, lessonID, store.ProgressUpdate{
		Progress:     req.Progress,
		TimeSpent:    req.TimeSpent,
		Completed:    &req.Completed,
		Score:        req.Score,
		LastPosition: &req.LastPosition,
		Notes:        &req.Notes,
	}); err != nil {
		logger.Error("error while updating lesson progress", slog.String(ErrorMsgLogField, err.Error()))
		writeError(w, r, http.StatusInternalServerError, "Failed to update lesson progress")
		return
	}

	lesson, err := a.lessons.Lesson(ctx, lessonID)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		logger.Error("error while loading lesson", slog.String(ErrorMsgLogField, err.Error()))
		writeError(w, r, http.StatusInternalServerError, "Failed to update lesson progress")
		return
	}

	// A progress update against a vanished lesson still counts as tracked;
	// only the ledger work needs the lesson document.
	if lesson != nil {
		if req.Completed {
			if err := a.recordCompletion(ctx, token.UID, lesson, req.Score, *req.TimeSpent); err != nil {
				logger.Error("error while recording completion", slog.String(ErrorMsgLogField, err.Error()))
				writeError(w, r, http.StatusInternalServerError, "Failed to update lesson progress")
				return
			}
		} else if err := a.trackCurrentLesson(ctx, token.UID, lesson, *req.Progress, req.LastPosition); err != nil {
			logger.Warn("error while tracking current lesson", slog.String(ErrorMsgLogField, err.Error()))
		}
	}

	activityType := store.ActivityLessonProgress
	if req.Completed {
		activityType = store.ActivityLessonCompletion
	}
	if _, err := a.activity.LogActivity(ctx, &store.Activity{
		UserID:    token.UID,
		Type:      activityType,
		Timestamp: a.now().UTC(),
		LessonID:  lessonID,
		TimeSpent: *req.TimeSpent,
		Score:     req.Score,
	}); err != nil {
		logger.Warn("error while logging activity", slog.String(ErrorMsgLogField, err.Error()))
	}

	writeJSON(w, r, http.StatusOK, contract.MessageResponse{Message: "Progress updated successfully"})
}

// recordCompletion appends the lesson to completed_lessons once; repeat
// completions leave the ledger untouched.
func (a *app) recordCompletion(ctx context.Context, uid string, lesson *store.LessonRecord, score *float64, timeSpent int) error {
	lp, err := a.users.LearningProgress(ctx, uid)
	if errors.Is(err, store.ErrNotFound) {
		lp = &store.LearningProgress{}
	} else if err != nil {
		return err
	}

	for _, cl := range lp.CompletedLessons {
		if cl.LessonID == lesson.ID {
			return nil
		}
	}

	now := a.now().UTC()
	lp.CompletedLessons = append(lp.CompletedLessons, store.CompletedLesson{
		LessonID:       lesson.ID,
		Title:          lesson.Title,
		Completed:      true,
		CompletionDate: now,
		Score:          score,
		TimeSpent:      timeSpent,
	})
	lp.TotalTimeSpent += timeSpent
	if lp.CurrentLesson != nil && lp.CurrentLesson.LessonID == lesson.ID {
		lp.CurrentLesson = nil
	}
	lp.LastActive = now
	if lp.Statistics == nil {
		lp.Statistics = map[string]any{}
	}
	return a.users.SetLearningProgress(ctx, uid, lp)
}

// trackCurrentLesson points the ledger at the lesson the user is in the
// middle of.
func (a *app) trackCurrentLesson(ctx context.Context, uid string, lesson *store.LessonRecord, progress float64, lastPosition string) error {
	lp, err := a.users.LearningProgress(ctx, uid)
	if errors.Is(err, store.ErrNotFound) {
		lp = &store.LearningProgress{}
	} else if err != nil {
		return err
	}

	lp.CurrentLesson = &store.CurrentLesson{
		LessonID:     lesson.ID,
		Title:        lesson.Title,
		Progress:     progress,
		LastPosition: lastPosition,
	}
	lp.LastActive = a.now().UTC()
	if lp.CompletedLessons == nil {
		lp.CompletedLessons = []store.CompletedLesson{}
	}
	if lp.Statistics == nil {
		lp.Statistics = map[string]any{}
	}
	return a.users.SetLearningProgress(ctx, uid, lp)
}

// freshLessons returns up to limit lessons the user has not completed yet.
// Failures degrade to an empty slice; recommendations are never worth a 500.
func (a *app) freshLessons(ctx context.Context, uid string, limit int) []store.LessonRecord {
	logger := log.LoggerFromContext(ctx)

	lessons, err := a.lessons.Lessons(ctx, store.LessonQuery{Limit: limit * 2})
	if err != nil {
		logger.Warn("error while fetching lessons for recommendations", slog.String(ErrorMsgLogField, err.Error()))
		return nil
	}

	completed := map[string]bool{}
	lp, err := a.users.LearningProgress(ctx, uid)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		logger.Warn("error while loading learning progress", slog.String(ErrorMsgLogField, err.Error()))
	}
	if lp != nil {
		for _, cl := range lp.CompletedLessons {
			completed[cl.LessonID] = true
		}
	}

	fresh := make([]store.LessonRecord, 0, limit)
	for _, l := range lessons {
		if completed[l.ID] {
			continue
		}
		fresh = append(fresh, l)
		if len(fresh) >= limit {
			break
		}
	}
	return fresh
}

func (a *app) recommendedLessons(w http.ResponseWriter, r *http.Request) {
	token, r, ok := a.requireAuth(w, r)
	if !ok {
		return
	}

	limit, _ := listWindow(r, recommendDefaultLimit, recommendMaxLimit)
	recommended := []contract.RecommendedLesson{}
	for _, l := range a.freshLessons(r.Context(), token.UID, limit) {
		recommended = append(recommended, contract.RecommendedLesson{
			LessonRecord:         l,
			RecommendationReason: "Recommended based on your interests",
		})
	}

	writeJSON(w, r, http.StatusOK, contract.RecommendedLessonsResponse{
		Lessons: recommended,
		Total:   len(recommended),
	})
}

// myLessons composes the caller's lesson shelf: completed lessons first when
// asked for, then not-yet-completed ones padded with a zero progress block.
func (a *app) myLessons(w http.ResponseWriter, r *http.Request) {
	token, r, ok := a.requireAuth(w, r)
	if !ok {
		return
	}
	ctx := r.Context()
	logger := log.LoggerFromContext(ctx)

	limit, skip := listWindow(r, lessonsDefaultLimit, lessonsMaxLimit)
	includeCompleted := false
	if raw := r.URL.Query().Get("include_completed"); raw != "" {
		if v, err := strconv.ParseBool(raw); err == nil {
			includeCompleted = v
		}
	}

	all, err := a.lessons.Lessons(ctx, store.LessonQuery{Limit: limit * 2})
	if err != nil {
		logger.Warn("error while fetching lessons", slog.String(ErrorMsgLogField, err.Error()))
		all = nil
	}
	byID := make(map[string]store.LessonRecord, len(all))
	for _, l := range all {
		byID[l.ID] = l
	}

	lp, err := a.users.LearningProgress(ctx, token.UID)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		logger.Warn("error while loading learning progress", slog.String(ErrorMsgLogField, err.Error()))
	}

	mine := []contract.MyLesson{}
	completedIDs := map[string]bool{}
	if lp != nil {
		for _, cl := range lp.CompletedLessons {
			completedIDs[cl.LessonID] = true
		}
		if includeCompleted {
			for _, cl := range lp.CompletedLessons {
				lesson, ok := byID[cl.LessonID]
				if !ok {
					continue
				}
				date := cl.CompletionDate
				mine = append(mine, contract.MyLesson{
					LessonRecord: lesson,
					Progress: contract.MyLessonProgress{
						Progress:       1.0,
						TimeSpent:      cl.TimeSpent,
						Completed:      true,
						CompletionDate: &date,
						Score:          cl.Score,
					},
				})
			}
		}
	}

	for _, l := range all {
		if len(mine) >= limit {
			break
		}
		if completedIDs[l.ID] {
			continue
		}
		mine = append(mine, contract.MyLesson{
			LessonRecord: l,
			Progress: contract.MyLessonProgress{
				Progress:  0.0,
				TimeSpent: 0,
				Completed: false,
			},
		})
	}

	if skip >= len(mine) {
		mine = []contract.MyLesson{}
	} else {
		end := skip + limit
		if end > len(mine) {
			end = len(mine)
		}
		mine = mine[skip:end]
	}

	writeJSON(w, r, http.StatusOK, contract.MyLessonsResponse{
		Lessons: mine,
		Total:   len(mine),
		Skip:    skip,
		Limit:   limit,
	})
}
