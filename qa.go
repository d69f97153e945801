package tutorguru

import (
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/klipach/tutorguru/contract"
	"github.com/klipach/tutorguru/gen"
	"github.com/klipach/tutorguru/log"
	"github.com/klipach/tutorguru/render"
	"github.com/klipach/tutorguru/store"
	"github.com/klipach/tutorguru/validate"
)

const (
	qaHistoryDefaultLimit = 20
	qaHistoryMaxLimit     = 100
)

// ask stores the question as pending first, then asks the model. The pending
// record survives a generation failure so the exchange is never lost silently.
func (a *app) ask(w http.ResponseWriter, r *http.Request) {
	token, r, ok := a.requireAuth(w, r)
	if !ok {
		return
	}
	ctx := r.Context()
	logger := log.LoggerFromContext(ctx)

	var req contract.QuestionRequest
	if err := decode(r, &req); err != nil {
		logger.Error("error while parsing request", slog.String(ErrorMsgLogField, err.Error()))
		writeError(w, r, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, r, http.StatusUnprocessableEntity, err.Error())
		return
	}
	if a.gen == nil {
		writeError(w, r, http.StatusServiceUnavailable, "Answer generation is not configured")
		return
	}

	rec := &store.QARecord{
		ID:        uuid.NewString(),
		UserID:    token.UID,
		Question:  req.Question,
		Context:   req.Context,
		LessonID:  req.LessonID,
		CreatedAt: a.now().UTC(),
	}
	logger = logger.With(slog.String(questionIDLogField, rec.ID))

	if err := a.qa.CreatePendingQuestion(ctx, rec); err != nil {
		logger.Error("error while storing question", slog.String(ErrorMsgLogField, err.Error()))
		writeError(w, r, http.StatusInternalServerError, "Failed to process question")
		return
	}

	// Lesson context is best effort: a stale lesson_id should not block the
	// answer.
	var lesson *store.LessonRecord
	if req.LessonID != "" {
		l, err := a.lessons.Lesson(ctx, req.LessonID)
		if err != nil {
			logger.Warn("lesson context unavailable",
				slog.String(lessonIDLogField, req.LessonID),
				slog.String(ErrorMsgLogField, err.Error()),
			)
		} else {
			lesson = l
		}
	}

	ans, err := a.gen.Answer(ctx, gen.AnswerQuery{
		Question: req.Question,
		Context:  req.Context,
		Lesson:   lesson,
	})
	if err != nil {
		logger.Error("error while generating answer", slog.String(ErrorMsgLogField, err.Error()))
		if ferr := a.qa.MarkQuestionFailed(ctx, rec.ID, err.Error()); ferr != nil {
			logger.Error("error while marking question failed", slog.String(ErrorMsgLogField, ferr.Error()))
		}
		writeError(w, r, http.StatusInternalServerError, "Failed to process question")
		return
	}

	answeredAt := a.now().UTC()
	if err := a.qa.AttachAnswer(ctx, rec.ID, ans.Answer, ans.References, answeredAt); err != nil {
		logger.Error("error while storing answer", slog.String(ErrorMsgLogField, err.Error()))
		writeError(w, r, http.StatusInternalServerError, "Failed to process question")
		return
	}

	if _, err := a.activity.LogActivity(ctx, &store.Activity{
		UserID:    token.UID,
		Type:      store.ActivityQAQuestion,
		Timestamp: answeredAt,
		LessonID:  req.LessonID,
		Details:   map[string]any{"question_id": rec.ID},
	}); err != nil {
		logger.Warn("error while logging activity", slog.String(ErrorMsgLogField, err.Error()))
	}

	writeJSON(w, r, http.StatusOK, contract.QuestionResponse{
		QuestionID: rec.ID,
		Question:   rec.Question,
		Answer:     ans.Answer,
		AnswerHTML: render.AnswerHTML(ans.Answer),
		CreatedAt:  rec.CreatedAt,
		LessonID:   rec.LessonID,
		References: ans.References,
	})
}

// qaHistory lists completed exchanges newest first. Pending and failed
// records are filtered out; total counts what the page actually carries.
func (a *app) qaHistory(w http.ResponseWriter, r *http.Request) {
	token, r, ok := a.requireAuth(w, r)
	if !ok {
		return
	}
	ctx := r.Context()
	logger := log.LoggerFromContext(ctx)

	limit, skip := listWindow(r, qaHistoryDefaultLimit, qaHistoryMaxLimit)
	recs, err := a.qa.History(ctx, token.UID, store.HistoryQuery{
		LessonID: r.URL.Query().Get("lesson_id"),
		Limit:    limit,
		Skip:     skip,
	})
	if err != nil {
		logger.Error("error while loading history", slog.String(ErrorMsgLogField, err.Error()))
		writeError(w, r, http.StatusInternalServerError, "Failed to retrieve Q&A history")
		return
	}

	items := []contract.QAItem{}
	for _, rec := range recs {
		if rec.Status != store.StatusCompleted || rec.Answer == "" {
			continue
		}
		items = append(items, contract.QAItem{
			ID:         rec.ID,
			Question:   rec.Question,
			Answer:     rec.Answer,
			CreatedAt:  rec.CreatedAt,
			LessonID:   rec.LessonID,
			References: rec.References,
		})
	}

	writeJSON(w, r, http.StatusOK, contract.QAHistoryResponse{
		Items: items,
		Total: len(items),
		Skip:  skip,
		Limit: limit,
	})
}

// qaItem returns a single exchange. Records owned by someone else are
// reported as missing rather than forbidden.
func (a *app) qaItem(w http.ResponseWriter, r *http.Request) {
	token, r, ok := a.requireAuth(w, r)
	if !ok {
		return
	}
	rec, ok := a.loadOwnQuestion(w, r, token.UID)
	if !ok {
		return
	}

	writeJSON(w, r, http.StatusOK, contract.QAItem{
		ID:         rec.ID,
		Question:   rec.Question,
		Answer:     rec.Answer,
		CreatedAt:  rec.CreatedAt,
		LessonID:   rec.LessonID,
		References: rec.References,
	})
}

// qaAudio narrates a completed answer as MP3.
func (a *app) qaAudio(w http.ResponseWriter, r *http.Request) {
	token, r, ok := a.requireAuth(w, r)
	if !ok {
		return
	}
	ctx := r.Context()
	logger := log.LoggerFromContext(ctx)

	if a.speech == nil {
		writeError(w, r, http.StatusServiceUnavailable, "Speech synthesis is not configured")
		return
	}
	rec, ok := a.loadOwnQuestion(w, r, token.UID)
	if !ok {
		return
	}

	audio, err := a.speech.Synthesize(ctx, rec.Answer)
	if err != nil {
		logger.Error("error while synthesizing speech",
			slog.String(questionIDLogField, rec.ID),
			slog.String(ErrorMsgLogField, err.Error()),
		)
		writeError(w, r, http.StatusInternalServerError, "Failed to synthesize audio")
		return
	}
	defer audio.Close()

	w.Header().Set("Content-Type", "audio/mpeg")
	w.Header().Set("Content-Language", a.cfg.TTSLanguage)
	if _, err := io.Copy(w, audio); err != nil {
		logger.Error("error while streaming audio", slog.String(ErrorMsgLogField, err.Error()))
	}
}

// loadOwnQuestion fetches the exchange named in the path and enforces that it
// belongs to uid and carries an answer. It writes the error response itself.
func (a *app) loadOwnQuestion(w http.ResponseWriter, r *http.Request, uid string) (*store.QARecord, bool) {
	ctx := r.Context()
	logger := log.LoggerFromContext(ctx)
	id := r.PathValue("questionID")

	rec, err := a.qa.Question(ctx, id)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		logger.Error("error while loading question",
			slog.String(questionIDLogField, id),
			slog.String(ErrorMsgLogField, err.Error()),
		)
		writeError(w, r, http.StatusInternalServerError, "Failed to retrieve Q&A item")
		return nil, false
	}
	if err != nil || rec.UserID != uid {
		writeError(w, r, http.StatusNotFound, "Q&A item with ID "+id+" not found")
		return nil, false
	}
	if rec.Answer == "" {
		writeError(w, r, http.StatusNotFound, "Q&A item with ID "+id+" is not yet complete")
		return nil, false
	}
	return rec, true
}
