package tutorguru

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/klipach/tutorguru/contract"
	"github.com/klipach/tutorguru/log"
	"github.com/klipach/tutorguru/store"
	"github.com/klipach/tutorguru/validate"
)

func profileResponse(uid, email string, p *store.UserProfile) contract.ProfileResponse {
	resp := contract.ProfileResponse{
		UID:         uid,
		Email:       email,
		DisplayName: p.DisplayName,
		AvatarURL:   p.AvatarURL,
		Preferences: p.Preferences,
	}
	if resp.Preferences == nil {
		resp.Preferences = map[string]any{}
	}
	if !p.CreatedAt.IsZero() {
		created := p.CreatedAt
		resp.CreatedAt = &created
	}
	return resp
}

func (a *app) profile(w http.ResponseWriter, r *http.Request) {
	token, r, ok := a.requireAuth(w, r)
	if !ok {
		return
	}
	ctx := r.Context()
	logger := log.LoggerFromContext(ctx)

	p, err := a.users.Profile(ctx, token.UID)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, r, http.StatusNotFound, "User profile not found")
		return
	}
	if err != nil {
		logger.Error("error while loading profile", slog.String(ErrorMsgLogField, err.Error()))
		writeError(w, r, http.StatusInternalServerError, "Internal server error while retrieving user profile")
		return
	}

	writeJSON(w, r, http.StatusOK, profileResponse(token.UID, tokenEmail(token), p))
}

// updateProfile writes the partial update to the profile document and, when
// the display name changes, mirrors it into Firebase Auth.
func (a *app) updateProfile(w http.ResponseWriter, r *http.Request) {
	token, r, ok := a.requireAuth(w, r)
	if !ok {
		return
	}
	ctx := r.Context()
	logger := log.LoggerFromContext(ctx)

	var req contract.ProfileUpdateRequest
	if err := decode(r, &req); err != nil {
		logger.Error("error while parsing request", slog.String(ErrorMsgLogField, err.Error()))
		writeError(w, r, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, r, http.StatusUnprocessableEntity, err.Error())
		return
	}

	p, err := a.users.UpdateProfile(ctx, token.UID, store.ProfileUpdate{
		DisplayName: req.DisplayName,
		AvatarURL:   req.AvatarURL,
		Preferences: req.Preferences,
	})
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, r, http.StatusNotFound, "User profile not found")
		return
	}
	if err != nil {
		logger.Error("error while updating profile", slog.String(ErrorMsgLogField, err.Error()))
		writeError(w, r, http.StatusInternalServerError, "Internal server error while updating user profile")
		return
	}

	if req.DisplayName != nil && *req.DisplayName != "" {
		if err := a.identity.UpdateDisplayName(ctx, token.UID, *req.DisplayName); err != nil {
			logger.Error("error while updating auth display name", slog.String(ErrorMsgLogField, err.Error()))
			writeError(w, r, http.StatusBadRequest, "Failed to update profile")
			return
		}
	}

	writeJSON(w, r, http.StatusOK, profileResponse(token.UID, tokenEmail(token), p))
}

// learningProgress reports the completion ledger; users without one yet get
// an empty ledger, not an error.
func (a *app) learningProgress(w http.ResponseWriter, r *http.Request) {
	token, r, ok := a.requireAuth(w, r)
	if !ok {
		return
	}
	ctx := r.Context()
	logger := log.LoggerFromContext(ctx)

	lp, err := a.users.LearningProgress(ctx, token.UID)
	if errors.Is(err, store.ErrNotFound) {
		writeJSON(w, r, http.StatusOK, contract.LearningProgressResponse{
			CompletedLessons: []store.CompletedLesson{},
			Statistics:       map[string]any{},
		})
		return
	}
	if err != nil {
		logger.Error("error while loading learning progress", slog.String(ErrorMsgLogField, err.Error()))
		writeError(w, r, http.StatusInternalServerError, "Internal server error while retrieving learning progress")
		return
	}

	resp := contract.LearningProgressResponse{
		CompletedLessons: lp.CompletedLessons,
		CurrentLesson:    lp.CurrentLesson,
		TotalTimeSpent:   lp.TotalTimeSpent,
		Statistics:       lp.Statistics,
	}
	if resp.CompletedLessons == nil {
		resp.CompletedLessons = []store.CompletedLesson{}
	}
	if resp.Statistics == nil {
		resp.Statistics = map[string]any{}
	}
	if !lp.LastActive.IsZero() {
		last := lp.LastActive
		resp.LastActive = &last
	}
	writeJSON(w, r, http.StatusOK, resp)
}
