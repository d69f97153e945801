package tutorguru

import (
	"log/slog"
	"net/http"

	fbauth "firebase.google.com/go/v4/auth"

	"github.com/klipach/tutorguru/contract"
	"github.com/klipach/tutorguru/log"
	"github.com/klipach/tutorguru/store"
	"github.com/klipach/tutorguru/validate"
)

// signup registers a Firebase account, seeds the profile document and hands
// back a custom token the client exchanges for an ID token.
func (a *app) signup(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := log.LoggerFromContext(ctx)

	var req contract.SignupRequest
	if err := decode(r, &req); err != nil {
		logger.Error("error while parsing request", slog.String(ErrorMsgLogField, err.Error()))
		writeError(w, r, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, r, http.StatusUnprocessableEntity, err.Error())
		return
	}
	logger = logger.With(slog.String(emailLogField, req.Email))

	user, err := a.identity.CreateUser(ctx, req.Email, req.Password, req.DisplayName)
	if err != nil {
		logger.Error("error while creating user", slog.String(ErrorMsgLogField, err.Error()))
		if fbauth.IsEmailAlreadyExists(err) {
			writeError(w, r, http.StatusConflict, "Email already registered")
			return
		}
		writeError(w, r, http.StatusBadRequest, "Failed to create user")
		return
	}

	token, err := a.identity.CustomToken(ctx, user.UID)
	if err != nil {
		logger.Error("error while minting token", slog.String(ErrorMsgLogField, err.Error()))
		writeError(w, r, http.StatusInternalServerError, "Internal server error during user registration")
		return
	}

	now := a.now().UTC()
	prefs := req.Preferences
	if prefs == nil {
		prefs = map[string]any{}
	}
	if err := a.users.CreateProfile(ctx, &store.UserProfile{
		UID:         user.UID,
		Email:       req.Email,
		DisplayName: req.DisplayName,
		Preferences: prefs,
		CreatedAt:   now,
		UpdatedAt:   now,
	}); err != nil {
		logger.Error("error while creating profile", slog.String(ErrorMsgLogField, err.Error()))
		writeError(w, r, http.StatusInternalServerError, "Internal server error during user registration")
		return
	}

	writeJSON(w, r, http.StatusCreated, contract.UserResponse{
		UID:         user.UID,
		Email:       user.Email,
		DisplayName: user.DisplayName,
		Token:       token,
	})
}

// login accepts the OAuth2 password form (username carries the email). The
// admin SDK cannot check passwords, so the custom token is what the client
// exchanges; the exchange is where a wrong password fails.
func (a *app) login(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := log.LoggerFromContext(ctx)

	if err := r.ParseForm(); err != nil {
		logger.Error("error while parsing form", slog.String(ErrorMsgLogField, err.Error()))
		writeError(w, r, http.StatusBadRequest, "Invalid request body")
		return
	}
	email := r.PostFormValue("username")
	if email == "" {
		writeError(w, r, http.StatusUnprocessableEntity, "field username failed on required")
		return
	}
	logger = logger.With(slog.String(emailLogField, email))

	user, err := a.identity.UserByEmail(ctx, email)
	if err != nil {
		logger.Error("error while looking up user", slog.String(ErrorMsgLogField, err.Error()))
		writeError(w, r, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	token, err := a.identity.CustomToken(ctx, user.UID)
	if err != nil {
		logger.Error("error while minting token", slog.String(ErrorMsgLogField, err.Error()))
		writeError(w, r, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	displayName := user.DisplayName
	if displayName == "" {
		if p, err := a.users.Profile(ctx, user.UID); err == nil {
			displayName = p.DisplayName
		}
	}

	writeJSON(w, r, http.StatusOK, contract.UserResponse{
		UID:         user.UID,
		Email:       user.Email,
		DisplayName: displayName,
		Token:       token,
	})
}

// passwordReset never reveals whether the email exists.
func (a *app) passwordReset(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := log.LoggerFromContext(ctx)

	var req contract.PasswordResetRequest
	if err := decode(r, &req); err != nil {
		logger.Error("error while parsing request", slog.String(ErrorMsgLogField, err.Error()))
		writeError(w, r, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, r, http.StatusUnprocessableEntity, err.Error())
		return
	}

	if err := a.identity.PasswordResetLink(ctx, req.Email); err != nil {
		logger.Error("error while requesting password reset", slog.String(ErrorMsgLogField, err.Error()))
		if fbauth.IsUserNotFound(err) {
			writeJSON(w, r, http.StatusOK, contract.MessageResponse{Message: "Password reset email sent if account exists"})
			return
		}
		writeError(w, r, http.StatusBadRequest, "Failed to send password reset email")
		return
	}

	writeJSON(w, r, http.StatusOK, contract.MessageResponse{Message: "Password reset email sent"})
}

func (a *app) verifyToken(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := log.LoggerFromContext(ctx)

	var req contract.VerifyTokenRequest
	if err := decode(r, &req); err != nil {
		logger.Error("error while parsing request", slog.String(ErrorMsgLogField, err.Error()))
		writeError(w, r, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, r, http.StatusUnprocessableEntity, err.Error())
		return
	}

	token, err := a.identity.VerifyToken(ctx, req.Token)
	if err != nil {
		logger.Error("error while verifying token", slog.String(ErrorMsgLogField, err.Error()))
		writeError(w, r, http.StatusUnauthorized, "Invalid or expired token")
		return
	}

	writeJSON(w, r, http.StatusOK, contract.VerifyTokenResponse{UID: token.UID})
}
