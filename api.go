// Package tutorguru serves the AI tutor HTTP API as a single Cloud Function.
package tutorguru

import (
	"log/slog"
	"net/http"
	"sync"

	"github.com/GoogleCloudPlatform/functions-framework-go/functions"

	"github.com/klipach/tutorguru/config"
	"github.com/klipach/tutorguru/log"
)

const traceContextHeader = "X-Cloud-Trace-Context"

func init() {
	functions.HTTP("api", API)
}

// API is the HTTP entry point. Routing happens on full request paths, so the
// function behaves the same behind the functions-framework mount and on a
// bare port.
func API(w http.ResponseWriter, r *http.Request) {
	cfg, err := config.Get()
	if err != nil {
		slog.Error("error while loading config", slog.String(ErrorMsgLogField, err.Error()))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	ctx := log.WithTrace(r.Context(), cfg.FirebaseProjectID, r.Header.Get(traceContextHeader))
	logger := slog.New(log.NewCloudLoggingHandler(cfg.SlogLevel()))
	r = r.WithContext(log.WithLogger(ctx, logger))

	if handleCORS(w, r, cfg.CORSOrigins) {
		return
	}

	router(cfg.APIPrefix).ServeHTTP(w, r)
}

var (
	muxOnce sync.Once
	mux     *http.ServeMux
)

func router(prefix string) *http.ServeMux {
	muxOnce.Do(func() {
		mux = http.NewServeMux()

		mux.HandleFunc("GET /{$}", apiRoot)
		mux.HandleFunc("GET /health", health)

		mux.HandleFunc("POST "+prefix+"/auth/signup", withApp((*app).signup))
		mux.HandleFunc("POST "+prefix+"/auth/login", withApp((*app).login))
		mux.HandleFunc("POST "+prefix+"/auth/password-reset", withApp((*app).passwordReset))
		mux.HandleFunc("POST "+prefix+"/auth/verify-token", withApp((*app).verifyToken))

		mux.HandleFunc("GET "+prefix+"/users/me", withApp((*app).profile))
		mux.HandleFunc("PUT "+prefix+"/users/me", withApp((*app).updateProfile))
		mux.HandleFunc("GET "+prefix+"/users/me/progress", withApp((*app).learningProgress))

		mux.HandleFunc("GET "+prefix+"/lessons", withApp((*app).listLessons))
		mux.HandleFunc("GET "+prefix+"/lessons/recommended", withApp((*app).recommendedLessons))
		mux.HandleFunc("GET "+prefix+"/lessons/my-lessons", withApp((*app).myLessons))
		mux.HandleFunc("POST "+prefix+"/lessons/generate", withApp((*app).generateLesson))
		mux.HandleFunc("GET "+prefix+"/lessons/{lessonID}", withApp((*app).getLesson))
		mux.HandleFunc("POST "+prefix+"/lessons/{lessonID}/progress", withApp((*app).updateLessonProgress))

		mux.HandleFunc("POST "+prefix+"/qa/ask", withApp((*app).ask))
		mux.HandleFunc("GET "+prefix+"/qa/history", withApp((*app).qaHistory))
		mux.HandleFunc("GET "+prefix+"/qa/{questionID}", withApp((*app).qaItem))
		mux.HandleFunc("GET "+prefix+"/qa/{questionID}/audio", withApp((*app).qaAudio))

		mux.HandleFunc("GET "+prefix+"/analytics/me/completed-lessons", withApp((*app).completedLessons))
		mux.HandleFunc("GET "+prefix+"/analytics/me/completion-stats", withApp((*app).completionStats))
		mux.HandleFunc("GET "+prefix+"/analytics/me/activity", withApp((*app).activityFeed))
		mux.HandleFunc("GET "+prefix+"/analytics/dashboard", withApp((*app).dashboard))
	})
	return mux
}

type appHandler func(*app, http.ResponseWriter, *http.Request)

// withApp resolves the shared dependencies before invoking h.
func withApp(h appHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		a, err := getApp(r.Context())
		if err != nil {
			logger := log.LoggerFromContext(r.Context())
			logger.Error("error while bootstrapping", slog.String(ErrorMsgLogField, err.Error()))
			writeError(w, r, http.StatusInternalServerError, "Service initialization failed")
			return
		}
		h(a, w, r)
	}
}
