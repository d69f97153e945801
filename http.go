package tutorguru

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"slices"
	"strconv"

	"github.com/klipach/tutorguru/log"
)

const (
	ErrorMsgLogField   = "errorMsg"
	bodyLogField       = "body"
	userIDLogField     = "userID"
	emailLogField      = "email"
	questionIDLogField = "questionID"
	lessonIDLogField   = "lessonID"
)

// writeJSON encodes body; encoding failures are logged, the status is already
// on the wire by then.
func writeJSON(w http.ResponseWriter, r *http.Request, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logger := log.LoggerFromContext(r.Context())
		logger.Error("error while encoding response", slog.String(ErrorMsgLogField, err.Error()))
	}
}

// writeError renders the {"detail": ...} error body every endpoint uses.
func writeError(w http.ResponseWriter, r *http.Request, status int, detail string) {
	writeJSON(w, r, status, map[string]string{"detail": detail})
}

// decode reads and unmarshals a request body, logging it on the way in.
func decode(r *http.Request, dst any) error {
	data, err := io.ReadAll(r.Body)
	if err != nil {
		return err
	}
	logger := log.LoggerFromContext(r.Context())
	logger.Info("incoming request", slog.String(bodyLogField, string(data)))
	return json.Unmarshal(data, dst)
}

// listWindow reads limit/skip query parameters; limit is clamped to [1, max]
// and skip to >= 0 rather than rejecting out-of-range values.
func listWindow(r *http.Request, def, max int) (limit, skip int) {
	limit = def
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil {
			limit = v
		}
	}
	if limit < 1 {
		limit = 1
	}
	if limit > max {
		limit = max
	}
	if raw := r.URL.Query().Get("skip"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v > 0 {
			skip = v
		}
	}
	return limit, skip
}

// handleCORS applies the configured origin policy and reports whether the
// request was a preflight that has been answered.
func handleCORS(w http.ResponseWriter, r *http.Request, origins []string) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return false
	}

	allowed := slices.Contains(origins, "*") || slices.Contains(origins, origin)

	if r.Method == http.MethodOptions && r.Header.Get("Access-Control-Request-Method") != "" {
		if !allowed {
			http.Error(w, "Disallowed CORS origin", http.StatusBadRequest)
			return true
		}
		w.Header().Set("Access-Control-Allow-Origin", origin)
		w.Header().Set("Access-Control-Allow-Credentials", "true")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Authorization, Content-Type")
		w.Header().Set("Access-Control-Max-Age", "600")
		w.WriteHeader(http.StatusNoContent)
		return true
	}

	if allowed {
		w.Header().Set("Access-Control-Allow-Origin", origin)
		w.Header().Set("Access-Control-Allow-Credentials", "true")
		w.Header().Add("Vary", "Origin")
	}
	return false
}
