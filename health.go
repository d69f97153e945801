package tutorguru

import "net/http"

const apiVersion = "0.1.0"

func health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, map[string]string{
		"status":  "healthy",
		"message": "AI Tutor API is operational",
	})
}

func apiRoot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, map[string]string{
		"message": "Welcome to AI Tutor API",
		"docs":    "/docs",
		"version": apiVersion,
	})
}
