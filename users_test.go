package tutorguru

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/klipach/tutorguru/contract"
	"github.com/klipach/tutorguru/store"
)

func TestProfile(t *testing.T) {
	a, f := newTestApp()
	f.users.profiles[testUID] = &store.UserProfile{
		UID:         testUID,
		Email:       testEmail,
		DisplayName: "Student One",
		CreatedAt:   testNow.Add(-24 * time.Hour),
	}

	w := httptest.NewRecorder()
	a.profile(w, quiet(httptest.NewRequest(http.MethodGet, "/api/v1/users/me", nil)))

	require.Equal(t, http.StatusOK, w.Code)
	resp := decodeAs[contract.ProfileResponse](t, w)
	assert.Equal(t, testUID, resp.UID)
	assert.Equal(t, testEmail, resp.Email, "email comes from the verified token")
	assert.Equal(t, "Student One", resp.DisplayName)
	assert.NotNil(t, resp.Preferences, "nil preferences must serialize as an empty object")
	require.NotNil(t, resp.CreatedAt)
	assert.True(t, resp.CreatedAt.Equal(testNow.Add(-24*time.Hour)))
}

func TestProfileNotFound(t *testing.T) {
	a, _ := newTestApp()

	w := httptest.NewRecorder()
	a.profile(w, quiet(httptest.NewRequest(http.MethodGet, "/api/v1/users/me", nil)))

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "User profile not found", errorDetail(t, w))
}

func TestProfileStoreFailure(t *testing.T) {
	a, f := newTestApp()
	f.users.profileErr = errors.New("firestore unavailable")

	w := httptest.NewRecorder()
	a.profile(w, quiet(httptest.NewRequest(http.MethodGet, "/api/v1/users/me", nil)))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "Internal server error while retrieving user profile", errorDetail(t, w))
}

func TestUpdateProfile(t *testing.T) {
	a, f := newTestApp()
	f.users.profiles[testUID] = &store.UserProfile{UID: testUID, DisplayName: "Old Name"}

	w := httptest.NewRecorder()
	a.updateProfile(w, jsonRequest(t, http.MethodPut, "/api/v1/users/me", map[string]any{
		"display_name": "New Name",
		"preferences":  map[string]any{"level": "b2"},
	}))

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	resp := decodeAs[contract.ProfileResponse](t, w)
	assert.Equal(t, "New Name", resp.DisplayName)
	assert.Equal(t, "b2", resp.Preferences["level"])

	// the new display name is mirrored into the identity provider
	assert.Equal(t, "New Name", f.identity.renames[testUID])
}

func TestUpdateProfileLeavesOmittedFields(t *testing.T) {
	a, f := newTestApp()
	f.users.profiles[testUID] = &store.UserProfile{
		UID:         testUID,
		DisplayName: "Keep Me",
		AvatarURL:   "https://example.com/a.png",
	}

	w := httptest.NewRecorder()
	a.updateProfile(w, jsonRequest(t, http.MethodPut, "/api/v1/users/me", map[string]any{
		"preferences": map[string]any{"pace": "slow"},
	}))

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	resp := decodeAs[contract.ProfileResponse](t, w)
	assert.Equal(t, "Keep Me", resp.DisplayName)
	assert.Equal(t, "https://example.com/a.png", resp.AvatarURL)
	assert.Empty(t, f.identity.renames, "identity untouched when the name is not in the update")
}

func TestUpdateProfileValidation(t *testing.T) {
	a, _ := newTestApp()

	w := httptest.NewRecorder()
	a.updateProfile(w, jsonRequest(t, http.MethodPut, "/api/v1/users/me", map[string]any{
		"display_name": "x",
	}))

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, errorDetail(t, w), "DisplayName")
}

func TestUpdateProfileNotFound(t *testing.T) {
	a, _ := newTestApp()

	w := httptest.NewRecorder()
	a.updateProfile(w, jsonRequest(t, http.MethodPut, "/api/v1/users/me", map[string]any{
		"display_name": "New Name",
	}))

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "User profile not found", errorDetail(t, w))
}

func TestUpdateProfileIdentityMirrorFailure(t *testing.T) {
	a, f := newTestApp()
	f.users.profiles[testUID] = &store.UserProfile{UID: testUID}
	f.identity.renameErr = errors.New("auth backend down")

	w := httptest.NewRecorder()
	a.updateProfile(w, jsonRequest(t, http.MethodPut, "/api/v1/users/me", map[string]any{
		"display_name": "New Name",
	}))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Failed to update profile", errorDetail(t, w))
}

func TestLearningProgressEmptyDefault(t *testing.T) {
	a, _ := newTestApp()

	w := httptest.NewRecorder()
	a.learningProgress(w, quiet(httptest.NewRequest(http.MethodGet, "/api/v1/users/me/progress", nil)))

	require.Equal(t, http.StatusOK, w.Code, "a user without a ledger gets an empty one, not a 404")
	resp := decodeAs[contract.LearningProgressResponse](t, w)
	assert.NotNil(t, resp.CompletedLessons)
	assert.Empty(t, resp.CompletedLessons)
	assert.NotNil(t, resp.Statistics)
	assert.Nil(t, resp.CurrentLesson)
	assert.Nil(t, resp.LastActive)
	assert.Zero(t, resp.TotalTimeSpent)
}

func TestLearningProgress(t *testing.T) {
	a, f := newTestApp()
	score := 92.5
	f.users.progress[testUID] = &store.LearningProgress{
		CompletedLessons: []store.CompletedLesson{
			{LessonID: "l-math", Title: "Algebra Basics", Completed: true, CompletionDate: testNow, Score: &score, TimeSpent: 600},
		},
		CurrentLesson:  &store.CurrentLesson{LessonID: "l-sci", Title: "Cells", Progress: 0.4},
		TotalTimeSpent: 600,
		LastActive:     testNow,
	}

	w := httptest.NewRecorder()
	a.learningProgress(w, quiet(httptest.NewRequest(http.MethodGet, "/api/v1/users/me/progress", nil)))

	require.Equal(t, http.StatusOK, w.Code)
	resp := decodeAs[contract.LearningProgressResponse](t, w)
	require.Len(t, resp.CompletedLessons, 1)
	assert.Equal(t, "l-math", resp.CompletedLessons[0].LessonID)
	require.NotNil(t, resp.CurrentLesson)
	assert.Equal(t, "l-sci", resp.CurrentLesson.LessonID)
	assert.Equal(t, 600, resp.TotalTimeSpent)
	require.NotNil(t, resp.LastActive)
	assert.True(t, resp.LastActive.Equal(testNow))
}
