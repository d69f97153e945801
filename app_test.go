package tutorguru

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	fbauth "firebase.google.com/go/v4/auth"
	"github.com/stretchr/testify/require"

	"github.com/klipach/tutorguru/config"
	"github.com/klipach/tutorguru/gen"
	"github.com/klipach/tutorguru/log"
	"github.com/klipach/tutorguru/store"
)

// 2024-05-15 is a Wednesday; the dashboard tests rely on the weekday.
var testNow = time.Date(2024, 5, 15, 12, 0, 0, 0, time.UTC)

const (
	testUID   = "user-1"
	testEmail = "student@example.com"
)

type identityFake struct {
	created     []string
	createErr   error
	byEmail     map[string]*fbauth.UserRecord
	lookupErr   error
	tokenErr    error
	resets      []string
	resetErr    error
	renames     map[string]string
	renameErr   error
	verifyToken *fbauth.Token
	verifyErr   error
}

func newIdentityFake() *identityFake {
	return &identityFake{
		byEmail: map[string]*fbauth.UserRecord{},
		renames: map[string]string{},
	}
}

func (f *identityFake) CreateUser(_ context.Context, email, _, displayName string) (*fbauth.UserRecord, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.created = append(f.created, email)
	return &fbauth.UserRecord{
		UserInfo: &fbauth.UserInfo{UID: "uid-new", Email: email, DisplayName: displayName},
	}, nil
}

func (f *identityFake) UserByEmail(_ context.Context, email string) (*fbauth.UserRecord, error) {
	if f.lookupErr != nil {
		return nil, f.lookupErr
	}
	u, ok := f.byEmail[email]
	if !ok {
		return nil, store.ErrNotFound
	}
	return u, nil
}

func (f *identityFake) CustomToken(_ context.Context, uid string) (string, error) {
	if f.tokenErr != nil {
		return "", f.tokenErr
	}
	return "custom-token-" + uid, nil
}

func (f *identityFake) PasswordResetLink(_ context.Context, email string) error {
	if f.resetErr != nil {
		return f.resetErr
	}
	f.resets = append(f.resets, email)
	return nil
}

func (f *identityFake) UpdateDisplayName(_ context.Context, uid, displayName string) error {
	if f.renameErr != nil {
		return f.renameErr
	}
	f.renames[uid] = displayName
	return nil
}

func (f *identityFake) VerifyToken(_ context.Context, _ string) (*fbauth.Token, error) {
	if f.verifyErr != nil {
		return nil, f.verifyErr
	}
	if f.verifyToken != nil {
		return f.verifyToken, nil
	}
	return &fbauth.Token{UID: "uid-verified"}, nil
}

type userStoreFake struct {
	profiles    map[string]*store.UserProfile
	progress    map[string]*store.LearningProgress
	profileErr  error
	createErr   error
	updateErr   error
	progressErr error
	setErr      error
	setCalls    int
}

func newUserStoreFake() *userStoreFake {
	return &userStoreFake{
		profiles: map[string]*store.UserProfile{},
		progress: map[string]*store.LearningProgress{},
	}
}

func (f *userStoreFake) CreateProfile(_ context.Context, p *store.UserProfile) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.profiles[p.UID] = p
	return nil
}

func (f *userStoreFake) Profile(_ context.Context, uid string) (*store.UserProfile, error) {
	if f.profileErr != nil {
		return nil, f.profileErr
	}
	p, ok := f.profiles[uid]
	if !ok {
		return nil, store.ErrNotFound
	}
	return p, nil
}

func (f *userStoreFake) UpdateProfile(_ context.Context, uid string, upd store.ProfileUpdate) (*store.UserProfile, error) {
	if f.updateErr != nil {
		return nil, f.updateErr
	}
	p, ok := f.profiles[uid]
	if !ok {
		return nil, store.ErrNotFound
	}
	if upd.DisplayName != nil {
		p.DisplayName = *upd.DisplayName
	}
	if upd.AvatarURL != nil {
		p.AvatarURL = *upd.AvatarURL
	}
	if upd.Preferences != nil {
		p.Preferences = upd.Preferences
	}
	return p, nil
}

func (f *userStoreFake) LearningProgress(_ context.Context, uid string) (*store.LearningProgress, error) {
	if f.progressErr != nil {
		return nil, f.progressErr
	}
	lp, ok := f.progress[uid]
	if !ok {
		return nil, store.ErrNotFound
	}
	return lp, nil
}

func (f *userStoreFake) SetLearningProgress(_ context.Context, uid string, lp *store.LearningProgress) error {
	if f.setErr != nil {
		return f.setErr
	}
	f.setCalls++
	f.progress[uid] = lp
	return nil
}

type lessonStoreFake struct {
	catalog   []store.LessonRecord
	saved     []*store.LessonRecord
	saveErr   error
	lessonErr error
	listErr   error
	lastQuery store.LessonQuery
	countErr  error
	upserts   []store.ProgressUpdate
	upsertErr error
	touched   []string
	touchErr  error
}

func (f *lessonStoreFake) SaveLesson(_ context.Context, l *store.LessonRecord) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	f.saved = append(f.saved, l)
	f.catalog = append(f.catalog, *l)
	return nil
}

func (f *lessonStoreFake) Lesson(_ context.Context, id string) (*store.LessonRecord, error) {
	if f.lessonErr != nil {
		return nil, f.lessonErr
	}
	for i := range f.catalog {
		if f.catalog[i].ID == id {
			l := f.catalog[i]
			return &l, nil
		}
	}
	return nil, store.ErrNotFound
}

func (f *lessonStoreFake) Lessons(_ context.Context, q store.LessonQuery) ([]store.LessonRecord, error) {
	f.lastQuery = q
	if f.listErr != nil {
		return nil, f.listErr
	}
	out := []store.LessonRecord{}
	for _, l := range f.catalog {
		if q.Subject != "" && l.Subject != q.Subject {
			continue
		}
		if q.Difficulty != "" && l.Difficulty != q.Difficulty {
			continue
		}
		out = append(out, l)
	}
	if q.Skip > 0 {
		if q.Skip >= len(out) {
			return []store.LessonRecord{}, nil
		}
		out = out[q.Skip:]
	}
	if q.Limit > 0 && len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out, nil
}

func (f *lessonStoreFake) LessonCount(_ context.Context, subject string) (int, error) {
	if f.countErr != nil {
		return 0, f.countErr
	}
	n := 0
	for _, l := range f.catalog {
		if subject == "" || l.Subject == subject {
			n++
		}
	}
	return n, nil
}

func (f *lessonStoreFake) UpsertLessonProgress(_ context.Context, uid, lessonID string, upd store.ProgressUpdate) (*store.LessonProgressRecord, error) {
	if f.upsertErr != nil {
		return nil, f.upsertErr
	}
	f.upserts = append(f.upserts, upd)
	rec := &store.LessonProgressRecord{UserID: uid, LessonID: lessonID}
	if upd.Progress != nil {
		rec.Progress = *upd.Progress
	}
	if upd.TimeSpent != nil {
		rec.TimeSpent = *upd.TimeSpent
	}
	if upd.Completed != nil {
		rec.Completed = *upd.Completed
	}
	return rec, nil
}

func (f *lessonStoreFake) TouchLessonAccess(_ context.Context, uid, lessonID string) error {
	if f.touchErr != nil {
		return f.touchErr
	}
	f.touched = append(f.touched, uid+"/"+lessonID)
	return nil
}

type qaStoreFake struct {
	records     map[string]*store.QARecord
	ops         []string
	createErr   error
	attachErr   error
	failErr     error
	failures    map[string]string
	questionErr error
	history     []store.QARecord
	historyErr  error
	lastHistory store.HistoryQuery
}

func newQAStoreFake() *qaStoreFake {
	return &qaStoreFake{
		records:  map[string]*store.QARecord{},
		failures: map[string]string{},
	}
}

func (f *qaStoreFake) CreatePendingQuestion(_ context.Context, rec *store.QARecord) error {
	f.ops = append(f.ops, "create")
	if f.createErr != nil {
		return f.createErr
	}
	cp := *rec
	cp.Status = store.StatusPending
	f.records[rec.ID] = &cp
	return nil
}

func (f *qaStoreFake) AttachAnswer(_ context.Context, id, answer string, refs []store.Reference, answeredAt time.Time) error {
	f.ops = append(f.ops, "attach")
	if f.attachErr != nil {
		return f.attachErr
	}
	rec, ok := f.records[id]
	if !ok {
		return store.ErrNotFound
	}
	rec.Status = store.StatusCompleted
	rec.Answer = answer
	rec.References = refs
	at := answeredAt
	rec.AnswerCreatedAt = &at
	return nil
}

func (f *qaStoreFake) MarkQuestionFailed(_ context.Context, id, cause string) error {
	f.ops = append(f.ops, "fail")
	if f.failErr != nil {
		return f.failErr
	}
	f.failures[id] = cause
	if rec, ok := f.records[id]; ok {
		rec.Status = store.StatusFailed
		rec.Error = cause
	}
	return nil
}

func (f *qaStoreFake) Question(_ context.Context, id string) (*store.QARecord, error) {
	if f.questionErr != nil {
		return nil, f.questionErr
	}
	rec, ok := f.records[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return rec, nil
}

func (f *qaStoreFake) History(_ context.Context, _ string, q store.HistoryQuery) ([]store.QARecord, error) {
	f.lastHistory = q
	if f.historyErr != nil {
		return nil, f.historyErr
	}
	return f.history, nil
}

func (f *qaStoreFake) ExpireStalePending(_ context.Context, _ time.Time) (int, error) {
	return 0, nil
}

type activityStoreFake struct {
	logged       []store.Activity
	logErr       error
	recent       []store.Activity
	recentErr    error
	windows      [][2]time.Time
	current      []store.Activity
	previous     []store.Activity
	betweenErr   error
	achievements []store.Achievement
	achieveErr   error
	earned       int
	earnedErr    error
}

func (f *activityStoreFake) LogActivity(_ context.Context, a *store.Activity) (string, error) {
	if f.logErr != nil {
		return "", f.logErr
	}
	f.logged = append(f.logged, *a)
	return "activity-" + strconv.Itoa(len(f.logged)), nil
}

func (f *activityStoreFake) RecentActivity(_ context.Context, _ string, _, _ int) ([]store.Activity, error) {
	if f.recentErr != nil {
		return nil, f.recentErr
	}
	return f.recent, nil
}

// ActivityBetween hands out current for open-ended windows and previous for
// bounded ones, mirroring how the dashboard queries the two periods.
func (f *activityStoreFake) ActivityBetween(_ context.Context, _ string, from, to time.Time) ([]store.Activity, error) {
	f.windows = append(f.windows, [2]time.Time{from, to})
	if f.betweenErr != nil {
		return nil, f.betweenErr
	}
	if to.IsZero() {
		return f.current, nil
	}
	return f.previous, nil
}

func (f *activityStoreFake) RecentAchievements(_ context.Context, _ string, _ int) ([]store.Achievement, error) {
	if f.achieveErr != nil {
		return nil, f.achieveErr
	}
	return f.achievements, nil
}

func (f *activityStoreFake) AchievementCount(_ context.Context, _ string) (int, error) {
	if f.earnedErr != nil {
		return 0, f.earnedErr
	}
	return f.earned, nil
}

type genFake struct {
	answer    *gen.Answer
	answerErr error
	queries   []gen.AnswerQuery
	draft     *gen.LessonDraft
	draftErr  error
	specs     []gen.LessonSpec
}

func (f *genFake) Answer(_ context.Context, q gen.AnswerQuery) (*gen.Answer, error) {
	f.queries = append(f.queries, q)
	if f.answerErr != nil {
		return nil, f.answerErr
	}
	if f.answer != nil {
		return f.answer, nil
	}
	return &gen.Answer{Answer: "Photosynthesis converts light into chemical energy."}, nil
}

func (f *genFake) Lesson(_ context.Context, spec gen.LessonSpec) (*gen.LessonDraft, error) {
	f.specs = append(f.specs, spec)
	if f.draftErr != nil {
		return nil, f.draftErr
	}
	if f.draft != nil {
		return f.draft, nil
	}
	return &gen.LessonDraft{
		Title:   "Generated Lesson",
		Summary: "A short overview.",
		Content: []store.ContentSection{{Title: "Introduction", Content: "...", Order: 1}},
	}, nil
}

type speechFake struct {
	audio string
	err   error
	texts []string
}

func (f *speechFake) Synthesize(_ context.Context, text string) (io.ReadCloser, error) {
	f.texts = append(f.texts, text)
	if f.err != nil {
		return nil, f.err
	}
	return io.NopCloser(strings.NewReader(f.audio)), nil
}

type fakes struct {
	identity *identityFake
	users    *userStoreFake
	lessons  *lessonStoreFake
	qa       *qaStoreFake
	activity *activityStoreFake
	gen      *genFake
	speech   *speechFake
}

// newTestApp wires an app against in-memory fakes with a fixed clock and an
// authenticator that always admits testUID.
func newTestApp() (*app, *fakes) {
	f := &fakes{
		identity: newIdentityFake(),
		users:    newUserStoreFake(),
		lessons:  &lessonStoreFake{},
		qa:       newQAStoreFake(),
		activity: &activityStoreFake{},
		gen:      &genFake{},
		speech:   &speechFake{audio: "mp3-bytes"},
	}
	a := &app{
		cfg: &config.Config{APIPrefix: "/api/v1", TTSLanguage: "en-US"},
		authenticate: func(*http.Request) (*fbauth.Token, error) {
			return &fbauth.Token{UID: testUID, Claims: map[string]any{"email": testEmail}}, nil
		},
		identity: f.identity,
		users:    f.users,
		lessons:  f.lessons,
		qa:       f.qa,
		activity: f.activity,
		gen:      f.gen,
		speech:   f.speech,
		now:      func() time.Time { return testNow },
	}
	return a, f
}

// quiet replaces the request logger so handler tests do not spray structured
// log lines into the test output.
func quiet(r *http.Request) *http.Request {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return r.WithContext(log.WithLogger(r.Context(), logger))
}

func jsonRequest(t *testing.T, method, target string, body any) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	r := httptest.NewRequest(method, target, &buf)
	r.Header.Set("Content-Type", "application/json")
	return quiet(r)
}

func formRequest(t *testing.T, target, form string) *http.Request {
	t.Helper()
	r := httptest.NewRequest(http.MethodPost, target, strings.NewReader(form))
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return quiet(r)
}

func decodeAs[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), "body: %s", w.Body.String())
	return v
}

func errorDetail(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	return decodeAs[map[string]string](t, w)["detail"]
}
