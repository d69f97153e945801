package tutorguru

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	fbauth "firebase.google.com/go/v4/auth"

	"github.com/klipach/tutorguru/audit"
	"github.com/klipach/tutorguru/auth"
	"github.com/klipach/tutorguru/config"
	"github.com/klipach/tutorguru/gen"
	"github.com/klipach/tutorguru/janitor"
	"github.com/klipach/tutorguru/log"
	"github.com/klipach/tutorguru/store"
)

type identityProvider interface {
	CreateUser(ctx context.Context, email, password, displayName string) (*fbauth.UserRecord, error)
	UserByEmail(ctx context.Context, email string) (*fbauth.UserRecord, error)
	CustomToken(ctx context.Context, uid string) (string, error)
	PasswordResetLink(ctx context.Context, email string) error
	UpdateDisplayName(ctx context.Context, uid, displayName string) error
	VerifyToken(ctx context.Context, idToken string) (*fbauth.Token, error)
}

type userStore interface {
	CreateProfile(ctx context.Context, p *store.UserProfile) error
	Profile(ctx context.Context, uid string) (*store.UserProfile, error)
	UpdateProfile(ctx context.Context, uid string, upd store.ProfileUpdate) (*store.UserProfile, error)
	LearningProgress(ctx context.Context, uid string) (*store.LearningProgress, error)
	SetLearningProgress(ctx context.Context, uid string, lp *store.LearningProgress) error
}

type lessonStore interface {
	SaveLesson(ctx context.Context, l *store.LessonRecord) error
	Lesson(ctx context.Context, id string) (*store.LessonRecord, error)
	Lessons(ctx context.Context, q store.LessonQuery) ([]store.LessonRecord, error)
	LessonCount(ctx context.Context, subject string) (int, error)
	UpsertLessonProgress(ctx context.Context, uid, lessonID string, upd store.ProgressUpdate) (*store.LessonProgressRecord, error)
	TouchLessonAccess(ctx context.Context, uid, lessonID string) error
}

type qaStore interface {
	CreatePendingQuestion(ctx context.Context, rec *store.QARecord) error
	AttachAnswer(ctx context.Context, id, answer string, refs []store.Reference, answeredAt time.Time) error
	MarkQuestionFailed(ctx context.Context, id, cause string) error
	Question(ctx context.Context, id string) (*store.QARecord, error)
	History(ctx context.Context, uid string, q store.HistoryQuery) ([]store.QARecord, error)
	ExpireStalePending(ctx context.Context, cutoff time.Time) (int, error)
}

type activityStore interface {
	LogActivity(ctx context.Context, a *store.Activity) (string, error)
	RecentActivity(ctx context.Context, uid string, limit, skip int) ([]store.Activity, error)
	ActivityBetween(ctx context.Context, uid string, from, to time.Time) ([]store.Activity, error)
	RecentAchievements(ctx context.Context, uid string, limit int) ([]store.Achievement, error)
	AchievementCount(ctx context.Context, uid string) (int, error)
}

type answerGenerator interface {
	Answer(ctx context.Context, q gen.AnswerQuery) (*gen.Answer, error)
	Lesson(ctx context.Context, spec gen.LessonSpec) (*gen.LessonDraft, error)
}

type speechSynthesizer interface {
	Synthesize(ctx context.Context, text string) (io.ReadCloser, error)
}

// app bundles every dependency the handlers touch. gen and speech stay nil
// when their API keys are not configured; the endpoints needing them answer
// 503.
type app struct {
	cfg          *config.Config
	authenticate func(*http.Request) (*fbauth.Token, error)
	identity     identityProvider
	users        userStore
	lessons      lessonStore
	qa           qaStore
	activity     activityStore
	gen          answerGenerator
	speech       speechSynthesizer
	now          func() time.Time
}

var (
	appMu  sync.Mutex
	shared *app
)

// getApp builds the shared dependency set on first use. A failed bootstrap
// is retried on the next request instead of poisoning the process.
func getApp(ctx context.Context) (*app, error) {
	appMu.Lock()
	defer appMu.Unlock()
	if shared != nil {
		return shared, nil
	}

	cfg, err := config.Get()
	if err != nil {
		return nil, err
	}
	logger := log.LoggerFromContext(ctx)

	fs, err := store.Dial(ctx, cfg.FirebaseProjectID, cfg.FirebaseCredentialsFile)
	if err != nil {
		return nil, err
	}

	st := store.New(fs)
	if al, err := audit.New(ctx, cfg.FirebaseProjectID); err != nil {
		logger.Warn("audit logging disabled", slog.String(ErrorMsgLogField, err.Error()))
	} else {
		st = st.WithAudit(al)
	}

	identity, err := auth.NewIdentity(ctx)
	if err != nil {
		return nil, err
	}

	a := &app{
		cfg:          cfg,
		authenticate: auth.Authenticate,
		identity:     identity,
		users:        st,
		lessons:      st,
		qa:           st,
		activity:     st,
		now:          time.Now,
	}

	if g, err := gen.New(ctx, gen.Params{
		APIKey:      cfg.GeminiAPIKey,
		Model:       cfg.GeminiModel,
		MaxTokens:   cfg.GeminiMaxTokens,
		Temperature: cfg.GeminiTemperature,
	}); err != nil {
		logger.Warn("answer generation disabled", slog.String(ErrorMsgLogField, err.Error()))
	} else {
		a.gen = g
	}

	if sp, err := gen.NewSpeech(cfg.OpenAIAPIKey, cfg.TTSModel, cfg.TTSVoice); err != nil {
		logger.Warn("speech synthesis disabled", slog.String(ErrorMsgLogField, err.Error()))
	} else {
		a.speech = sp
	}

	shared = a
	return shared, nil
}

// StartJanitor launches the background sweep failing stale pending
// questions. Only cmd/main.go runs it; function instances are too
// short-lived to host one.
func StartJanitor(ctx context.Context) (*janitor.Janitor, error) {
	a, err := getApp(ctx)
	if err != nil {
		return nil, err
	}
	j := janitor.New(a.qa, a.cfg.QAPendingTTL, a.cfg.JanitorInterval)
	j.Start()
	return j, nil
}

// requireAuth verifies the bearer token and enriches the request logger with
// the caller's uid.
func (a *app) requireAuth(w http.ResponseWriter, r *http.Request) (*fbauth.Token, *http.Request, bool) {
	logger := log.LoggerFromContext(r.Context())

	token, err := a.authenticate(r)
	if err != nil {
		logger.Error("error while authenticating", slog.String(ErrorMsgLogField, err.Error()))
		w.Header().Set("WWW-Authenticate", "Bearer")
		writeError(w, r, http.StatusUnauthorized, "Could not validate credentials")
		return nil, r, false
	}

	logger = logger.With(slog.String(userIDLogField, token.UID))
	r = r.WithContext(log.WithLogger(r.Context(), logger))
	return token, r, true
}

func tokenEmail(token *fbauth.Token) string {
	if e, ok := token.Claims["email"].(string); ok {
		return e
	}
	return ""
}
