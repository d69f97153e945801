// Package config loads service settings from the environment. A .env file in
// the working directory is honored when present.
package config

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/klipach/tutorguru/validate"
)

type Config struct {
	APIPrefix   string `validate:"required,startswith=/"`
	ProjectName string `validate:"required"`
	Port        string `validate:"required"`

	CORSOrigins []string `validate:"min=1"`
	LogLevel    string   `validate:"oneof=DEBUG INFO WARNING ERROR"`

	FirebaseProjectID       string
	FirebaseCredentialsFile string

	GeminiAPIKey      string
	GeminiModel       string  `validate:"required"`
	GeminiMaxTokens   int     `validate:"min=1,max=8192"`
	GeminiTemperature float64 `validate:"min=0,max=2"`

	OpenAIAPIKey string
	TTSModel     string `validate:"required"`
	TTSVoice     string `validate:"required"`
	TTSLanguage  string `validate:"required"`

	QAPendingTTL    time.Duration `validate:"gte=1m"`
	JanitorInterval time.Duration `validate:"gte=1m"`
}

var (
	once    sync.Once
	cached  *Config
	loadErr error
)

// Get returns the process-wide config, loading it on first use.
func Get() (*Config, error) {
	once.Do(func() {
		cached, loadErr = Load()
	})
	return cached, loadErr
}

// Load reads the environment on every call; prefer Get outside of tests.
func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("API_V1_STR", "/api/v1")
	v.SetDefault("PROJECT_NAME", "AI Tutor API")
	v.SetDefault("PORT", "8080")
	v.SetDefault("BACKEND_CORS_ORIGINS", "*")
	v.SetDefault("LOG_LEVEL", "INFO")
	v.SetDefault("FIREBASE_PROJECT_ID", "")
	v.SetDefault("FIREBASE_CREDENTIALS_PATH", "")
	v.SetDefault("GEMINI_API_KEY", "")
	v.SetDefault("GEMINI_MODEL", "gemini-1.5-flash")
	v.SetDefault("GEMINI_MAX_TOKENS", 2048)
	v.SetDefault("GEMINI_TEMPERATURE", 0.7)
	v.SetDefault("OPENAI_API_KEY", "")
	v.SetDefault("TTS_MODEL", "tts-1")
	v.SetDefault("TTS_VOICE_NAME", "alloy")
	v.SetDefault("TTS_LANGUAGE_CODE", "en-US")
	v.SetDefault("QA_PENDING_TTL", "15m")
	v.SetDefault("JANITOR_INTERVAL", "1h")

	cfg := &Config{
		APIPrefix:               v.GetString("API_V1_STR"),
		ProjectName:             v.GetString("PROJECT_NAME"),
		Port:                    v.GetString("PORT"),
		CORSOrigins:             parseOrigins(v.GetString("BACKEND_CORS_ORIGINS")),
		LogLevel:                strings.ToUpper(v.GetString("LOG_LEVEL")),
		FirebaseProjectID:       v.GetString("FIREBASE_PROJECT_ID"),
		FirebaseCredentialsFile: v.GetString("FIREBASE_CREDENTIALS_PATH"),
		GeminiAPIKey:            v.GetString("GEMINI_API_KEY"),
		GeminiModel:             v.GetString("GEMINI_MODEL"),
		GeminiMaxTokens:         v.GetInt("GEMINI_MAX_TOKENS"),
		GeminiTemperature:       v.GetFloat64("GEMINI_TEMPERATURE"),
		OpenAIAPIKey:            v.GetString("OPENAI_API_KEY"),
		TTSModel:                v.GetString("TTS_MODEL"),
		TTSVoice:                v.GetString("TTS_VOICE_NAME"),
		TTSLanguage:             v.GetString("TTS_LANGUAGE_CODE"),
		QAPendingTTL:            v.GetDuration("QA_PENDING_TTL"),
		JanitorInterval:         v.GetDuration("JANITOR_INTERVAL"),
	}

	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}

// parseOrigins splits BACKEND_CORS_ORIGINS; "*" (the default) allows any
// origin. Trailing slashes are dropped so header comparison works.
func parseOrigins(raw string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" || raw == "*" {
		return []string{"*"}
	}
	var origins []string
	for _, o := range strings.Split(raw, ",") {
		o = strings.TrimSpace(o)
		if o == "" {
			continue
		}
		origins = append(origins, strings.TrimRight(o, "/"))
	}
	if len(origins) == 0 {
		return []string{"*"}
	}
	return origins
}

// SlogLevel maps the configured level name onto slog.
func (c *Config) SlogLevel() slog.Level {
	switch c.LogLevel {
	case "DEBUG":
		return slog.LevelDebug
	case "WARNING":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
