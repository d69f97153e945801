package log

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"
)

type ctxKey struct{}

type traceKey struct{}

// CloudLoggingHandler is a slog.Handler implementation for Google Cloud Functions.
type CloudLoggingHandler struct {
	level slog.Level
	attrs []slog.Attr
}

// NewCloudLoggingHandler creates a new handler that writes logs in Google Cloud structured format.
func NewCloudLoggingHandler(level slog.Level) *CloudLoggingHandler {
	return &CloudLoggingHandler{level: level}
}

// Handle processes log records.
func (h *CloudLoggingHandler) Handle(ctx context.Context, r slog.Record) error {
	entry := map[string]any{
		"severity": severity(r.Level),
		"time":     time.Now().Format(time.RFC3339),
		"message":  r.Message,
	}

	if trace := TraceFromContext(ctx); trace != "" {
		entry["logging.googleapis.com/trace"] = trace
	}

	// handler attributes first so record attributes win on collision
	for _, attr := range h.attrs {
		entry[attr.Key] = attr.Value.Any()
	}
	r.Attrs(func(attr slog.Attr) bool {
		entry[attr.Key] = attr.Value.Any()
		return true
	})

	jsonData, err := json.Marshal(entry)
	if err != nil {
		return err
	}
	os.Stdout.Write(jsonData)
	os.Stdout.Write([]byte("\n"))
	return nil
}

// Enabled reports whether the record level passes the configured minimum.
func (h *CloudLoggingHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level
}

// WithAttrs returns a new handler with additional attributes.
func (h *CloudLoggingHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	newAttrs := make([]slog.Attr, len(h.attrs)+len(attrs))
	copy(newAttrs, h.attrs)
	copy(newAttrs[len(h.attrs):], attrs)
	return &CloudLoggingHandler{level: h.level, attrs: newAttrs}
}

// WithGroup returns the same handler, as grouping is not implemented.
func (h *CloudLoggingHandler) WithGroup(_ string) slog.Handler {
	return h
}

// severity maps slog levels onto Cloud Logging severity names; slog's own
// names do not match ("WARN" vs "WARNING").
func severity(level slog.Level) string {
	switch {
	case level >= slog.LevelError:
		return "ERROR"
	case level >= slog.LevelWarn:
		return "WARNING"
	case level >= slog.LevelInfo:
		return "INFO"
	default:
		return "DEBUG"
	}
}

// WithTrace derives the trace resource name from an X-Cloud-Trace-Context
// header value ("TRACE_ID/SPAN_ID;o=1") and stores it in the context.
func WithTrace(ctx context.Context, projectID, header string) context.Context {
	if projectID == "" || header == "" {
		return ctx
	}
	traceID, _, _ := strings.Cut(header, "/")
	if traceID == "" {
		return ctx
	}
	return context.WithValue(ctx, traceKey{}, fmt.Sprintf("projects/%s/traces/%s", projectID, traceID))
}

// TraceFromContext extracts the Google Cloud Trace resource name from the context.
func TraceFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	trace, _ := ctx.Value(traceKey{}).(string)
	return trace
}

func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, logger)
}

func LoggerFromContext(ctx context.Context) *slog.Logger {
	if logger, ok := ctx.Value(ctxKey{}).(*slog.Logger); ok {
		return logger
	}
	return slog.New(NewCloudLoggingHandler(slog.LevelInfo))
}
