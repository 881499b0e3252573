// Package logging builds the process logger from the logging config section.
//
// Console output belongs to the interactive session, so logs are written to
// a separate stream (stderr unless the caller passes another writer). While
// the HTTP view is serving, FromContext tags entries with chi's request ID.
package logging

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/go-chi/chi/v5/middleware"
)

// Setup builds a logger for the given level and format, installs it as the
// slog default and returns it. Unknown levels fall back to info and unknown
// formats to text; config validation rejects them before this point.
func Setup(level, format string, w io.Writer) *slog.Logger {
	if w == nil {
		w = os.Stderr
	}

	logger := slog.New(newHandler(format, w, &slog.HandlerOptions{Level: ParseLevel(level)}))
	slog.SetDefault(logger)
	return logger
}

func newHandler(format string, w io.Writer, opts *slog.HandlerOptions) slog.Handler {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "json":
		return slog.NewJSONHandler(w, opts)
	default:
		return slog.NewTextHandler(w, opts)
	}
}

// ParseLevel maps a config level name to a slog.Level. It accepts the names
// slog itself understands ("debug", "info+2", ...) plus "warning".
func ParseLevel(level string) slog.Level {
	name := strings.ToLower(strings.TrimSpace(level))
	if name == "warning" {
		name = "warn"
	}

	var l slog.Level
	if err := l.UnmarshalText([]byte(name)); err != nil {
		return slog.LevelInfo
	}
	return l
}

// FromContext returns the default logger, with request_id attached when ctx
// went through chi's RequestID middleware.
func FromContext(ctx context.Context) *slog.Logger {
	logger := slog.Default()
	if id := middleware.GetReqID(ctx); id != "" {
		logger = logger.With("request_id", id)
	}
	return logger
}
