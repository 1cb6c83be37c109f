package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// DefaultLevel is used when neither the flag nor LOG_LEVEL name a level.
const DefaultLevel = slog.LevelInfo

// Init installs the process-wide logger on stderr. A non-empty level wins
// over the LOG_LEVEL environment variable.
func Init(level string) {
	slog.SetDefault(New(os.Stderr, level))
}

// New builds a text logger writing to w.
func New(w io.Writer, level string) *slog.Logger {
	if level == "" {
		level = os.Getenv("LOG_LEVEL")
	}
	lvl, ok := ParseLevel(level)
	if !ok {
		lvl = DefaultLevel
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: lvl}))
}

// ParseLevel maps the level names accepted in LOG_LEVEL onto slog levels.
func ParseLevel(s string) (slog.Level, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "dev", "development", "debug":
		return slog.LevelDebug, true
	case "info":
		return slog.LevelInfo, true
	case "warn", "warning":
		return slog.LevelWarn, true
	case "error", "production", "prod":
		return slog.LevelError, true
	}
	return DefaultLevel, false
}
