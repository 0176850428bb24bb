package logging

import (
	"io"
	"log/slog"
)

// NewJSONHandler is the stdout handler. Development logs at debug level.
func NewJSONHandler(w io.Writer, env string) slog.Handler {
	level := slog.LevelInfo
	if env == "development" {
		level = slog.LevelDebug
	}
	return slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level})
}

// Setup installs the global slog logger fanned out over handlers.
func Setup(handlers ...slog.Handler) {
	if len(handlers) == 1 {
		slog.SetDefault(slog.New(handlers[0]))
		return
	}
	slog.SetDefault(slog.New(NewMultiHandler(handlers...)))
}
