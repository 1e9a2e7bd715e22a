package logging

import (
	"io"
	"log/slog"
	"time"

	"github.com/lmittmann/tint"

	"clubsafe/internal/config"
)

// New builds the process logger. The text format is meant for local runs.
func New(w io.Writer, format string, level slog.Level) *slog.Logger {
	if format == config.LogFormatText {
		return slog.New(tint.NewHandler(w, &tint.Options{
			Level:      level,
			TimeFormat: time.Kitchen,
			AddSource:  true,
		}))
	}

	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level}))
}
