package logger

import (
	"log/slog"
	"os"
)

// New returns the root structured logger. Services receive it via injection;
// nothing in the codebase reaches for a global.
func New() *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
}
