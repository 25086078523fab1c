// Package logger provides the application logger built on log/slog.
package logger

import (
	"log/slog"
	"os"
)

// AppLogger wraps slog.Logger so call sites can depend on one concrete type.
type AppLogger struct {
	*slog.Logger
}

// New builds the process logger: human-readable text at debug level in
// development, JSON at info level everywhere else.
func New() *AppLogger {
	var handler slog.Handler
	if os.Getenv("ENVIRONMENT") == "development" {
		handler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		})
	} else {
		handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		})
	}
	return &AppLogger{Logger: slog.New(handler)}
}

// Fatal logs the message with the error attached and exits the process.
func (l *AppLogger) Fatal(msg string, err error, args ...any) {
	allArgs := append(args, "error", err)
	l.Error(msg, allArgs...)
	os.Exit(1)
}
