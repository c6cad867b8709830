package logger

import (
	"io"
	"log/slog"
	"os"
)

// New returns the JSON logger every binary writes to stdout.
// env "dev" turns on debug output; service tags each line.
func New(env, service string) *slog.Logger {
	return NewTo(os.Stdout, env, service)
}

func NewTo(w io.Writer, env, service string) *slog.Logger {
	level := slog.LevelInfo
	if env == "dev" {
		level = slog.LevelDebug
	}
	h := slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level})
	return slog.New(h).With("service", service, "env", env)
}
