package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// Options configures the process logger. Zero values give an info-level
// JSON logger on stdout with no service tags.
type Options struct {
	Service   string
	Env       string
	Level     string    // debug, info, warn or error
	AddSource bool
	Output    io.Writer // stdout when nil
}

// New builds the JSON logger and installs it as the slog default, so code
// that logs through the slog package functions shares its level and tags.
func New(opts Options) *slog.Logger {
	out := opts.Output
	if out == nil {
		out = os.Stdout
	}

	log := slog.New(slog.NewJSONHandler(out, &slog.HandlerOptions{
		Level:     ParseLevel(opts.Level),
		AddSource: opts.AddSource,
	}))
	if tags := opts.tags(); len(tags) > 0 {
		log = log.With(tags...)
	}

	slog.SetDefault(log)
	return log
}

func (o Options) tags() []any {
	var tags []any
	if o.Service != "" {
		tags = append(tags, "service", o.Service)
	}
	if o.Env != "" {
		tags = append(tags, "env", o.Env)
	}
	return tags
}

// Discard drops everything. Handy in tests.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// ParseLevel maps a LOG_LEVEL value to a slog level, defaulting to info.
func ParseLevel(s string) slog.Level {
	var lvl slog.Level
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "warning" {
		s = "warn"
	}
	if err := lvl.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo
	}
	return lvl
}
