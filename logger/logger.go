// Package logger builds the *slog.Logger shared by ragchat components.
//
// Text output (the default) and pretty output both go through the
// charmbracelet/log handler; text is uncolored with RFC 3339 timestamps so it
// is safe for log files, pretty adds terminal colors and short times. JSON
// output uses slog's JSON handler. Callers only ever see a *slog.Logger.
package logger

import (
	"io"
	"log/slog"
	"os"
	"time"

	charmlog "github.com/charmbracelet/log"
	"github.com/muesli/termenv"
)

type config struct {
	level   slog.Level
	pretty  bool
	json    bool
	source  bool
	writers []io.Writer
}

// New returns a logger configured by opts. With no options it writes Info
// and above as plain text to os.Stderr. WithJSON takes precedence over
// WithPretty.
func New(opts ...Option) *slog.Logger {
	c := config{level: slog.LevelInfo}
	for _, opt := range opts {
		opt(&c)
	}

	var w io.Writer
	switch len(c.writers) {
	case 0:
		w = os.Stderr
	case 1:
		w = c.writers[0]
	default:
		w = io.MultiWriter(c.writers...)
	}

	if c.json {
		return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: c.level, AddSource: c.source}))
	}

	hopts := charmlog.Options{
		Level:           charmLevel(c.level),
		ReportTimestamp: true,
		TimeFormat:      time.RFC3339,
		ReportCaller:    c.source,
	}
	if c.pretty {
		hopts.TimeFormat = time.Kitchen
	}
	h := charmlog.NewWithOptions(w, hopts)
	if !c.pretty {
		h.SetColorProfile(termenv.Ascii)
	}
	return slog.New(h)
}

// Nop returns a logger that discards everything.
func Nop() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func charmLevel(l slog.Level) charmlog.Level {
	if l <= slog.LevelDebug {
		return charmlog.DebugLevel
	}
	return charmlog.InfoLevel
}
