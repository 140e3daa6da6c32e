package util

import (
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/lmittmann/tint"
)

type LogOptions struct {
	Verbose bool `short:"v" long:"verbose" description:"Show debug logs"`
}

// Diagnostic logger; stdout is reserved for payloads.
func NewLogger(w io.Writer, options LogOptions) *slog.Logger {
	logLevel := slog.LevelInfo
	if options.Verbose {
		logLevel = slog.LevelDebug
	}

	return slog.New(tint.NewHandler(w, &tint.Options{
		Level: logLevel,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey && len(groups) == 0 {
				a.Value = slog.StringValue(FormatRFC3339Millis(a.Value.Time()))
			}
			if s, ok := a.Value.Any().(string); ok && s == "" {
				return slog.Attr{}
			}
			return a
		},
	}))
}

func FormatRFC3339Millis(t time.Time) string {
	t = t.UTC()
	base := t.Format("2006-01-02T15:04:05")
	ms := t.Nanosecond() / 1_000_000
	return fmt.Sprintf("%s.%03dZ", base, ms)
}
