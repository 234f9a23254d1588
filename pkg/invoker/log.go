package invoker

import (
	"context"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/mattn/go-runewidth"
)

// previewWidth is the display width prompts and outputs are cut to in logs.
const previewWidth = 80

// Logging holds the construction-time switches that gate an invoker's log
// output. Logging is a side channel and never changes a call's result.
type Logging struct {
	Verbose bool `yaml:"verbose"` // Info-level progress messages.
	Errors  bool `yaml:"errors"`  // Warning and error messages.
}

// DefaultLogging reports errors and stays quiet otherwise.
var DefaultLogging = Logging{Errors: true}

// Log is a call-scoped logger that honours a Logging value.
type Log struct {
	logger   *slog.Logger
	switches Logging
}

// NewLog returns a Log for the named provider. A nil logger falls back to
// slog.Default().
func NewLog(logger *slog.Logger, switches Logging, provider string) Log {
	if logger == nil {
		logger = slog.Default()
	}

	return Log{
		logger:   logger.With("provider", provider),
		switches: switches,
	}
}

// ForRequest returns a copy tagged with a fresh request id.
func (l Log) ForRequest() Log {
	l.logger = l.logger.With("request_id", uuid.NewString())
	return l
}

// With returns a copy carrying extra attributes.
func (l Log) With(args ...any) Log {
	l.logger = l.logger.With(args...)
	return l
}

// Info logs when verbose logging is on.
func (l Log) Info(ctx context.Context, msg string, args ...any) {
	if l.switches.Verbose {
		l.logger.InfoContext(ctx, msg, args...)
	}
}

// Warn logs when error logging is on.
func (l Log) Warn(ctx context.Context, msg string, args ...any) {
	if l.switches.Errors {
		l.logger.WarnContext(ctx, msg, args...)
	}
}

// Error logs when error logging is on.
func (l Log) Error(ctx context.Context, msg string, args ...any) {
	if l.switches.Errors {
		l.logger.ErrorContext(ctx, msg, args...)
	}
}

// Preview flattens s to one line and cuts it to a fixed display width.
func Preview(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	return runewidth.Truncate(s, previewWidth, "...")
}
