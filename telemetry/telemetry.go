// Package telemetry provides the error-reporting and timing collaborators
// used by the qBittorrent client and the submission service. Reporting is
// fire-and-forget: implementations never block and never return errors.
package telemetry

import (
	"time"

	"github.com/rs/zerolog"
)

// Reporter receives detailed internal errors that must not cross the
// public API boundary (raw HTTP statuses, server response bodies for
// authentication endpoints, crypto failures).
type Reporter interface {
	Report(err error, category string, fields map[string]any)
}

// logReporter writes reports to a zerolog logger.
type logReporter struct {
	logger zerolog.Logger
}

// NewReporter creates a Reporter backed by the given logger.
func NewReporter(logger zerolog.Logger) Reporter {
	return &logReporter{logger: logger}
}

func (r *logReporter) Report(err error, category string, fields map[string]any) {
	ev := r.logger.Error().Err(err).Str("category", category)
	for k, v := range fields {
		ev = ev.Interface(k, v)
	}
	ev.Msg("internal error")
}

// nopReporter discards all reports.
type nopReporter struct{}

// NopReporter returns a Reporter that discards everything. Useful in tests
// and for callers that don't care about diagnostics.
func NopReporter() Reporter {
	return nopReporter{}
}

func (nopReporter) Report(error, string, map[string]any) {}

// Timer measures the duration of a named operation.
type Timer struct {
	name   string
	start  time.Time
	logger zerolog.Logger
}

// StartTimer begins timing a named operation. Call End on the returned
// Timer when the operation completes.
func StartTimer(logger zerolog.Logger, name string) *Timer {
	return &Timer{name: name, start: time.Now(), logger: logger}
}

// End logs the elapsed time at debug level with the given context fields.
// Safe to call on a nil Timer.
func (t *Timer) End(fields map[string]any) {
	if t == nil {
		return
	}
	ev := t.logger.Debug().
		Str("operation", t.name).
		Dur("elapsed", time.Since(t.start))
	for k, v := range fields {
		ev = ev.Interface(k, v)
	}
	ev.Msg("operation finished")
}
