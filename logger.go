package gfx

import (
	"context"
	"log/slog"
	"sync/atomic"
)

// nopHandler is a slog.Handler that silently discards all log records.
// Enabled returns false so callers skip message formatting entirely.
type nopHandler struct{}

func (nopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (nopHandler) Handle(context.Context, slog.Record) error { return nil }
func (nopHandler) WithAttrs([]slog.Attr) slog.Handler        { return nopHandler{} }
func (nopHandler) WithGroup(string) slog.Handler             { return nopHandler{} }

func newNopLogger() *slog.Logger { return slog.New(nopHandler{}) }

// loggerPtr stores the active logger. Accessed atomically so that
// SetLogger can be called concurrently with logging from any goroutine.
var loggerPtr atomic.Pointer[slog.Logger]

func init() {
	loggerPtr.Store(newNopLogger())
}

// SetLogger configures the logger for gfx and the backends it creates.
// By default, gfx produces no log output.
//
// Devices created after the call pass the logger to their backend through
// DeviceDesc.Logger. Pass nil to restore the silent default.
//
// Log levels used by gfx:
//   - [slog.LevelDebug]: native object creation, program links, pipeline cache misses
//   - [slog.LevelInfo]: device created, reset, lost, recovered and disposed
//   - [slog.LevelWarn]: capability fallbacks (missing optional entry points, clamped settings)
//
// Example:
//
//	gfx.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
//	    Level: slog.LevelDebug,
//	})))
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = newNopLogger()
	}
	loggerPtr.Store(l)
}

// Logger returns the current logger used by gfx.
// Backend packages call this when no logger was injected explicitly.
func Logger() *slog.Logger {
	return loggerPtr.Load()
}
