package engine

import (
	"log/slog"
	"sync/atomic"

	"github.com/gogpu/gg"
)

// loggerPtr stores the active logger. Accessed atomically so SetLogger can race with the frame loop.
var loggerPtr atomic.Pointer[slog.Logger]

func init() {
	loggerPtr.Store(slog.New(slog.DiscardHandler))
}

// SetLogger configures the logger used by engines created after the call, and by gg for the
// software device. By default nothing is logged. Pass nil to restore the silent default.
//
// Log levels used:
//   - slog.LevelDebug: per-frame device output
//   - slog.LevelInfo: lifecycle events and profiler lines
//   - slog.LevelWarn: skipped frames and recovered panics
//
// Parameters:
//   - l: the logger to install
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = slog.New(slog.DiscardHandler)
	}
	loggerPtr.Store(l)
	gg.SetLogger(l)
}

// Logger returns the current package logger.
//
// Returns:
//   - *slog.Logger: the active logger, never nil
func Logger() *slog.Logger {
	return loggerPtr.Load()
}
