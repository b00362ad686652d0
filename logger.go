package uvmesh

import (
	"context"
	"log/slog"
	"sync/atomic"

	"github.com/gogpu/uvmesh/internal/delaunay"
	"github.com/gogpu/uvmesh/internal/mapping"
)

// nopHandler is a slog.Handler that silently discards all log records.
// The Enabled method returns false so the caller skips message formatting
// entirely, making disabled logging effectively zero-cost.
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

// SetLogger configures the logger for uvmesh and its internal packages.
// By default, uvmesh produces no log output. Pass nil to restore the
// silent default.
//
// Log levels used by uvmesh:
//   - [slog.LevelDebug]: per-pass refinement and smoothing statistics
//   - [slog.LevelInfo]: lifecycle events (mapping fitted, mesh extracted)
//   - [slog.LevelWarn]: recovered failures (fallback mapping, constraint
//     retried with outward extension)
//   - [slog.LevelError]: violated topology invariants
//
// Example:
//
//	uvmesh.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
//	    Level: slog.LevelDebug,
//	})))
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = newNopLogger()
	}
	loggerPtr.Store(l)
	delaunay.SetLogger(l)
	mapping.SetLogger(l)
}

// Logger returns the current logger used by uvmesh.
func Logger() *slog.Logger {
	return loggerPtr.Load()
}
