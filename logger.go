package rendernode

import (
	"context"
	"log/slog"
	"sync/atomic"
)

// nopHandler drops every record. It is the default until SetLogger is
// called, so an application embedding the render tree stays quiet.
type nopHandler struct{}

func (nopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (nopHandler) Handle(context.Context, slog.Record) error { return nil }
func (nopHandler) WithAttrs([]slog.Attr) slog.Handler        { return nopHandler{} }
func (nopHandler) WithGroup(string) slog.Handler             { return nopHandler{} }

func newNopLogger() *slog.Logger { return slog.New(nopHandler{}) }

// loggerPtr may be read on a render goroutine while SetLogger runs.
var loggerPtr atomic.Pointer[slog.Logger]

func init() {
	loggerPtr.Store(newNopLogger())
}

// SetLogger routes render tree diagnostics, including those of the source
// and backend packages, to l. Nothing is logged by default; pass nil to
// restore that.
//
// Levels:
//   - [slog.LevelDebug]: one line per recorded frame with its reuse counts,
//     layer rasterization, decoded images
//   - [slog.LevelInfo]: canvas factory registration
//   - [slog.LevelWarn]: refs collected without Dispose, unreadable images
//     and frames, brushes or scopes a backend cannot draw
//
// Example:
//
//	rendernode.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
//	    Level: slog.LevelDebug,
//	})))
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = newNopLogger()
	}
	loggerPtr.Store(l)
}

// Logger returns the logger set by SetLogger. The source and backends
// packages log through it so one call configures the whole tree.
func Logger() *slog.Logger {
	return loggerPtr.Load()
}
