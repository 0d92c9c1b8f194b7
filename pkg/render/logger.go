package render

import (
	"context"
	"log/slog"
	"sync/atomic"
)

// nopHandler discards every record. Enabled reports false so callers skip
// formatting altogether.
type nopHandler struct{}

func (nopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (nopHandler) Handle(context.Context, slog.Record) error { return nil }
func (nopHandler) WithAttrs([]slog.Attr) slog.Handler        { return nopHandler{} }
func (nopHandler) WithGroup(string) slog.Handler             { return nopHandler{} }

var loggerPtr atomic.Pointer[slog.Logger]

func init() {
	loggerPtr.Store(slog.New(nopHandler{}))
}

// SetLogger installs the logger used by the renderer. The renderer is silent
// by default; pass nil to silence it again.
//
// Levels used:
//   - [slog.LevelDebug]: lifecycle (init, resize, dither rebuilds)
//   - [slog.LevelWarn]: recoverable misuse such as stale IDs
//   - [slog.LevelError]: pool exhaustion and mismatched populate sizes
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = slog.New(nopHandler{})
	}
	loggerPtr.Store(l)
}

// Logger returns the renderer's current logger.
func Logger() *slog.Logger {
	return loggerPtr.Load()
}
