package chromakey

import (
	"context"
	"log/slog"
	"sync/atomic"

	"github.com/gogpu/chromakey/backend"
)

// nopHandler discards every record. Enabled returns false, so disabled
// logging costs no formatting.
type nopHandler struct{}

func (nopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (nopHandler) Handle(context.Context, slog.Record) error { return nil }
func (nopHandler) WithAttrs([]slog.Attr) slog.Handler        { return nopHandler{} }
func (nopHandler) WithGroup(string) slog.Handler             { return nopHandler{} }

var loggerPtr atomic.Pointer[slog.Logger]

func init() {
	loggerPtr.Store(slog.New(nopHandler{}))
}

// SetLogger configures logging for chromakey and its devices. By default
// nothing is logged. Pass nil to restore the silent default.
//
// Devices opened afterwards log through l as well. Levels:
//   - [slog.LevelDebug]: pass details (image size, row padding)
//   - [slog.LevelInfo]: lifecycle (candidate opened, adapter chosen)
//   - [slog.LevelWarn]: candidates that failed to open
//   - [slog.LevelError]: failures that disable a Keyer, logged once
//
// Example:
//
//	chromakey.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
//	    Level: slog.LevelDebug,
//	})))
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = slog.New(nopHandler{})
	}
	loggerPtr.Store(l)
	backend.SetLogger(l)
}

// Logger returns the current logger. Safe for concurrent use.
func Logger() *slog.Logger {
	return loggerPtr.Load()
}

type loggerSetter interface {
	SetLogger(*slog.Logger)
}

// propagateLogger hands the current logger to a device that accepts one.
func propagateLogger(d backend.Device) {
	if ls, ok := d.(loggerSetter); ok {
		ls.SetLogger(Logger())
	}
}
