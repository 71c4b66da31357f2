//go:build !nogpu

package gpu

import "log/slog"

// discard is the logger of a device nobody configured.
var discard = slog.New(slog.DiscardHandler)

// SetLogger sets the device logger. The backend registry calls it with the
// current chromakey logger when the device is created. Pass nil to silence
// the device again.
func (d *Device) SetLogger(l *slog.Logger) {
	d.log.Store(l)
}

// logger returns the device logger. Safe for concurrent use.
func (d *Device) logger() *slog.Logger {
	if l := d.log.Load(); l != nil {
		return l
	}
	return discard
}
