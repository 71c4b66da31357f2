package chromakey

import (
	"errors"

	"github.com/gogpu/chromakey/backend"
)

// Errors reported by a Keyer. Match them with errors.Is.
var (
	// ErrNoGraphicsCapability is returned when no rendering context could be
	// acquired. It disables the Keyer permanently.
	ErrNoGraphicsCapability = backend.ErrNoGraphicsCapability

	// ErrCompileFailed is returned when a shader stage fails to compile.
	// It disables the Keyer permanently.
	ErrCompileFailed = backend.ErrCompileFailed

	// ErrLinkFailed is returned when the shader stages fail to link.
	// It disables the Keyer permanently.
	ErrLinkFailed = backend.ErrLinkFailed

	// ErrSourceNotReady is returned by TryImage while a source is still
	// loading.
	ErrSourceNotReady = errors.New("chromakey: source not ready")

	// ErrInvalidImage is returned for a nil or empty image, or one larger
	// than the device accepts. The Keyer stays usable.
	ErrInvalidImage = errors.New("chromakey: invalid image")

	// ErrInvalidConfig is returned for a key color channel outside [0,1] or
	// a negative tolerance.
	ErrInvalidConfig = errors.New("chromakey: invalid config")

	// ErrClosed is returned after Close.
	ErrClosed = errors.New("chromakey: keyer closed")
)

// isFatal reports whether err permanently disables a Keyer.
func isFatal(err error) bool {
	return errors.Is(err, ErrNoGraphicsCapability) ||
		errors.Is(err, ErrCompileFailed) ||
		errors.Is(err, ErrLinkFailed)
}
