package chromakey

import "github.com/gogpu/chromakey/backend"

// Option configures a Keyer during creation. Options are applied in order
// over DefaultConfig.
//
// Example:
//
//	// Key out pure green with a wide tolerance, CPU only.
//	k := chromakey.New(
//	    chromakey.WithColor(0, 1, 0),
//	    chromakey.WithTolerance(0.2),
//	    chromakey.WithBackends("software"),
//	)
type Option func(*options)

type options struct {
	config   Config
	backends []string
	device   backend.Device
}

func defaultOptions() options {
	return options{config: DefaultConfig()}
}

// WithConfig replaces the whole configuration.
func WithConfig(c Config) Option {
	return func(o *options) {
		o.config = c
	}
}

// WithColor sets the key color, each channel in [0,1].
func WithColor(r, g, b float64) Option {
	return func(o *options) {
		o.config.Color = RGB{R: r, G: g, B: b}
	}
}

// WithTolerance sets the half-width of the tolerance cube.
func WithTolerance(t float64) Option {
	return func(o *options) {
		o.config.Tolerance = t
	}
}

// WithBackends restricts the candidate devices to names, tried in the
// given order. Without it the hardware candidates are tried in priority
// order (see backend.Defaults); the "software" device is only used when
// named here.
func WithBackends(names ...string) Option {
	return func(o *options) {
		o.backends = append([]string(nil), names...)
	}
}

// WithDevice uses d instead of acquiring a candidate. The Keyer opens d on
// first use and closes it on Close. Takes precedence over WithBackends.
//
// For a device shared with a host application see gpu.NewDeviceFromProvider.
func WithDevice(d backend.Device) Option {
	return func(o *options) {
		o.device = d
	}
}
