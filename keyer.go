package chromakey

import (
	"context"
	"errors"
	"fmt"
	"image"
	"sync"

	xdraw "golang.org/x/image/draw"

	"github.com/gogpu/chromakey/backend"
	"github.com/gogpu/chromakey/gpucore"
	"github.com/gogpu/chromakey/internal/shader"
)

// Keyer removes a key color from images. It owns one device and one
// program and runs passes one at a time; separate Keyers share nothing.
//
// The device is acquired and the program built on first use (or by Init).
// If either fails the Keyer is disabled: the failure is logged once and
// every later call returns it.
type Keyer struct {
	mu       sync.Mutex
	config   Config
	backends []string
	device   backend.Device // from WithDevice, opened lazily

	dev    backend.Device
	prog   backend.Program
	err    error
	closed bool
}

// New creates a Keyer. Options are applied over DefaultConfig. No device is
// acquired until the first pass or Init.
func New(opts ...Option) *Keyer {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return &Keyer{
		config:   o.config,
		backends: o.backends,
		device:   o.device,
	}
}

// NewWithSource creates a Keyer and runs one pass over src.
// The Keyer is returned even when the pass fails.
func NewWithSource(ctx context.Context, src Source, opts ...Option) (*Keyer, *image.NRGBA, error) {
	k := New(opts...)
	out, err := k.Process(ctx, src)
	return k, out, err
}

// Init acquires the device and builds the program now instead of on the
// first pass.
func (k *Keyer) Init() error {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.initLocked()
}

func (k *Keyer) initLocked() error {
	if k.closed {
		return ErrClosed
	}
	if k.err != nil {
		return k.err
	}
	if k.prog != nil {
		return nil
	}

	dev, err := k.openDevice()
	if err != nil {
		return k.fail(err)
	}
	prog, err := dev.Build(shader.VertexSource, shader.FragmentSource)
	if err != nil {
		dev.Close()
		return k.fail(fmt.Errorf("chromakey: %s: %w", dev.Name(), err))
	}
	k.dev, k.prog = dev, prog
	Logger().Info("chromakey: ready", "backend", dev.Name(), "origin", dev.Origin(), "bindings", prog.Bindings())
	return nil
}

func (k *Keyer) openDevice() (backend.Device, error) {
	if k.device == nil {
		return backend.Open(k.backends...)
	}
	dev := k.device
	propagateLogger(dev)
	if err := dev.Open(); err != nil {
		dev.Close()
		if errors.Is(err, ErrNoGraphicsCapability) {
			return nil, fmt.Errorf("chromakey: %s: %w", dev.Name(), err)
		}
		return nil, fmt.Errorf("%w: %s: %w", ErrNoGraphicsCapability, dev.Name(), err)
	}
	return dev, nil
}

// fail disables the Keyer with err when it is fatal. Other failures, such
// as the device running out of memory while building the program, leave
// the Keyer to retry on the next call.
func (k *Keyer) fail(err error) error {
	if !isFatal(err) {
		Logger().Warn("chromakey: init failed", "err", err)
		return err
	}
	k.err = err
	Logger().Error("chromakey: disabled", "err", err)
	return err
}

// Process waits for src to finish loading, then keys it. Waiting can be
// abandoned through ctx; the pass itself is not interruptible.
func (k *Keyer) Process(ctx context.Context, src Source) (*image.NRGBA, error) {
	img, err := Wait(ctx, src)
	if err != nil {
		return nil, err
	}
	return k.ProcessImage(img)
}

// ProcessImage keys img and returns a new image of the same size with
// background pixels set to transparent black. img is not modified.
func (k *Keyer) ProcessImage(img image.Image) (*image.NRGBA, error) {
	k.mu.Lock()
	defer k.mu.Unlock()

	if err := k.initLocked(); err != nil {
		return nil, err
	}
	cfg := k.config
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	src, err := toNRGBA(img, k.dev.MaxDimension())
	if err != nil {
		return nil, err
	}
	return k.pass(src, cfg)
}

// pass runs one compositing pass with the surface sized to src.
func (k *Keyer) pass(src *image.NRGBA, cfg Config) (*image.NRGBA, error) {
	w, h := src.Bounds().Dx(), src.Bounds().Dy()

	surf, err := k.dev.Acquire(w, h)
	if err != nil {
		return nil, fmt.Errorf("chromakey: surface: %w", err)
	}
	tex, err := k.dev.Upload(src)
	if err != nil {
		return nil, fmt.Errorf("chromakey: upload: %w", err)
	}
	defer tex.Release()

	key, t := cfg.key()
	params := gpucore.NewParams(w, h, key, t, k.dev.Origin())
	if err := k.dev.Draw(k.prog, surf, tex, params); err != nil {
		return nil, fmt.Errorf("chromakey: draw: %w", err)
	}
	out, err := k.dev.Read(surf)
	if err != nil {
		return nil, fmt.Errorf("chromakey: readback: %w", err)
	}
	Logger().Debug("chromakey: pass", "width", w, "height", h, "color", cfg.Color.Hex(), "tolerance", cfg.Tolerance)
	return out, nil
}

// toNRGBA returns img as straight-alpha RGBA. An *image.NRGBA is used as
// is; anything else is converted into a new image at origin (0,0).
func toNRGBA(img image.Image, maxDim int) (*image.NRGBA, error) {
	if img == nil {
		return nil, fmt.Errorf("%w: nil image", ErrInvalidImage)
	}
	b := img.Bounds()
	if b.Empty() {
		return nil, fmt.Errorf("%w: empty bounds %v", ErrInvalidImage, b)
	}
	if b.Dx() > maxDim || b.Dy() > maxDim {
		return nil, fmt.Errorf("%w: %dx%d exceeds device limit %d", ErrInvalidImage, b.Dx(), b.Dy(), maxDim)
	}
	if n, ok := img.(*image.NRGBA); ok {
		return n, nil
	}
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	xdraw.Copy(dst, image.Point{}, img, b, xdraw.Src, nil)
	return dst, nil
}

// Config returns the current configuration.
func (k *Keyer) Config() Config {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.config
}

// SetConfig replaces the configuration used by later passes. A pass in
// progress finishes with the configuration it started with.
func (k *Keyer) SetConfig(c Config) error {
	if err := c.Validate(); err != nil {
		return err
	}
	k.mu.Lock()
	defer k.mu.Unlock()
	if k.closed {
		return ErrClosed
	}
	k.config = c
	return nil
}

// Backend returns the name of the device in use, or "" before the first
// successful Init.
func (k *Keyer) Backend() string {
	k.mu.Lock()
	defer k.mu.Unlock()
	if k.dev == nil {
		return ""
	}
	return k.dev.Name()
}

// Err returns the error that disabled the Keyer, or nil.
func (k *Keyer) Err() error {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.err
}

// Close releases the program and the device. Later calls return ErrClosed.
// Close is idempotent.
func (k *Keyer) Close() error {
	k.mu.Lock()
	defer k.mu.Unlock()
	if k.closed {
		return nil
	}
	k.closed = true
	if k.prog != nil {
		k.prog.Destroy()
		k.prog = nil
	}
	if k.dev != nil {
		k.dev.Close()
		k.dev = nil
	}
	return nil
}
