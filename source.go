package chromakey

import (
	"context"
	"fmt"
	"image"
	_ "image/gif"  // register decoder
	_ "image/jpeg" // register decoder
	_ "image/png"  // register decoder
	"io"
	"sync"

	_ "golang.org/x/image/bmp"  // register decoder
	_ "golang.org/x/image/tiff" // register decoder
	_ "golang.org/x/image/webp" // register decoder
)

// Source is an image that may still be loading. Done is closed once
// loading has finished; Image is meaningful only after that.
type Source interface {
	Done() <-chan struct{}
	Image() (image.Image, error)
}

// readyCh is the Done channel of sources that are ready from the start.
var readyCh = func() chan struct{} {
	c := make(chan struct{})
	close(c)
	return c
}()

type decoded struct {
	img image.Image
}

func (d decoded) Done() <-chan struct{}       { return readyCh }
func (d decoded) Image() (image.Image, error) { return d.img, nil }

// Decoded wraps an image that is already in memory.
func Decoded(img image.Image) Source {
	return decoded{img: img}
}

// Pending is a Source completed by its producer. The zero value is not
// usable; create one with NewPending.
type Pending struct {
	done chan struct{}

	mu   sync.Mutex
	fns  []func(image.Image, error)
	img  image.Image
	err  error
	once sync.Once
}

// NewPending returns a source that becomes ready on Complete.
func NewPending() *Pending {
	return &Pending{done: make(chan struct{})}
}

// Done is closed by the first Complete.
func (p *Pending) Done() <-chan struct{} { return p.done }

// Image returns the completed image, or ErrSourceNotReady before Complete.
func (p *Pending) Image() (image.Image, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	select {
	case <-p.done:
		return p.img, p.err
	default:
		return nil, ErrSourceNotReady
	}
}

// Complete finishes loading with img or err. Only the first call has an
// effect; it reports whether this call was that one. Continuations
// registered with WhenReady run on the calling goroutine.
func (p *Pending) Complete(img image.Image, err error) bool {
	first := false
	p.once.Do(func() {
		first = true
		p.mu.Lock()
		p.img, p.err = img, err
		fns := p.fns
		p.fns = nil
		close(p.done)
		p.mu.Unlock()
		for _, fn := range fns {
			fn(img, err)
		}
	})
	return first
}

// whenReady registers fn, or reports false when p is already complete.
func (p *Pending) whenReady(fn func(image.Image, error)) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	select {
	case <-p.done:
		return false
	default:
		p.fns = append(p.fns, fn)
		return true
	}
}

// DecodeAsync decodes r on a new goroutine. PNG, JPEG, GIF, BMP, TIFF
// and WebP are recognized. A decode failure completes the source with an
// error wrapping ErrInvalidImage.
func DecodeAsync(r io.Reader) *Pending {
	p := NewPending()
	go func() {
		img, format, err := image.Decode(r)
		if err != nil {
			p.Complete(nil, fmt.Errorf("%w: decode: %w", ErrInvalidImage, err))
			return
		}
		Logger().Debug("chromakey: source decoded", "format", format, "bounds", img.Bounds())
		p.Complete(img, nil)
	}()
	return p
}

// WhenReady calls fn exactly once with the source's image. If src is
// already ready fn runs synchronously before WhenReady returns; otherwise
// it runs once loading finishes.
func WhenReady(src Source, fn func(image.Image, error)) {
	select {
	case <-src.Done():
		fn(src.Image())
		return
	default:
	}
	if p, ok := src.(*Pending); ok {
		if p.whenReady(fn) {
			return
		}
		fn(p.Image())
		return
	}
	go func() {
		<-src.Done()
		fn(src.Image())
	}()
}

// Wait blocks until src is ready or ctx is done.
func Wait(ctx context.Context, src Source) (image.Image, error) {
	select {
	case <-src.Done():
		return src.Image()
	default:
	}
	select {
	case <-src.Done():
		return src.Image()
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// TryImage returns the image of a ready source without blocking, or
// ErrSourceNotReady.
func TryImage(src Source) (image.Image, error) {
	select {
	case <-src.Done():
		return src.Image()
	default:
		return nil, ErrSourceNotReady
	}
}
