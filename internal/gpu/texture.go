//go:build !nogpu

package gpu

import (
	"fmt"
	"image"

	"github.com/gogpu/chromakey/backend"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// texture is the GPU copy of one source image, scoped to one pass.
type texture struct {
	owner   *Device
	w, h    int
	texture hal.Texture
	view    hal.TextureView
}

func (t *texture) Width() int  { return t.w }
func (t *texture) Height() int { return t.h }

// Release destroys the texture. Safe to call more than once.
func (t *texture) Release() {
	if t.owner == nil {
		return
	}
	t.owner.mu.Lock()
	defer t.owner.mu.Unlock()
	if d := t.owner.device; d != nil {
		d.DestroyTextureView(t.view)
		d.DestroyTexture(t.texture)
	}
	t.owner = nil
	t.texture = nil
	t.view = nil
}

// Upload copies img into a new sampleable RGBA8 texture.
func (d *Device) Upload(img *image.NRGBA) (backend.Texture, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.ready() {
		return nil, backend.ErrNotInitialized
	}
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w <= 0 || h <= 0 || w > d.MaxDimension() || h > d.MaxDimension() {
		return nil, fmt.Errorf("gpu: invalid texture size %dx%d", w, h)
	}

	tex, view, err := d.createTexture("chroma_source", w, h,
		gputypes.TextureUsageTextureBinding|gputypes.TextureUsageCopyDst)
	if err != nil {
		return nil, fmt.Errorf("create source texture: %w", err)
	}

	data := tightPixels(img)
	err = d.queue.WriteTexture(
		&hal.ImageCopyTexture{Texture: tex, MipLevel: 0, Aspect: gputypes.TextureAspectAll},
		data,
		&hal.ImageDataLayout{Offset: 0, BytesPerRow: uint32(w * 4), RowsPerImage: uint32(h)},
		&hal.Extent3D{Width: uint32(w), Height: uint32(h), DepthOrArrayLayers: 1},
	)
	if err != nil {
		d.device.DestroyTextureView(view)
		d.device.DestroyTexture(tex)
		return nil, fmt.Errorf("write source texture: %w", err)
	}
	return &texture{owner: d, w: w, h: h, texture: tex, view: view}, nil
}

// tightPixels returns img's pixels with a stride of exactly width*4.
func tightPixels(img *image.NRGBA) []byte {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	rowBytes := w * 4
	if img.Stride == rowBytes && b.Min == (image.Point{}) {
		return img.Pix[:rowBytes*h]
	}
	out := make([]byte, rowBytes*h)
	for y := 0; y < h; y++ {
		off := img.PixOffset(b.Min.X, b.Min.Y+y)
		copy(out[y*rowBytes:(y+1)*rowBytes], img.Pix[off:off+rowBytes])
	}
	return out
}
