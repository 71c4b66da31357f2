//go:build !nogpu

package gpu

import (
	"fmt"
	"image"
	"unsafe"

	"github.com/gogpu/chromakey/backend"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// copyPitchAlignment is the required BytesPerRow alignment of a
// texture-to-buffer copy.
const copyPitchAlignment = 256

// alignedBytesPerRow rounds a w pixel RGBA8 row up to copyPitchAlignment.
func alignedBytesPerRow(w int) uint32 {
	bytesPerRow := uint32(w * 4)
	return (bytesPerRow + copyPitchAlignment - 1) &^ (copyPitchAlignment - 1)
}

// Read copies the target into a staging buffer, maps it and returns the
// pixels with the row padding stripped.
func (d *Device) Read(bs backend.Surface) (*image.NRGBA, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.ready() {
		return nil, backend.ErrNotInitialized
	}
	s, ok := bs.(*surface)
	if !ok || s != d.surface {
		return nil, backend.ErrForeignResource
	}

	w, h := uint32(s.w), uint32(s.h)
	bytesPerRow := w * 4
	aligned := alignedBytesPerRow(s.w)
	size := uint64(aligned) * uint64(h)

	staging, err := d.device.CreateBuffer(&hal.BufferDescriptor{
		Label: "chroma_staging",
		Size:  size,
		Usage: gputypes.BufferUsageMapRead | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return nil, fmt.Errorf("create staging buffer: %w", err)
	}
	defer d.device.DestroyBuffer(staging)

	err = d.submit("chroma_readback", func(encoder hal.CommandEncoder) {
		encoder.TransitionTextures([]hal.TextureBarrier{{
			Texture: s.texture,
			Usage: hal.TextureUsageTransition{
				OldUsage: gputypes.TextureUsageRenderAttachment,
				NewUsage: gputypes.TextureUsageCopySrc,
			},
		}})
		encoder.CopyTextureToBuffer(s.texture, staging, []hal.BufferTextureCopy{{
			BufferLayout: hal.ImageDataLayout{Offset: 0, BytesPerRow: aligned, RowsPerImage: h},
			TextureBase:  hal.ImageCopyTexture{Texture: s.texture, MipLevel: 0, Aspect: gputypes.TextureAspectAll},
			Size:         hal.Extent3D{Width: w, Height: h, DepthOrArrayLayers: 1},
		}})
		// back to RenderAttachment for the next pass on this target
		encoder.TransitionTextures([]hal.TextureBarrier{{
			Texture: s.texture,
			Usage: hal.TextureUsageTransition{
				OldUsage: gputypes.TextureUsageCopySrc,
				NewUsage: gputypes.TextureUsageRenderAttachment,
			},
		}})
	})
	if err != nil {
		return nil, err
	}

	mapping, err := d.device.MapBuffer(staging, 0, size)
	if err != nil {
		return nil, fmt.Errorf("map staging buffer: %w", err)
	}
	defer func() {
		if err := d.device.UnmapBuffer(staging); err != nil {
			d.logger().Warn("gpu: unmap staging buffer", "err", err)
		}
	}()
	if mapping.Ptr == nil {
		return nil, fmt.Errorf("map staging buffer: nil mapping")
	}
	mapped := unsafe.Slice((*byte)(mapping.Ptr), size)

	out := image.NewNRGBA(image.Rect(0, 0, s.w, s.h))
	stripPadding(out.Pix, mapped, bytesPerRow, aligned, h)
	d.logger().Debug("gpu: readback", "width", w, "height", h, "padding", aligned-bytesPerRow)
	return out, nil
}

// stripPadding copies h rows of rowBytes from src, whose rows are pitch
// bytes apart, into the tightly packed dst.
func stripPadding(dst, src []byte, rowBytes, pitch, h uint32) {
	if rowBytes == pitch {
		copy(dst, src[:rowBytes*h])
		return
	}
	for row := uint32(0); row < h; row++ {
		srcOff := row * pitch
		dstOff := row * rowBytes
		copy(dst[dstOff:dstOff+rowBytes], src[srcOff:srcOff+rowBytes])
	}
}
