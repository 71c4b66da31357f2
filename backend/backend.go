package backend

import (
	"errors"
	"image"

	"github.com/gogpu/chromakey/gpucore"
)

// Common backend errors.
var (
	// ErrNoGraphicsCapability is returned when no candidate device opens.
	ErrNoGraphicsCapability = gpucore.ErrNoGraphicsCapability

	// ErrCompileFailed is returned when a shader stage fails to compile.
	ErrCompileFailed = gpucore.ErrCompileFailed

	// ErrLinkFailed is returned when the stages fail to link.
	ErrLinkFailed = gpucore.ErrLinkFailed

	// ErrNotInitialized is returned when operations are called before Open.
	ErrNotInitialized = errors.New("backend: not initialized")

	// ErrForeignResource is returned when a program, surface or texture
	// created by one device is handed to another.
	ErrForeignResource = errors.New("backend: resource belongs to another device")
)

// Device is one rendering context able to run chroma-key passes.
//
// A device is used by one pass at a time. Program is built once and reused
// across passes; the surface is resized per image; textures live for one
// pass.
type Device interface {
	// Name returns the candidate name (e.g., "vulkan", "software").
	Name() string

	// Origin reports where row 0 of the device's render targets lives.
	// The vertex stage flip is derived from it.
	Origin() gpucore.Origin

	// MaxDimension is the largest surface width or height the device accepts.
	MaxDimension() int

	// Open acquires the rendering context. Failures wrap
	// ErrNoGraphicsCapability.
	Open() error

	// Build compiles and links the program. Failures wrap ErrCompileFailed
	// or ErrLinkFailed.
	Build(vertexSource, fragmentSource string) (Program, error)

	// Acquire returns the offscreen surface sized width x height. The
	// previous surface is reused when the size matches and recreated
	// otherwise.
	Acquire(width, height int) (Surface, error)

	// Upload creates a sampleable texture holding img's pixels, with
	// clamp-to-edge addressing and nearest filtering.
	Upload(img *image.NRGBA) (Texture, error)

	// Draw clears s to transparent and runs the program over the surface
	// rectangle, sampling t.
	Draw(p Program, s Surface, t Texture, params gpucore.Params) error

	// Read returns the surface pixels. Rows come back in target memory
	// order, which is image order once the flip matches Origin.
	Read(s Surface) (*image.NRGBA, error)

	// Close releases every resource of the device. The device must not be
	// used afterwards.
	Close()
}

// Program is a built pipeline program.
type Program interface {
	// Bindings returns the handles resolved at build time.
	Bindings() gpucore.Bindings
	// Destroy releases the program.
	Destroy()
}

// Surface is an offscreen render target.
type Surface interface {
	Width() int
	Height() int
}

// Texture is a device-resident copy of a source image.
type Texture interface {
	Width() int
	Height() int
	// Release frees the texture.
	Release()
}
