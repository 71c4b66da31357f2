// Package backend defines the device contract of a chroma-key pass and the
// registry of device candidates.
//
// A Device is one rendering context: it builds the pipeline program,
// provides an offscreen surface sized to the image, uploads the source
// texture, draws the pass and reads the surface back.
//
// # Candidate Registration
//
// Devices are registered by name via init() functions. The CPU reference
// device is registered by this package; hardware candidates are registered
// by importing the gpu package:
//
//	import _ "github.com/gogpu/chromakey/gpu"
//
// # Candidate Selection
//
// Open tries candidates in priority order and returns the first device
// that opens:
//
//	dev, err := backend.Open()                 // vulkan, metal, dx12, gles
//	dev, err := backend.Open("vulkan", "gles") // restricted list
//	dev, err := backend.Open("software")       // CPU device, by name only
//
// When no candidate opens the error wraps ErrNoGraphicsCapability. The CPU
// device is never part of the default list, so a host without a graphics
// context fails instead of silently running on the CPU.
//
// # Available Candidates
//
//   - "vulkan", "metal", "dx12": modern contexts via gogpu/wgpu (gpu package)
//   - "gles": legacy OpenGL ES context via gogpu/wgpu (gpu package)
//   - "software": CPU reference device (always registered, opened only by name)
package backend
