//go:build !nogpu

// Package gpu runs chroma-key passes on hardware through gogpu/wgpu's HAL.
//
// A Device wraps one hal.Device/hal.Queue pair, opened from a hal backend
// variant (Vulkan, Metal, DX12 or GLES) or borrowed from a host through
// NewSharedDevice. Every pass is issued synchronously:
//
//	Upload:  WriteTexture -> RGBA8 texture (nearest, clamp-to-edge sampler)
//	Draw:    clear target -> draw 6 vertices -> submit -> WaitIdle
//	Read:    CopyTextureToBuffer (256-byte rows) -> MapBuffer -> strip padding
//
// Render targets are wgpu textures, so row 0 is the top row and the
// vertex stage runs with flip_y = -1.
package gpu
