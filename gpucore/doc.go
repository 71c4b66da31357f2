// Package gpucore holds the device-neutral pieces of the chroma-key pass:
// the pass geometry, the params uniform block layout, the resolved
// program handles and the classification rule.
//
// Every device (wgpu/hal or the CPU reference device) consumes the same
// values from this package, so a pass produces the same pixels whichever
// device runs it.
//
// # Geometry
//
// The pass draws one rectangle spanning [0,width] x [0,height] in pixel
// units, as two triangles with texture coordinates (0,0)-(1,1):
//
//	(0,0) ---- (w,0)        uv (0,0) ---- (1,0)
//	  |      /   |             |      /     |
//	  |    /     |             |    /       |
//	(0,h) ---- (w,h)        uv (0,1) ---- (1,1)
//
// [VertexStage] maps pixel positions to clip space and applies the
// vertical flip for the target's readback origin, see [FlipY].
//
// # Classification
//
// [Discards] decides whether a sampled color lies inside the axis-aligned
// tolerance cube around the key color. It is evaluated in float32, the
// same precision the fragment stage uses.
package gpucore
