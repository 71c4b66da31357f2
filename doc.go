// Package chromakey removes a key color from still images on the GPU.
//
// # Overview
//
// A Keyer uploads an image as a texture, draws it over an offscreen
// surface of the same size and discards every pixel whose color lies
// inside the tolerance cube around the key color. The surface is read
// back into a new [image.NRGBA]: background pixels are transparent black,
// all other pixels are copied unchanged.
//
// # Quick Start
//
//	import (
//	    "github.com/gogpu/chromakey"
//	    _ "github.com/gogpu/chromakey/gpu" // Vulkan, Metal, DX12, GLES
//	)
//
//	k := chromakey.New(chromakey.WithColor(0, 1, 0), chromakey.WithTolerance(0.1))
//	defer k.Close()
//
//	out, err := k.Process(ctx, chromakey.DecodeAsync(f))
//	if err != nil {
//	    return err
//	}
//	err = chromakey.SavePNG("out.png", out)
//
// # Classification
//
// A channel is inside when |c - k| < tolerance; the key color itself is
// always inside, even with tolerance 0. A pixel is background when all
// three channels are inside. Alpha is ignored. [Discards] applies the
// same rule on the CPU.
//
// # Devices
//
// Candidates are tried in priority order: vulkan, metal, dx12, gles.
// They are registered by importing the gpu package. If no candidate opens,
// every call fails with [ErrNoGraphicsCapability]. The software device
// runs the same program on the CPU; it is never picked by default and is
// selected with WithBackends("software").
//
// # Loading
//
// [Source] gates a pass on image readiness. [Decoded] wraps an image in
// memory, [DecodeAsync] decodes on a goroutine and [NewPending] lets the
// host complete the source itself. [WhenReady] and [Wait] observe it.
package chromakey
