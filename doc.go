// Package sprite is a batched 2D renderer for filled rectangles and
// textured sprites on top of the gogpu WebGPU stack.
//
// # Overview
//
// Applications describe each frame as an ordered list of draw commands.
// The batch package groups consecutive commands that share GPU state, the
// atlas package packs sprite images into shared square textures, and the
// render package uploads the results and issues one draw call per batch.
//
// # Quick Start
//
//	packer, _ := atlas.New(atlas.DefaultConfig())
//	r, _ := render.New(device, surface, packer)
//	r.Resize(800, 600)
//
//	slot, _ := packer.Insert(img)
//	err := r.RenderFrame(func(f *render.Frame) error {
//	    return f.Draw([]batch.Command{
//	        batch.Rectangle{Rect: sprite.R(10, 10, 100, 50), Color: sprite.Red},
//	        batch.Sprite{Slot: slot, Dest: sprite.R(200, 200, 64, 64)},
//	    })
//	})
//
// # Coordinate System
//
// Draw commands are given in pixel space:
//   - Origin (0,0) at top-left
//   - X increases right
//   - Y increases down
//
// The vertex shaders map pixel space to normalized device coordinates
// using the viewport size held in a uniform buffer (see [Viewport.ToNDC]).
//
// # Packages
//
//   - sprite: base types (Viewport, Color, Rect, Transform, Image), errors, logging
//   - atlas: shelf packing of images into atlas pages with dirty tracking
//   - batch: draw commands, linear batching, vertex layouts
//   - render: frame lifecycle and GPU resource ownership
//   - canvas: immediate-mode draw state producing commands
//   - input: per-frame input snapshots
//   - gpucore, backend/native, shaders: the device boundary
package sprite

// Version information
const (
	// Version is the current version of the library
	Version = "0.1.0"
)
