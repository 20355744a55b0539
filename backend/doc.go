// Package backend is a registry of GPU device implementations.
//
// Implementations register a Factory from an init function, so importing
// the implementation package is enough to make it available:
//
//	import _ "github.com/gogpu/sprite/backend/native"
//
// Use Open to request one by name, or OpenDefault for the first available
// in priority order:
//
//	b, err := backend.OpenDefault()
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer b.Close()
//
//	surf, err := b.NewSurface(800, 600, gputypes.TextureFormatBGRA8Unorm)
//	r, err := render.New(b.Device(), surf, packer)
//
// # Available Backends
//
//   - "noop": wgpu's no-op HAL through backend/native (headless, always
//     available unless built with the nogpu tag)
package backend
