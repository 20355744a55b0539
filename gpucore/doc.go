// Package gpucore defines the device boundary of the sprite renderer.
//
// The renderer never talks to a GPU API directly. It creates buffers,
// textures, pipelines and bind groups through the [Device] interface,
// which hands back opaque IDs, and describes each frame's work as a
// [RenderPass]. A backend (see backend/native for gogpu/wgpu HAL)
// translates both into real API calls.
//
//	+-----------+      +----------------+      +----------------+
//	|  render   | ---> | gpucore.Device | ---> | backend/native |
//	| (batches) |      |  (opaque IDs)  |      |   (hal.Device) |
//	+-----------+      +----------------+      +----------------+
//
// The frame target comes from a [Surface]. Acquire returns a
// [SurfaceTexture] that must be either presented or discarded.
//
// # Ordering
//
// WriteBuffer and WriteTexture are queue writes: they take effect before
// any later Submit. The renderer relies on this to upload the viewport
// uniform, dirty atlas regions and vertex data ahead of the draws that
// read them without waiting on the GPU.
package gpucore
