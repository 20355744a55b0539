package gpucore

import "github.com/gogpu/gputypes"

// Device creates GPU resources and submits render passes.
//
// Resource lifecycle:
//   - Resources are created via Create* methods
//   - Resources must be explicitly destroyed via Destroy* methods
//   - Destroying an unknown or already destroyed ID is a no-op
type Device interface {
	// CreateBuffer allocates a buffer.
	CreateBuffer(desc *BufferDescriptor) (BufferID, error)

	// WriteBuffer queues a write of data at offset. The write is ordered
	// before any later Submit.
	WriteBuffer(id BufferID, offset uint64, data []byte) error

	// DestroyBuffer releases a buffer.
	DestroyBuffer(id BufferID)

	// CreateTexture allocates a sampled 2D texture.
	CreateTexture(desc *TextureDescriptor) (TextureID, error)

	// WriteTexture queues an upload of tightly packed texels into region.
	// len(data) must be region.Width*region.Height*4.
	WriteTexture(id TextureID, region Region, data []byte) error

	// DestroyTexture releases a texture.
	DestroyTexture(id TextureID)

	// CreatePipeline builds a render pipeline and its bind group layouts.
	CreatePipeline(desc *PipelineDescriptor) (PipelineID, error)

	// DestroyPipeline releases a pipeline and its layouts.
	DestroyPipeline(id PipelineID)

	// CreateBindGroup creates a bind group against one of a pipeline's
	// layouts.
	CreateBindGroup(desc *BindGroupDescriptor) (BindGroupID, error)

	// DestroyBindGroup releases a bind group.
	DestroyBindGroup(id BindGroupID)

	// Submit records pass into a command buffer and submits it. Submit does
	// not wait for the GPU to finish.
	Submit(pass *RenderPass) error
}

// Surface provides the frame target.
type Surface interface {
	// Acquire returns the next target. A lost surface is reported as
	// *sprite.SurfaceLostError.
	Acquire() (SurfaceTexture, error)

	// Format returns the target's texture format.
	Format() gputypes.TextureFormat
}

// SurfaceTexture is an acquired target. Exactly one of Present or
// Discard must be called.
type SurfaceTexture interface {
	View() ViewID

	// Present shows the target. A lost surface is reported as
	// *sprite.SurfaceLostError.
	Present() error

	// Discard releases the target without showing it.
	Discard()
}

// Resizer is implemented by surfaces that must be reconfigured when the
// drawable size changes.
type Resizer interface {
	Resize(width, height uint32) error
}
