package gpucore

import "github.com/gogpu/gputypes"

// Resource IDs
//
// These opaque IDs represent GPU resources. Each backend maintains a
// mapping between IDs and real resources.

// BufferID is an opaque handle to a GPU buffer.
type BufferID uint64

// TextureID is an opaque handle to a sampled 2D texture.
type TextureID uint64

// PipelineID is an opaque handle to a render pipeline.
type PipelineID uint64

// BindGroupID is an opaque handle to a bind group.
type BindGroupID uint64

// ViewID is an opaque handle to a render target view.
type ViewID uint64

// InvalidID is the zero value, representing an invalid/null resource.
const InvalidID = 0

// BufferDescriptor describes a buffer to create.
type BufferDescriptor struct {
	Label string
	Size  uint64
	Usage gputypes.BufferUsage
}

// TextureDescriptor describes a sampled texture to create. Textures are
// created with TextureBinding and CopyDst usage.
type TextureDescriptor struct {
	Label  string
	Width  uint32
	Height uint32
	Format gputypes.TextureFormat
}

// Region is a texel rectangle of a texture.
type Region struct {
	X, Y          uint32
	Width, Height uint32
}

// PipelineDescriptor describes a render pipeline.
//
// Every pipeline binds a uniform buffer at group 0, binding 0, visible to
// the vertex stage. Textured pipelines add group 1 with a 2D texture at
// binding 0 and a filtering sampler at binding 1, visible to the fragment
// stage.
type PipelineDescriptor struct {
	Label string

	// Shader is WGSL source with vs_main and fs_main entry points.
	Shader string

	VertexStride uint64
	Attributes   []gputypes.VertexAttribute

	Textured     bool
	TargetFormat gputypes.TextureFormat
}

// BindGroupDescriptor describes a bind group for one group index of a
// pipeline. Group 0 binds Buffer; group 1 binds Texture and the backend's
// shared sampler.
type BindGroupDescriptor struct {
	Label    string
	Pipeline PipelineID
	Group    uint32

	Buffer     BufferID
	BufferSize uint64

	Texture TextureID
}

// DrawCall is one indexed draw. BindGroups[i] is bound at group i.
// Indices are relative to VertexOffset.
type DrawCall struct {
	Pipeline   PipelineID
	BindGroups []BindGroupID

	VertexBuffer BufferID
	VertexOffset uint64
	VertexSize   uint64

	IndexBuffer BufferID
	IndexOffset uint64
	IndexCount  uint32
}

// RenderPass is the recorded work of one submission: a single color
// attachment and an ordered list of draws.
type RenderPass struct {
	Label      string
	Target     ViewID
	LoadOp     gputypes.LoadOp
	ClearColor gputypes.Color
	Draws      []DrawCall
}
