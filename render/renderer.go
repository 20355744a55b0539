// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"errors"
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/sprite"
	"github.com/gogpu/sprite/atlas"
	"github.com/gogpu/sprite/batch"
	"github.com/gogpu/sprite/gpucore"
	"github.com/gogpu/sprite/shaders"
)

// Renderer owns the pipelines and per-renderer GPU buffers and produces
// frames on a surface.
type Renderer struct {
	device  gpucore.Device
	surface gpucore.Surface
	packer  *atlas.Packer

	clear    sprite.Color
	viewport sprite.Viewport

	builder batch.Builder

	rectPipeline   gpucore.PipelineID
	spritePipeline gpucore.PipelineID

	uniform       gpucore.BufferID
	rectUniform   gpucore.BindGroupID
	spriteUniform gpucore.BindGroupID

	vertices stream
	indices  stream
	retired  []retiredBuffer

	pages map[int]*pageTexture

	// scratch serialization buffers, reused across draws
	vertexData []byte
	indexData  []byte
	draws      []gpucore.DrawCall

	frameNo uint64
	frame   *Frame
	stats   Stats
	closed  bool
}

// Stats describes the last completed or current frame.
type Stats struct {
	Frame        uint64
	Passes       int
	Batches      int
	DrawCalls    int
	Vertices     int
	UploadBytes  int
	BufferGrowth int
	Dropped      uint64
}

// sizer is implemented by surfaces that know their drawable size.
type sizer interface {
	Size() (width, height uint32)
}

// New creates a renderer drawing to surface. packer may be nil when only
// rectangles are drawn.
func New(device gpucore.Device, surface gpucore.Surface, packer *atlas.Packer, opts ...Option) (*Renderer, error) {
	if device == nil || surface == nil {
		return nil, errors.New("render: nil device or surface")
	}
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	r := &Renderer{
		device:  device,
		surface: surface,
		packer:  packer,
		clear:   o.clear,
		pages:   make(map[int]*pageTexture),
		vertices: stream{
			label: "sprite_vertices",
			usage: gputypes.BufferUsageVertex | gputypes.BufferUsageCopyDst,
			size:  uint64(o.quadCapacity) * 4 * batch.RectVertexStride, //nolint:gosec // G115: positive option
		},
		indices: stream{
			label: "sprite_indices",
			usage: gputypes.BufferUsageIndex | gputypes.BufferUsageCopyDst,
			size:  uint64(o.quadCapacity) * 6 * batch.IndexSize, //nolint:gosec // G115: positive option
		},
	}
	switch {
	case o.hasViewport:
		r.viewport = o.viewport
	default:
		r.viewport = sprite.NewViewport(1, 1)
		if s, ok := surface.(sizer); ok {
			w, h := s.Size()
			r.viewport = sprite.NewViewport(int(w), int(h))
		}
	}

	if err := r.init(); err != nil {
		r.Close()
		return nil, err
	}
	sprite.Logger().Info("render: renderer created",
		"format", surface.Format(),
		"viewport", fmt.Sprintf("%gx%g", r.viewport.Width, r.viewport.Height))
	return r, nil
}

func (r *Renderer) init() error {
	format := r.surface.Format()

	var err error
	r.rectPipeline, err = r.device.CreatePipeline(&gpucore.PipelineDescriptor{
		Label:        "rect_pipeline",
		Shader:       shaders.Rect,
		VertexStride: batch.RectVertexStride,
		Attributes: []gputypes.VertexAttribute{
			{Format: gputypes.VertexFormatFloat32x2, Offset: 0, ShaderLocation: 0},
			{Format: gputypes.VertexFormatFloat32x4, Offset: 8, ShaderLocation: 1},
		},
		TargetFormat: format,
	})
	if err != nil {
		return fmt.Errorf("render: rect pipeline: %w", err)
	}

	r.spritePipeline, err = r.device.CreatePipeline(&gpucore.PipelineDescriptor{
		Label:        "sprite_pipeline",
		Shader:       shaders.Sprite,
		VertexStride: batch.SpriteVertexStride,
		Attributes: []gputypes.VertexAttribute{
			{Format: gputypes.VertexFormatFloat32x2, Offset: 0, ShaderLocation: 0},
			{Format: gputypes.VertexFormatFloat32x2, Offset: 8, ShaderLocation: 1},
		},
		Textured:     true,
		TargetFormat: format,
	})
	if err != nil {
		return fmt.Errorf("render: sprite pipeline: %w", err)
	}

	// Uniform buffers are padded to 16 bytes.
	r.uniform, err = r.device.CreateBuffer(&gpucore.BufferDescriptor{
		Label: "viewport_uniform",
		Size:  16,
		Usage: gputypes.BufferUsageUniform | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return fmt.Errorf("render: viewport uniform: %w", err)
	}

	r.rectUniform, err = r.device.CreateBindGroup(&gpucore.BindGroupDescriptor{
		Label:      "rect_viewport",
		Pipeline:   r.rectPipeline,
		Group:      shaders.ViewportGroup,
		Buffer:     r.uniform,
		BufferSize: shaders.ViewportUniformSize,
	})
	if err != nil {
		return fmt.Errorf("render: rect viewport group: %w", err)
	}
	r.spriteUniform, err = r.device.CreateBindGroup(&gpucore.BindGroupDescriptor{
		Label:      "sprite_viewport",
		Pipeline:   r.spritePipeline,
		Group:      shaders.ViewportGroup,
		Buffer:     r.uniform,
		BufferSize: shaders.ViewportUniformSize,
	})
	if err != nil {
		return fmt.Errorf("render: sprite viewport group: %w", err)
	}

	if err := r.vertices.allocate(r.device); err != nil {
		return err
	}
	return r.indices.allocate(r.device)
}

// Viewport returns the current viewport.
func (r *Renderer) Viewport() sprite.Viewport { return r.viewport }

// Resize updates the viewport to width x height (each clamped to at least
// 1) and reconfigures the surface when it implements gpucore.Resizer.
// Resizing to the current size does nothing. Passes already submitted keep
// the viewport they were recorded with.
func (r *Renderer) Resize(width, height int) error {
	if r.closed {
		return ErrClosed
	}
	v := sprite.NewViewport(width, height)
	if v == r.viewport {
		return nil
	}
	if rs, ok := r.surface.(gpucore.Resizer); ok {
		if err := rs.Resize(uint32(v.Width), uint32(v.Height)); err != nil {
			return fmt.Errorf("render: resize surface: %w", err)
		}
	}
	r.viewport = v
	sprite.Logger().Debug("render: resized", "width", v.Width, "height", v.Height)
	return nil
}

// SetClearColor sets the clear color used by later frames.
func (r *Renderer) SetClearColor(c sprite.Color) { r.clear = c }

// ClearColor returns the clear color.
func (r *Renderer) ClearColor() sprite.Color { return r.clear }

// Packer returns the atlas packer sprites are resolved against.
func (r *Renderer) Packer() *atlas.Packer { return r.packer }

// Stats returns counters of the most recent frame.
func (r *Renderer) Stats() Stats { return r.stats }

// BeginFrame acquires the next surface texture. Only one frame may be
// open at a time.
func (r *Renderer) BeginFrame() (*Frame, error) {
	if r.closed {
		return nil, ErrClosed
	}
	if r.frame != nil {
		return nil, ErrFrameActive
	}

	target, err := r.surface.Acquire()
	if err != nil {
		var lost *sprite.SurfaceLostError
		if errors.As(err, &lost) {
			return nil, err
		}
		return nil, fmt.Errorf("render: acquire: %w", err)
	}

	r.frameNo++
	r.releaseRetired()
	r.vertices.offset = 0
	r.indices.offset = 0
	r.stats = Stats{Frame: r.frameNo, Dropped: r.stats.Dropped}

	r.frame = &Frame{r: r, target: target, clear: r.clear}
	return r.frame, nil
}

// RenderFrame runs fn inside a frame and presents it. The frame is
// discarded if fn fails.
func (r *Renderer) RenderFrame(fn func(*Frame) error) error {
	f, err := r.BeginFrame()
	if err != nil {
		return err
	}
	defer f.Discard()

	if err := fn(f); err != nil {
		return err
	}
	return f.End()
}

// Close discards an open frame and releases every GPU resource the
// renderer created, in reverse creation order. Close is idempotent.
func (r *Renderer) Close() {
	if r.closed {
		return
	}
	if r.frame != nil {
		r.frame.Discard()
	}
	r.closed = true

	for id, pt := range r.pages {
		pt.destroy(r.device)
		delete(r.pages, id)
	}
	for _, rb := range r.retired {
		r.device.DestroyBuffer(rb.id)
	}
	r.retired = nil
	r.indices.destroy(r.device)
	r.vertices.destroy(r.device)

	r.device.DestroyBindGroup(r.spriteUniform)
	r.device.DestroyBindGroup(r.rectUniform)
	r.device.DestroyBuffer(r.uniform)
	r.device.DestroyPipeline(r.spritePipeline)
	r.device.DestroyPipeline(r.rectPipeline)
}
