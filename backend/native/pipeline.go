//go:build !nogpu

package native

import (
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/sprite"
	"github.com/gogpu/sprite/gpucore"
	"github.com/gogpu/sprite/shaders"
	"github.com/gogpu/wgpu/hal"
)

// alphaBlend is straight-alpha "over" blending: the fragment outputs
// non-premultiplied color.
var alphaBlend = gputypes.BlendState{
	Color: gputypes.BlendComponent{
		SrcFactor: gputypes.BlendFactorSrcAlpha,
		DstFactor: gputypes.BlendFactorOneMinusSrcAlpha,
		Operation: gputypes.BlendOperationAdd,
	},
	Alpha: gputypes.BlendComponent{
		SrcFactor: gputypes.BlendFactorOne,
		DstFactor: gputypes.BlendFactorOneMinusSrcAlpha,
		Operation: gputypes.BlendOperationAdd,
	},
}

func (d *Device) shaderSource(desc *gpucore.PipelineDescriptor) (hal.ShaderSource, error) {
	if !d.useSPIRV {
		return hal.ShaderSource{WGSL: desc.Shader}, nil
	}
	code, err := shaders.Compile(desc.Shader)
	if err != nil {
		return hal.ShaderSource{}, err
	}
	return hal.ShaderSource{SPIRV: code}, nil
}

// CreatePipeline implements gpucore.Device. It creates the shader module,
// the bind group layouts (uniform at group 0, texture and sampler at
// group 1 for textured pipelines), the pipeline layout and the pipeline.
func (d *Device) CreatePipeline(desc *gpucore.PipelineDescriptor) (gpucore.PipelineID, error) {
	p := &pipeline{}
	ok := false
	defer func() {
		if !ok {
			d.destroyPipeline(p)
		}
	}()

	src, err := d.shaderSource(desc)
	if err != nil {
		return gpucore.InvalidID, fmt.Errorf("native: %s shader: %w", desc.Label, err)
	}
	p.shader, err = d.device.CreateShaderModule(&hal.ShaderModuleDescriptor{
		Label:  desc.Label + "_shader",
		Source: src,
	})
	if err != nil {
		return gpucore.InvalidID, fmt.Errorf("native: create %s shader: %w", desc.Label, err)
	}

	uniformLayout, err := d.device.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
		Label: desc.Label + "_uniform_layout",
		Entries: []gputypes.BindGroupLayoutEntry{
			{
				Binding:    shaders.ViewportBinding,
				Visibility: gputypes.ShaderStageVertex,
				Buffer: &gputypes.BufferBindingLayout{
					Type: gputypes.BufferBindingTypeUniform,
				},
			},
		},
	})
	if err != nil {
		return gpucore.InvalidID, fmt.Errorf("native: create %s uniform layout: %w", desc.Label, err)
	}
	p.groups = append(p.groups, uniformLayout)

	if desc.Textured {
		textureLayout, err := d.device.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
			Label: desc.Label + "_texture_layout",
			Entries: []gputypes.BindGroupLayoutEntry{
				{
					Binding:    shaders.TextureBinding,
					Visibility: gputypes.ShaderStageFragment,
					Texture: &gputypes.TextureBindingLayout{
						SampleType:    gputypes.TextureSampleTypeFloat,
						ViewDimension: gputypes.TextureViewDimension2D,
					},
				},
				{
					Binding:    shaders.SamplerBinding,
					Visibility: gputypes.ShaderStageFragment,
					Sampler: &gputypes.SamplerBindingLayout{
						Type: gputypes.SamplerBindingTypeFiltering,
					},
				},
			},
		})
		if err != nil {
			return gpucore.InvalidID, fmt.Errorf("native: create %s texture layout: %w", desc.Label, err)
		}
		p.groups = append(p.groups, textureLayout)
	}

	p.layout, err = d.device.CreatePipelineLayout(&hal.PipelineLayoutDescriptor{
		Label:            desc.Label + "_layout",
		BindGroupLayouts: p.groups,
	})
	if err != nil {
		return gpucore.InvalidID, fmt.Errorf("native: create %s pipeline layout: %w", desc.Label, err)
	}

	blend := alphaBlend
	p.pipeline, err = d.device.CreateRenderPipeline(&hal.RenderPipelineDescriptor{
		Label:  desc.Label,
		Layout: p.layout,
		Vertex: hal.VertexState{
			Module:     p.shader,
			EntryPoint: shaders.EntryVertex,
			Buffers: []gputypes.VertexBufferLayout{
				{
					ArrayStride: desc.VertexStride,
					StepMode:    gputypes.VertexStepModeVertex,
					Attributes:  desc.Attributes,
				},
			},
		},
		Fragment: &hal.FragmentState{
			Module:     p.shader,
			EntryPoint: shaders.EntryFragment,
			Targets: []gputypes.ColorTargetState{
				{
					Format:    desc.TargetFormat,
					Blend:     &blend,
					WriteMask: gputypes.ColorWriteMaskAll,
				},
			},
		},
		Primitive: gputypes.PrimitiveState{
			Topology: gputypes.PrimitiveTopologyTriangleList,
			CullMode: gputypes.CullModeNone,
		},
		Multisample: gputypes.MultisampleState{
			Count: 1,
			Mask:  0xFFFFFFFF,
		},
	})
	if err != nil {
		return gpucore.InvalidID, fmt.Errorf("native: create %s pipeline: %w", desc.Label, err)
	}

	ok = true
	id := gpucore.PipelineID(d.newID())
	d.mu.Lock()
	d.pipelines[id] = p
	d.mu.Unlock()

	sprite.Logger().Debug("native: pipeline created", "label", desc.Label, "textured", desc.Textured)
	return id, nil
}

// DestroyPipeline implements gpucore.Device.
func (d *Device) DestroyPipeline(id gpucore.PipelineID) {
	d.mu.Lock()
	p, ok := d.pipelines[id]
	delete(d.pipelines, id)
	d.mu.Unlock()

	if ok {
		d.destroyPipeline(p)
	}
}

// destroyPipeline releases whatever part of p was created, in reverse
// creation order.
func (d *Device) destroyPipeline(p *pipeline) {
	if p.pipeline != nil {
		d.device.DestroyRenderPipeline(p.pipeline)
	}
	if p.layout != nil {
		d.device.DestroyPipelineLayout(p.layout)
	}
	for i := len(p.groups) - 1; i >= 0; i-- {
		d.device.DestroyBindGroupLayout(p.groups[i])
	}
	if p.shader != nil {
		d.device.DestroyShaderModule(p.shader)
	}
}

// === Bind groups ===

// CreateBindGroup implements gpucore.Device.
func (d *Device) CreateBindGroup(desc *gpucore.BindGroupDescriptor) (gpucore.BindGroupID, error) {
	d.mu.RLock()
	p, ok := d.pipelines[desc.Pipeline]
	d.mu.RUnlock()
	if !ok {
		return gpucore.InvalidID, fmt.Errorf("native: bind group %q: %w", desc.Label, ErrUnknownPipeline)
	}
	if int(desc.Group) >= len(p.groups) {
		return gpucore.InvalidID, fmt.Errorf("native: bind group %q: group %d: %w", desc.Label, desc.Group, ErrBindGroupIndex)
	}

	var entries []gputypes.BindGroupEntry
	switch desc.Group {
	case shaders.ViewportGroup:
		d.mu.RLock()
		b, ok := d.buffers[desc.Buffer]
		d.mu.RUnlock()
		if !ok {
			return gpucore.InvalidID, fmt.Errorf("native: bind group %q: %w", desc.Label, ErrUnknownBuffer)
		}
		size := desc.BufferSize
		if size == 0 {
			size = b.size
		}
		entries = []gputypes.BindGroupEntry{
			{Binding: shaders.ViewportBinding, Resource: gputypes.BufferBinding{Buffer: b.buf.NativeHandle(), Offset: 0, Size: size}},
		}
	case shaders.TextureGroup:
		d.mu.RLock()
		t, ok := d.textures[desc.Texture]
		d.mu.RUnlock()
		if !ok {
			return gpucore.InvalidID, fmt.Errorf("native: bind group %q: %w", desc.Label, ErrUnknownTexture)
		}
		sampler, err := d.sharedSampler()
		if err != nil {
			return gpucore.InvalidID, err
		}
		entries = []gputypes.BindGroupEntry{
			{Binding: shaders.TextureBinding, Resource: gputypes.TextureViewBinding{TextureView: t.view.NativeHandle()}},
			{Binding: shaders.SamplerBinding, Resource: gputypes.SamplerBinding{Sampler: sampler.NativeHandle()}},
		}
	}

	bg, err := d.device.CreateBindGroup(&hal.BindGroupDescriptor{
		Label:   desc.Label,
		Layout:  p.groups[desc.Group],
		Entries: entries,
	})
	if err != nil {
		return gpucore.InvalidID, fmt.Errorf("native: create bind group %q: %w", desc.Label, err)
	}

	id := gpucore.BindGroupID(d.newID())
	d.mu.Lock()
	d.bindGroups[id] = bg
	d.mu.Unlock()
	return id, nil
}

// DestroyBindGroup implements gpucore.Device.
func (d *Device) DestroyBindGroup(id gpucore.BindGroupID) {
	d.mu.Lock()
	bg, ok := d.bindGroups[id]
	delete(d.bindGroups, id)
	d.mu.Unlock()

	if ok {
		d.device.DestroyBindGroup(bg)
	}
}

// sharedSampler returns the clamp-to-edge linear sampler used by every
// texture bind group, creating it on first use.
func (d *Device) sharedSampler() (hal.Sampler, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.sampler != nil {
		return d.sampler, nil
	}
	s, err := d.device.CreateSampler(&hal.SamplerDescriptor{
		Label:        "sprite_atlas_sampler",
		AddressModeU: gputypes.AddressModeClampToEdge,
		AddressModeV: gputypes.AddressModeClampToEdge,
		AddressModeW: gputypes.AddressModeClampToEdge,
		MagFilter:    gputypes.FilterModeLinear,
		MinFilter:    gputypes.FilterModeLinear,
		MipmapFilter: gputypes.FilterModeLinear,
	})
	if err != nil {
		return nil, fmt.Errorf("native: create sampler: %w", err)
	}
	d.sampler = s
	return s, nil
}
