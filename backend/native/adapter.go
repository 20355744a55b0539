//go:build !nogpu

// Package native implements gpucore.Device on top of gogpu/wgpu/hal.
package native

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/sprite/gpucore"
	"github.com/gogpu/wgpu/hal"
)

// defaultFramesInFlight bounds the submissions whose command buffers are
// kept alive before the oldest is waited on and freed.
const defaultFramesInFlight = 2

// retireTimeout bounds the wait for an old submission.
const retireTimeout = 5 * time.Second

// retirePoll is the interval between completion polls while waiting.
const retirePoll = time.Millisecond

// Device implements gpucore.Device using a hal.Device and hal.Queue it
// does not own. Resources are addressed by opaque IDs that map to hal
// objects.
//
// Device is safe for concurrent use; every map access is guarded by mu.
type Device struct {
	mu     sync.RWMutex
	device hal.Device
	queue  hal.Queue

	useSPIRV       bool
	framesInFlight int

	// ID generation, starting at 1 (0 is invalid)
	nextID atomic.Uint64

	buffers    map[gpucore.BufferID]*buffer
	textures   map[gpucore.TextureID]*texture
	pipelines  map[gpucore.PipelineID]*pipeline
	bindGroups map[gpucore.BindGroupID]hal.BindGroup
	views      map[gpucore.ViewID]hal.TextureView

	sampler hal.Sampler

	inFlight []submission

	destroyed bool
}

type buffer struct {
	buf  hal.Buffer
	size uint64
}

type texture struct {
	tex           hal.Texture
	view          hal.TextureView
	width, height uint32
}

type pipeline struct {
	shader   hal.ShaderModule
	groups   []hal.BindGroupLayout
	layout   hal.PipelineLayout
	pipeline hal.RenderPipeline
}

// submission is a command buffer the queue may still be executing.
type submission struct {
	cmd   hal.CommandBuffer
	index uint64
}

// Option configures a Device.
type Option func(*Device)

// WithSPIRV makes the device compile WGSL to SPIR-V with naga before
// creating shader modules, for HAL backends without a WGSL front end.
func WithSPIRV() Option {
	return func(d *Device) { d.useSPIRV = true }
}

// WithFramesInFlight sets how many submissions may be pending before
// Submit waits for the oldest one.
func WithFramesInFlight(n int) Option {
	return func(d *Device) {
		if n > 0 {
			d.framesInFlight = n
		}
	}
}

// NewDevice wraps a HAL device and queue.
func NewDevice(device hal.Device, queue hal.Queue, opts ...Option) (*Device, error) {
	if device == nil || queue == nil {
		return nil, ErrNilDevice
	}

	d := &Device{
		device:         device,
		queue:          queue,
		framesInFlight: defaultFramesInFlight,
		buffers:        make(map[gpucore.BufferID]*buffer),
		textures:       make(map[gpucore.TextureID]*texture),
		pipelines:      make(map[gpucore.PipelineID]*pipeline),
		bindGroups:     make(map[gpucore.BindGroupID]hal.BindGroup),
		views:          make(map[gpucore.ViewID]hal.TextureView),
	}
	d.nextID.Store(1)
	for _, opt := range opts {
		opt(d)
	}

	return d, nil
}

func (d *Device) newID() uint64 {
	return d.nextID.Add(1) - 1
}

// HAL returns the wrapped device and queue.
func (d *Device) HAL() (hal.Device, hal.Queue) {
	return d.device, d.queue
}

// === Buffers ===

// CreateBuffer implements gpucore.Device.
func (d *Device) CreateBuffer(desc *gpucore.BufferDescriptor) (gpucore.BufferID, error) {
	buf, err := d.device.CreateBuffer(&hal.BufferDescriptor{
		Label: desc.Label,
		Size:  desc.Size,
		Usage: desc.Usage,
	})
	if err != nil {
		return gpucore.InvalidID, fmt.Errorf("native: create buffer %q: %w", desc.Label, err)
	}

	id := gpucore.BufferID(d.newID())
	d.mu.Lock()
	d.buffers[id] = &buffer{buf: buf, size: desc.Size}
	d.mu.Unlock()
	return id, nil
}

// WriteBuffer implements gpucore.Device.
func (d *Device) WriteBuffer(id gpucore.BufferID, offset uint64, data []byte) error {
	d.mu.RLock()
	b, ok := d.buffers[id]
	d.mu.RUnlock()

	if !ok {
		return fmt.Errorf("native: write buffer %d: %w", id, ErrUnknownBuffer)
	}
	if len(data) == 0 {
		return nil
	}
	if offset+uint64(len(data)) > b.size {
		return fmt.Errorf("native: write buffer %d: %w: offset %d len %d size %d",
			id, ErrWriteRange, offset, len(data), b.size)
	}
	if err := d.queue.WriteBuffer(b.buf, offset, data); err != nil {
		return fmt.Errorf("native: write buffer %d: %w", id, err)
	}
	return nil
}

// DestroyBuffer implements gpucore.Device.
func (d *Device) DestroyBuffer(id gpucore.BufferID) {
	d.mu.Lock()
	b, ok := d.buffers[id]
	delete(d.buffers, id)
	d.mu.Unlock()

	if ok {
		d.device.DestroyBuffer(b.buf)
	}
}

// === Textures ===

// CreateTexture implements gpucore.Device.
func (d *Device) CreateTexture(desc *gpucore.TextureDescriptor) (gpucore.TextureID, error) {
	tex, view, err := d.createTexture(desc.Label, desc.Width, desc.Height, desc.Format,
		gputypes.TextureUsageTextureBinding|gputypes.TextureUsageCopyDst)
	if err != nil {
		return gpucore.InvalidID, err
	}

	id := gpucore.TextureID(d.newID())
	d.mu.Lock()
	d.textures[id] = &texture{tex: tex, view: view, width: desc.Width, height: desc.Height}
	d.mu.Unlock()
	return id, nil
}

func (d *Device) createTexture(label string, w, h uint32, format gputypes.TextureFormat, usage gputypes.TextureUsage) (hal.Texture, hal.TextureView, error) {
	tex, err := d.device.CreateTexture(&hal.TextureDescriptor{
		Label:         label,
		Size:          hal.Extent3D{Width: w, Height: h, DepthOrArrayLayers: 1},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        format,
		Usage:         usage,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("native: create texture %q: %w", label, err)
	}

	view, err := d.device.CreateTextureView(tex, &hal.TextureViewDescriptor{
		Label:         label + "_view",
		Format:        format,
		Dimension:     gputypes.TextureViewDimension2D,
		Aspect:        gputypes.TextureAspectAll,
		MipLevelCount: 1,
	})
	if err != nil {
		d.device.DestroyTexture(tex)
		return nil, nil, fmt.Errorf("native: create texture view %q: %w", label, err)
	}
	return tex, view, nil
}

// WriteTexture implements gpucore.Device.
func (d *Device) WriteTexture(id gpucore.TextureID, region gpucore.Region, data []byte) error {
	d.mu.RLock()
	t, ok := d.textures[id]
	d.mu.RUnlock()

	if !ok {
		return fmt.Errorf("native: write texture %d: %w", id, ErrUnknownTexture)
	}
	if region.Width == 0 || region.Height == 0 {
		return nil
	}
	if region.X+region.Width > t.width || region.Y+region.Height > t.height {
		return fmt.Errorf("native: write texture %d: %w: %dx%d at (%d,%d) in %dx%d",
			id, ErrWriteRange, region.Width, region.Height, region.X, region.Y, t.width, t.height)
	}
	if uint64(len(data)) != uint64(region.Width)*uint64(region.Height)*4 {
		return fmt.Errorf("native: write texture %d: %w: %d bytes for %dx%d",
			id, ErrWriteRange, len(data), region.Width, region.Height)
	}

	err := d.queue.WriteTexture(
		&hal.ImageCopyTexture{
			Texture:  t.tex,
			MipLevel: 0,
			Origin:   hal.Origin3D{X: region.X, Y: region.Y, Z: 0},
		},
		data,
		&hal.ImageDataLayout{
			Offset:       0,
			BytesPerRow:  region.Width * 4,
			RowsPerImage: region.Height,
		},
		&hal.Extent3D{Width: region.Width, Height: region.Height, DepthOrArrayLayers: 1},
	)
	if err != nil {
		return fmt.Errorf("native: write texture %d: %w", id, err)
	}
	return nil
}

// DestroyTexture implements gpucore.Device.
func (d *Device) DestroyTexture(id gpucore.TextureID) {
	d.mu.Lock()
	t, ok := d.textures[id]
	delete(d.textures, id)
	d.mu.Unlock()

	if ok {
		d.device.DestroyTextureView(t.view)
		d.device.DestroyTexture(t.tex)
	}
}

// === Target views ===

// RegisterView makes a host-owned texture view usable as a render pass
// target. The device does not take ownership of the view.
func (d *Device) RegisterView(view hal.TextureView) gpucore.ViewID {
	id := gpucore.ViewID(d.newID())
	d.mu.Lock()
	d.views[id] = view
	d.mu.Unlock()
	return id
}

// ReleaseView forgets a view registered with RegisterView.
func (d *Device) ReleaseView(id gpucore.ViewID) {
	d.mu.Lock()
	delete(d.views, id)
	d.mu.Unlock()
}
