//go:build !nogpu

package native

import (
	"errors"
	"testing"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/sprite"
	"github.com/gogpu/sprite/backend"
	"github.com/gogpu/sprite/gpucore"
	"github.com/gogpu/sprite/shaders"
	"github.com/gogpu/wgpu/hal"
)

func newTestDevice(t *testing.T) *Device {
	t.Helper()
	d, cleanup, err := NewNoopDevice()
	if err != nil {
		t.Fatalf("NewNoopDevice: %v", err)
	}
	t.Cleanup(cleanup)
	return d
}

func rectPipelineDesc() *gpucore.PipelineDescriptor {
	return &gpucore.PipelineDescriptor{
		Label:        "rect_pipeline",
		Shader:       shaders.Rect,
		VertexStride: 24,
		Attributes: []gputypes.VertexAttribute{
			{Format: gputypes.VertexFormatFloat32x2, Offset: 0, ShaderLocation: 0},
			{Format: gputypes.VertexFormatFloat32x4, Offset: 8, ShaderLocation: 1},
		},
		TargetFormat: gputypes.TextureFormatBGRA8Unorm,
	}
}

func spritePipelineDesc() *gpucore.PipelineDescriptor {
	return &gpucore.PipelineDescriptor{
		Label:        "sprite_pipeline",
		Shader:       shaders.Sprite,
		VertexStride: 16,
		Attributes: []gputypes.VertexAttribute{
			{Format: gputypes.VertexFormatFloat32x2, Offset: 0, ShaderLocation: 0},
			{Format: gputypes.VertexFormatFloat32x2, Offset: 8, ShaderLocation: 1},
		},
		Textured:     true,
		TargetFormat: gputypes.TextureFormatBGRA8Unorm,
	}
}

func TestNewDevice_Nil(t *testing.T) {
	if _, err := NewDevice(nil, nil); !errors.Is(err, ErrNilDevice) {
		t.Errorf("expected ErrNilDevice, got %v", err)
	}
}

func TestDevice_FullPass(t *testing.T) {
	d := newTestDevice(t)

	rect, err := d.CreatePipeline(rectPipelineDesc())
	if err != nil {
		t.Fatalf("rect pipeline: %v", err)
	}
	spr, err := d.CreatePipeline(spritePipelineDesc())
	if err != nil {
		t.Fatalf("sprite pipeline: %v", err)
	}

	uniform, err := d.CreateBuffer(&gpucore.BufferDescriptor{
		Label: "viewport", Size: 16,
		Usage: gputypes.BufferUsageUniform | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		t.Fatal(err)
	}
	if err := d.WriteBuffer(uniform, 0, make([]byte, 8)); err != nil {
		t.Fatalf("WriteBuffer: %v", err)
	}

	vb, _ := d.CreateBuffer(&gpucore.BufferDescriptor{Label: "vb", Size: 1024, Usage: gputypes.BufferUsageVertex | gputypes.BufferUsageCopyDst})
	ib, _ := d.CreateBuffer(&gpucore.BufferDescriptor{Label: "ib", Size: 1024, Usage: gputypes.BufferUsageIndex | gputypes.BufferUsageCopyDst})

	tex, err := d.CreateTexture(&gpucore.TextureDescriptor{Label: "atlas", Width: 64, Height: 64, Format: gputypes.TextureFormatRGBA8Unorm})
	if err != nil {
		t.Fatal(err)
	}
	if err := d.WriteTexture(tex, gpucore.Region{X: 8, Y: 8, Width: 2, Height: 2}, make([]byte, 16)); err != nil {
		t.Fatalf("WriteTexture: %v", err)
	}

	rectGroup, err := d.CreateBindGroup(&gpucore.BindGroupDescriptor{Label: "rect_uniform", Pipeline: rect, Group: 0, Buffer: uniform, BufferSize: 8})
	if err != nil {
		t.Fatalf("rect bind group: %v", err)
	}
	sprGroup, err := d.CreateBindGroup(&gpucore.BindGroupDescriptor{Label: "sprite_uniform", Pipeline: spr, Group: 0, Buffer: uniform, BufferSize: 8})
	if err != nil {
		t.Fatal(err)
	}
	texGroup, err := d.CreateBindGroup(&gpucore.BindGroupDescriptor{Label: "atlas_group", Pipeline: spr, Group: 1, Texture: tex})
	if err != nil {
		t.Fatalf("texture bind group: %v", err)
	}

	surf, err := NewOffscreenSurface(d, 100, 100, gputypes.TextureFormatBGRA8Unorm)
	if err != nil {
		t.Fatal(err)
	}
	defer surf.Destroy()

	st, err := surf.Acquire()
	if err != nil {
		t.Fatal(err)
	}

	pass := &gpucore.RenderPass{
		Label:  "frame",
		Target: st.View(),
		LoadOp: gputypes.LoadOpClear,
		Draws: []gpucore.DrawCall{
			{Pipeline: rect, BindGroups: []gpucore.BindGroupID{rectGroup}, VertexBuffer: vb, IndexBuffer: ib, IndexCount: 6},
			{Pipeline: spr, BindGroups: []gpucore.BindGroupID{sprGroup, texGroup}, VertexBuffer: vb, VertexOffset: 96, IndexBuffer: ib, IndexOffset: 24, IndexCount: 6},
		},
	}
	if err := d.Submit(pass); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if err := st.Present(); err != nil {
		t.Fatal(err)
	}
	if surf.Presented() != 1 {
		t.Errorf("expected 1 presented frame, got %d", surf.Presented())
	}

	if err := d.WaitIdle(); err != nil {
		t.Fatalf("WaitIdle: %v", err)
	}
	stats := d.Stats()
	if stats.Pipelines != 2 || stats.BindGroups != 3 || stats.Textures != 1 || stats.Buffers != 3 || stats.InFlight != 0 {
		t.Errorf("unexpected stats %+v", stats)
	}

	d.DestroyBindGroup(texGroup)
	d.DestroyTexture(tex)
	d.DestroyPipeline(spr)
	d.DestroyPipeline(spr) // unknown IDs are ignored
	if s := d.Stats(); s.Pipelines != 1 || s.Textures != 0 || s.BindGroups != 2 {
		t.Errorf("unexpected stats after destroy %+v", s)
	}
}

func TestDevice_FramesInFlight(t *testing.T) {
	d, cleanup, err := NewNoopDevice(WithFramesInFlight(1))
	if err != nil {
		t.Fatal(err)
	}
	defer cleanup()

	surf, err := NewOffscreenSurface(d, 16, 16, gputypes.TextureFormatBGRA8Unorm)
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 3; i++ {
		st, _ := surf.Acquire()
		if err := d.Submit(&gpucore.RenderPass{Label: "clear", Target: st.View(), LoadOp: gputypes.LoadOpClear}); err != nil {
			t.Fatalf("frame %d: %v", i, err)
		}
		st.Present()
		if n := d.Stats().InFlight; n > 1 {
			t.Fatalf("frame %d: %d submissions in flight, want at most 1", i, n)
		}
	}
}

// controlQueue wraps a HAL queue so tests can fail writes and hold
// submissions incomplete.
type controlQueue struct {
	hal.Queue
	writeErr  error
	hold      bool
	submitted uint64
}

func (q *controlQueue) Submit(cmds []hal.CommandBuffer) (uint64, error) {
	if _, err := q.Queue.Submit(cmds); err != nil {
		return 0, err
	}
	q.submitted++
	return q.submitted, nil
}

func (q *controlQueue) PollCompleted() uint64 {
	if q.hold {
		return 0
	}
	return q.submitted
}

func (q *controlQueue) WriteBuffer(buf hal.Buffer, offset uint64, data []byte) error {
	if q.writeErr != nil {
		return q.writeErr
	}
	return q.Queue.WriteBuffer(buf, offset, data)
}

func (q *controlQueue) WriteTexture(dst *hal.ImageCopyTexture, data []byte, layout *hal.ImageDataLayout, size *hal.Extent3D) error {
	if q.writeErr != nil {
		return q.writeErr
	}
	return q.Queue.WriteTexture(dst, data, layout, size)
}

func newControlDevice(t *testing.T, opts ...Option) (*Device, *controlQueue) {
	t.Helper()
	hd, hq := newTestDevice(t).HAL()
	q := &controlQueue{Queue: hq}
	d, err := NewDevice(hd, q, opts...)
	if err != nil {
		t.Fatalf("NewDevice: %v", err)
	}
	t.Cleanup(func() {
		q.hold = false
		d.Destroy()
	})
	return d, q
}

func TestDevice_RetireBySubmissionIndex(t *testing.T) {
	d, q := newControlDevice(t, WithFramesInFlight(3))
	surf, err := NewOffscreenSurface(d, 16, 16, gputypes.TextureFormatBGRA8Unorm)
	if err != nil {
		t.Fatal(err)
	}
	defer surf.Destroy()

	submit := func() {
		t.Helper()
		st, err := surf.Acquire()
		if err != nil {
			t.Fatal(err)
		}
		if err := d.Submit(&gpucore.RenderPass{Label: "clear", Target: st.View(), LoadOp: gputypes.LoadOpClear}); err != nil {
			t.Fatalf("Submit: %v", err)
		}
		st.Present()
	}

	q.hold = true
	submit()
	submit()
	if n := d.Stats().InFlight; n != 2 {
		t.Fatalf("expected 2 incomplete submissions in flight, got %d", n)
	}

	q.hold = false
	submit()
	if n := d.Stats().InFlight; n != 0 {
		t.Errorf("expected completed submissions to be freed, got %d in flight", n)
	}
}

func TestDevice_WriteErrors(t *testing.T) {
	d, q := newControlDevice(t)

	buf, err := d.CreateBuffer(&gpucore.BufferDescriptor{Label: "vb", Size: 64, Usage: gputypes.BufferUsageVertex | gputypes.BufferUsageCopyDst})
	if err != nil {
		t.Fatal(err)
	}
	tex, err := d.CreateTexture(&gpucore.TextureDescriptor{Label: "atlas", Width: 8, Height: 8, Format: gputypes.TextureFormatRGBA8Unorm})
	if err != nil {
		t.Fatal(err)
	}
	halErr := errors.New("staging buffer exhausted")

	tests := []struct {
		name  string
		fail  error
		write func() error
		want  error
	}{
		{"unknown buffer", nil, func() error { return d.WriteBuffer(999, 0, []byte{1}) }, ErrUnknownBuffer},
		{"buffer out of range", nil, func() error { return d.WriteBuffer(buf, 60, make([]byte, 8)) }, ErrWriteRange},
		{"buffer hal failure", halErr, func() error { return d.WriteBuffer(buf, 0, make([]byte, 8)) }, halErr},
		{"unknown texture", nil, func() error {
			return d.WriteTexture(999, gpucore.Region{Width: 1, Height: 1}, make([]byte, 4))
		}, ErrUnknownTexture},
		{"texture out of range", nil, func() error {
			return d.WriteTexture(tex, gpucore.Region{X: 6, Width: 4, Height: 1}, make([]byte, 16))
		}, ErrWriteRange},
		{"texture size mismatch", nil, func() error {
			return d.WriteTexture(tex, gpucore.Region{Width: 2, Height: 2}, make([]byte, 4))
		}, ErrWriteRange},
		{"texture hal failure", halErr, func() error {
			return d.WriteTexture(tex, gpucore.Region{Width: 2, Height: 2}, make([]byte, 16))
		}, halErr},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q.writeErr = tt.fail
			defer func() { q.writeErr = nil }()
			if err := tt.write(); !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}

	if err := d.WriteBuffer(buf, 0, make([]byte, 64)); err != nil {
		t.Errorf("expected in-range write to succeed, got %v", err)
	}
}

func TestDevice_SubmitErrors(t *testing.T) {
	d := newTestDevice(t)

	err := d.Submit(&gpucore.RenderPass{Label: "bad", Target: 9999})
	if !errors.Is(err, ErrUnknownView) {
		t.Errorf("expected ErrUnknownView, got %v", err)
	}

	surf, _ := NewOffscreenSurface(d, 8, 8, gputypes.TextureFormatBGRA8Unorm)
	st, _ := surf.Acquire()
	defer st.Discard()

	err = d.Submit(&gpucore.RenderPass{
		Label:  "bad_draw",
		Target: st.View(),
		Draws:  []gpucore.DrawCall{{Pipeline: 12345}},
	})
	if !errors.Is(err, ErrUnknownPipeline) {
		t.Errorf("expected ErrUnknownPipeline, got %v", err)
	}

	rect, err := d.CreatePipeline(rectPipelineDesc())
	if err != nil {
		t.Fatal(err)
	}
	if _, err := d.CreateBindGroup(&gpucore.BindGroupDescriptor{Pipeline: rect, Group: 1}); !errors.Is(err, ErrBindGroupIndex) {
		t.Errorf("expected ErrBindGroupIndex, got %v", err)
	}
	if _, err := d.CreateBindGroup(&gpucore.BindGroupDescriptor{Pipeline: rect, Group: 0, Buffer: 777}); !errors.Is(err, ErrUnknownBuffer) {
		t.Errorf("expected ErrUnknownBuffer, got %v", err)
	}

	d.Destroy()
	d.Destroy()
	if err := d.Submit(&gpucore.RenderPass{Target: st.View()}); !errors.Is(err, ErrDestroyed) {
		t.Errorf("expected ErrDestroyed, got %v", err)
	}
}

func TestOffscreenSurface(t *testing.T) {
	d := newTestDevice(t)
	surf, err := NewOffscreenSurface(d, 0, 0, gputypes.TextureFormatRGBA8Unorm)
	if err != nil {
		t.Fatal(err)
	}
	if w, h := surf.Size(); w != 1 || h != 1 {
		t.Errorf("expected 1x1, got %dx%d", w, h)
	}

	st, _ := surf.Acquire()
	if _, err := surf.Acquire(); !errors.Is(err, ErrAlreadyAcquired) {
		t.Errorf("expected ErrAlreadyAcquired, got %v", err)
	}
	st.Discard()
	st.Discard()
	if surf.Discarded() != 1 {
		t.Errorf("expected 1 discarded frame, got %d", surf.Discarded())
	}

	if err := surf.Resize(32, 16); err != nil {
		t.Fatal(err)
	}
	if w, h := surf.Size(); w != 32 || h != 16 {
		t.Errorf("expected 32x16, got %dx%d", w, h)
	}
	if surf.Format() != gputypes.TextureFormatRGBA8Unorm {
		t.Errorf("unexpected format %v", surf.Format())
	}

	surf.Destroy()
	if _, err := surf.Acquire(); !errors.Is(err, sprite.ErrSurfaceLost) {
		t.Errorf("expected ErrSurfaceLost after Destroy, got %v", err)
	}
}

func TestOffscreenSurface_ResizeWhileAcquired(t *testing.T) {
	d := newTestDevice(t)
	surf, err := NewOffscreenSurface(d, 16, 16, gputypes.TextureFormatBGRA8Unorm)
	if err != nil {
		t.Fatal(err)
	}
	defer surf.Destroy()

	st, err := surf.Acquire()
	if err != nil {
		t.Fatal(err)
	}
	view := st.View()
	if err := surf.Resize(64, 32); err != nil {
		t.Fatalf("Resize: %v", err)
	}
	if w, h := surf.Size(); w != 64 || h != 32 {
		t.Errorf("expected pending size 64x32, got %dx%d", w, h)
	}
	if w, h := surf.TargetSize(); w != 16 || h != 16 {
		t.Errorf("acquired target should keep 16x16, got %dx%d", w, h)
	}
	if err := d.Submit(&gpucore.RenderPass{Label: "after_resize", Target: view, LoadOp: gputypes.LoadOpLoad}); err != nil {
		t.Fatalf("Submit into the acquired target: %v", err)
	}
	if err := st.Present(); err != nil {
		t.Fatal(err)
	}

	st, err = surf.Acquire()
	if err != nil {
		t.Fatal(err)
	}
	defer st.Discard()
	if w, h := surf.TargetSize(); w != 64 || h != 32 {
		t.Errorf("expected 64x32 target after the next Acquire, got %dx%d", w, h)
	}
	if st.View() == view {
		t.Error("expected a new target view after the resize")
	}
	if d.Stats().Views != 1 {
		t.Errorf("expected the old view to be released, got %d views", d.Stats().Views)
	}
}

func TestOffscreenSurface_Destroyed(t *testing.T) {
	d := newTestDevice(t)
	surf, err := NewOffscreenSurface(d, 4, 4, gputypes.TextureFormatBGRA8Unorm)
	if err != nil {
		t.Fatal(err)
	}
	surf.Destroy()
	if _, err := surf.Acquire(); !errors.Is(err, sprite.ErrSurfaceLost) {
		t.Errorf("expected ErrSurfaceLost after Destroy, got %v", err)
	}
}

type fakeSource struct {
	view       hal.TextureView
	acquireErr error
	presentErr error
	presented  int
	discarded  int
}

func (s *fakeSource) AcquireView() (hal.TextureView, error) { return s.view, s.acquireErr }
func (s *fakeSource) PresentView() error                    { s.presented++; return s.presentErr }
func (s *fakeSource) DiscardView()                          { s.discarded++ }
func (s *fakeSource) Format() gputypes.TextureFormat        { return gputypes.TextureFormatBGRA8Unorm }

func TestViewSurface(t *testing.T) {
	d := newTestDevice(t)
	src := &fakeSource{}
	surf := NewViewSurface(d, src)

	st, err := surf.Acquire()
	if err != nil {
		t.Fatal(err)
	}
	if d.Stats().Views != 1 {
		t.Errorf("expected 1 registered view, got %d", d.Stats().Views)
	}
	if err := st.Present(); err != nil {
		t.Fatal(err)
	}
	if src.presented != 1 || d.Stats().Views != 0 {
		t.Errorf("present should release the view: presented=%d views=%d", src.presented, d.Stats().Views)
	}

	src.acquireErr = ErrSurfaceOutdated
	_, err = surf.Acquire()
	var lost *sprite.SurfaceLostError
	if !errors.As(err, &lost) || lost.Op != "acquire" {
		t.Errorf("expected SurfaceLostError on acquire, got %v", err)
	}

	src.acquireErr = nil
	src.presentErr = sprite.ErrSurfaceLost
	st, _ = surf.Acquire()
	if err := st.Present(); !errors.Is(err, sprite.ErrSurfaceLost) {
		t.Errorf("expected ErrSurfaceLost on present, got %v", err)
	}

	src.presentErr = errors.New("device hung")
	st, _ = surf.Acquire()
	if err := st.Present(); err == nil || errors.Is(err, sprite.ErrSurfaceLost) {
		t.Errorf("expected plain error, got %v", err)
	}
}

type fakeProvider struct {
	format gputypes.TextureFormat
	device hal.Device
	queue  hal.Queue
}

func (p *fakeProvider) Device() gpucontext.Device             { return nil }
func (p *fakeProvider) Queue() gpucontext.Queue               { return nil }
func (p *fakeProvider) Adapter() gpucontext.Adapter           { return nil }
func (p *fakeProvider) SurfaceFormat() gputypes.TextureFormat { return p.format }
func (p *fakeProvider) AdapterInfo() gpucontext.AdapterInfo   { return gpucontext.AdapterInfo{} }
func (p *fakeProvider) HalDevice() any                        { return p.device }
func (p *fakeProvider) HalQueue() any                         { return p.queue }

func TestFromProvider(t *testing.T) {
	host := newTestDevice(t)
	hd, hq := host.HAL()

	d, format, err := FromProvider(&fakeProvider{device: hd, queue: hq})
	if err != nil {
		t.Fatalf("FromProvider: %v", err)
	}
	defer d.Destroy()
	if format != gputypes.TextureFormatBGRA8Unorm {
		t.Errorf("expected BGRA8Unorm fallback, got %v", format)
	}

	_, format, err = FromProvider(&fakeProvider{device: hd, queue: hq, format: gputypes.TextureFormatRGBA8Unorm})
	if err != nil || format != gputypes.TextureFormatRGBA8Unorm {
		t.Errorf("expected provider format, got %v (%v)", format, err)
	}

	if _, _, err := FromProvider(&fakeProvider{}); !errors.Is(err, ErrNoHAL) {
		t.Errorf("expected ErrNoHAL for nil HAL objects, got %v", err)
	}
}

func TestNoopBackendRegistered(t *testing.T) {
	b, err := backend.Open(backend.Noop)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer b.Close()
	if b.Name() != backend.Noop {
		t.Errorf("expected %q, got %q", backend.Noop, b.Name())
	}
	surf, err := b.NewSurface(0, 32, gputypes.TextureFormatRGBA8Unorm)
	if err != nil {
		t.Fatal(err)
	}
	st, err := surf.Acquire()
	if err != nil {
		t.Fatal(err)
	}
	if err := b.Device().Submit(&gpucore.RenderPass{Label: "clear", Target: st.View(), LoadOp: gputypes.LoadOpClear}); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if err := st.Present(); err != nil {
		t.Fatal(err)
	}
}

func TestDevice_SPIRV(t *testing.T) {
	if _, err := shaders.Compile(shaders.Rect); err != nil {
		t.Skipf("Skipping: naga cannot compile the rect shader: %v", err)
	}
	d, cleanup, err := NewNoopDevice(WithSPIRV())
	if err != nil {
		t.Fatal(err)
	}
	defer cleanup()

	if _, err := d.CreatePipeline(rectPipelineDesc()); err != nil {
		t.Fatalf("CreatePipeline with SPIR-V: %v", err)
	}
}
