//go:build !nogpu

package native

import (
	"errors"
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/sprite"
	"github.com/gogpu/sprite/gpucore"
	"github.com/gogpu/wgpu/hal"
)

// ErrSurfaceOutdated may be returned, possibly wrapped, by a ViewSource
// when the window surface no longer matches the window. ViewSurface
// reports it as *sprite.SurfaceLostError.
var ErrSurfaceOutdated = errors.New("native: surface outdated")

// ErrAlreadyAcquired is returned by Acquire while a previous target has
// been neither presented nor discarded.
var ErrAlreadyAcquired = errors.New("native: surface texture already acquired")

// OffscreenSurface renders into a device-owned texture. Present only
// counts frames; it is the target for headless rendering and tests.
type OffscreenSurface struct {
	device *Device
	format gputypes.TextureFormat

	width, height uint32
	tex           hal.Texture
	view          hal.TextureView
	viewID        gpucore.ViewID

	// pendingW and pendingH hold a size requested while a frame was
	// acquired; zero when none is pending.
	pendingW, pendingH uint32

	acquired  bool
	presented int
	discarded int
}

// NewOffscreenSurface creates a width x height render target.
func NewOffscreenSurface(d *Device, width, height uint32, format gputypes.TextureFormat) (*OffscreenSurface, error) {
	s := &OffscreenSurface{device: d, format: format}
	if err := s.allocate(max(width, 1), max(height, 1)); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *OffscreenSurface) allocate(w, h uint32) error {
	tex, view, err := s.device.createTexture("offscreen_target", w, h, s.format,
		gputypes.TextureUsageRenderAttachment|gputypes.TextureUsageCopySrc)
	if err != nil {
		return err
	}
	s.tex, s.view = tex, view
	s.width, s.height = w, h
	s.viewID = s.device.RegisterView(view)
	return nil
}

func (s *OffscreenSurface) release() {
	if s.tex == nil {
		return
	}
	s.device.ReleaseView(s.viewID)
	s.device.device.DestroyTextureView(s.view)
	s.device.device.DestroyTexture(s.tex)
	s.tex, s.view, s.viewID = nil, nil, gpucore.InvalidID
}

// Acquire implements gpucore.Surface.
func (s *OffscreenSurface) Acquire() (gpucore.SurfaceTexture, error) {
	if s.acquired {
		return nil, ErrAlreadyAcquired
	}
	if s.pendingW != 0 {
		w, h := s.pendingW, s.pendingH
		s.pendingW, s.pendingH = 0, 0
		if err := s.reallocate(w, h); err != nil {
			return nil, err
		}
	}
	if s.tex == nil {
		return nil, &sprite.SurfaceLostError{Op: "acquire", Err: ErrDestroyed}
	}
	s.acquired = true
	return &offscreenTexture{surface: s}, nil
}

// Format implements gpucore.Surface.
func (s *OffscreenSurface) Format() gputypes.TextureFormat { return s.format }

// Resize implements gpucore.Resizer by reallocating the target. While a
// frame is acquired the new size is recorded and applied by the next
// Acquire, so the acquired frame keeps its target.
func (s *OffscreenSurface) Resize(width, height uint32) error {
	width, height = max(width, 1), max(height, 1)
	if s.acquired {
		s.pendingW, s.pendingH = width, height
		return nil
	}
	s.pendingW, s.pendingH = 0, 0
	return s.reallocate(width, height)
}

// reallocate replaces the target once submissions that may render into
// the old one have completed.
func (s *OffscreenSurface) reallocate(w, h uint32) error {
	if w == s.width && h == s.height && s.tex != nil {
		return nil
	}
	if s.tex != nil {
		if err := s.device.WaitIdle(); err != nil {
			return fmt.Errorf("native: resize surface: %w", err)
		}
	}
	s.release()
	return s.allocate(w, h)
}

// Size returns the target size, or the pending size when a resize waits
// for the acquired frame to end.
func (s *OffscreenSurface) Size() (width, height uint32) {
	if s.pendingW != 0 {
		return s.pendingW, s.pendingH
	}
	return s.width, s.height
}

// TargetSize returns the size of the allocated target.
func (s *OffscreenSurface) TargetSize() (width, height uint32) { return s.width, s.height }

// Presented returns the number of presented frames.
func (s *OffscreenSurface) Presented() int { return s.presented }

// Discarded returns the number of discarded frames.
func (s *OffscreenSurface) Discarded() int { return s.discarded }

// Destroy releases the target texture.
func (s *OffscreenSurface) Destroy() { s.release() }

type offscreenTexture struct {
	surface *OffscreenSurface
	done    bool
}

func (t *offscreenTexture) View() gpucore.ViewID { return t.surface.viewID }

func (t *offscreenTexture) Present() error {
	if t.done {
		return nil
	}
	t.done = true
	t.surface.acquired = false
	t.surface.presented++
	return nil
}

func (t *offscreenTexture) Discard() {
	if t.done {
		return
	}
	t.done = true
	t.surface.acquired = false
	t.surface.discarded++
}

// ViewSource is implemented by host window integrations that own the
// swapchain and hand out one texture view per frame.
type ViewSource interface {
	AcquireView() (hal.TextureView, error)
	PresentView() error
	DiscardView()
	Format() gputypes.TextureFormat
}

// ViewSurface adapts a ViewSource to gpucore.Surface, registering each
// acquired view with the device for the duration of the frame.
type ViewSurface struct {
	device *Device
	src    ViewSource
}

// NewViewSurface wraps src.
func NewViewSurface(d *Device, src ViewSource) *ViewSurface {
	return &ViewSurface{device: d, src: src}
}

// Acquire implements gpucore.Surface.
func (s *ViewSurface) Acquire() (gpucore.SurfaceTexture, error) {
	view, err := s.src.AcquireView()
	if err != nil {
		return nil, surfaceError("acquire", err)
	}
	return &viewTexture{surface: s, id: s.device.RegisterView(view)}, nil
}

// Format implements gpucore.Surface.
func (s *ViewSurface) Format() gputypes.TextureFormat { return s.src.Format() }

// Resize implements gpucore.Resizer when the source can be reconfigured.
func (s *ViewSurface) Resize(width, height uint32) error {
	if r, ok := s.src.(gpucore.Resizer); ok {
		return r.Resize(width, height)
	}
	return nil
}

type viewTexture struct {
	surface *ViewSurface
	id      gpucore.ViewID
	done    bool
}

func (t *viewTexture) View() gpucore.ViewID { return t.id }

func (t *viewTexture) Present() error {
	if t.done {
		return nil
	}
	t.done = true
	t.surface.device.ReleaseView(t.id)
	if err := t.surface.src.PresentView(); err != nil {
		return surfaceError("present", err)
	}
	return nil
}

func (t *viewTexture) Discard() {
	if t.done {
		return
	}
	t.done = true
	t.surface.device.ReleaseView(t.id)
	t.surface.src.DiscardView()
}

// surfaceError maps outdated or lost surfaces to *sprite.SurfaceLostError.
func surfaceError(op string, err error) error {
	if errors.Is(err, ErrSurfaceOutdated) || errors.Is(err, sprite.ErrSurfaceLost) {
		return &sprite.SurfaceLostError{Op: op, Err: err}
	}
	return fmt.Errorf("native: surface %s: %w", op, err)
}
