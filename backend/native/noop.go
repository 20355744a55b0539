//go:build !nogpu

package native

import (
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/sprite/backend"
	"github.com/gogpu/sprite/gpucore"
	"github.com/gogpu/wgpu/hal/noop"
)

// NewNoopDevice opens the first adapter of the wgpu no-op HAL backend and
// wraps it. Nothing is drawn, but every call is validated and recorded
// the way a real backend would see it, which makes it the device for
// headless runs and tests. The returned function destroys the Device, the
// HAL device and the instance.
func NewNoopDevice(opts ...Option) (*Device, func(), error) {
	api := noop.API{}
	instance, err := api.CreateInstance(nil)
	if err != nil {
		return nil, nil, fmt.Errorf("native: noop instance: %w", err)
	}
	adapters := instance.EnumerateAdapters(nil)
	if len(adapters) == 0 {
		instance.Destroy()
		return nil, nil, fmt.Errorf("native: noop backend reported no adapters")
	}
	open, err := adapters[0].Adapter.Open(0, gputypes.DefaultLimits())
	if err != nil {
		instance.Destroy()
		return nil, nil, fmt.Errorf("native: noop open: %w", err)
	}

	d, err := NewDevice(open.Device, open.Queue, opts...)
	if err != nil {
		open.Device.Destroy()
		instance.Destroy()
		return nil, nil, err
	}
	cleanup := func() {
		d.Destroy()
		open.Device.Destroy()
		instance.Destroy()
	}
	return d, cleanup, nil
}

func init() {
	backend.Register(backend.Noop, openNoop)
}

// noopBackend exposes a no-op Device through the backend registry.
type noopBackend struct {
	device  *Device
	cleanup func()
}

func openNoop() (backend.Backend, error) {
	d, cleanup, err := NewNoopDevice()
	if err != nil {
		return nil, err
	}
	return &noopBackend{device: d, cleanup: cleanup}, nil
}

func (b *noopBackend) Name() string { return backend.Noop }

func (b *noopBackend) Device() gpucore.Device { return b.device }

func (b *noopBackend) NewSurface(width, height int, format gputypes.TextureFormat) (gpucore.Surface, error) {
	return NewOffscreenSurface(b.device, uint32(max(width, 1)), uint32(max(height, 1)), format) //nolint:gosec // G115: clamped
}

func (b *noopBackend) Close() { b.cleanup() }
