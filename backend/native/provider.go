//go:build !nogpu

package native

import (
	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/sprite"
	"github.com/gogpu/wgpu/hal"
)

// FromProvider builds a Device on the HAL device and queue shared by a
// host application (for example a gogpu window). The provider must
// implement HalDevice() any and HalQueue() any returning hal.Device and
// hal.Queue. The returned format is the provider's surface format, or
// BGRA8Unorm when the provider reports none.
func FromProvider(provider gpucontext.DeviceProvider, opts ...Option) (*Device, gputypes.TextureFormat, error) {
	type halProvider interface {
		HalDevice() any
		HalQueue() any
	}
	hp, ok := provider.(halProvider)
	if !ok {
		return nil, gputypes.TextureFormatUndefined, ErrNoHAL
	}
	device, ok := hp.HalDevice().(hal.Device)
	if !ok || device == nil {
		return nil, gputypes.TextureFormatUndefined, ErrNoHAL
	}
	queue, ok := hp.HalQueue().(hal.Queue)
	if !ok || queue == nil {
		return nil, gputypes.TextureFormatUndefined, ErrNoHAL
	}

	format := provider.SurfaceFormat()
	if format == gputypes.TextureFormatUndefined {
		format = gputypes.TextureFormatBGRA8Unorm
	}

	d, err := NewDevice(device, queue, opts...)
	if err != nil {
		return nil, gputypes.TextureFormatUndefined, err
	}
	sprite.Logger().Info("native: using shared device", "format", format)
	return d, format, nil
}
