package backend

import (
	"errors"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/sprite/gpucore"
)

// Common backend errors.
var (
	// ErrBackendNotAvailable is returned when a requested backend is not
	// registered or none is registered at all.
	ErrBackendNotAvailable = errors.New("backend: not available")
)

// Backend is an opened device together with a way to create render
// targets on it.
type Backend interface {
	// Name returns the name the backend was registered under.
	Name() string

	// Device returns the device resources are created on.
	Device() gpucore.Device

	// NewSurface creates an offscreen render target of the given size.
	NewSurface(width, height int, format gputypes.TextureFormat) (gpucore.Surface, error)

	// Close releases the device. Surfaces created by NewSurface must not
	// be used afterwards.
	Close()
}
