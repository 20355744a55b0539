package sprite

import (
	"errors"
	"fmt"
)

// Sentinel errors. The typed errors below match them with errors.Is.
var (
	// ErrInvalidImage is matched by *InvalidImageError.
	ErrInvalidImage = errors.New("sprite: invalid image")

	// ErrAtlasCapacity is matched by *AtlasCapacityError.
	ErrAtlasCapacity = errors.New("sprite: image exceeds atlas capacity")

	// ErrSurfaceLost is matched by *SurfaceLostError.
	ErrSurfaceLost = errors.New("sprite: surface lost")

	// ErrFrameDropped is returned when the device rejected a frame's
	// submission. The frame is discarded; the next frame may proceed.
	ErrFrameDropped = errors.New("sprite: frame dropped")
)

// InvalidImageError reports an image that cannot be inserted into an
// atlas: zero area, or a pixel buffer that does not hold width*height
// RGBA texels.
type InvalidImageError struct {
	Width, Height int
	Reason        string
}

func (e *InvalidImageError) Error() string {
	return fmt.Sprintf("sprite: invalid image %dx%d: %s", e.Width, e.Height, e.Reason)
}

// Is reports whether target is ErrInvalidImage.
func (e *InvalidImageError) Is(target error) bool { return target == ErrInvalidImage }

// AtlasCapacityError reports an image larger than an atlas page.
type AtlasCapacityError struct {
	Width, Height int
	AtlasSize     int
}

func (e *AtlasCapacityError) Error() string {
	return fmt.Sprintf("sprite: image %dx%d does not fit in a %dx%d atlas",
		e.Width, e.Height, e.AtlasSize, e.AtlasSize)
}

// Is reports whether target is ErrAtlasCapacity.
func (e *AtlasCapacityError) Is(target error) bool { return target == ErrAtlasCapacity }

// SurfaceLostError reports that the presentation surface was invalidated.
// It is recoverable: reacquire or reconfigure the surface and retry the
// frame.
type SurfaceLostError struct {
	// Op is the operation that observed the loss ("acquire" or "present").
	Op  string
	Err error
}

func (e *SurfaceLostError) Error() string {
	if e.Err == nil {
		return "sprite: surface lost during " + e.Op
	}
	return "sprite: surface lost during " + e.Op + ": " + e.Err.Error()
}

func (e *SurfaceLostError) Unwrap() error { return e.Err }

// Is reports whether target is ErrSurfaceLost.
func (e *SurfaceLostError) Is(target error) bool { return target == ErrSurfaceLost }
