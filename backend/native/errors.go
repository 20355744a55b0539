package native

import "errors"

// Package errors for the native backend.
var (
	// ErrNilDevice is returned when NewDevice gets a nil device or queue.
	ErrNilDevice = errors.New("native: nil hal device or queue")

	// ErrNoHAL is returned when a device provider does not expose HAL types.
	ErrNoHAL = errors.New("native: provider does not expose HAL device and queue")

	// ErrDestroyed is returned by Submit after Destroy.
	ErrDestroyed = errors.New("native: device destroyed")

	// ErrUnknownPipeline is returned for an unregistered pipeline ID.
	ErrUnknownPipeline = errors.New("native: unknown pipeline")

	// ErrUnknownBuffer is returned for an unregistered buffer ID.
	ErrUnknownBuffer = errors.New("native: unknown buffer")

	// ErrUnknownTexture is returned for an unregistered texture ID.
	ErrUnknownTexture = errors.New("native: unknown texture")

	// ErrUnknownBindGroup is returned for an unregistered bind group ID.
	ErrUnknownBindGroup = errors.New("native: unknown bind group")

	// ErrUnknownView is returned for an unregistered target view ID.
	ErrUnknownView = errors.New("native: unknown target view")

	// ErrWriteRange is returned for a buffer or texture write outside the
	// resource or with a mismatched data length.
	ErrWriteRange = errors.New("native: write out of range")

	// ErrSubmissionTimeout is returned when an old submission does not
	// complete in time.
	ErrSubmissionTimeout = errors.New("native: submission did not complete")

	// ErrBindGroupIndex is returned when a bind group index does not match
	// the pipeline layout.
	ErrBindGroupIndex = errors.New("native: bind group index does not match pipeline layout")
)
