package atlas

import (
	"errors"
	"strconv"
)

// ErrAtlasFull is matched by *FullError.
var ErrAtlasFull = errors.New("atlas: maximum number of pages reached")

// ConfigError represents a configuration validation error.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return "atlas: invalid config." + e.Field + ": " + e.Reason
}

// FullError is returned when an image fits no existing page and the page
// limit has been reached.
type FullError struct {
	MaxAtlases int
}

func (e *FullError) Error() string {
	return "atlas: all " + strconv.Itoa(e.MaxAtlases) + " pages are full"
}

// Is reports whether target is ErrAtlasFull.
func (e *FullError) Is(target error) bool { return target == ErrAtlasFull }
