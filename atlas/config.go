package atlas

// Config holds atlas packer configuration.
type Config struct {
	// Size is the width and height of every atlas page in texels.
	// Must be a power of 2. Default: 2048
	Size int

	// Padding is the gap left between neighbouring images on a row and
	// between rows, to keep linear filtering from bleeding.
	// Default: 0
	Padding int

	// MaxAtlases limits the number of pages.
	// Default: 16
	MaxAtlases int
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		Size:       2048,
		Padding:    0,
		MaxAtlases: 16,
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Size < 16 {
		return &ConfigError{Field: "Size", Reason: "must be at least 16"}
	}
	if c.Size > 16384 {
		return &ConfigError{Field: "Size", Reason: "must be at most 16384"}
	}
	if c.Size&(c.Size-1) != 0 {
		return &ConfigError{Field: "Size", Reason: "must be power of 2"}
	}
	if c.Padding < 0 {
		return &ConfigError{Field: "Padding", Reason: "must be non-negative"}
	}
	if c.Padding >= c.Size/2 {
		return &ConfigError{Field: "Padding", Reason: "must be less than half Size"}
	}
	if c.MaxAtlases < 1 {
		return &ConfigError{Field: "MaxAtlases", Reason: "must be at least 1"}
	}
	if c.MaxAtlases > 256 {
		return &ConfigError{Field: "MaxAtlases", Reason: "must be at most 256"}
	}
	return nil
}
