package sprite

// Viewport is the drawable size in pixels.
type Viewport struct {
	Width, Height float32
}

// NewViewport returns a viewport with both dimensions clamped to at least 1.
func NewViewport(width, height int) Viewport {
	return Viewport{Width: float32(max(width, 1)), Height: float32(max(height, 1))}
}

// Clamped returns v with both dimensions clamped to at least 1.
func (v Viewport) Clamped() Viewport {
	return Viewport{Width: max(v.Width, 1), Height: max(v.Height, 1)}
}

// ToNDC maps a pixel-space point (origin top-left, y down) to normalized
// device coordinates (y up). The vertex shaders apply the same mapping.
func (v Viewport) ToNDC(p Point) Point {
	c := v.Clamped()
	return Point{
		X: 2*p.X/c.Width - 1,
		Y: -2*p.Y/c.Height + 1,
	}
}

// Uniform returns the viewport as the two floats bound at group 0,
// binding 0 of both pipelines.
func (v Viewport) Uniform() [2]float32 {
	c := v.Clamped()
	return [2]float32{c.Width, c.Height}
}
