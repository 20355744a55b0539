package sprite

import "github.com/go-gl/mathgl/mgl32"

// Transform is a 2D affine transform stored as a homogeneous 3x3 matrix.
// The zero value is the identity.
//
// Each builder method left-multiplies the receiver: t.Translate(x, y)
// first applies t, then translates the result.
type Transform struct {
	m mgl32.Mat3
}

// Identity returns the identity transform.
func Identity() Transform {
	return Transform{m: mgl32.Ident3()}
}

// Matrix returns the column-major matrix.
func (t Transform) Matrix() mgl32.Mat3 {
	if t.m == (mgl32.Mat3{}) {
		return mgl32.Ident3()
	}
	return t.m
}

// IsIdentity reports whether t leaves every point unchanged.
func (t Transform) IsIdentity() bool {
	return t.Matrix() == mgl32.Ident3()
}

// Then returns the transform that applies t, then u.
func (t Transform) Then(u Transform) Transform {
	return Transform{m: u.Matrix().Mul3(t.Matrix())}
}

// Translate applies a translation after t.
func (t Transform) Translate(x, y float32) Transform {
	return t.Then(Transform{m: mgl32.Translate2D(x, y)})
}

// Scale applies a scale about the origin after t.
func (t Transform) Scale(x, y float32) Transform {
	return t.Then(Transform{m: mgl32.Scale2D(x, y)})
}

// Rotate applies a rotation by angle radians about the origin after t.
func (t Transform) Rotate(angle float32) Transform {
	return t.Then(Transform{m: mgl32.HomogRotate2D(angle)})
}

// Shear applies a shear after t: x' = x + sx*y, y' = sy*x + y.
func (t Transform) Shear(sx, sy float32) Transform {
	// column-major
	return t.Then(Transform{m: mgl32.Mat3{1, sy, 0, sx, 1, 0, 0, 0, 1}})
}

// Apply maps p through the transform.
func (t Transform) Apply(p Point) Point {
	if t.m == (mgl32.Mat3{}) {
		return p
	}
	v := t.m.Mul3x1(mgl32.Vec3{p.X, p.Y, 1})
	if v[2] == 0 {
		return Point{X: v[0], Y: v[1]}
	}
	return Point{X: v[0] / v[2], Y: v[1] / v[2]}
}
