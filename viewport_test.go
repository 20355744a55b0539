package sprite

import (
	"math"
	"testing"
)

func approx(a, b float32) bool {
	return math.Abs(float64(a-b)) < 1e-5
}

func TestViewport_ToNDC(t *testing.T) {
	v := Viewport{Width: 800, Height: 600}

	tests := []struct {
		name string
		in   Point
		want Point
	}{
		{"top-left", Pt(0, 0), Pt(-1, 1)},
		{"bottom-right", Pt(800, 600), Pt(1, -1)},
		{"center", Pt(400, 300), Pt(0, 0)},
		{"top-right", Pt(800, 0), Pt(1, 1)},
		{"bottom-left", Pt(0, 600), Pt(-1, -1)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := v.ToNDC(tt.in)
			if !approx(got.X, tt.want.X) || !approx(got.Y, tt.want.Y) {
				t.Errorf("ToNDC(%v) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestViewport_ToNDCInRange(t *testing.T) {
	v := Viewport{Width: 97, Height: 31}
	for x := float32(0); x <= v.Width; x += 3.5 {
		for y := float32(0); y <= v.Height; y += 1.25 {
			p := v.ToNDC(Pt(x, y))
			if p.X < -1 || p.X > 1 || p.Y < -1 || p.Y > 1 {
				t.Fatalf("ToNDC(%v,%v) = %v, outside [-1,1]", x, y, p)
			}
		}
	}
}

func TestViewport_ZeroClamped(t *testing.T) {
	v := NewViewport(0, -5)
	if v.Width != 1 || v.Height != 1 {
		t.Fatalf("expected 1x1, got %vx%v", v.Width, v.Height)
	}

	// A zero-valued viewport must not divide by zero.
	p := Viewport{}.ToNDC(Pt(1, 1))
	if math.IsInf(float64(p.X), 0) || math.IsNaN(float64(p.Y)) {
		t.Fatalf("zero viewport produced %v", p)
	}
	if p != Pt(1, -1) {
		t.Errorf("expected (1,-1), got %v", p)
	}
}

func TestViewport_Uniform(t *testing.T) {
	u := Viewport{Width: 1280, Height: 0}.Uniform()
	if u != [2]float32{1280, 1} {
		t.Errorf("expected [1280 1], got %v", u)
	}
}
