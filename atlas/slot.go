package atlas

import "image"

// UVRect is a normalized [0,1] sub-rectangle of an atlas page.
// (U0, V0) is the top-left corner and (U1, V1) the bottom-right.
type UVRect struct {
	U0, V0, U1, V1 float32
}

// Overlaps reports whether the interiors of r and o intersect.
func (r UVRect) Overlaps(o UVRect) bool {
	return r.U0 < o.U1 && o.U0 < r.U1 && r.V0 < o.V1 && o.V0 < r.V1
}

// Slot is the placement of one image: which page and where. A slot never
// changes once assigned.
type Slot struct {
	Atlas int
	UV    UVRect

	// Pixel region inside the page.
	X, Y, Width, Height int
}

func newSlot(page, size int, r image.Rectangle) Slot {
	s := float32(size)
	return Slot{
		Atlas: page,
		UV: UVRect{
			U0: float32(r.Min.X) / s,
			V0: float32(r.Min.Y) / s,
			U1: float32(r.Max.X) / s,
			V1: float32(r.Max.Y) / s,
		},
		X:      r.Min.X,
		Y:      r.Min.Y,
		Width:  r.Dx(),
		Height: r.Dy(),
	}
}

// Rect returns the pixel region of the slot.
func (s Slot) Rect() image.Rectangle {
	return image.Rect(s.X, s.Y, s.X+s.Width, s.Y+s.Height)
}
