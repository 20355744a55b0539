package atlas

import (
	"image"

	"github.com/gogpu/sprite"
)

// Page is one square atlas texture. It keeps a CPU staging copy of its
// pixels (RGBA8, straight alpha) and the region changed since the last
// upload.
type Page struct {
	id    int
	size  int
	pix   []byte
	alloc *ShelfAllocator
	slots int

	dirty image.Rectangle
}

func newPage(id, size, padding int) *Page {
	return &Page{
		id:    id,
		size:  size,
		pix:   make([]byte, size*size*4),
		alloc: NewShelfAllocator(size, padding),
	}
}

// ID returns the page index. Slots carry it as their Atlas field.
func (p *Page) ID() int { return p.id }

// Size returns the page width and height in texels.
func (p *Page) Size() int { return p.size }

// Len returns the number of images placed on the page.
func (p *Page) Len() int { return p.slots }

// Pixels returns the staging buffer. Callers must not modify it.
func (p *Page) Pixels() []byte { return p.pix }

// Image returns the staging buffer as an *image.NRGBA sharing memory.
func (p *Page) Image() *image.NRGBA {
	return &image.NRGBA{Pix: p.pix, Stride: p.size * 4, Rect: image.Rect(0, 0, p.size, p.size)}
}

// Utilization returns the fraction of the page covered by images.
func (p *Page) Utilization() float64 { return p.alloc.Utilization() }

// IsDirty reports whether the page has pixels not yet uploaded.
func (p *Page) IsDirty() bool { return !p.dirty.Empty() }

// DirtyRegion returns the bounding box of pixels written since the last
// MarkClean, and false when there is nothing to upload.
func (p *Page) DirtyRegion() (image.Rectangle, bool) {
	return p.dirty, !p.dirty.Empty()
}

// MarkClean records that the dirty region has been uploaded.
func (p *Page) MarkClean() { p.dirty = image.Rectangle{} }

// SubImage copies region r of the staging buffer into a tightly packed
// buffer (row stride r.Dx()*4), the layout texture uploads expect.
func (p *Page) SubImage(r image.Rectangle) []byte {
	r = r.Intersect(image.Rect(0, 0, p.size, p.size))
	if r.Empty() {
		return nil
	}
	rowBytes := r.Dx() * 4
	out := make([]byte, rowBytes*r.Dy())
	for y := r.Min.Y; y < r.Max.Y; y++ {
		src := (y*p.size + r.Min.X) * 4
		copy(out[(y-r.Min.Y)*rowBytes:], p.pix[src:src+rowBytes])
	}
	return out
}

// place allocates room for img and blits it. Returns false when the page
// has no room.
func (p *Page) place(img *sprite.Image) (Slot, bool) {
	x, y, ok := p.alloc.Allocate(img.Width, img.Height)
	if !ok {
		return Slot{}, false
	}

	rowBytes := img.Width * 4
	for row := 0; row < img.Height; row++ {
		dst := ((y+row)*p.size + x) * 4
		copy(p.pix[dst:dst+rowBytes], img.Pix[row*rowBytes:(row+1)*rowBytes])
	}

	r := image.Rect(x, y, x+img.Width, y+img.Height)
	p.dirty = p.dirty.Union(r)
	p.slots++

	return newSlot(p.id, p.size, r), true
}

func (p *Page) reset() {
	clear(p.pix)
	p.alloc.Reset()
	p.slots = 0
	p.dirty = image.Rect(0, 0, p.size, p.size)
}
