package atlas

// ShelfAllocator places rectangles on horizontal rows ("shelves") inside
// a square page.
//
// Only the current (last) row accepts new rectangles. A rectangle joins
// it when it fits in the remaining width and is no taller than the row.
// Otherwise a new row opens directly below, sized by the rectangle that
// opened it. Earlier rows are never revisited, so placement depends only
// on insertion order.
type ShelfAllocator struct {
	size    int
	padding int

	rows     int
	rowY     int // top of the current row
	rowH     int // height of the current row
	cursor   int // next free x on the current row
	usedArea int
}

// NewShelfAllocator creates an allocator for a size x size page.
func NewShelfAllocator(size, padding int) *ShelfAllocator {
	return &ShelfAllocator{size: size, padding: padding}
}

// Allocate finds space for a w x h rectangle.
// Returns the top-left position and true, or -1, -1, false when the page
// has no room. A failed call leaves the allocator unchanged.
func (a *ShelfAllocator) Allocate(w, h int) (x, y int, ok bool) {
	if w <= 0 || h <= 0 || w > a.size || h > a.size {
		return -1, -1, false
	}

	// Current row.
	if a.rows > 0 && a.cursor+w <= a.size && h <= a.rowH {
		x, y = a.cursor, a.rowY
		a.cursor += w + a.padding
		a.usedArea += w * h
		return x, y, true
	}

	// New row below.
	newY := 0
	if a.rows > 0 {
		newY = a.rowY + a.rowH + a.padding
	}
	if newY+h > a.size {
		return -1, -1, false
	}

	a.rows++
	a.rowY = newY
	a.rowH = h
	a.cursor = w + a.padding
	a.usedArea += w * h
	return 0, newY, true
}

// CanFit reports whether Allocate(w, h) would succeed.
func (a *ShelfAllocator) CanFit(w, h int) bool {
	if w <= 0 || h <= 0 || w > a.size || h > a.size {
		return false
	}
	if a.rows > 0 && a.cursor+w <= a.size && h <= a.rowH {
		return true
	}
	newY := 0
	if a.rows > 0 {
		newY = a.rowY + a.rowH + a.padding
	}
	return newY+h <= a.size
}

// Reset clears all allocations.
func (a *ShelfAllocator) Reset() {
	a.rows, a.rowY, a.rowH, a.cursor, a.usedArea = 0, 0, 0, 0, 0
}

// Utilization returns the fraction of the page covered by allocations.
func (a *ShelfAllocator) Utilization() float64 {
	if a.size <= 0 {
		return 0
	}
	return float64(a.usedArea) / float64(a.size*a.size)
}

// UsedArea returns the total area of all allocations.
func (a *ShelfAllocator) UsedArea() int { return a.usedArea }

// RowCount returns the number of rows opened so far.
func (a *ShelfAllocator) RowCount() int { return a.rows }

// RemainingHeight returns the height below the current row.
func (a *ShelfAllocator) RemainingHeight() int {
	if a.rows == 0 {
		return a.size
	}
	return max(a.size-(a.rowY+a.rowH+a.padding), 0)
}
