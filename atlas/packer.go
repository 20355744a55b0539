package atlas

import (
	"fmt"

	"github.com/gogpu/sprite"
)

// Packer assigns every distinct image a slot on one of a growing set of
// fixed-size pages, deduplicating by sprite.ImageKey.
//
// Packer is not safe for concurrent use; it belongs to the render
// goroutine together with the renderer that uploads its pages.
type Packer struct {
	config Config
	pages  []*Page
	lookup map[sprite.ImageKey]Slot

	hits   uint64
	misses uint64
}

// New creates a packer. No page is allocated until the first insertion.
func New(config Config) (*Packer, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &Packer{
		config: config,
		lookup: make(map[sprite.ImageKey]Slot),
	}, nil
}

// Insert places img on a page and returns its slot. An image whose key is
// already present returns the existing slot without touching any page.
//
// Placement tries the current row of each page in creation order, then a
// new row on that page, and finally a new page. Failed insertions leave
// the packer unchanged.
func (p *Packer) Insert(img *sprite.Image) (Slot, error) {
	if err := img.Validate(); err != nil {
		return Slot{}, err
	}

	if slot, ok := p.lookup[img.Key]; ok {
		p.hits++
		return slot, nil
	}

	if img.Width > p.config.Size || img.Height > p.config.Size {
		return Slot{}, &sprite.AtlasCapacityError{
			Width:     img.Width,
			Height:    img.Height,
			AtlasSize: p.config.Size,
		}
	}

	for _, page := range p.pages {
		if slot, ok := page.place(img); ok {
			p.lookup[img.Key] = slot
			p.misses++
			return slot, nil
		}
	}

	if len(p.pages) >= p.config.MaxAtlases {
		return Slot{}, fmt.Errorf("insert %dx%d image: %w",
			img.Width, img.Height, &FullError{MaxAtlases: p.config.MaxAtlases})
	}

	page := newPage(len(p.pages), p.config.Size, p.config.Padding)
	p.pages = append(p.pages, page)
	sprite.Logger().Debug("atlas: page created", "page", page.id, "size", page.size)

	slot, ok := page.place(img)
	if !ok {
		// Unreachable: the image fits an empty page.
		return Slot{}, &sprite.AtlasCapacityError{Width: img.Width, Height: img.Height, AtlasSize: p.config.Size}
	}
	p.lookup[img.Key] = slot
	p.misses++
	return slot, nil
}

// Lookup returns the slot previously assigned to key.
func (p *Packer) Lookup(key sprite.ImageKey) (Slot, bool) {
	slot, ok := p.lookup[key]
	return slot, ok
}

// Len returns the number of distinct images placed.
func (p *Packer) Len() int { return len(p.lookup) }

// PageCount returns the number of pages allocated.
func (p *Packer) PageCount() int { return len(p.pages) }

// Page returns page id, or nil if it does not exist.
func (p *Packer) Page(id int) *Page {
	if id < 0 || id >= len(p.pages) {
		return nil
	}
	return p.pages[id]
}

// Pages returns all pages in creation order.
func (p *Packer) Pages() []*Page { return p.pages }

// Dirty returns the pages with pixels not yet uploaded.
func (p *Packer) Dirty() []*Page {
	var dirty []*Page
	for _, page := range p.pages {
		if page.IsDirty() {
			dirty = append(dirty, page)
		}
	}
	return dirty
}

// Config returns the packer configuration.
func (p *Packer) Config() Config { return p.config }

// Stats summarizes packer occupancy.
type Stats struct {
	Images   int
	Pages    int
	UsedArea int
	Hits     uint64
	Misses   uint64
}

// Stats returns occupancy and deduplication counters.
func (p *Packer) Stats() Stats {
	s := Stats{Images: len(p.lookup), Pages: len(p.pages), Hits: p.hits, Misses: p.misses}
	for _, page := range p.pages {
		s.UsedArea += page.alloc.UsedArea()
	}
	return s
}

// Reset forgets every slot and clears all pages. Pages stay allocated and
// are fully dirty so the cleared contents reach the GPU. Slots handed out
// before Reset must not be used afterwards.
func (p *Packer) Reset() {
	for _, page := range p.pages {
		page.reset()
	}
	clear(p.lookup)
	p.hits, p.misses = 0, 0
}
