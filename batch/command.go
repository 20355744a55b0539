package batch

import (
	"github.com/gogpu/sprite"
	"github.com/gogpu/sprite/atlas"
)

// Kind selects the pipeline a batch is drawn with.
type Kind uint8

const (
	// KindNone is the key of a builder that has not opened a batch.
	KindNone Kind = iota
	// KindRectangle draws flat-colored quads.
	KindRectangle
	// KindSprite draws quads textured from one atlas page.
	KindSprite
)

func (k Kind) String() string {
	switch k {
	case KindRectangle:
		return "rectangle"
	case KindSprite:
		return "sprite"
	default:
		return "none"
	}
}

// Key identifies the GPU state shared by a batch. Keys compare by value;
// Atlas is only meaningful for KindSprite and is zero otherwise.
type Key struct {
	Kind  Kind
	Atlas int
}

// Command is one draw request: a Rectangle or a Sprite.
type Command interface {
	// Key returns the batch key the command needs.
	Key() Key

	appendQuad(b *Batch)
}

// Rectangle fills Rect with a flat Color.
type Rectangle struct {
	Rect  sprite.Rect
	Color sprite.Color

	// Transform maps the corners before emission. Zero is the identity.
	Transform sprite.Transform
}

// Key implements Command.
func (Rectangle) Key() Key { return Key{Kind: KindRectangle} }

func (r Rectangle) appendQuad(b *Batch) {
	corners := r.Rect.Corners()
	var quad [4]Vertex
	for i, p := range corners {
		quad[i] = Vertex{Position: r.Transform.Apply(p), Color: r.Color}
	}
	b.appendQuad(quad)
}

// Sprite draws the atlas region of Slot stretched over Dest.
type Sprite struct {
	Slot atlas.Slot
	Dest sprite.Rect

	// Transform maps the corners before emission. Zero is the identity.
	Transform sprite.Transform
}

// Key implements Command.
func (s Sprite) Key() Key { return Key{Kind: KindSprite, Atlas: s.Slot.Atlas} }

func (s Sprite) appendQuad(b *Batch) {
	corners := s.Dest.Corners()
	uv := s.Slot.UV
	tex := [4][2]float32{
		{uv.U0, uv.V0},
		{uv.U1, uv.V0},
		{uv.U0, uv.V1},
		{uv.U1, uv.V1},
	}
	var quad [4]Vertex
	for i, p := range corners {
		quad[i] = Vertex{Position: s.Transform.Apply(p), UV: tex[i]}
	}
	b.appendQuad(quad)
}
