package batch

import (
	"encoding/binary"
	"math"

	"github.com/gogpu/sprite"
)

// Vertex strides in bytes.
const (
	// RectVertexStride is position (f32x2) followed by color (f32x4).
	RectVertexStride = 24
	// SpriteVertexStride is position (f32x2) followed by tex_coords (f32x2).
	SpriteVertexStride = 16
	// IndexSize is the size of one uint32 index.
	IndexSize = 4
)

// quadIndices are the two triangles of a TL, TR, BL, BR quad.
var quadIndices = [6]uint32{0, 2, 1, 3, 1, 2}

// Vertex is one emitted vertex in pixel space. Rectangle batches use
// Color, sprite batches use UV.
type Vertex struct {
	Position sprite.Point
	Color    sprite.Color
	UV       [2]float32
}

// Batch is a run of quads drawn with one pipeline and texture binding.
// Indices are relative to the first vertex of the batch.
type Batch struct {
	Key      Key
	Vertices []Vertex
	Indices  []uint32
}

func (b *Batch) appendQuad(quad [4]Vertex) {
	base := uint32(len(b.Vertices)) //nolint:gosec // G115: vertex count bounded by buffer size
	b.Vertices = append(b.Vertices, quad[:]...)
	for _, i := range quadIndices {
		b.Indices = append(b.Indices, base+i)
	}
}

// Quads returns the number of quads in the batch.
func (b *Batch) Quads() int { return len(b.Vertices) / 4 }

// Stride returns the vertex stride of the batch's pipeline.
func (b *Batch) Stride() int {
	if b.Key.Kind == KindSprite {
		return SpriteVertexStride
	}
	return RectVertexStride
}

// VertexSize returns the serialized size of the vertices in bytes.
func (b *Batch) VertexSize() int { return len(b.Vertices) * b.Stride() }

// IndexBytes returns the serialized size of the indices in bytes.
func (b *Batch) IndexBytes() int { return len(b.Indices) * IndexSize }

// AppendVertexData appends the vertices in the pipeline's layout
// (little-endian float32) to dst.
func (b *Batch) AppendVertexData(dst []byte) []byte {
	sprites := b.Key.Kind == KindSprite
	for _, v := range b.Vertices {
		dst = appendF32(dst, v.Position.X, v.Position.Y)
		if sprites {
			dst = appendF32(dst, v.UV[0], v.UV[1])
		} else {
			dst = appendF32(dst, v.Color.R, v.Color.G, v.Color.B, v.Color.A)
		}
	}
	return dst
}

// VertexData returns the serialized vertices.
func (b *Batch) VertexData() []byte {
	return b.AppendVertexData(make([]byte, 0, b.VertexSize()))
}

// AppendIndexData appends the indices as little-endian uint32 to dst.
func (b *Batch) AppendIndexData(dst []byte) []byte {
	for _, i := range b.Indices {
		dst = binary.LittleEndian.AppendUint32(dst, i)
	}
	return dst
}

// IndexData returns the serialized indices.
func (b *Batch) IndexData() []byte {
	return b.AppendIndexData(make([]byte, 0, b.IndexBytes()))
}

// NDC returns the vertex positions mapped through v, as the vertex shader
// computes them.
func (b *Batch) NDC(v sprite.Viewport) []sprite.Point {
	out := make([]sprite.Point, len(b.Vertices))
	for i, vert := range b.Vertices {
		out[i] = v.ToNDC(vert.Position)
	}
	return out
}

func appendF32(dst []byte, vals ...float32) []byte {
	for _, f := range vals {
		dst = binary.LittleEndian.AppendUint32(dst, math.Float32bits(f))
	}
	return dst
}
