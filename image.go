package sprite

import (
	"encoding/binary"
	"fmt"
	"image"
	"io"
	"os"

	// Decoders registered for Decode.
	_ "image/jpeg"
	_ "image/png"

	"github.com/cespare/xxhash"
	"golang.org/x/image/draw"

	"github.com/gogpu/sprite/internal/parallel"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
)

// ImageKey identifies an image's content for atlas deduplication.
// Two images with equal keys are treated as the same sprite.
type ImageKey uint64

// Image is a tightly packed RGBA8 pixel buffer (straight alpha, 4 bytes
// per texel, row-major, no row padding).
type Image struct {
	Pix    []byte
	Width  int
	Height int

	// Key is the stable identity used by the atlas packer. NewImage fills
	// it with ContentKey; callers that already own a handle may set it.
	Key ImageKey
}

// NewImage wraps pix as a width x height image keyed by its content.
// pix must hold exactly width*height*4 bytes.
func NewImage(width, height int, pix []byte) (*Image, error) {
	img := &Image{Pix: pix, Width: width, Height: height}
	if err := img.Validate(); err != nil {
		return nil, err
	}
	img.Key = ContentKey(width, height, pix)
	return img, nil
}

// NewImageWithKey wraps pix using a caller-supplied identity.
func NewImageWithKey(key ImageKey, width, height int, pix []byte) (*Image, error) {
	img := &Image{Pix: pix, Width: width, Height: height, Key: key}
	if err := img.Validate(); err != nil {
		return nil, err
	}
	return img, nil
}

// ContentKey hashes the dimensions and pixels with xxhash. Equal content
// yields equal keys across runs.
func ContentKey(width, height int, pix []byte) ImageKey {
	var hdr [16]byte
	binary.LittleEndian.PutUint64(hdr[0:], uint64(width))  //nolint:gosec // G115: dimensions validated positive
	binary.LittleEndian.PutUint64(hdr[8:], uint64(height)) //nolint:gosec // G115: dimensions validated positive

	d := xxhash.New()
	_, _ = d.Write(hdr[:])
	_, _ = d.Write(pix)
	return ImageKey(d.Sum64())
}

// Validate checks that the image has positive area and a pixel buffer of
// the right length.
func (img *Image) Validate() error {
	if img == nil {
		return &InvalidImageError{Reason: "nil image"}
	}
	if img.Width <= 0 || img.Height <= 0 {
		return &InvalidImageError{Width: img.Width, Height: img.Height, Reason: "zero area"}
	}
	if want := img.Width * img.Height * 4; len(img.Pix) != want {
		return &InvalidImageError{
			Width:  img.Width,
			Height: img.Height,
			Reason: fmt.Sprintf("pixel buffer has %d bytes, want %d", len(img.Pix), want),
		}
	}
	return nil
}

// Bounds returns the image size as a Rect at the origin.
func (img *Image) Bounds() Rect {
	return Rect{Width: float32(img.Width), Height: float32(img.Height)}
}

// NRGBA returns a view of the pixels as an *image.NRGBA sharing memory.
func (img *Image) NRGBA() *image.NRGBA {
	return &image.NRGBA{
		Pix:    img.Pix,
		Stride: img.Width * 4,
		Rect:   image.Rect(0, 0, img.Width, img.Height),
	}
}

// FromImage converts any image.Image to an Image keyed by content.
func FromImage(src image.Image) (*Image, error) {
	b := src.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), src, b.Min, draw.Src)
	return NewImage(b.Dx(), b.Dy(), dst.Pix)
}

// FromImageScaled converts src to a width x height Image using bilinear
// resampling.
func FromImageScaled(src image.Image, width, height int) (*Image, error) {
	if width <= 0 || height <= 0 {
		return nil, &InvalidImageError{Width: width, Height: height, Reason: "zero area"}
	}
	dst := image.NewNRGBA(image.Rect(0, 0, width, height))
	draw.BiLinear.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)
	return NewImage(width, height, dst.Pix)
}

// Decode reads a PNG, JPEG, BMP or WebP image.
func Decode(r io.Reader) (*Image, error) {
	src, _, err := image.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("sprite: decode image: %w", err)
	}
	return FromImage(src)
}

// LoadImage decodes the image file at path.
func LoadImage(path string) (*Image, error) {
	f, err := os.Open(path) //nolint:gosec // G304: caller-supplied path
	if err != nil {
		return nil, fmt.Errorf("sprite: open image: %w", err)
	}
	defer f.Close()
	return Decode(f)
}

// LoadImages decodes the files at paths concurrently, preserving order.
// It returns the error of the first failing path.
func LoadImages(paths ...string) ([]*Image, error) {
	out := make([]*Image, len(paths))
	err := parallel.Map(len(paths), 0, func(i int) error {
		img, err := LoadImage(paths[i])
		if err != nil {
			return fmt.Errorf("%s: %w", paths[i], err)
		}
		out[i] = img
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
