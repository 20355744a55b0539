// Command spritedemo renders a few frames of rectangles and sprites on the
// no-op GPU backend and writes the atlas pages to PNG files.
package main

import (
	"flag"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"log"
	"log/slog"
	"math"
	"os"
	"strings"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/sprite"
	"github.com/gogpu/sprite/atlas"
	"github.com/gogpu/sprite/backend"
	_ "github.com/gogpu/sprite/backend/native" // registers the noop backend
	"github.com/gogpu/sprite/canvas"
	"github.com/gogpu/sprite/input"
	"github.com/gogpu/sprite/render"
)

func main() {
	var (
		width     = flag.Int("width", 800, "viewport width")
		height    = flag.Int("height", 600, "viewport height")
		frames    = flag.Int("frames", 60, "frames to render")
		atlasSize = flag.Int("atlas", 512, "atlas page size")
		images    = flag.String("images", "", "comma separated image files to draw as sprites")
		output    = flag.String("output", "atlas", "prefix of the atlas page PNG files")
		backendID = flag.String("backend", "", "backend name (default: first available)")
		verbose   = flag.Bool("v", false, "log renderer activity")
	)
	flag.Parse()

	if *verbose {
		sprite.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})))
	}

	b, err := openBackend(*backendID)
	if err != nil {
		log.Fatalf("Failed to open backend: %v (available: %v)", err, backend.Available())
	}
	defer b.Close()
	log.Printf("Backend: %s\n", b.Name())

	surf, err := b.NewSurface(*width, *height, gputypes.TextureFormatBGRA8Unorm)
	if err != nil {
		log.Fatalf("Failed to create surface: %v", err)
	}

	cfg := atlas.DefaultConfig()
	cfg.Size = *atlasSize
	cfg.Padding = 1
	packer, err := atlas.New(cfg)
	if err != nil {
		log.Fatalf("Invalid atlas: %v", err)
	}

	r, err := render.New(b.Device(), surf, packer, render.WithClearColor(sprite.Hex("#1d2b53")))
	if err != nil {
		log.Fatalf("Failed to create renderer: %v", err)
	}
	defer r.Close()

	sprites, err := loadSprites(*images)
	if err != nil {
		log.Fatalf("Failed to load images: %v", err)
	}

	in := input.NewState()
	ctx := canvas.New(packer)
	ctx.SetClearColor(r.ClearColor())

	for i := 0; i < *frames; i++ {
		simulateInput(in, i, *width, *height)
		snap := in.Snapshot()

		err := r.RenderFrame(func(f *render.Frame) error {
			if err := drawScene(ctx, snap, sprites, i); err != nil {
				return err
			}
			return ctx.Flush(f)
		})
		if err != nil {
			log.Fatalf("Frame %d: %v", i, err)
		}
	}

	s := r.Stats()
	ps := packer.Stats()
	log.Printf("Rendered %d frames: %d batches, %d draws, %d vertices in the last frame\n",
		s.Frame, s.Batches, s.DrawCalls, s.Vertices)
	log.Printf("Atlas: %d images on %d pages, %d hits\n", ps.Images, ps.Pages, ps.Hits)

	for _, page := range packer.Pages() {
		name := fmt.Sprintf("%s_%d.png", *output, page.ID())
		if err := savePNG(name, page.Image()); err != nil {
			log.Fatalf("Failed to save: %v", err)
		}
		log.Printf("Atlas page saved to %s (%.0f%% used)\n", name, page.Utilization()*100)
	}
}

func openBackend(name string) (backend.Backend, error) {
	if name == "" {
		return backend.OpenDefault()
	}
	return backend.Open(name)
}

// simulateInput feeds the events a window would deliver: the pointer
// circles the center and space is tapped every 20 frames.
func simulateInput(in *input.State, frame, w, h int) {
	angle := float64(frame) * 0.1
	in.PointerMoved(float32(w)/2+float32(100*math.Cos(angle)), float32(h)/2+float32(100*math.Sin(angle)))
	if frame%20 == 0 {
		var mods gpucontext.Modifiers
		in.KeyDown(gpucontext.KeySpace, mods)
		in.KeyUp(gpucontext.KeySpace, mods)
	}
	if frame%2 == 0 {
		in.ButtonDown(input.ButtonLeft)
	} else {
		in.ButtonUp(input.ButtonLeft)
	}
}

func drawScene(ctx *canvas.Context, snap input.Snapshot, sprites []*sprite.Image, frame int) error {
	// Background stripes
	for i := 0; i < 10; i++ {
		t := float32(i) / 10
		ctx.SetColor(sprite.RGB(0.1+t*0.3, 0.15+t*0.2, 0.3+t*0.1))
		ctx.Rectangle(0, float32(i)*60, 800, 60)
	}

	// Rotated squares around a center
	for i := 0; i < 8; i++ {
		ctx.Push()
		ctx.Translate(-20, -20)
		ctx.Rotate(float32(i)*math.Pi/4 + float32(frame)*0.02)
		ctx.Translate(600, 150)
		ctx.SetColor(sprite.RGBA(1, float32(i)/8, 0.3, 0.8))
		ctx.Rectangle(0, 0, 40, 40)
		ctx.Pop()
	}

	// Sprites follow the pointer
	p := snap.Pointer()
	for i, img := range sprites {
		if err := ctx.Image(img, p.X+float32(i*40), p.Y); err != nil {
			return err
		}
	}

	if snap.JustPressed(gpucontext.KeySpace) {
		ctx.SetColor(sprite.White)
		ctx.Rectangle(0, 0, 800, 4)
	}
	if snap.ButtonPressed(input.ButtonLeft) {
		ctx.SetColor(sprite.Hex("#ff004d"))
		ctx.Rectangle(p.X-2, p.Y-2, 4, 4)
	}
	ctx.Reset()
	return nil
}

// loadSprites decodes the listed files, or generates a small set when
// none are given.
func loadSprites(list string) ([]*sprite.Image, error) {
	if list != "" {
		paths := strings.Split(list, ",")
		for i := range paths {
			paths[i] = strings.TrimSpace(paths[i])
		}
		return sprite.LoadImages(paths...)
	}

	palette := []color.NRGBA{
		{R: 0xff, G: 0x00, B: 0x4d, A: 0xff},
		{R: 0x00, G: 0xe4, B: 0x36, A: 0xff},
		{R: 0x29, G: 0xad, B: 0xff, A: 0xff},
		{R: 0xff, G: 0xec, B: 0x27, A: 0xff},
	}
	var out []*sprite.Image
	for i, c := range palette {
		src := checkerboard(8+i*4, c)
		img, err := sprite.FromImage(src)
		if err != nil {
			return nil, err
		}
		out = append(out, img)
	}
	// An upscaled copy exercises the resampling path.
	big, err := sprite.FromImageScaled(checkerboard(8, palette[0]), 32, 32)
	if err != nil {
		return nil, err
	}
	return append(out, big), nil
}

func checkerboard(size int, c color.NRGBA) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, size, size))
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			if (x/2+y/2)%2 == 0 {
				img.SetNRGBA(x, y, c)
			} else {
				img.SetNRGBA(x, y, color.NRGBA{A: 0x80})
			}
		}
	}
	return img
}

func savePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(f, img); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
