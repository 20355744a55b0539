// Package shaders holds the WGSL programs of the two render pipelines and
// their binding contract.
//
// Rectangle pipeline: position (vec2<f32>, location 0) and color
// (vec4<f32>, location 1). Sprite pipeline: position (location 0) and
// tex_coords (vec2<f32>, location 1). Both read the viewport size from a
// vec2<f32> uniform at group 0, binding 0 and map pixel coordinates to
// NDC with x' = 2x/w - 1, y' = -2y/h + 1. The sprite pipeline samples a
// 2D texture (group 1, binding 0) with a sampler (group 1, binding 1).
package shaders

import (
	_ "embed"
	"fmt"
	"slices"

	"github.com/cespare/xxhash"
	"github.com/gogpu/naga"

	"github.com/gogpu/sprite/internal/cache"
)

//go:embed rect.wgsl
var Rect string

//go:embed sprite.wgsl
var Sprite string

// Binding contract shared by both pipelines.
const (
	ViewportGroup   = 0
	ViewportBinding = 0

	TextureGroup   = 1
	TextureBinding = 0
	SamplerBinding = 1

	// ViewportUniformSize is the size of the vec2<f32> viewport uniform.
	ViewportUniformSize = 8

	// EntryVertex and EntryFragment are the entry points of both programs.
	EntryVertex   = "vs_main"
	EntryFragment = "fs_main"
)

// compiled holds SPIR-V by source hash. Failures are not cached.
var compiled = cache.New[uint64, []uint32](32)

// Compile translates WGSL source to SPIR-V words with naga. Results are
// cached by source, so repeated pipeline creation compiles once.
func Compile(src string) ([]uint32, error) {
	key := xxhash.Sum64([]byte(src))
	if code, ok := compiled.Get(key); ok {
		return slices.Clone(code), nil
	}
	code, err := compile(src)
	if err != nil {
		return nil, err
	}
	compiled.Set(key, code)
	return slices.Clone(code), nil
}

// CacheStats returns counters of the compile cache.
func CacheStats() cache.Stats { return compiled.Stats() }

func compile(src string) ([]uint32, error) {
	spirvBytes, err := naga.Compile(src)
	if err != nil {
		return nil, fmt.Errorf("shaders: compile: %w", err)
	}
	if len(spirvBytes)%4 != 0 {
		return nil, fmt.Errorf("shaders: compile: SPIR-V length %d is not a multiple of 4", len(spirvBytes))
	}

	// SPIR-V is little-endian 32-bit words
	code := make([]uint32, len(spirvBytes)/4)
	for i := range code {
		code[i] = uint32(spirvBytes[i*4]) |
			uint32(spirvBytes[i*4+1])<<8 |
			uint32(spirvBytes[i*4+2])<<16 |
			uint32(spirvBytes[i*4+3])<<24
	}
	return code, nil
}

// ValidateAll compiles both programs and reports the first failure.
func ValidateAll() error {
	for name, src := range map[string]string{"rect": Rect, "sprite": Sprite} {
		if _, err := Compile(src); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
	}
	return nil
}
