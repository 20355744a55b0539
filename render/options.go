// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import "github.com/gogpu/sprite"

// defaultQuadCapacity is the initial size of the vertex and index
// buffers, in quads.
const defaultQuadCapacity = 1024

type options struct {
	clear        sprite.Color
	viewport     sprite.Viewport
	hasViewport  bool
	quadCapacity int
}

func defaultOptions() options {
	return options{
		clear:        sprite.Black,
		quadCapacity: defaultQuadCapacity,
	}
}

// Option configures a Renderer.
type Option func(*options)

// WithClearColor sets the color the first pass of every frame clears to.
func WithClearColor(c sprite.Color) Option {
	return func(o *options) {
		o.clear = c
	}
}

// WithViewport sets the initial viewport. Without it the renderer uses the
// surface size when the surface reports one, and 1x1 otherwise.
func WithViewport(width, height int) Option {
	return func(o *options) {
		o.viewport = sprite.NewViewport(width, height)
		o.hasViewport = true
	}
}

// WithInitialVertexCapacity sets how many quads the vertex and index
// buffers hold before they first grow.
func WithInitialVertexCapacity(quads int) Option {
	return func(o *options) {
		if quads > 0 {
			o.quadCapacity = quads
		}
	}
}
