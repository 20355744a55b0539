// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package canvas provides an immediate-mode drawing context that records
// rectangle and sprite commands with a current color and transform.
//
//	c := canvas.New(packer)
//	c.SetColor(sprite.Red)
//	c.Translate(100, 50)
//	c.Rectangle(0, 0, 10, 10)
//	if err := c.Image(img, 20, 0); err != nil {
//	    return err
//	}
//	return c.Flush(frame)
package canvas

import (
	"errors"
	"fmt"

	"github.com/gogpu/sprite"
	"github.com/gogpu/sprite/atlas"
	"github.com/gogpu/sprite/batch"
)

// ErrNoPacker is returned by Image when the context has no atlas packer.
var ErrNoPacker = errors.New("canvas: no atlas packer")

// Target receives the recorded commands. *render.Frame implements it.
type Target interface {
	SetClearColor(c sprite.Color)
	Draw(cmds []batch.Command) error
}

// Context records draw commands. The zero value is not usable; create
// contexts with New.
type Context struct {
	packer *atlas.Packer

	color     sprite.Color
	clear     sprite.Color
	transform sprite.Transform
	stack     []sprite.Transform

	cmds []batch.Command
}

// New returns a context drawing in white with an identity transform.
// packer may be nil if Image is never called.
func New(packer *atlas.Packer) *Context {
	return &Context{
		packer: packer,
		color:  sprite.White,
		clear:  sprite.Black,
	}
}

// SetColor sets the color of subsequent rectangles.
func (c *Context) SetColor(col sprite.Color) { c.color = col }

// Color returns the current color.
func (c *Context) Color() sprite.Color { return c.color }

// SetClearColor sets the color the target is cleared to on Flush.
func (c *Context) SetClearColor(col sprite.Color) { c.clear = col }

// ClearColor returns the clear color.
func (c *Context) ClearColor() sprite.Color { return c.clear }

// Transform returns the current transform.
func (c *Context) Transform() sprite.Transform { return c.transform }

// Translate applies a translation after the current transform.
func (c *Context) Translate(x, y float32) { c.transform = c.transform.Translate(x, y) }

// Scale applies a scale after the current transform.
func (c *Context) Scale(x, y float32) { c.transform = c.transform.Scale(x, y) }

// Rotate applies a rotation by angle radians after the current transform.
func (c *Context) Rotate(angle float32) { c.transform = c.transform.Rotate(angle) }

// Shear applies a shear after the current transform.
func (c *Context) Shear(sx, sy float32) { c.transform = c.transform.Shear(sx, sy) }

// Origin resets the transform to the identity.
func (c *Context) Origin() { c.transform = sprite.Transform{} }

// Push saves the current transform.
func (c *Context) Push() { c.stack = append(c.stack, c.transform) }

// Pop restores the transform saved by the matching Push. Pop without a
// Push resets to the identity.
func (c *Context) Pop() {
	if len(c.stack) == 0 {
		c.transform = sprite.Transform{}
		return
	}
	c.transform = c.stack[len(c.stack)-1]
	c.stack = c.stack[:len(c.stack)-1]
}

// Reset restores the default color and transform and drops saved
// transforms. Recorded commands are kept.
func (c *Context) Reset() {
	c.color = sprite.White
	c.transform = sprite.Transform{}
	c.stack = c.stack[:0]
}

// Rectangle records a filled rectangle in the current color.
func (c *Context) Rectangle(x, y, w, h float32) {
	c.cmds = append(c.cmds, batch.Rectangle{
		Rect:      sprite.R(x, y, w, h),
		Color:     c.color,
		Transform: c.transform,
	})
}

// Sprite records slot drawn at its natural size with its top-left corner
// at (x, y).
func (c *Context) Sprite(slot atlas.Slot, x, y float32) {
	c.SpriteRect(slot, sprite.R(x, y, float32(slot.Width), float32(slot.Height)))
}

// SpriteRect records slot stretched over dest.
func (c *Context) SpriteRect(slot atlas.Slot, dest sprite.Rect) {
	c.cmds = append(c.cmds, batch.Sprite{
		Slot:      slot,
		Dest:      dest,
		Transform: c.transform,
	})
}

// Image records img at its natural size, inserting it into the packer the
// first time it is drawn. Images are identified by their key.
func (c *Context) Image(img *sprite.Image, x, y float32) error {
	if c.packer == nil {
		return ErrNoPacker
	}
	if err := img.Validate(); err != nil {
		return fmt.Errorf("canvas: image: %w", err)
	}
	slot, ok := c.packer.Lookup(img.Key)
	if !ok {
		var err error
		slot, err = c.packer.Insert(img)
		if err != nil {
			return fmt.Errorf("canvas: image: %w", err)
		}
	}
	c.Sprite(slot, x, y)
	return nil
}

// Commands returns the commands recorded since the last Flush. The slice
// is reused after Flush.
func (c *Context) Commands() []batch.Command { return c.cmds }

// Len returns the number of recorded commands.
func (c *Context) Len() int { return len(c.cmds) }

// Flush sets the target's clear color, draws the recorded commands and
// clears the command list. Commands are dropped even if Draw fails.
func (c *Context) Flush(t Target) error {
	t.SetClearColor(c.clear)
	err := t.Draw(c.cmds)
	clear(c.cmds)
	c.cmds = c.cmds[:0]
	return err
}
