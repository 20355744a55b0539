// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"fmt"
	"image"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/sprite"
	"github.com/gogpu/sprite/atlas"
	"github.com/gogpu/sprite/batch"
	"github.com/gogpu/sprite/gpucore"
	"github.com/gogpu/sprite/shaders"
)

// pageTexture is the resident copy of one atlas page.
type pageTexture struct {
	texture gpucore.TextureID
	group   gpucore.BindGroupID
}

func (pt *pageTexture) destroy(d gpucore.Device) {
	d.DestroyBindGroup(pt.group)
	d.DestroyTexture(pt.texture)
}

// syncAtlas makes every page referenced by batches resident and uploads
// the dirty regions of all pages. It returns the number of bytes written.
func (r *Renderer) syncAtlas(batches []batch.Batch) (int, error) {
	uploaded := 0
	for i := range batches {
		if batches[i].Key.Kind != batch.KindSprite {
			continue
		}
		id := batches[i].Key.Atlas
		if _, ok := r.pages[id]; ok {
			continue
		}
		var page *atlas.Page
		if r.packer != nil {
			page = r.packer.Page(id)
		}
		if page == nil {
			return uploaded, fmt.Errorf("atlas %d: %w", id, ErrUnknownAtlas)
		}
		if err := r.createPageTexture(page); err != nil {
			return uploaded, err
		}
		uploaded += len(page.Pixels())
	}

	if r.packer == nil {
		return uploaded, nil
	}
	for _, page := range r.packer.Dirty() {
		pt, ok := r.pages[page.ID()]
		if !ok {
			// Not yet drawn; uploaded in full when first referenced.
			continue
		}
		region, _ := page.DirtyRegion()
		n, err := r.uploadRegion(pt, page, region)
		uploaded += n
		if err != nil {
			return uploaded, err
		}
	}
	return uploaded, nil
}

// createPageTexture creates the texture and bind group of page and uploads
// all of its pixels. A failed upload releases both again so the page is
// uploaded in full on its next reference.
func (r *Renderer) createPageTexture(page *atlas.Page) error {
	size := uint32(page.Size()) //nolint:gosec // G115: validated atlas size
	tex, err := r.device.CreateTexture(&gpucore.TextureDescriptor{
		Label:  fmt.Sprintf("atlas_page_%d", page.ID()),
		Width:  size,
		Height: size,
		Format: gputypes.TextureFormatRGBA8Unorm,
	})
	if err != nil {
		return fmt.Errorf("render: atlas %d texture: %w", page.ID(), err)
	}
	group, err := r.device.CreateBindGroup(&gpucore.BindGroupDescriptor{
		Label:    fmt.Sprintf("atlas_page_%d_group", page.ID()),
		Pipeline: r.spritePipeline,
		Group:    shaders.TextureGroup,
		Texture:  tex,
	})
	if err != nil {
		r.device.DestroyTexture(tex)
		return fmt.Errorf("render: atlas %d bind group: %w", page.ID(), err)
	}

	pt := &pageTexture{texture: tex, group: group}
	if err := r.device.WriteTexture(tex, gpucore.Region{Width: size, Height: size}, page.Pixels()); err != nil {
		pt.destroy(r.device)
		return &writeError{what: fmt.Sprintf("atlas %d", page.ID()), err: err}
	}
	r.pages[page.ID()] = pt
	page.MarkClean()
	sprite.Logger().Debug("render: atlas page resident", "page", page.ID(), "size", page.Size())
	return nil
}

// uploadRegion writes region of page into its texture. The page stays
// dirty when the write fails.
func (r *Renderer) uploadRegion(pt *pageTexture, page *atlas.Page, region image.Rectangle) (int, error) {
	data := page.SubImage(region)
	err := r.device.WriteTexture(pt.texture, gpucore.Region{
		X:      uint32(region.Min.X), //nolint:gosec // G115: inside the page
		Y:      uint32(region.Min.Y), //nolint:gosec // G115: inside the page
		Width:  uint32(region.Dx()),  //nolint:gosec // G115: inside the page
		Height: uint32(region.Dy()),  //nolint:gosec // G115: inside the page
	}, data)
	if err != nil {
		return 0, &writeError{what: fmt.Sprintf("atlas %d region %v", page.ID(), region), err: err}
	}
	page.MarkClean()
	return len(data), nil
}
