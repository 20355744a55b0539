// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/sprite"
	"github.com/gogpu/sprite/gpucore"
)

// retainFrames is how many frames a replaced buffer is kept alive, since
// submissions of earlier frames may still read it.
const retainFrames = 3

// stream is a persistent GPU buffer written front to back within a frame.
type stream struct {
	label  string
	usage  gputypes.BufferUsage
	id     gpucore.BufferID
	size   uint64
	offset uint64
}

type retiredBuffer struct {
	id    gpucore.BufferID
	frame uint64
}

func (s *stream) allocate(d gpucore.Device) error {
	id, err := d.CreateBuffer(&gpucore.BufferDescriptor{
		Label: s.label,
		Size:  s.size,
		Usage: s.usage,
	})
	if err != nil {
		return fmt.Errorf("render: create %s: %w", s.label, err)
	}
	s.id = id
	s.offset = 0
	return nil
}

func (s *stream) destroy(d gpucore.Device) {
	if s.id != gpucore.InvalidID {
		d.DestroyBuffer(s.id)
		s.id = gpucore.InvalidID
	}
}

// reserve returns the offset of n free bytes, replacing the buffer with
// one at least twice as large when the rest of the current one is too
// small. The replaced buffer is retired, not destroyed. If the larger
// buffer cannot be created the stream keeps its current buffer.
func (r *Renderer) reserve(s *stream, n uint64) (uint64, error) {
	if s.offset+n > s.size {
		size := max(s.size, 1)
		for size < n || size <= s.size {
			size *= 2
		}
		grown := stream{label: s.label, usage: s.usage, size: size}
		if err := grown.allocate(r.device); err != nil {
			return 0, err
		}
		sprite.Logger().Debug("render: grew buffer", "buffer", s.label, "from", s.size, "to", size)
		r.retired = append(r.retired, retiredBuffer{id: s.id, frame: r.frameNo})
		*s = grown
		r.stats.BufferGrowth++
	}
	off := s.offset
	s.offset += n
	return off, nil
}

// releaseRetired destroys replaced buffers no in-flight frame can read.
func (r *Renderer) releaseRetired() {
	kept := r.retired[:0]
	for _, rb := range r.retired {
		if r.frameNo-rb.frame > retainFrames {
			r.device.DestroyBuffer(rb.id)
			continue
		}
		kept = append(kept, rb)
	}
	r.retired = kept
}
