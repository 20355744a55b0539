// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/sprite"
	"github.com/gogpu/sprite/batch"
	"github.com/gogpu/sprite/gpucore"
)

// Frame is one acquired surface texture. Exactly one of End or Discard
// takes effect; later calls are no-ops or return ErrFrameEnded.
type Frame struct {
	r      *Renderer
	target gpucore.SurfaceTexture
	clear  sprite.Color

	passes  int
	dropped error
	ended   bool
}

// SetClearColor sets the clear color of this frame. It only has an effect
// before the first Draw.
func (f *Frame) SetClearColor(c sprite.Color) { f.clear = c }

// Dropped reports whether a submission or queue write of this frame
// failed.
func (f *Frame) Dropped() bool { return f.dropped != nil }

// Draw batches cmds and submits them as one render pass. The first pass
// of the frame clears the target; later passes draw over it.
func (f *Frame) Draw(cmds []batch.Command) error {
	if f.ended {
		return ErrFrameEnded
	}
	if f.dropped != nil {
		return f.dropped
	}
	r := f.r

	batches := r.builder.Build(cmds)
	if len(batches) == 0 {
		return nil
	}

	if err := r.writeUniform(); err != nil {
		return f.fail(err)
	}

	uploaded, err := r.syncAtlas(batches)
	r.stats.UploadBytes += uploaded
	if err != nil {
		return f.fail(err)
	}

	draws, err := r.writeGeometry(batches)
	if err != nil {
		return f.fail(err)
	}

	if err := f.submit(draws); err != nil {
		return err
	}
	r.stats.Batches += len(batches)
	r.stats.DrawCalls += len(draws)
	for i := range batches {
		r.stats.Vertices += len(batches[i].Vertices)
	}
	return nil
}

// End presents the frame. A frame with no Draw is cleared first. After a
// dropped submission End discards the target and returns the drop error.
func (f *Frame) End() error {
	if f.ended {
		return ErrFrameEnded
	}
	if f.dropped == nil && f.passes == 0 {
		_ = f.submit(nil)
	}
	f.ended = true
	f.r.frame = nil

	if f.dropped != nil {
		f.target.Discard()
		return f.dropped
	}
	if err := f.target.Present(); err != nil {
		return err
	}
	return nil
}

// Discard releases the target without presenting. It does nothing after
// End, so it is safe to defer.
func (f *Frame) Discard() {
	if f.ended {
		return
	}
	f.ended = true
	f.r.frame = nil
	f.target.Discard()
}

func (f *Frame) submit(draws []gpucore.DrawCall) error {
	r := f.r
	load := gputypes.LoadOpLoad
	if f.passes == 0 {
		load = gputypes.LoadOpClear
	}
	err := r.device.Submit(&gpucore.RenderPass{
		Label:      fmt.Sprintf("frame_%d_pass_%d", r.frameNo, f.passes),
		Target:     f.target.View(),
		LoadOp:     load,
		ClearColor: gputypes.Color{R: float64(f.clear.R), G: float64(f.clear.G), B: float64(f.clear.B), A: float64(f.clear.A)},
		Draws:      draws,
	})
	if err != nil {
		return f.drop(err)
	}
	f.passes++
	r.stats.Passes++
	return nil
}

// drop marks the frame dropped by err. Later Draw calls return the same
// error and End discards the target.
func (f *Frame) drop(err error) error {
	r := f.r
	f.dropped = fmt.Errorf("render: frame %d: %w: %w", r.frameNo, sprite.ErrFrameDropped, err)
	r.stats.Dropped++
	sprite.Logger().Warn("render: frame dropped", "frame", r.frameNo, "err", err)
	return f.dropped
}

// fail reports a Draw error. Failed queue writes drop the frame; other
// errors leave it usable.
func (f *Frame) fail(err error) error {
	var we *writeError
	if errors.As(err, &we) {
		return f.drop(err)
	}
	return fmt.Errorf("render: draw: %w", err)
}

func (r *Renderer) writeUniform() error {
	u := r.viewport.Uniform()
	var data [8]byte
	binary.LittleEndian.PutUint32(data[0:], math.Float32bits(u[0]))
	binary.LittleEndian.PutUint32(data[4:], math.Float32bits(u[1]))
	if err := r.device.WriteBuffer(r.uniform, 0, data[:]); err != nil {
		return &writeError{what: "viewport uniform", err: err}
	}
	return nil
}

// writeGeometry serializes batches into the vertex and index streams with
// one write each and returns a draw per batch, in batch order.
func (r *Renderer) writeGeometry(batches []batch.Batch) ([]gpucore.DrawCall, error) {
	r.vertexData = r.vertexData[:0]
	r.indexData = r.indexData[:0]
	vertexStarts := make([]uint64, len(batches))
	indexStarts := make([]uint64, len(batches))
	for i := range batches {
		vertexStarts[i] = uint64(len(r.vertexData))
		indexStarts[i] = uint64(len(r.indexData))
		r.vertexData = batches[i].AppendVertexData(r.vertexData)
		r.indexData = batches[i].AppendIndexData(r.indexData)
	}

	vbase, err := r.reserve(&r.vertices, uint64(len(r.vertexData)))
	if err != nil {
		return nil, err
	}
	ibase, err := r.reserve(&r.indices, uint64(len(r.indexData)))
	if err != nil {
		return nil, err
	}
	if err := r.device.WriteBuffer(r.vertices.id, vbase, r.vertexData); err != nil {
		return nil, &writeError{what: r.vertices.label, err: err}
	}
	if err := r.device.WriteBuffer(r.indices.id, ibase, r.indexData); err != nil {
		return nil, &writeError{what: r.indices.label, err: err}
	}

	r.draws = r.draws[:0]
	for i := range batches {
		b := &batches[i]
		dc := gpucore.DrawCall{
			VertexBuffer: r.vertices.id,
			VertexOffset: vbase + vertexStarts[i],
			VertexSize:   uint64(b.VertexSize()), //nolint:gosec // G115: non-negative
			IndexBuffer:  r.indices.id,
			IndexOffset:  ibase + indexStarts[i],
			IndexCount:   uint32(len(b.Indices)), //nolint:gosec // G115: bounded by buffer size
		}
		switch b.Key.Kind {
		case batch.KindSprite:
			dc.Pipeline = r.spritePipeline
			dc.BindGroups = []gpucore.BindGroupID{r.spriteUniform, r.pages[b.Key.Atlas].group}
		default:
			dc.Pipeline = r.rectPipeline
			dc.BindGroups = []gpucore.BindGroupID{r.rectUniform}
		}
		r.draws = append(r.draws, dc)
	}
	return r.draws, nil
}
