//go:build !nogpu

package native

import (
	"fmt"
	"slices"
	"time"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/sprite"
	"github.com/gogpu/sprite/gpucore"
	"github.com/gogpu/wgpu/hal"
)

// Submit implements gpucore.Device. It records pass into one command
// buffer and submits it without waiting. Command buffers of earlier
// submissions are freed once the queue reports their submission index
// completed; Submit only blocks when more than the configured frames are
// in flight.
func (d *Device) Submit(pass *gpucore.RenderPass) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.destroyed {
		return ErrDestroyed
	}

	target, ok := d.views[pass.Target]
	if !ok {
		return fmt.Errorf("native: submit %q: %w", pass.Label, ErrUnknownView)
	}

	encoder, err := d.device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{
		Label: pass.Label + "_encoder",
	})
	if err != nil {
		return fmt.Errorf("native: create command encoder: %w", err)
	}
	if err := encoder.BeginEncoding(pass.Label); err != nil {
		return fmt.Errorf("native: begin encoding: %w", err)
	}

	rp := encoder.BeginRenderPass(&hal.RenderPassDescriptor{
		Label: pass.Label,
		ColorAttachments: []hal.RenderPassColorAttachment{{
			View:       target,
			LoadOp:     pass.LoadOp,
			StoreOp:    gputypes.StoreOpStore,
			ClearValue: pass.ClearColor,
		}},
	})
	for i := range pass.Draws {
		if err := d.recordDraw(rp, &pass.Draws[i]); err != nil {
			rp.End()
			encoder.DiscardEncoding()
			return fmt.Errorf("native: submit %q: draw %d: %w", pass.Label, i, err)
		}
	}
	rp.End()

	cmd, err := encoder.EndEncoding()
	if err != nil {
		return fmt.Errorf("native: end encoding: %w", err)
	}

	index, err := d.queue.Submit([]hal.CommandBuffer{cmd})
	if err != nil {
		d.device.FreeCommandBuffer(cmd)
		return fmt.Errorf("native: submit: %w", err)
	}
	d.inFlight = append(d.inFlight, submission{cmd: cmd, index: index})

	return d.retire(d.framesInFlight)
}

// recordDraw binds the draw's resources and records one indexed draw.
// Caller holds mu.
func (d *Device) recordDraw(rp hal.RenderPassEncoder, dc *gpucore.DrawCall) error {
	p, ok := d.pipelines[dc.Pipeline]
	if !ok {
		return ErrUnknownPipeline
	}
	vb, ok := d.buffers[dc.VertexBuffer]
	if !ok {
		return ErrUnknownBuffer
	}
	ib, ok := d.buffers[dc.IndexBuffer]
	if !ok {
		return ErrUnknownBuffer
	}
	if len(dc.BindGroups) != len(p.groups) {
		return fmt.Errorf("%w: pipeline wants %d groups, got %d", ErrBindGroupIndex, len(p.groups), len(dc.BindGroups))
	}

	rp.SetPipeline(p.pipeline)
	for i, id := range dc.BindGroups {
		bg, ok := d.bindGroups[id]
		if !ok {
			return ErrUnknownBindGroup
		}
		rp.SetBindGroup(uint32(i), bg, nil) //nolint:gosec // G115: at most two groups
	}
	rp.SetVertexBuffer(0, vb.buf, dc.VertexOffset)
	rp.SetIndexBuffer(ib.buf, gputypes.IndexFormatUint32, dc.IndexOffset)
	rp.DrawIndexed(dc.IndexCount, 1, 0, 0, 0)
	return nil
}

// retire frees the command buffers of completed submissions, then polls
// until at most keep submissions remain in flight. Caller holds mu.
func (d *Device) retire(keep int) error {
	deadline := time.Now().Add(retireTimeout)
	for {
		completed := d.queue.PollCompleted()
		n := 0
		for n < len(d.inFlight) && d.inFlight[n].index <= completed {
			d.device.FreeCommandBuffer(d.inFlight[n].cmd)
			n++
		}
		d.inFlight = slices.Delete(d.inFlight, 0, n)

		if len(d.inFlight) <= keep {
			return nil
		}
		if time.Now().After(deadline) {
			return fmt.Errorf("%w: index %d, queue at %d", ErrSubmissionTimeout, d.inFlight[0].index, completed)
		}
		time.Sleep(retirePoll)
	}
}

// WaitIdle waits for every pending submission and frees its command
// buffer.
func (d *Device) WaitIdle() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.device.WaitIdle(); err != nil {
		return fmt.Errorf("native: wait idle: %w", err)
	}
	return d.retire(0)
}

// Destroy waits for pending work and releases every resource still
// registered, in reverse dependency order. The wrapped hal.Device is not
// destroyed. Destroy is safe to call more than once.
func (d *Device) Destroy() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.destroyed {
		return
	}
	d.destroyed = true

	if err := d.device.WaitIdle(); err != nil {
		sprite.Logger().Warn("native: destroy: wait idle", "err", err)
	}
	if err := d.retire(0); err != nil {
		sprite.Logger().Warn("native: destroy: pending work", "err", err)
		for _, s := range d.inFlight {
			d.device.FreeCommandBuffer(s.cmd)
		}
		d.inFlight = nil
	}

	for id, bg := range d.bindGroups {
		d.device.DestroyBindGroup(bg)
		delete(d.bindGroups, id)
	}
	for id, p := range d.pipelines {
		d.destroyPipeline(p)
		delete(d.pipelines, id)
	}
	if d.sampler != nil {
		d.device.DestroySampler(d.sampler)
		d.sampler = nil
	}
	for id, t := range d.textures {
		d.device.DestroyTextureView(t.view)
		d.device.DestroyTexture(t.tex)
		delete(d.textures, id)
	}
	for id, b := range d.buffers {
		d.device.DestroyBuffer(b.buf)
		delete(d.buffers, id)
	}
	clear(d.views)
}

// Stats reports live resource counts.
type Stats struct {
	Buffers, Textures, Pipelines, BindGroups, Views int
	InFlight                                        int
}

// Stats returns live resource counts.
func (d *Device) Stats() Stats {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return Stats{
		Buffers:    len(d.buffers),
		Textures:   len(d.textures),
		Pipelines:  len(d.pipelines),
		BindGroups: len(d.bindGroups),
		Views:      len(d.views),
		InFlight:   len(d.inFlight),
	}
}
