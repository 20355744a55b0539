// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/sprite/gpucore"
)

// op is one recorded device call.
type op struct {
	kind   string
	label  string
	offset uint64
	region gpucore.Region
	data   []byte
	pass   *gpucore.RenderPass
}

func (o op) String() string {
	if o.label == "" {
		return o.kind
	}
	return o.kind + ":" + o.label
}

// recordingDevice implements gpucore.Device by recording every call.
type recordingDevice struct {
	nextID    uint64
	labels    map[uint64]string
	live      map[uint64]bool
	ops       []op
	submitErr error
	createErr map[string]error
	writeErr  map[string]error
}

func newRecordingDevice() *recordingDevice {
	return &recordingDevice{
		nextID: 1,
		labels: make(map[uint64]string),
		live:   make(map[uint64]bool),
	}
}

func (d *recordingDevice) create(kind, label string) (uint64, error) {
	if err := d.createErr[label]; err != nil {
		return 0, err
	}
	id := d.nextID
	d.nextID++
	d.labels[id] = label
	d.live[id] = true
	d.ops = append(d.ops, op{kind: kind, label: label})
	return id, nil
}

func (d *recordingDevice) destroy(kind string, id uint64) {
	if !d.live[id] {
		return
	}
	delete(d.live, id)
	d.ops = append(d.ops, op{kind: kind, label: d.labels[id]})
}

func (d *recordingDevice) CreateBuffer(desc *gpucore.BufferDescriptor) (gpucore.BufferID, error) {
	id, err := d.create("create_buffer", desc.Label)
	return gpucore.BufferID(id), err
}

func (d *recordingDevice) WriteBuffer(id gpucore.BufferID, offset uint64, data []byte) error {
	label := d.labels[uint64(id)]
	if err := d.writeErr[label]; err != nil {
		return err
	}
	d.ops = append(d.ops, op{
		kind: "write_buffer", label: label, offset: offset,
		data: append([]byte(nil), data...),
	})
	return nil
}

func (d *recordingDevice) DestroyBuffer(id gpucore.BufferID) { d.destroy("destroy_buffer", uint64(id)) }

func (d *recordingDevice) CreateTexture(desc *gpucore.TextureDescriptor) (gpucore.TextureID, error) {
	id, err := d.create("create_texture", desc.Label)
	return gpucore.TextureID(id), err
}

func (d *recordingDevice) WriteTexture(id gpucore.TextureID, region gpucore.Region, data []byte) error {
	label := d.labels[uint64(id)]
	if err := d.writeErr[label]; err != nil {
		return err
	}
	d.ops = append(d.ops, op{kind: "write_texture", label: label, region: region, data: data})
	return nil
}

func (d *recordingDevice) DestroyTexture(id gpucore.TextureID) {
	d.destroy("destroy_texture", uint64(id))
}

func (d *recordingDevice) CreatePipeline(desc *gpucore.PipelineDescriptor) (gpucore.PipelineID, error) {
	id, err := d.create("create_pipeline", desc.Label)
	return gpucore.PipelineID(id), err
}

func (d *recordingDevice) DestroyPipeline(id gpucore.PipelineID) {
	d.destroy("destroy_pipeline", uint64(id))
}

func (d *recordingDevice) CreateBindGroup(desc *gpucore.BindGroupDescriptor) (gpucore.BindGroupID, error) {
	id, err := d.create("create_bind_group", desc.Label)
	return gpucore.BindGroupID(id), err
}

func (d *recordingDevice) DestroyBindGroup(id gpucore.BindGroupID) {
	d.destroy("destroy_bind_group", uint64(id))
}

func (d *recordingDevice) Submit(pass *gpucore.RenderPass) error {
	if d.submitErr != nil {
		return d.submitErr
	}
	p := *pass
	p.Draws = append([]gpucore.DrawCall(nil), pass.Draws...)
	d.ops = append(d.ops, op{kind: "submit", label: pass.Label, pass: &p})
	return nil
}

// since returns the operations recorded after mark.
func (d *recordingDevice) since(mark int) []op { return d.ops[mark:] }

func (d *recordingDevice) submits() []*gpucore.RenderPass {
	var out []*gpucore.RenderPass
	for _, o := range d.ops {
		if o.kind == "submit" {
			out = append(out, o.pass)
		}
	}
	return out
}

func (d *recordingDevice) liveCount() int { return len(d.live) }

// fakeSurface is a gpucore.Surface with one reusable view.
type fakeSurface struct {
	width, height uint32

	acquireErr error
	presentErr error

	acquired  int
	presented int
	discarded int
	resizes   int
}

func (s *fakeSurface) Acquire() (gpucore.SurfaceTexture, error) {
	if s.acquireErr != nil {
		return nil, s.acquireErr
	}
	s.acquired++
	return &fakeTexture{s: s}, nil
}

func (s *fakeSurface) Format() gputypes.TextureFormat { return gputypes.TextureFormatBGRA8Unorm }

func (s *fakeSurface) Size() (uint32, uint32) { return s.width, s.height }

func (s *fakeSurface) Resize(w, h uint32) error {
	s.resizes++
	s.width, s.height = w, h
	return nil
}

type fakeTexture struct{ s *fakeSurface }

func (t *fakeTexture) View() gpucore.ViewID { return 1 }

func (t *fakeTexture) Present() error {
	if t.s.presentErr != nil {
		return t.s.presentErr
	}
	t.s.presented++
	return nil
}

func (t *fakeTexture) Discard() { t.s.discarded++ }

func opNames(ops []op) []string {
	out := make([]string, len(ops))
	for i, o := range ops {
		out[i] = o.String()
	}
	return out
}

func dumpOps(ops []op) string { return fmt.Sprint(opNames(ops)) }
