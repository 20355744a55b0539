// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package render drives frames: it turns draw commands into batches,
// keeps atlas pages resident as textures and submits one render pass per
// Draw call through a gpucore.Device.
//
// # Frame lifecycle
//
// A frame is acquired with BeginFrame and finished with End, which
// presents the target. Discard releases the target without presenting and
// is a no-op after End, so it can be deferred:
//
//	frame, err := r.BeginFrame()
//	if err != nil {
//	    return err
//	}
//	defer frame.Discard()
//	if err := frame.Draw(cmds); err != nil {
//	    return err
//	}
//	return frame.End()
//
// RenderFrame wraps the same sequence.
//
// # Uploads
//
// Each Draw writes the viewport uniform, the dirty regions of atlas pages
// and the batch vertex and index data before submitting the pass that
// reads them. Queue writes are ordered before later submissions, so no
// explicit synchronization is needed.
//
// # Failures
//
// A rejected submission drops the frame: Draw and End return an error
// matching sprite.ErrFrameDropped and the target is discarded. Surface
// loss is reported as *sprite.SurfaceLostError from BeginFrame or End.
// Neither is retried internally.
//
// Renderers are not safe for concurrent use.
package render
