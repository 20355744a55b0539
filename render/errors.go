// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import "errors"

var (
	// ErrFrameEnded is returned when a frame is used after End or Discard.
	ErrFrameEnded = errors.New("render: frame already ended")

	// ErrFrameActive is returned by BeginFrame while another frame is open.
	ErrFrameActive = errors.New("render: a frame is already active")

	// ErrClosed is returned after Close.
	ErrClosed = errors.New("render: renderer closed")

	// ErrUnknownAtlas is returned when a sprite refers to an atlas page the
	// renderer's packer does not have.
	ErrUnknownAtlas = errors.New("render: sprite references unknown atlas page")
)

// writeError is a failed queue write. Draw drops the frame on it, since
// later passes would read stale data.
type writeError struct {
	what string
	err  error
}

func (e *writeError) Error() string { return "write " + e.what + ": " + e.err.Error() }

func (e *writeError) Unwrap() error { return e.err }
