// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package input collects keyboard and pointer events as they arrive and
// exposes them to the render loop as one immutable snapshot per frame.
//
// Event methods may be called from the window goroutine while the render
// goroutine takes snapshots.
package input

import (
	"maps"
	"sync"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/sprite"
)

// Button is a pointer button.
type Button uint8

// Pointer buttons.
const (
	ButtonLeft Button = iota
	ButtonRight
	ButtonMiddle

	buttonCount
)

func (b Button) String() string {
	switch b {
	case ButtonLeft:
		return "left"
	case ButtonRight:
		return "right"
	case ButtonMiddle:
		return "middle"
	default:
		return "unknown"
	}
}

// State accumulates events between snapshots.
type State struct {
	mu sync.Mutex

	keys      map[gpucontext.Key]bool
	modifiers gpucontext.Modifiers
	pointer   sprite.Point
	buttons   [buttonCount]bool

	// pressed since the last snapshot, even if already released
	keyEdges    map[gpucontext.Key]bool
	buttonEdges [buttonCount]bool
}

// NewState returns an empty State.
func NewState() *State {
	return &State{
		keys:     make(map[gpucontext.Key]bool),
		keyEdges: make(map[gpucontext.Key]bool),
	}
}

// KeyDown records a key press.
func (s *State) KeyDown(key gpucontext.Key, mods gpucontext.Modifiers) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.keys[key] {
		s.keyEdges[key] = true
	}
	s.keys[key] = true
	s.modifiers = mods
}

// KeyUp records a key release.
func (s *State) KeyUp(key gpucontext.Key, mods gpucontext.Modifiers) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.keys, key)
	s.modifiers = mods
}

// PointerMoved records the pointer position in pixels.
func (s *State) PointerMoved(x, y float32) {
	s.mu.Lock()
	s.pointer = sprite.Pt(x, y)
	s.mu.Unlock()
}

// ButtonDown records a button press. Unknown buttons are ignored.
func (s *State) ButtonDown(b Button) {
	if b >= buttonCount {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.buttons[b] {
		s.buttonEdges[b] = true
	}
	s.buttons[b] = true
}

// ButtonUp records a button release.
func (s *State) ButtonUp(b Button) {
	if b >= buttonCount {
		return
	}
	s.mu.Lock()
	s.buttons[b] = false
	s.mu.Unlock()
}

// Snapshot returns the current input and starts a new edge window.
func (s *State) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := Snapshot{
		keys:        maps.Clone(s.keys),
		justPressed: s.keyEdges,
		modifiers:   s.modifiers,
		pointer:     s.pointer,
		buttons:     s.buttons,
		buttonEdges: s.buttonEdges,
	}
	s.keyEdges = make(map[gpucontext.Key]bool)
	s.buttonEdges = [buttonCount]bool{}
	return snap
}

// Snapshot is the input state at one point in time. The zero value has
// nothing pressed.
type Snapshot struct {
	keys        map[gpucontext.Key]bool
	justPressed map[gpucontext.Key]bool
	modifiers   gpucontext.Modifiers
	pointer     sprite.Point
	buttons     [buttonCount]bool
	buttonEdges [buttonCount]bool
}

// KeyPressed reports whether key is held.
func (s Snapshot) KeyPressed(key gpucontext.Key) bool { return s.keys[key] }

// JustPressed reports whether key went down since the previous snapshot.
func (s Snapshot) JustPressed(key gpucontext.Key) bool { return s.justPressed[key] }

// Modifiers returns the modifiers of the most recent key event.
func (s Snapshot) Modifiers() gpucontext.Modifiers { return s.modifiers }

// Pointer returns the pointer position in pixels.
func (s Snapshot) Pointer() sprite.Point { return s.pointer }

// ButtonPressed reports whether b is held.
func (s Snapshot) ButtonPressed(b Button) bool {
	return b < buttonCount && s.buttons[b]
}

// ButtonJustPressed reports whether b went down since the previous
// snapshot.
func (s Snapshot) ButtonJustPressed(b Button) bool {
	return b < buttonCount && s.buttonEdges[b]
}
