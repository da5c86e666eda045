// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package quad

import (
	"github.com/gogpu/gpucontext"
	"github.com/gogpu/quad/gpu"
)

// Event is a windowing event delivered to a Bridge.
type Event interface {
	isEvent()
}

// RedrawEvent asks for a new frame.
type RedrawEvent struct{}

// ResizeEvent reports a new surface size in physical pixels and the
// scale factor.
type ResizeEvent struct {
	Width, Height int
	Scale         float64
}

// KeyEvent reports a key press or release.
type KeyEvent struct {
	Key    gpucontext.Key
	Mods   gpucontext.Modifiers
	Down   bool
	Repeat bool
}

// CharEvent reports text input.
type CharEvent struct {
	Char rune
}

// PointerAction is the kind of pointer event.
type PointerAction uint8

// Pointer actions.
const (
	PointerMove PointerAction = iota
	PointerDown
	PointerUp
	PointerScroll
)

// PointerEvent reports pointer movement, buttons and scrolling. X and Y
// are logical pixels.
type PointerEvent struct {
	Action PointerAction
	X, Y   float64
	// Button is the button index for PointerDown and PointerUp, 0 being
	// the primary button.
	Button int
	// DX and DY are the scroll deltas for PointerScroll.
	DX, DY float64
	Mods   gpucontext.Modifiers
}

// ContextLostEvent reports that the GPU context is gone.
type ContextLostEvent struct{}

// ContextRestoredEvent carries the device that replaces a lost one.
type ContextRestoredEvent struct {
	Device gpu.Device
}

// CloseEvent asks the bridge to tear down.
type CloseEvent struct{}

func (RedrawEvent) isEvent()          {}
func (ResizeEvent) isEvent()          {}
func (KeyEvent) isEvent()             {}
func (CharEvent) isEvent()            {}
func (PointerEvent) isEvent()         {}
func (ContextLostEvent) isEvent()     {}
func (ContextRestoredEvent) isEvent() {}
func (CloseEvent) isEvent()           {}
