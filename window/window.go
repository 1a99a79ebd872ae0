package window

import "github.com/ushitora-anqou/aqfall/pointer"

type PointerPhase uint8

const (
	POINTER_DOWN PointerPhase = iota
	POINTER_UP
	POINTER_MOVE
)

type PointerSample struct {
	Phase PointerPhase
	Event pointer.Event
}

type WheelSample struct {
	DeltaY float64
	X      int32
}

// WindowEvent carries the input gathered since the previous frame, in arrival
// order within each slice.
type WindowEvent struct {
	Quit    bool
	Wheel   []WheelSample
	Pointer []PointerSample
}

// Window is the display surface shared by the backends.
type Window interface {
	CanvasWidth() int32
	SetCursor(style uint8)
	DrawRow(row []uint8) error
}
