// Package interaction converts pointer and wheel input into waterfall view
// changes: dragging pans in frequency, pinching and the wheel zoom about the
// pointer. Panning that runs out of visible span is owed to the tuner and paid
// off in discrete retunes.
package interaction

import (
	"math"

	"github.com/ushitora-anqou/aqfall/bus"
	"github.com/ushitora-anqou/aqfall/constant"
	"github.com/ushitora-anqou/aqfall/pointer"
	"github.com/ushitora-anqou/aqfall/util"
	"github.com/ushitora-anqou/aqfall/waterfall"
)

type Interaction struct {
	bus     *bus.Bus
	tracker *pointer.Tracker
	// Pan that could not be applied because the view hit the edge of the
	// span. Nonzero only while the view sits at a clamp boundary; cleared
	// when the last pointer lifts.
	centerFreqOverflow float32
}

func NewInteraction(bus *bus.Bus) *Interaction {
	return &Interaction{
		bus:     bus,
		tracker: pointer.NewTracker(),
	}
}

// unitsPerPx is the width of one screen pixel in normalized frequency units.
func (in *Interaction) unitsPerPx() float32 {
	widthUnits := 2.0 / in.bus.Zoom()
	return widthUnits / float32(in.bus.CanvasWidth())
}

// applyDilation rescales the view about the frequency under the pivot pixel,
// so that value does not jump when the zoom changes. Zoom and center commit
// together; nothing changes when the zoom clamp makes the dilation a no-op.
func (in *Interaction) applyDilation(dilation float32, centerPx int32) {
	zoom := in.bus.Zoom()
	newZoom := waterfall.ClampZoom(dilation * zoom)
	if newZoom == zoom {
		return
	}
	unitsPerPx := in.unitsPerPx()
	freq := in.bus.CenterFrequency()
	center := freq + float32(centerPx)*unitsPerPx - 1.0/zoom
	freq = ((dilation-1.0)*center + freq) / dilation
	freq = waterfall.ClampCenterFrequency(freq, newZoom)
	in.bus.SetZoom(newZoom)
	in.bus.SetCenterFrequency(freq)
}

// OnWheel zooms about the pointer. deltaY follows the browser convention:
// positive scrolls down and zooms out.
func (in *Interaction) OnWheel(deltaY float64, x int32) {
	dilation := float32(math.Exp(-constant.WHEEL_DILATION_RATE * deltaY))
	in.applyDilation(dilation, x)
}

func (in *Interaction) OnPointerDown(ev pointer.Event) {
	in.bus.SetCursor(constant.CURSOR_COL_RESIZE)
	in.tracker.Down(ev)
}

func (in *Interaction) OnPointerUp(ev pointer.Event) {
	in.tracker.Up(ev)
	if !in.tracker.HasActivePointers() {
		in.bus.SetCursor(constant.CURSOR_CROSSHAIR)
		// Forget the pan debt of the released gesture.
		in.centerFreqOverflow = 0
	}
}

func (in *Interaction) OnPointerMove(ev pointer.Event) error {
	if gesture := in.tracker.Move(ev); gesture != nil {
		return in.ProcessGesture(gesture)
	}
	return nil
}

// ProcessGesture routes a recognized gesture: drags pan, pinches zoom.
func (in *Interaction) ProcessGesture(gesture pointer.Gesture) error {
	switch g := gesture.(type) {
	case pointer.Drag:
		return in.pan(g.Dx)
	case pointer.Pinch:
		in.applyDilation(g.DilationX, g.CenterX)
	}
	return nil
}

// pan slides the view by a horizontal pixel delta. Dragging right moves the
// visible window left. Requested pan past the edge of the span accumulates;
// once a quarter span unit is owed the radio retunes by exactly that step and
// the view keeps its clamped position, since the retune moves the reference
// frame instead. A failed retune is reported to the caller; the debt already
// paid is not restored.
func (in *Interaction) pan(dx int32) error {
	freq := in.bus.CenterFrequency() - float32(dx)*in.unitsPerPx()
	clamped := waterfall.ClampCenterFrequency(freq, in.bus.Zoom())
	in.centerFreqOverflow += freq - clamped
	if util.Abs32(in.centerFreqOverflow) >= constant.SHIFT_THRESHOLD {
		shift := util.Copysign32(constant.SHIFT_THRESHOLD, in.centerFreqOverflow)
		in.centerFreqOverflow -= shift
		fc, fs := in.bus.FreqSamprate()
		// One normalized unit spans half the sampled bandwidth. A shift
		// past 0 Hz saturates instead of wrapping the conversion.
		newFc := fc + 0.5*float64(shift)*fs
		if newFc < 0 {
			newFc = 0
		}
		util.Trace("retune: shift=%v fc=%v -> %v", shift, fc, newFc)
		return in.bus.SetLOFrequency(uint64(newFc))
	}
	in.bus.SetCenterFrequency(clamped)
	return nil
}
