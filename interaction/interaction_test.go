package interaction

import (
	"errors"
	"testing"

	"github.com/ushitora-anqou/aqfall/bus"
	"github.com/ushitora-anqou/aqfall/constant"
	"github.com/ushitora-anqou/aqfall/pointer"
	"github.com/ushitora-anqou/aqfall/util"
	"github.com/ushitora-anqou/aqfall/waterfall"
)

type fakeWindow struct {
	width  int32
	cursor uint8
}

func (w *fakeWindow) CanvasWidth() int32 {
	return w.width
}

func (w *fakeWindow) SetCursor(style uint8) {
	w.cursor = style
}

type fakeTuner struct {
	calls []uint64
	err   error
}

func (t *fakeTuner) SetLOFrequency(hz uint64) error {
	if t.err != nil {
		return t.err
	}
	t.calls = append(t.calls, hz)
	return nil
}

type rig struct {
	in   *Interaction
	wf   *waterfall.Waterfall
	wind *fakeWindow
	tun  *fakeTuner
}

func newRig(width int32, loFreqHz, sampRateHz float64) *rig {
	b := bus.NewBus()
	wf := waterfall.NewWaterfall(loFreqHz, sampRateHz)
	wind := &fakeWindow{width: width, cursor: constant.CURSOR_CROSSHAIR}
	tun := &fakeTuner{}
	b.Register(wf, wind, tun)
	return &rig{
		in:   NewInteraction(b),
		wf:   wf,
		wind: wind,
		tun:  tun,
	}
}

// freqAt computes the frequency value under a pixel for a given view state.
func freqAt(zoom, center float32, px, width int32) float32 {
	unitsPerPx := (2.0 / zoom) / float32(width)
	return center + float32(px)*unitsPerPx - 1.0/zoom
}

func TestDilationIdentityIsNoop(t *testing.T) {
	r := newRig(1000, 100e6, 1e6)
	r.wf.SetZoom(2)
	r.wf.SetCenterFrequency(0.3)

	r.in.applyDilation(1, 123)
	if r.wf.Zoom() != 2 || r.wf.CenterFrequency() != 0.3 {
		t.Fatalf("identity dilation moved the view: zoom=%v center=%v", r.wf.Zoom(), r.wf.CenterFrequency())
	}
}

func TestDilationStopsAtZoomBounds(t *testing.T) {
	r := newRig(1000, 100e6, 1e6)
	r.wf.SetZoom(128)
	r.wf.SetCenterFrequency(0.9)

	r.in.applyDilation(2, 500)
	if r.wf.Zoom() != 128 || r.wf.CenterFrequency() != 0.9 {
		t.Fatalf("dilation at max zoom moved the view: zoom=%v center=%v", r.wf.Zoom(), r.wf.CenterFrequency())
	}

	r.wf.SetZoom(1)
	r.in.applyDilation(0.5, 500)
	if r.wf.Zoom() != 1 {
		t.Fatalf("dilation at min zoom: (got: %v) (expected: 1)", r.wf.Zoom())
	}
}

func TestDilationPreservesPivotFrequency(t *testing.T) {
	const width = 1000
	const pivot = 300
	r := newRig(width, 100e6, 1e6)
	r.wf.SetZoom(2)
	r.wf.SetCenterFrequency(0.25)

	before := freqAt(r.wf.Zoom(), r.wf.CenterFrequency(), pivot, width)
	r.in.applyDilation(1.5, pivot)
	after := freqAt(r.wf.Zoom(), r.wf.CenterFrequency(), pivot, width)

	if r.wf.Zoom() != 3 {
		t.Fatalf("zoom: (got: %v) (expected: 3)", r.wf.Zoom())
	}
	if util.Abs32(after-before) > 1e-5 {
		t.Fatalf("pivot frequency jumped: (got: %v) (expected: %v)", after, before)
	}
}

func TestZoomAboutCenterPixel(t *testing.T) {
	const width = 800
	r := newRig(width, 100e6, 1e6)

	r.in.applyDilation(2, width/2)
	if r.wf.Zoom() != 2 {
		t.Fatalf("zoom: (got: %v) (expected: 2)", r.wf.Zoom())
	}
	if got := r.wf.CenterFrequency(); util.Abs32(got) > 1e-6 {
		t.Fatalf("center: (got: %v) (expected: ~0)", got)
	}
}

func TestWheelZoomsAboutPointer(t *testing.T) {
	r := newRig(800, 100e6, 1e6)

	// Scrolling up (negative deltaY) zooms in: exp(0.5) ~ 1.6487.
	r.in.OnWheel(-500, 400)
	if zoom := r.wf.Zoom(); zoom < 1.64 || zoom > 1.66 {
		t.Fatalf("wheel zoom: (got: %v) (expected: ~1.6487)", zoom)
	}

	r.in.OnWheel(500, 400)
	if zoom := r.wf.Zoom(); util.Abs32(zoom-1) > 1e-5 {
		t.Fatalf("wheel zoom out: (got: %v) (expected: ~1)", zoom)
	}
}

func TestDragPansView(t *testing.T) {
	r := newRig(1000, 100e6, 1e6)
	r.wf.SetZoom(4)

	// unitsPerPx = (2/4)/1000 = 0.0005; dragging left moves the window right.
	if err := r.in.ProcessGesture(pointer.Drag{Dx: -100}); err != nil {
		t.Fatalf("ProcessGesture: %v", err)
	}
	if got := r.wf.CenterFrequency(); util.Abs32(got-0.05) > 1e-6 {
		t.Fatalf("center: (got: %v) (expected: 0.05)", got)
	}
	if len(r.tun.calls) != 0 {
		t.Fatalf("in-range pan retuned the radio: %v", r.tun.calls)
	}
}

func TestPinchRoutesToDilation(t *testing.T) {
	r := newRig(1000, 100e6, 1e6)
	if err := r.in.ProcessGesture(pointer.Pinch{CenterX: 500, DilationX: 2, DilationY: 1}); err != nil {
		t.Fatalf("ProcessGesture: %v", err)
	}
	if r.wf.Zoom() != 2 {
		t.Fatalf("zoom: (got: %v) (expected: 2)", r.wf.Zoom())
	}
}

func TestOverflowConservation(t *testing.T) {
	r := newRig(1000, 100e6, 1e6)
	r.wf.SetZoom(2)
	r.wf.SetCenterFrequency(0.5) // right at the bound

	// Each drag requests 0.05 past the edge; all of it becomes overflow.
	for i := 0; i < 3; i++ {
		if err := r.in.ProcessGesture(pointer.Drag{Dx: -50}); err != nil {
			t.Fatalf("ProcessGesture: %v", err)
		}
	}
	if got := r.in.centerFreqOverflow; util.Abs32(got-0.15) > 1e-5 {
		t.Fatalf("overflow: (got: %v) (expected: 0.15)", got)
	}
	if got := r.wf.CenterFrequency(); got != 0.5 {
		t.Fatalf("center moved past the bound: %v", got)
	}
	if len(r.tun.calls) != 0 {
		t.Fatalf("sub-threshold overflow retuned the radio: %v", r.tun.calls)
	}
}

func TestThresholdEmitsSingleRetune(t *testing.T) {
	r := newRig(1000, 100e6, 1e6)
	r.wf.SetZoom(4)
	r.wf.SetCenterFrequency(0.7)

	// First drag requests 0.95 against a bound of 0.75: overflow 0.20.
	if err := r.in.ProcessGesture(pointer.Drag{Dx: -500}); err != nil {
		t.Fatalf("ProcessGesture: %v", err)
	}
	if got := r.wf.CenterFrequency(); got != 0.75 {
		t.Fatalf("center: (got: %v) (expected: 0.75)", got)
	}
	if got := r.in.centerFreqOverflow; util.Abs32(got-0.2) > 1e-5 {
		t.Fatalf("overflow: (got: %v) (expected: 0.2)", got)
	}
	if len(r.tun.calls) != 0 {
		t.Fatalf("retuned before the threshold: %v", r.tun.calls)
	}

	// Second drag pushes overflow to 0.45: one retune of +0.25 units, i.e.
	// 0.5 * 0.25 * 1 MHz = +125 kHz.
	if err := r.in.ProcessGesture(pointer.Drag{Dx: -500}); err != nil {
		t.Fatalf("ProcessGesture: %v", err)
	}
	if len(r.tun.calls) != 1 || r.tun.calls[0] != 100125000 {
		t.Fatalf("retune calls: (got: %v) (expected: [100125000])", r.tun.calls)
	}
	if got := util.Abs32(r.in.centerFreqOverflow); got >= constant.SHIFT_THRESHOLD {
		t.Fatalf("overflow after retune: got %v, expected < %v", got, constant.SHIFT_THRESHOLD)
	}
	// The view keeps its clamped position; the retune moved the reference.
	if got := r.wf.CenterFrequency(); got != 0.75 {
		t.Fatalf("center after retune: (got: %v) (expected: 0.75)", got)
	}
}

func TestRetuneHonorsOverflowSign(t *testing.T) {
	r := newRig(1000, 100e6, 1e6)
	r.wf.SetZoom(4)
	r.wf.SetCenterFrequency(-0.7)

	for i := 0; i < 2; i++ {
		if err := r.in.ProcessGesture(pointer.Drag{Dx: 500}); err != nil {
			t.Fatalf("ProcessGesture: %v", err)
		}
	}
	if len(r.tun.calls) != 1 || r.tun.calls[0] != 99875000 {
		t.Fatalf("retune calls: (got: %v) (expected: [99875000])", r.tun.calls)
	}
}

func TestRetuneSaturatesAtZeroHz(t *testing.T) {
	// An LO this close to 0 Hz makes a downward shift go negative; the
	// request pins at 0 instead of wrapping around.
	r := newRig(1000, 100e3, 1e6)
	r.wf.SetZoom(4)
	r.wf.SetCenterFrequency(-0.7)

	for i := 0; i < 2; i++ {
		if err := r.in.ProcessGesture(pointer.Drag{Dx: 500}); err != nil {
			t.Fatalf("ProcessGesture: %v", err)
		}
	}
	if len(r.tun.calls) != 1 || r.tun.calls[0] != 0 {
		t.Fatalf("retune calls: (got: %v) (expected: [0])", r.tun.calls)
	}
}

func TestPointerReleaseResetsOverflow(t *testing.T) {
	r := newRig(1000, 100e6, 1e6)
	r.wf.SetZoom(2)
	r.wf.SetCenterFrequency(0.5)

	r.in.OnPointerDown(pointer.Event{ID: pointer.MouseID, X: 500, Y: 100})
	if r.wind.cursor != constant.CURSOR_COL_RESIZE {
		t.Fatalf("cursor on press: (got: %v) (expected: col-resize)", r.wind.cursor)
	}
	if err := r.in.OnPointerMove(pointer.Event{ID: pointer.MouseID, X: 450, Y: 100}); err != nil {
		t.Fatalf("OnPointerMove: %v", err)
	}
	if r.in.centerFreqOverflow == 0 {
		t.Fatalf("expected nonzero overflow before release")
	}

	r.in.OnPointerUp(pointer.Event{ID: pointer.MouseID, X: 450, Y: 100})
	if r.in.centerFreqOverflow != 0 {
		t.Fatalf("overflow after release: (got: %v) (expected: 0)", r.in.centerFreqOverflow)
	}
	if r.wind.cursor != constant.CURSOR_CROSSHAIR {
		t.Fatalf("cursor on release: (got: %v) (expected: crosshair)", r.wind.cursor)
	}
}

func TestTunerFailurePropagates(t *testing.T) {
	r := newRig(1000, 100e6, 1e6)
	r.wf.SetZoom(4)
	r.wf.SetCenterFrequency(0.7)
	r.tun.err = errors.New("hardware unavailable")

	if err := r.in.ProcessGesture(pointer.Drag{Dx: -500}); err != nil {
		t.Fatalf("sub-threshold drag must not touch the tuner: %v", err)
	}
	err := r.in.ProcessGesture(pointer.Drag{Dx: -500})
	if err == nil {
		t.Fatalf("expected tuner error to propagate")
	}
	// The debt decrement is not rolled back on failure.
	if got := r.in.centerFreqOverflow; util.Abs32(got-0.2) > 1e-5 {
		t.Fatalf("overflow after failed retune: (got: %v) (expected: 0.2)", got)
	}
}
