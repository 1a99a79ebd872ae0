package bus

// Waterfall is the view state of the displayed frequency window. Zoom 1 shows
// the full sampled span; the center frequency is normalized to [-1, 1] over
// that span.
type Waterfall interface {
	Zoom() float32
	SetZoom(zoom float32)
	CenterFrequency() float32
	SetCenterFrequency(freq float32)
	FreqSamprate() (float64, float64)
}

// Window is the display surface the waterfall is drawn on.
type Window interface {
	CanvasWidth() int32
	SetCursor(style uint8)
}

// Tuner retunes the local oscillator of the receive hardware.
type Tuner interface {
	SetLOFrequency(hz uint64) error
}

type Bus struct {
	Waterfall
	Window
	Tuner
}

func NewBus() *Bus {
	return &Bus{}
}

func (b *Bus) Register(waterfall Waterfall, window Window, tuner Tuner) {
	b.Waterfall = waterfall
	b.Window = window
	b.Tuner = tuner
}
