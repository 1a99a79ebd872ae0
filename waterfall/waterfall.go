package waterfall

import (
	"github.com/ushitora-anqou/aqfall/constant"
	"github.com/ushitora-anqou/aqfall/util"
)

// ClampZoom bounds a zoom level to the supported range.
func ClampZoom(zoom float32) float32 {
	return util.Clamp32(zoom, constant.MIN_ZOOM, constant.MAX_ZOOM)
}

// ClampCenterFrequency bounds a normalized center frequency so that the
// visible half-width 1/zoom never runs past the edges of the span. At zoom 1
// the only valid center is 0.
func ClampCenterFrequency(freq, zoom float32) float32 {
	maxFreq := 1.0 - 1.0/zoom
	return util.Clamp32(freq, -maxFreq, maxFreq)
}

// Waterfall holds the pan/zoom state of the displayed frequency window plus
// the tuning pair (LO frequency and sample rate) the normalized units refer
// to. Setters re-clamp so the window always stays inside the span.
type Waterfall struct {
	zoom       float32
	centerFreq float32
	loFreqHz   float64
	sampRateHz float64
}

func NewWaterfall(loFreqHz, sampRateHz float64) *Waterfall {
	return &Waterfall{
		zoom:       constant.MIN_ZOOM,
		centerFreq: 0,
		loFreqHz:   loFreqHz,
		sampRateHz: sampRateHz,
	}
}

func (w *Waterfall) Zoom() float32 {
	return w.zoom
}

func (w *Waterfall) SetZoom(zoom float32) {
	w.zoom = ClampZoom(zoom)
	w.centerFreq = ClampCenterFrequency(w.centerFreq, w.zoom)
}

func (w *Waterfall) CenterFrequency() float32 {
	return w.centerFreq
}

func (w *Waterfall) SetCenterFrequency(freq float32) {
	w.centerFreq = ClampCenterFrequency(freq, w.zoom)
}

// FreqSamprate returns the LO frequency and sample rate in Hz.
func (w *Waterfall) FreqSamprate() (float64, float64) {
	return w.loFreqHz, w.sampRateHz
}

// SetTuning moves the reference frame of the normalized units. The view keeps
// its current zoom and center; the content under them changes.
func (w *Waterfall) SetTuning(loFreqHz, sampRateHz float64) {
	w.loFreqHz = loFreqHz
	w.sampRateHz = sampRateHz
}
