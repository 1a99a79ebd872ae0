// Package tuner drives the local-oscillator frequency of the receive hardware
// and produces the spectrum sweeps drawn on the waterfall.
package tuner

import "time"

// Frame is one spectrum sweep: per-channel RSSI in dBm, lowest frequency
// first.
type Frame struct {
	Timestamp     time.Time
	BaseFreqHz    uint64
	ChanSpacingHz uint64
	RSSI          []float32
}

type Tuner interface {
	// SetLOFrequency retunes the hardware to a new LO frequency in Hz.
	SetLOFrequency(hz uint64) error
	// Frames delivers sweep results. The channel is closed on Close.
	Frames() <-chan *Frame
	Close() error
}
