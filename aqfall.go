package main

import (
	"github.com/ushitora-anqou/aqfall/bus"
	"github.com/ushitora-anqou/aqfall/constant"
	"github.com/ushitora-anqou/aqfall/interaction"
	"github.com/ushitora-anqou/aqfall/tuner"
	"github.com/ushitora-anqou/aqfall/waterfall"
	"github.com/ushitora-anqou/aqfall/window"
)

type AQFall struct {
	bus         *bus.Bus
	waterfall   *waterfall.Waterfall
	interaction *interaction.Interaction
	tuner       tuner.Tuner
	wind        window.Window
}

func NewAQFall(wind window.Window, tun tuner.Tuner, loFreqHz, sampRateHz float64) *AQFall {
	// Build the components
	bus := bus.NewBus()
	wf := waterfall.NewWaterfall(loFreqHz, sampRateHz)
	a := &AQFall{
		bus:       bus,
		waterfall: wf,
		tuner:     tun,
		wind:      wind,
	}

	// Build up the bus. AQFall itself stands in as the tuner so retunes go
	// through the hardware before the view's reference frame moves.
	bus.Register(wf, wind, a)
	a.interaction = interaction.NewInteraction(bus)

	return a
}

// SetLOFrequency retunes the hardware and, once it acknowledges, moves the
// waterfall's tuning reference with it. On failure the reference stays where
// it was.
func (a *AQFall) SetLOFrequency(hz uint64) error {
	if err := a.tuner.SetLOFrequency(hz); err != nil {
		return err
	}
	_, sampRateHz := a.waterfall.FreqSamprate()
	a.waterfall.SetTuning(float64(hz), sampRateHz)
	return nil
}

// Update dispatches one frame's worth of input, then drains finished sweeps
// onto the display.
func (a *AQFall) Update(event *window.WindowEvent) error {
	for _, wheel := range event.Wheel {
		a.interaction.OnWheel(wheel.DeltaY, wheel.X)
	}
	for _, sample := range event.Pointer {
		switch sample.Phase {
		case window.POINTER_DOWN:
			a.interaction.OnPointerDown(sample.Event)
		case window.POINTER_UP:
			a.interaction.OnPointerUp(sample.Event)
		case window.POINTER_MOVE:
			if err := a.interaction.OnPointerMove(sample.Event); err != nil {
				return err
			}
		}
	}

	for {
		select {
		case frame, ok := <-a.tuner.Frames():
			if !ok {
				return nil
			}
			if err := a.wind.DrawRow(rowFromRSSI(frame.RSSI)); err != nil {
				return err
			}
		default:
			return nil
		}
	}
}

// rowFromRSSI maps dBm readings onto display intensities. Sweeps narrower
// than the display leave the right edge dark.
func rowFromRSSI(rssi []float32) []uint8 {
	row := make([]uint8, constant.WATERFALL_WIDTH)
	n := len(rssi)
	if n > len(row) {
		n = len(row)
	}
	for i := 0; i < n; i++ {
		v := (rssi[i] + 120.0) * 3.0
		if v < 0 {
			v = 0
		}
		if v > 255 {
			v = 255
		}
		row[i] = uint8(v)
	}
	return row
}

func openTuner(offline bool, serial string, loFreqHz uint64, sampRateHz float64) (tuner.Tuner, error) {
	if offline {
		return tuner.NewOffline(loFreqHz, sampRateHz, constant.WATERFALL_WIDTH, constant.SWEEP_INTERVAL), nil
	}
	dev, err := tuner.OpenDevice(serial)
	if err != nil {
		return nil, err
	}
	if err := dev.Configure(loFreqHz, sampRateHz, constant.WATERFALL_WIDTH); err != nil {
		dev.Close()
		return nil, err
	}
	return dev, nil
}
