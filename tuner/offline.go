package tuner

import (
	"math/rand"
	"sync"
	"time"
)

// Offline is a tuner without hardware behind it. Retunes always succeed and
// sweeps are synthesized: a noise floor plus one carrier pinned at the
// construction-time LO frequency, so retuning visibly slides it across the
// span.
type Offline struct {
	mu         sync.Mutex
	loFreqHz   uint64
	sampRateHz float64

	carrierHz uint64
	numChans  int
	interval  time.Duration

	frames    chan *Frame
	stop      chan struct{}
	closeOnce sync.Once
	rng       *rand.Rand
}

func NewOffline(loFreqHz uint64, sampRateHz float64, numChans int, interval time.Duration) *Offline {
	t := &Offline{
		loFreqHz:   loFreqHz,
		sampRateHz: sampRateHz,
		carrierHz:  loFreqHz,
		numChans:   numChans,
		interval:   interval,
		frames:     make(chan *Frame, 10),
		stop:       make(chan struct{}),
		rng:        rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	go t.generateLoop()
	return t
}

func (t *Offline) SetLOFrequency(hz uint64) error {
	t.mu.Lock()
	t.loFreqHz = hz
	t.mu.Unlock()
	return nil
}

// LOFrequency returns the last frequency the tuner was set to.
func (t *Offline) LOFrequency() uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.loFreqHz
}

func (t *Offline) Frames() <-chan *Frame {
	return t.frames
}

func (t *Offline) Close() error {
	t.closeOnce.Do(func() { close(t.stop) })
	return nil
}

func (t *Offline) generateLoop() {
	defer close(t.frames)
	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()

	for {
		select {
		case <-t.stop:
			return
		case <-ticker.C:
		}

		t.mu.Lock()
		loFreqHz := t.loFreqHz
		sampRateHz := t.sampRateHz
		t.mu.Unlock()

		baseHz := loFreqHz - uint64(sampRateHz/2)
		spacingHz := uint64(sampRateHz) / uint64(t.numChans)
		rssi := make([]float32, t.numChans)
		for i := range rssi {
			rssi[i] = -110 + 6*t.rng.Float32()
		}
		if spacingHz > 0 && t.carrierHz >= baseHz {
			bin := int((t.carrierHz - baseHz) / spacingHz)
			if bin < len(rssi) {
				rssi[bin] = -40
			}
		}

		frame := &Frame{
			Timestamp:     time.Now(),
			BaseFreqHz:    baseHz,
			ChanSpacingHz: spacingHz,
			RSSI:          rssi,
		}
		select {
		case t.frames <- frame:
		default:
			// Drop if the display is behind.
		}
	}
}
