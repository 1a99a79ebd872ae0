package tuner

import (
	"testing"
	"time"
)

func TestOfflineRetune(t *testing.T) {
	tun := NewOffline(100000000, 1e6, 240, time.Millisecond)
	defer tun.Close()

	if err := tun.SetLOFrequency(101000000); err != nil {
		t.Fatalf("SetLOFrequency: %v", err)
	}
	if got := tun.LOFrequency(); got != 101000000 {
		t.Fatalf("LOFrequency: (got: %v) (expected: 101000000)", got)
	}
}

func TestOfflineSweeps(t *testing.T) {
	tun := NewOffline(100000000, 1e6, 240, time.Millisecond)
	defer tun.Close()

	select {
	case frame := <-tun.Frames():
		if len(frame.RSSI) != 240 {
			t.Fatalf("RSSI bins: (got: %v) (expected: 240)", len(frame.RSSI))
		}
		if frame.BaseFreqHz != 100000000-500000 {
			t.Fatalf("BaseFreqHz: (got: %v) (expected: 99500000)", frame.BaseFreqHz)
		}
		if frame.ChanSpacingHz == 0 {
			t.Fatalf("ChanSpacingHz is zero")
		}
	case <-time.After(time.Second):
		t.Fatalf("no sweep frame delivered")
	}
}

func TestOfflineCloseEndsFrames(t *testing.T) {
	tun := NewOffline(100000000, 1e6, 240, time.Millisecond)
	tun.Close()

	deadline := time.After(time.Second)
	for {
		select {
		case _, ok := <-tun.Frames():
			if !ok {
				return
			}
		case <-deadline:
			t.Fatalf("Frames channel not closed after Close")
		}
	}
}
