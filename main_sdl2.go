//go:build !ebiten

package main

import (
	"flag"
	"log"
	"os"
	"runtime/pprof"

	"github.com/ushitora-anqou/aqfall/constant"
	"github.com/ushitora-anqou/aqfall/util"
	"github.com/ushitora-anqou/aqfall/window"
)

func run() error {
	// Parse options
	freq := flag.Uint64("freq", constant.DEFAULT_LO_FREQ_HZ, "initial LO frequency in Hz")
	samprate := flag.Float64("samprate", constant.DEFAULT_SAMP_RATE_HZ, "sample rate in Hz")
	offline := flag.Bool("offline", false, "run without tuning hardware")
	serial := flag.String("serial", "", "serial number of the device to open")
	flag.Parse()
	util.EnableTraceFromEnv()
	if filename := os.Getenv("AQFALL_CPUPROFILE"); filename != "" {
		file, err := os.Create(filename)
		if err != nil {
			return err
		}
		defer file.Close()
		if err := pprof.StartCPUProfile(file); err != nil {
			return err
		}
		defer pprof.StopCPUProfile()
	}

	tun, err := openTuner(*offline, *serial, *freq, *samprate)
	if err != nil {
		return err
	}
	defer tun.Close()

	// Initialize SDL
	if err := window.SDLInitialize(); err != nil {
		return err
	}

	// Create a window
	wind, err := window.NewSDLWindow()
	if err != nil {
		return err
	}

	aqfall := NewAQFall(wind, tun, float64(*freq), *samprate)

	// Main loop
	synchronizer := window.NewSDLTimeSynchronizer(constant.TARGET_FPS)
	for {
		event := wind.HandleEvents()
		if event.Quit {
			return nil
		}
		if err := aqfall.Update(event); err != nil {
			// A failed retune leaves the view usable; report and go on.
			log.Printf("gesture processing: %v", err)
		}
		if err := wind.UpdateScreen(aqfall.waterfall.Zoom(), aqfall.waterfall.CenterFrequency()); err != nil {
			return err
		}
		synchronizer.MaySleep()
	}
}

func main() {
	err := run()
	if err != nil {
		log.Fatal(err)
	}
}
