//go:build ebiten

package main

import (
	"flag"
	"log"
	"os"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"github.com/ushitora-anqou/aqfall/constant"
	"github.com/ushitora-anqou/aqfall/pointer"
	"github.com/ushitora-anqou/aqfall/util"
	"github.com/ushitora-anqou/aqfall/window"
)

type Game struct {
	aqfall   *AQFall
	wind     *window.EbitenWindow
	touchIDs []ebiten.TouchID
}

func NewGame(wind *window.EbitenWindow, aqfall *AQFall) *Game {
	return &Game{
		aqfall: aqfall,
		wind:   wind,
	}
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return constant.WATERFALL_WIDTH, constant.WATERFALL_HEIGHT
}

func (g *Game) Update() error {
	if ebiten.IsKeyPressed(ebiten.KeyEscape) {
		os.Exit(0)
	}

	event := &window.WindowEvent{}

	if _, wheelY := ebiten.Wheel(); wheelY != 0 {
		x, _ := ebiten.CursorPosition()
		event.Wheel = append(event.Wheel, window.WheelSample{
			DeltaY: -wheelY * constant.WHEEL_NOTCH_PX,
			X:      int32(x),
		})
	}

	x, y := ebiten.CursorPosition()
	mouse := pointer.Event{ID: pointer.MouseID, X: int32(x), Y: int32(y)}
	switch {
	case inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft):
		event.Pointer = append(event.Pointer, window.PointerSample{Phase: window.POINTER_DOWN, Event: mouse})
	case inpututil.IsMouseButtonJustReleased(ebiten.MouseButtonLeft):
		event.Pointer = append(event.Pointer, window.PointerSample{Phase: window.POINTER_UP, Event: mouse})
	case ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft):
		event.Pointer = append(event.Pointer, window.PointerSample{Phase: window.POINTER_MOVE, Event: mouse})
	}

	for _, id := range inpututil.AppendJustPressedTouchIDs(nil) {
		tx, ty := ebiten.TouchPosition(id)
		event.Pointer = append(event.Pointer, window.PointerSample{
			Phase: window.POINTER_DOWN,
			Event: pointer.Event{ID: int64(id), X: int32(tx), Y: int32(ty)},
		})
	}
	for _, id := range inpututil.AppendJustReleasedTouchIDs(nil) {
		event.Pointer = append(event.Pointer, window.PointerSample{
			Phase: window.POINTER_UP,
			Event: pointer.Event{ID: int64(id)},
		})
	}
	g.touchIDs = ebiten.AppendTouchIDs(g.touchIDs[:0])
	for _, id := range g.touchIDs {
		tx, ty := ebiten.TouchPosition(id)
		event.Pointer = append(event.Pointer, window.PointerSample{
			Phase: window.POINTER_MOVE,
			Event: pointer.Event{ID: int64(id), X: int32(tx), Y: int32(ty)},
		})
	}

	if err := g.aqfall.Update(event); err != nil {
		// A failed retune leaves the view usable; report and go on.
		log.Printf("gesture processing: %v", err)
	}
	return nil
}

func (g *Game) Draw(screen *ebiten.Image) {
	screen.WritePixels(g.wind.Render(
		g.aqfall.waterfall.Zoom(),
		g.aqfall.waterfall.CenterFrequency(),
	))
}

func run() error {
	// Parse options
	freq := flag.Uint64("freq", constant.DEFAULT_LO_FREQ_HZ, "initial LO frequency in Hz")
	samprate := flag.Float64("samprate", constant.DEFAULT_SAMP_RATE_HZ, "sample rate in Hz")
	offline := flag.Bool("offline", false, "run without tuning hardware")
	serial := flag.String("serial", "", "serial number of the device to open")
	flag.Parse()
	util.EnableTraceFromEnv()

	tun, err := openTuner(*offline, *serial, *freq, *samprate)
	if err != nil {
		return err
	}
	defer tun.Close()

	if err := window.EbitenInitialize(); err != nil {
		return err
	}
	wind, err := window.NewEbitenWindow()
	if err != nil {
		return err
	}

	aqfall := NewAQFall(wind, tun, float64(*freq), *samprate)
	return ebiten.RunGame(NewGame(wind, aqfall))
}

func main() {
	err := run()
	if err != nil {
		log.Fatal(err)
	}
}
