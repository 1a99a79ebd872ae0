//go:build !ebiten

package window

import (
	"fmt"

	"github.com/veandco/go-sdl2/sdl"

	"github.com/ushitora-anqou/aqfall/constant"
	"github.com/ushitora-anqou/aqfall/pointer"
)

func SDLInitialize() error {
	return sdl.Init(sdl.INIT_VIDEO | sdl.INIT_EVENTS)
}

type SDLWindow struct {
	window   *sdl.Window
	renderer *sdl.Renderer
	texture  *sdl.Texture
	history  [constant.WATERFALL_WIDTH * constant.WATERFALL_HEIGHT]uint8
	cursors  [2]*sdl.Cursor
}

func NewSDLWindow() (*SDLWindow, error) {
	window, err := sdl.CreateWindow(
		constant.WINDOW_TITLE,
		sdl.WINDOWPOS_UNDEFINED,
		sdl.WINDOWPOS_UNDEFINED,
		constant.WINDOW_WIDTH,
		constant.WINDOW_HEIGHT,
		sdl.WINDOW_SHOWN,
	)
	if err != nil {
		return nil, err
	}

	renderer, err := sdl.CreateRenderer(window, -1, sdl.RENDERER_ACCELERATED)
	if err != nil {
		return nil, err
	}

	texture, err := renderer.CreateTexture(
		sdl.PIXELFORMAT_ARGB8888,
		sdl.TEXTUREACCESS_STREAMING,
		constant.WATERFALL_WIDTH,
		constant.WATERFALL_HEIGHT,
	)
	if err != nil {
		return nil, err
	}

	wind := &SDLWindow{
		window:   window,
		renderer: renderer,
		texture:  texture,
	}
	wind.cursors[constant.CURSOR_CROSSHAIR] = sdl.CreateSystemCursor(sdl.SYSTEM_CURSOR_CROSSHAIR)
	wind.cursors[constant.CURSOR_COL_RESIZE] = sdl.CreateSystemCursor(sdl.SYSTEM_CURSOR_SIZEWE)
	wind.SetCursor(constant.CURSOR_CROSSHAIR)

	return wind, nil
}

func (wind *SDLWindow) CanvasWidth() int32 {
	width, _ := wind.window.GetSize()
	return width
}

func (wind *SDLWindow) SetCursor(style uint8) {
	if int(style) < len(wind.cursors) {
		sdl.SetCursor(wind.cursors[style])
	}
}

// DrawRow scrolls the waterfall up one row and writes the new sweep at the
// bottom.
func (wind *SDLWindow) DrawRow(row []uint8) error {
	if len(row) != constant.WATERFALL_WIDTH {
		return fmt.Errorf(
			"Invalid length of waterfall row: expected %d, got %d",
			constant.WATERFALL_WIDTH,
			len(row),
		)
	}
	copy(wind.history[:], wind.history[constant.WATERFALL_WIDTH:])
	copy(wind.history[(constant.WATERFALL_HEIGHT-1)*constant.WATERFALL_WIDTH:], row)
	return nil
}

// HandleEvents drains the SDL queue, normalizing mouse and touch input. Only
// the left mouse button starts a drag; touch coordinates arrive normalized
// and are scaled to the window.
func (wind *SDLWindow) HandleEvents() *WindowEvent {
	we := &WindowEvent{}

	for event := sdl.PollEvent(); event != nil; event = sdl.PollEvent() {
		switch ev := event.(type) {
		case *sdl.QuitEvent:
			we.Quit = true

		case *sdl.KeyboardEvent:
			if ev.Type == sdl.KEYDOWN && ev.Keysym.Sym == sdl.K_ESCAPE {
				we.Quit = true
			}

		case *sdl.MouseWheelEvent:
			x, _, _ := sdl.GetMouseState()
			we.Wheel = append(we.Wheel, WheelSample{
				DeltaY: -float64(ev.Y) * constant.WHEEL_NOTCH_PX,
				X:      x,
			})

		case *sdl.MouseButtonEvent:
			if ev.Button != sdl.BUTTON_LEFT {
				break
			}
			phase := POINTER_DOWN
			if ev.Type == sdl.MOUSEBUTTONUP {
				phase = POINTER_UP
			}
			we.Pointer = append(we.Pointer, PointerSample{
				Phase: phase,
				Event: pointer.Event{ID: pointer.MouseID, X: ev.X, Y: ev.Y},
			})

		case *sdl.MouseMotionEvent:
			we.Pointer = append(we.Pointer, PointerSample{
				Phase: POINTER_MOVE,
				Event: pointer.Event{ID: pointer.MouseID, X: ev.X, Y: ev.Y},
			})

		case *sdl.TouchFingerEvent:
			width, height := wind.window.GetSize()
			sample := PointerSample{
				Event: pointer.Event{
					ID: int64(ev.FingerID),
					X:  int32(ev.X * float32(width)),
					Y:  int32(ev.Y * float32(height)),
				},
			}
			switch ev.Type {
			case sdl.FINGERDOWN:
				sample.Phase = POINTER_DOWN
			case sdl.FINGERUP:
				sample.Phase = POINTER_UP
			case sdl.FINGERMOTION:
				sample.Phase = POINTER_MOVE
			default:
				continue
			}
			we.Pointer = append(we.Pointer, sample)
		}
	}

	return we
}

// UpdateScreen uploads the waterfall bitmap and presents the part of it the
// view covers: zoom selects the width of the source rectangle, the center
// frequency its position.
func (wind *SDLWindow) UpdateScreen(zoom, centerFreq float32) error {
	pixels, _, err := wind.texture.Lock(nil)
	if err != nil {
		return err
	}
	for off, intensity := range wind.history {
		pixels[off*4+0] = intensity     // b
		pixels[off*4+1] = intensity / 2 // g
		pixels[off*4+2] = intensity / 4 // r
		pixels[off*4+3] = 0xff          // a
	}
	wind.texture.Unlock()

	left := (centerFreq - 1.0/zoom + 1.0) / 2.0 * constant.WATERFALL_WIDTH
	src := &sdl.Rect{
		X: int32(left),
		Y: 0,
		W: int32(constant.WATERFALL_WIDTH / zoom),
		H: constant.WATERFALL_HEIGHT,
	}
	wind.renderer.Clear()
	wind.renderer.Copy(wind.texture, src, nil)
	wind.renderer.Present()

	return nil
}

type SDLTimeSynchronizer struct {
	prevTicks, usPerFrame int64
}

func NewSDLTimeSynchronizer(targetFPS float64) *SDLTimeSynchronizer {
	return &SDLTimeSynchronizer{
		prevTicks:  int64(sdl.GetTicks()) * 1000,
		usPerFrame: int64(1000000.0 / targetFPS),
	}
}

func (ts *SDLTimeSynchronizer) MaySleep() {
	cur := int64(sdl.GetTicks()) * 1000
	if cur < ts.prevTicks {
		return
	}
	diff := ts.usPerFrame - (cur - ts.prevTicks)
	if diff > 1000 { // Larger than 1ms
		sdl.Delay(uint32(diff / 1000))
	}
	ts.prevTicks += ts.usPerFrame
}
