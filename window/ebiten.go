//go:build ebiten

package window

import (
	"fmt"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/ushitora-anqou/aqfall/constant"
)

func EbitenInitialize() error {
	ebiten.SetTPS(constant.TARGET_FPS)
	ebiten.SetWindowSize(constant.WINDOW_WIDTH, constant.WINDOW_HEIGHT)
	ebiten.SetWindowTitle(constant.WINDOW_TITLE)
	return nil
}

// EbitenWindow works in game-layout coordinates, so the canvas is exactly one
// pixel per waterfall bin.
type EbitenWindow struct {
	history [constant.WATERFALL_WIDTH * constant.WATERFALL_HEIGHT]uint8
}

func NewEbitenWindow() (*EbitenWindow, error) {
	return &EbitenWindow{}, nil
}

func (wind *EbitenWindow) CanvasWidth() int32 {
	return constant.WATERFALL_WIDTH
}

func (wind *EbitenWindow) SetCursor(style uint8) {
	switch style {
	case constant.CURSOR_COL_RESIZE:
		ebiten.SetCursorShape(ebiten.CursorShapeEWResize)
	default:
		ebiten.SetCursorShape(ebiten.CursorShapeCrosshair)
	}
}

// DrawRow scrolls the waterfall up one row and writes the new sweep at the
// bottom.
func (wind *EbitenWindow) DrawRow(row []uint8) error {
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

// Render resamples the visible part of the waterfall into an RGBA frame.
func (wind *EbitenWindow) Render(zoom, centerFreq float32) []uint8 {
	pixels := make([]uint8, 4*constant.WATERFALL_WIDTH*constant.WATERFALL_HEIGHT)
	left := (centerFreq - 1.0/zoom + 1.0) / 2.0 * constant.WATERFALL_WIDTH
	span := constant.WATERFALL_WIDTH / zoom
	for row := 0; row < constant.WATERFALL_HEIGHT; row++ {
		for col := 0; col < constant.WATERFALL_WIDTH; col++ {
			src := int(left + float32(col)*span/constant.WATERFALL_WIDTH)
			if src < 0 {
				src = 0
			}
			if src >= constant.WATERFALL_WIDTH {
				src = constant.WATERFALL_WIDTH - 1
			}
			intensity := wind.history[row*constant.WATERFALL_WIDTH+src]
			off := row*constant.WATERFALL_WIDTH + col
			pixels[off*4+0] = intensity / 4 // r
			pixels[off*4+1] = intensity / 2 // g
			pixels[off*4+2] = intensity     // b
			pixels[off*4+3] = 0xff          // a
		}
	}
	return pixels
}
