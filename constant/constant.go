package constant

import "time"

const (
	WINDOW_TITLE     = "aqfall"
	WATERFALL_WIDTH  = 240 // spectrum bins per row
	WATERFALL_HEIGHT = 180 // rows of history kept on screen
	WINDOW_WIDTH     = WATERFALL_WIDTH * 4
	WINDOW_HEIGHT    = WATERFALL_HEIGHT * 4
	TARGET_FPS       = 30

	MIN_ZOOM = 1.0
	MAX_ZOOM = 128.0

	// Normalized frequency units of pan debt that trigger one retune.
	SHIFT_THRESHOLD = 0.25

	WHEEL_DILATION_RATE = 1e-3
	WHEEL_NOTCH_PX      = 100.0

	CURSOR_CROSSHAIR  = 0x00
	CURSOR_COL_RESIZE = 0x01

	DEFAULT_LO_FREQ_HZ   = 433920000
	DEFAULT_SAMP_RATE_HZ = 1500000

	SWEEP_INTERVAL = 50 * time.Millisecond
)
