// Package pointer turns raw pointer up/down/move samples into drag and pinch
// gestures. It only tracks pointers it has seen go down, so hover movement
// produces nothing.
package pointer

// MouseID is the pointer ID used for the mouse. Touch contacts use their
// finger identifiers, which are non-negative.
const MouseID int64 = -1

// Event is one normalized pointer sample delivered by the window backend.
type Event struct {
	ID   int64
	X, Y int32
}

type Gesture interface {
	gesture()
}

// Drag is a one-pointer slide. Dx and Dy are pixel deltas since the previous
// sample of the same pointer.
type Drag struct {
	Dx, Dy int32
}

// Pinch is a two-pointer spread or squeeze. Center is the midpoint of both
// contacts; the dilations are per-axis ratios of the new span to the old one.
type Pinch struct {
	CenterX, CenterY     int32
	DilationX, DilationY float32
}

func (Drag) gesture()  {}
func (Pinch) gesture() {}

type position struct {
	x, y int32
}

type Tracker struct {
	active map[int64]position
}

func NewTracker() *Tracker {
	return &Tracker{active: make(map[int64]position)}
}

func (t *Tracker) Down(ev Event) {
	t.active[ev.ID] = position{ev.X, ev.Y}
}

func (t *Tracker) Up(ev Event) {
	delete(t.active, ev.ID)
}

func (t *Tracker) HasActivePointers() bool {
	return len(t.active) > 0
}

// Move updates the position of an active pointer and reports the gesture the
// movement completes, if any. With three or more contacts only the positions
// are updated.
func (t *Tracker) Move(ev Event) Gesture {
	prev, ok := t.active[ev.ID]
	if !ok {
		return nil
	}
	t.active[ev.ID] = position{ev.X, ev.Y}

	switch len(t.active) {
	case 1:
		if ev.X == prev.x && ev.Y == prev.y {
			return nil
		}
		return Drag{Dx: ev.X - prev.x, Dy: ev.Y - prev.y}

	case 2:
		var other position
		for id, pos := range t.active {
			if id != ev.ID {
				other = pos
			}
		}
		return Pinch{
			CenterX:   (ev.X + other.x) / 2,
			CenterY:   (ev.Y + other.y) / 2,
			DilationX: spanRatio(ev.X-other.x, prev.x-other.x),
			DilationY: spanRatio(ev.Y-other.y, prev.y-other.y),
		}
	}
	return nil
}

// spanRatio guards against degenerate spans so a dilation is always positive.
func spanRatio(cur, old int32) float32 {
	curAbs := abs32(cur)
	oldAbs := abs32(old)
	if curAbs == 0 || oldAbs == 0 {
		return 1
	}
	return float32(curAbs) / float32(oldAbs)
}

func abs32(v int32) int32 {
	if v < 0 {
		return -v
	}
	return v
}
