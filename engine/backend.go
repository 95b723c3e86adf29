package engine

import (
	"slices"
	"time"
)

// Key names are lower case; backends normalise their native names to these.
const (
	KeyEscape = "escape"
	KeySpace  = "space"
)

// KeyPress is a key going down, or up when reported in Releases.
type KeyPress struct {
	Name string
	// At is the global clock reading of the event.
	At time.Duration
}

// Input is what a backend reports since the previous poll. Backends that
// cannot see key releases leave Releases empty.
type Input struct {
	Keys     []KeyPress
	Releases []KeyPress
	Closed   bool
}

// Voice identifies one playing buffer.
type Voice struct {
	Slot int
	Gen  uint64
}

type Audio interface {
	Play(buf *SoundBuffer) (Voice, error)
	Stop(v Voice)
}

// Backend is the presentation runtime: clock, input, display and audio.
type Backend interface {
	Audio
	// Now reads the global clock, zero at backend creation.
	Now() time.Duration
	Poll() (Input, error)
	// Present shows the scene and blocks until the next frame is due.
	Present(scene Scene) error
	FrameRate() float64
	Close() error
}

// Frame is handed to every scheduled task on each tick.
type Frame struct {
	N        int
	Now      time.Duration
	Keys     []KeyPress
	Releases []KeyPress
	Closed   bool
	Audio    Audio
}

// Escaped reports whether the frame carries a request to abort the run.
func (f *Frame) Escaped() bool {
	if f.Closed {
		return true
	}
	return slices.ContainsFunc(f.Keys, func(k KeyPress) bool { return k.Name == KeyEscape })
}

// Scene is the state of the window for one frame.
type Scene struct {
	Items []Drawable
	// Listening holds the key lists of the keyboards currently polled.
	Listening [][]string
}

// Window tracks what is drawn on every frame and which keyboards are
// listening, the way auto-draw works in builder-style experiment scripts.
type Window struct {
	items     []Drawable
	listening []*Keyboard
}

func NewWindow() *Window { return &Window{} }

func (w *Window) AutoDraw(d Drawable, on bool) {
	i := slices.Index(w.items, d)
	switch {
	case on && i < 0:
		w.items = append(w.items, d)
	case !on && i >= 0:
		w.items = slices.Delete(w.items, i, i+1)
	}
}

func (w *Window) Listen(k *Keyboard, on bool) {
	i := slices.Index(w.listening, k)
	switch {
	case on && i < 0:
		w.listening = append(w.listening, k)
	case !on && i >= 0:
		w.listening = slices.Delete(w.listening, i, i+1)
	}
}

func (w *Window) Clear() {
	w.items = nil
	w.listening = nil
}

func (w *Window) Scene() Scene {
	s := Scene{Items: slices.Clone(w.items)}
	for _, k := range w.listening {
		s.Listening = append(s.Listening, k.KeyList)
	}
	return s
}
