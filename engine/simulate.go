package engine

import (
	"fmt"
	"math/rand/v2"
	"slices"
	"time"
)

// Responder chooses a key for the keyboards currently listening.
type Responder func(listening [][]string) (string, bool)

// FirstKey answers with the first accepted key of the innermost keyboard.
func FirstKey(listening [][]string) (string, bool) {
	for i := len(listening) - 1; i >= 0; i-- {
		if len(listening[i]) > 0 {
			return listening[i][0], true
		}
	}
	return "", false
}

// RandomKey answers with a random accepted key.
func RandomKey(rng *rand.Rand) Responder {
	return func(listening [][]string) (string, bool) {
		for i := len(listening) - 1; i >= 0; i-- {
			if keys := listening[i]; len(keys) > 0 {
				return keys[rng.IntN(len(keys))], true
			}
		}
		return "", false
	}
}

// SimPlay records one call to Play.
type SimPlay struct {
	Name  string
	At    time.Duration
	Voice Voice
}

// SimBackend is a headless backend with a manual clock that advances one
// frame per Present. Key presses come from a script or a Responder.
type SimBackend struct {
	Rate float64
	// MaxFrames makes Present fail once exceeded. Zero is unlimited.
	MaxFrames int

	Responder    Responder
	ResponseTime time.Duration
	// KeyHold releases every responder press after this long. Zero never
	// releases.
	KeyHold time.Duration

	Plays   []SimPlay
	Stopped []Voice
	Frames  int

	clock       time.Duration
	script      []KeyPress
	releases    []KeyPress
	last        Scene
	listenSince time.Duration
	gen         uint64
	closed      bool
}

func NewSimBackend(rate float64) *SimBackend {
	return &SimBackend{Rate: rate, listenSince: -1}
}

// PressAt schedules a key press at the given clock time.
func (b *SimBackend) PressAt(name string, at time.Duration) {
	b.script = append(b.script, KeyPress{Name: name, At: at})
	slices.SortStableFunc(b.script, func(x, y KeyPress) int { return int(x.At - y.At) })
}

// ReleaseAt schedules a key release at the given clock time.
func (b *SimBackend) ReleaseAt(name string, at time.Duration) {
	b.releases = append(b.releases, KeyPress{Name: name, At: at})
	slices.SortStableFunc(b.releases, func(x, y KeyPress) int { return int(x.At - y.At) })
}

// CloseAt simulates the window being closed at the given time.
func (b *SimBackend) CloseAt(at time.Duration) { b.PressAt("", at) }

func (b *SimBackend) FrameDuration() time.Duration {
	return time.Duration(float64(time.Second) / b.Rate)
}

func (b *SimBackend) Now() time.Duration { return b.clock }
func (b *SimBackend) FrameRate() float64 { return b.Rate }
func (b *SimBackend) LastScene() Scene   { return b.last }

func (b *SimBackend) Close() error {
	b.closed = true
	return nil
}

func (b *SimBackend) Poll() (Input, error) {
	var in Input
	for len(b.script) > 0 && b.script[0].At <= b.clock {
		p := b.script[0]
		b.script = b.script[1:]
		if p.Name == "" {
			in.Closed = true
			continue
		}
		in.Keys = append(in.Keys, p)
	}
	for len(b.releases) > 0 && b.releases[0].At <= b.clock {
		in.Releases = append(in.Releases, b.releases[0])
		b.releases = b.releases[1:]
	}

	if b.Responder == nil || len(b.last.Listening) == 0 {
		b.listenSince = -1
		return in, nil
	}
	if b.listenSince < 0 {
		b.listenSince = b.clock
	}
	if b.clock-b.listenSince >= b.ResponseTime {
		if key, ok := b.Responder(b.last.Listening); ok {
			in.Keys = append(in.Keys, KeyPress{Name: key, At: b.clock})
			if b.KeyHold > 0 {
				b.ReleaseAt(key, b.clock+b.KeyHold)
			}
		}
		b.listenSince = -1
	}
	return in, nil
}

func (b *SimBackend) Present(scene Scene) error {
	if b.closed {
		return fmt.Errorf("present: backend closed")
	}
	b.last = scene
	b.Frames++
	if b.MaxFrames > 0 && b.Frames > b.MaxFrames {
		return fmt.Errorf("present: frame limit %d exceeded", b.MaxFrames)
	}
	b.clock += b.FrameDuration()
	return nil
}

func (b *SimBackend) Play(buf *SoundBuffer) (Voice, error) {
	b.gen++
	v := Voice{Slot: len(b.Plays) % MaxVoices, Gen: b.gen}
	b.Plays = append(b.Plays, SimPlay{Name: buf.Name, At: b.clock, Voice: v})
	return v, nil
}

func (b *SimBackend) Stop(v Voice) { b.Stopped = append(b.Stopped, v) }
