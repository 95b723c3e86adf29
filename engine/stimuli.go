package engine

import (
	"slices"
	"strings"
	"time"
)

// FrameTolerance is subtracted from onset and offset times so that a
// component scheduled for t is not pushed one frame late by jitter.
const FrameTolerance = time.Millisecond

type Status int

const (
	NotStarted Status = iota
	Started
	Finished
)

func (s Status) String() string {
	switch s {
	case NotStarted:
		return "not-started"
	case Started:
		return "started"
	case Finished:
		return "finished"
	}
	return "unknown"
}

type Kind int

const (
	KindText Kind = iota
	KindShape
	KindSound
	KindKeyboard
)

func (k Kind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindShape:
		return "shape"
	case KindSound:
		return "sound"
	case KindKeyboard:
		return "keyboard"
	}
	return "unknown"
}

// Component is a stimulus or input object whose lifecycle is driven by a
// Routine. The concrete kinds are *Text, *Shape, *Sound and *Keyboard.
type Component interface {
	Name() string
	Kind() Kind
	Status() Status

	base() *Lifecycle
	reset()
	start(ctx *RoutineContext)
	done(ctx *RoutineContext) bool
	stop(ctx *RoutineContext)
}

// Lifecycle is the bookkeeping shared by every component kind.
type Lifecycle struct {
	name   string
	status Status

	// Start is the routine time of onset. StartWhen, when set, replaces it.
	Start     time.Duration
	StartWhen func(ctx *RoutineContext) bool
	// Duration stops the component once it has been running that long.
	// Zero leaves the stop to StopWhen or to the kind itself.
	Duration time.Duration
	StopWhen func(ctx *RoutineContext) bool

	OnStart func(ctx *RoutineContext)
	OnStop  func(ctx *RoutineContext)

	TStart, TStop           time.Duration
	FrameNStart, FrameNStop int
}

func (l *Lifecycle) Name() string      { return l.name }
func (l *Lifecycle) Status() Status    { return l.status }
func (l *Lifecycle) base() *Lifecycle  { return l }
func (l *Lifecycle) resetLifecycle()   { l.status, l.TStart, l.TStop = NotStarted, 0, 0 }
func (l *Lifecycle) Skip()             { l.status = Finished }
func (l *Lifecycle) Running() bool     { return l.status == Started }
func (l *Lifecycle) HasFinished() bool { return l.status == Finished }

func (l *Lifecycle) shouldStart(ctx *RoutineContext) bool {
	if l.StartWhen != nil {
		return l.StartWhen(ctx)
	}
	return ctx.T >= l.Start-FrameTolerance
}

func (l *Lifecycle) shouldStop(ctx *RoutineContext) bool {
	if l.Duration > 0 && ctx.T >= l.TStart+l.Duration-FrameTolerance {
		return true
	}
	return l.StopWhen != nil && l.StopWhen(ctx)
}

// Drawable is a component the window can render.
type Drawable interface {
	Component
	drawable()
}

type Text struct {
	Lifecycle
	Text string
}

func NewText(name, text string) *Text {
	return &Text{Lifecycle: Lifecycle{name: name}, Text: text}
}

func (t *Text) Kind() Kind                { return KindText }
func (t *Text) SetText(s string)          { t.Text = s }
func (t *Text) drawable()                 {}
func (t *Text) reset()                    { t.resetLifecycle() }
func (t *Text) done(*RoutineContext) bool { return false }

func (t *Text) start(ctx *RoutineContext) { ctx.Window().AutoDraw(t, true) }
func (t *Text) stop(ctx *RoutineContext)  { ctx.Window().AutoDraw(t, false) }

type ShapeForm int

const (
	Cross ShapeForm = iota
	Rect
)

type Shape struct {
	Lifecycle
	Form ShapeForm
	// Size is a fraction of the window height.
	Size float32
}

func NewCross(name string) *Shape {
	return &Shape{Lifecycle: Lifecycle{name: name}, Form: Cross, Size: 0.1}
}

func (s *Shape) Kind() Kind                { return KindShape }
func (s *Shape) drawable()                 {}
func (s *Shape) reset()                    { s.resetLifecycle() }
func (s *Shape) done(*RoutineContext) bool { return false }

func (s *Shape) start(ctx *RoutineContext) { ctx.Window().AutoDraw(s, true) }
func (s *Shape) stop(ctx *RoutineContext)  { ctx.Window().AutoDraw(s, false) }

// Sound plays a buffer through the backend audio and finishes when the
// buffer duration has elapsed on the routine clock.
type Sound struct {
	Lifecycle
	Buffer *SoundBuffer

	voice   Voice
	playing bool
}

func NewSound(name string, buf *SoundBuffer) *Sound {
	return &Sound{Lifecycle: Lifecycle{name: name}, Buffer: buf}
}

func (s *Sound) Kind() Kind                 { return KindSound }
func (s *Sound) SetBuffer(buf *SoundBuffer) { s.Buffer = buf }
func (s *Sound) reset()                     { s.resetLifecycle(); s.playing = false }

func (s *Sound) start(ctx *RoutineContext) {
	if s.Buffer == nil {
		return
	}
	v, err := ctx.Frame.Audio.Play(s.Buffer)
	if err != nil {
		ctx.Exp.Log.Warn().Err(err).Str("sound", s.name).Msg("Playback failed, continuing silently")
		return
	}
	s.voice, s.playing = v, true
}

func (s *Sound) done(ctx *RoutineContext) bool {
	if s.Buffer == nil {
		return true
	}
	return ctx.T >= s.TStart+s.Buffer.Duration()
}

func (s *Sound) stop(ctx *RoutineContext) {
	if s.playing {
		ctx.Frame.Audio.Stop(s.voice)
		s.playing = false
	}
}

type Response struct {
	Key string
	RT  time.Duration
	// Duration is how long the key was held. Zero while it is still down or
	// when the backend does not report releases.
	Duration time.Duration
}

// Keyboard collects key presses made after it started. The escape key is
// never collected: it belongs to the global abort check.
type Keyboard struct {
	Lifecycle
	// KeyList restricts the accepted keys. Empty accepts any key.
	KeyList []string
	// ForceEnd ends the routine on the first accepted key.
	ForceEnd bool
	// Correct, when set, is compared against the response at routine end.
	Correct string

	startedAt time.Duration
	keys      []Response
}

func NewKeyboard(name string, forceEnd bool, keys ...string) *Keyboard {
	return &Keyboard{Lifecycle: Lifecycle{name: name}, KeyList: keys, ForceEnd: forceEnd}
}

func (k *Keyboard) Kind() Kind { return KindKeyboard }

func (k *Keyboard) reset() {
	k.resetLifecycle()
	k.keys = k.keys[:0]
}

func (k *Keyboard) start(ctx *RoutineContext) {
	k.startedAt = ctx.Frame.Now
	ctx.Window().Listen(k, true)
}

func (k *Keyboard) accepts(name string) bool {
	if name == KeyEscape {
		return false
	}
	return len(k.KeyList) == 0 || slices.Contains(k.KeyList, name)
}

func (k *Keyboard) done(ctx *RoutineContext) bool {
	for _, p := range ctx.Frame.Keys {
		if p.At <= k.startedAt || !k.accepts(p.Name) {
			continue
		}
		k.keys = append(k.keys, Response{Key: p.Name, RT: p.At - k.startedAt})
	}
	k.release(ctx.Frame.Releases)
	if len(k.keys) > 0 && k.ForceEnd {
		ctx.EndRoutine()
		return true
	}
	return false
}

// release sets the duration of the latest held response of each released key.
func (k *Keyboard) release(keys []KeyPress) {
	for _, up := range keys {
		for i := len(k.keys) - 1; i >= 0; i-- {
			r := &k.keys[i]
			if r.Key != up.Name {
				continue
			}
			if down := k.startedAt + r.RT; r.Duration == 0 && up.At > down {
				r.Duration = up.At - down
			}
			break
		}
	}
}

func (k *Keyboard) stop(ctx *RoutineContext) {
	k.release(ctx.Frame.Releases)
	ctx.Window().Listen(k, false)
}

// Response returns the last accepted key press.
func (k *Keyboard) Response() (Response, bool) {
	if len(k.keys) == 0 {
		return Response{}, false
	}
	return k.keys[len(k.keys)-1], true
}

// IsCorrect reports whether the response matches Correct, ignoring case.
func (k *Keyboard) IsCorrect() bool {
	r, ok := k.Response()
	return ok && k.Correct != "" && strings.EqualFold(r.Key, k.Correct)
}
