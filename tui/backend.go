// Package tui runs the experiment in a terminal. Text is centred with
// lipgloss, keys come from bubbletea and sound plays through the beep
// speaker.
package tui

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/speaker"
	"github.com/rs/zerolog"

	"github.com/joctavio287/Dichotic/engine"
)

const keyBuffer = 64

type Options struct {
	Display engine.DisplayConfig
	// Audio enables the beep speaker. Without it Play is silent.
	Audio bool
	Log   zerolog.Logger
}

// Backend implements engine.Backend for a bubbletea program. Present and
// Poll are called from the runner goroutine, key presses arrive from the
// program goroutine.
type Backend struct {
	log   zerolog.Logger
	rate  float64
	start time.Time
	next  time.Time
	send  func(tea.Msg)

	keys   chan engine.KeyPress
	closed atomic.Bool

	audio  bool
	mu     sync.Mutex
	gen    uint64
	voices map[uint64]*beep.Ctrl
}

func newBackend(opts Options) (*Backend, error) {
	rate := opts.Display.FrameRate
	if rate <= 0 {
		rate = 60
	}
	b := &Backend{
		log:    opts.Log,
		rate:   rate,
		start:  time.Now(),
		send:   func(tea.Msg) {},
		keys:   make(chan engine.KeyPress, keyBuffer),
		audio:  opts.Audio,
		voices: make(map[uint64]*beep.Ctrl),
	}
	if b.audio {
		if err := speaker.Init(engine.SampleRate, engine.SampleRate.N(50*time.Millisecond)); err != nil {
			return nil, fmt.Errorf("init speaker: %w", err)
		}
	}
	b.next = b.start
	return b, nil
}

func (b *Backend) Now() time.Duration { return time.Since(b.start) }
func (b *Backend) FrameRate() float64 { return b.rate }

// press is called by the model for every key the terminal reports.
func (b *Backend) press(name string) {
	select {
	case b.keys <- engine.KeyPress{Name: name, At: b.Now()}:
	default:
		b.log.Warn().Str("key", name).Msg("Key buffer full, press dropped")
	}
}

func (b *Backend) Poll() (engine.Input, error) {
	in := engine.Input{Closed: b.closed.Load()}
	for {
		select {
		case k := <-b.keys:
			in.Keys = append(in.Keys, k)
		default:
			return in, nil
		}
	}
}

func (b *Backend) Present(scene engine.Scene) error {
	b.send(sceneMsg{scene: scene})

	frame := time.Duration(float64(time.Second) / b.rate)
	b.next = b.next.Add(frame)
	if wait := time.Until(b.next); wait > 0 {
		time.Sleep(wait)
	} else if -wait > frame {
		b.next = time.Now()
	}
	return nil
}

func (b *Backend) Play(buf *engine.SoundBuffer) (engine.Voice, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.gen++
	v := engine.Voice{Gen: b.gen}
	if !b.audio {
		return v, nil
	}
	ctrl := &beep.Ctrl{Streamer: buf.Streamer()}
	b.voices[v.Gen] = ctrl
	speaker.Play(beep.Seq(ctrl, beep.Callback(func() { b.forget(v.Gen) })))
	return v, nil
}

func (b *Backend) Stop(v engine.Voice) {
	b.mu.Lock()
	ctrl, ok := b.voices[v.Gen]
	delete(b.voices, v.Gen)
	b.mu.Unlock()
	if !ok {
		return
	}
	speaker.Lock()
	ctrl.Streamer = nil
	speaker.Unlock()
}

func (b *Backend) forget(gen uint64) {
	b.mu.Lock()
	delete(b.voices, gen)
	b.mu.Unlock()
}

func (b *Backend) Close() error {
	if b.audio {
		speaker.Clear()
		speaker.Close()
		b.audio = false
	}
	return nil
}

// Run starts the terminal program and calls fn with a Backend on its own
// goroutine. It returns once fn has returned and the program has exited.
func Run(ctx context.Context, opts Options, fn func(ctx context.Context, b engine.Backend) error) error {
	b, err := newBackend(opts)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	p := tea.NewProgram(newModel(opts.Display, b), tea.WithAltScreen(), tea.WithContext(ctx))
	b.send = p.Send

	errc := make(chan error, 1)
	go func() {
		err := fn(ctx, b)
		b.Close()
		p.Send(doneMsg{})
		errc <- err
	}()

	_, perr := p.Run()
	if perr != nil && !errors.Is(perr, tea.ErrProgramKilled) {
		opts.Log.Error().Err(perr).Msg("Terminal program failed")
	}
	cancel()
	err = <-errc
	if perr != nil && !errors.Is(perr, tea.ErrProgramKilled) {
		return errors.Join(err, fmt.Errorf("terminal: %w", perr))
	}
	return err
}
