// Package sdlview presents the experiment in an SDL3 window: text and
// fixation crosses on the renderer, sound through an SDL audio stream fed by
// engine.Mixer, keys from the SDL event queue.
package sdlview

import (
	"errors"
	"fmt"
	"time"

	"github.com/Zyko0/go-sdl3/sdl"
	"github.com/Zyko0/go-sdl3/ttf"
	"github.com/rs/zerolog"

	"github.com/joctavio287/Dichotic/engine"
)

const mixScratchBytes = 4096

// Backend implements engine.Backend on SDL3. It must be created and used
// from the main OS thread.
type Backend struct {
	cfg engine.DisplayConfig
	log zerolog.Logger

	window   *sdl.Window
	renderer *sdl.Renderer
	font     *ttf.Font
	stream   *sdl.AudioStream
	mixer    *engine.Mixer
	scratch  []byte
	texts    *textCache

	w, h        int
	rate        float64
	start       uint64
	lastPresent uint64
}

func Open(cfg engine.DisplayConfig, title string, log zerolog.Logger) (b *Backend, err error) {
	if err := sdl.Init(sdl.INIT_VIDEO | sdl.INIT_AUDIO | sdl.INIT_EVENTS); err != nil {
		return nil, fmt.Errorf("init sdl: %w", err)
	}
	if err := ttf.Init(); err != nil {
		sdl.Quit()
		return nil, fmt.Errorf("init ttf: %w", err)
	}
	b = &Backend{cfg: cfg, log: log, mixer: engine.NewMixer(), scratch: make([]byte, mixScratchBytes)}
	defer func() {
		if err != nil {
			b.Close()
		}
	}()

	flags := sdl.WINDOW_RESIZABLE
	if cfg.Fullscreen {
		flags |= sdl.WINDOW_FULLSCREEN
	}
	b.window, b.renderer, err = sdl.CreateWindowAndRenderer(title, cfg.Width, cfg.Height, flags)
	if err != nil {
		return nil, fmt.Errorf("create window: %w", err)
	}
	b.w, b.h = cfg.Width, cfg.Height
	b.updateSize()
	if cfg.VSync {
		b.renderer.SetVSync(1)
	} else {
		b.renderer.SetVSync(0)
	}

	fontPath := cfg.FontFile
	if fontPath == "" {
		fontPath = DefaultFontPath()
	}
	if fontPath == "" {
		return nil, errors.New("no font found: set display.font_file")
	}
	if b.font, err = ttf.OpenFont(fontPath, float32(cfg.FontSize)); err != nil {
		return nil, fmt.Errorf("open font %s: %w", fontPath, err)
	}
	b.texts = newTextCache(b.renderer, b.font, sdlColor(cfg.TextColor))

	b.rate = cfg.FrameRate
	display := sdl.GetDisplayForWindow(b.window)
	if mode, err := display.CurrentDisplayMode(); err == nil && mode.RefreshRate > 0 {
		b.rate = float64(mode.RefreshRate)
	}

	spec := &sdl.AudioSpec{Format: sdl.AUDIO_S16, Channels: 2, Freq: engine.SampleRateHz}
	cb := sdl.NewAudioStreamCallback(b.fill)
	b.stream = sdl.AUDIO_DEVICE_DEFAULT_PLAYBACK.OpenAudioDeviceStream(spec, cb)
	if b.stream == nil {
		return nil, errors.New("open audio stream")
	}
	b.stream.ResumeDevice()

	b.start = sdl.Ticks()
	b.lastPresent = b.start
	log.Info().Int("width", b.w).Int("height", b.h).Float64("refresh", b.rate).Str("font", fontPath).Msg("SDL window opened")
	return b, nil
}

// fill runs on the SDL audio thread.
func (b *Backend) fill(stream *sdl.AudioStream, additionalAmount, totalAmount int32) {
	remaining := int(additionalAmount)
	for remaining > 0 {
		chunk := min(remaining, len(b.scratch))
		b.mixer.Mix(b.scratch[:chunk])
		stream.PutData(b.scratch[:chunk])
		remaining -= chunk
	}
}

func (b *Backend) Now() time.Duration { return time.Duration(sdl.Ticks()-b.start) * time.Millisecond }
func (b *Backend) FrameRate() float64 { return b.rate }

func (b *Backend) Play(buf *engine.SoundBuffer) (engine.Voice, error) { return b.mixer.Play(buf) }
func (b *Backend) Stop(v engine.Voice)                                { b.mixer.Stop(v) }

func (b *Backend) Poll() (engine.Input, error) {
	var in engine.Input
	var ev sdl.Event
	for sdl.PollEvent(&ev) {
		switch ev.Type {
		case sdl.EVENT_QUIT:
			in.Closed = true
		case sdl.EVENT_KEY_DOWN:
			ke := ev.KeyboardEvent()
			if ke.Repeat {
				continue
			}
			in.Keys = append(in.Keys, engine.KeyPress{Name: KeyName(ke.Key.KeyName()), At: b.Now()})
		case sdl.EVENT_KEY_UP:
			ke := ev.KeyboardEvent()
			in.Releases = append(in.Releases, engine.KeyPress{Name: KeyName(ke.Key.KeyName()), At: b.Now()})
		case sdl.EVENT_WINDOW_RESIZED, sdl.EVENT_WINDOW_PIXEL_SIZE_CHANGED:
			b.updateSize()
		}
	}
	return in, nil
}

// updateSize lays out against the real window size, which differs from the
// configured one in fullscreen or after a resize.
func (b *Backend) updateSize() {
	w, h, err := b.window.Size()
	if err != nil || w <= 0 || h <= 0 {
		return
	}
	b.w, b.h = int(w), int(h)
}

func (b *Backend) Present(scene engine.Scene) error {
	bg := b.cfg.BGColor
	b.renderer.SetDrawColor(bg.R, bg.G, bg.B, bg.A)
	b.renderer.Clear()
	for _, item := range scene.Items {
		switch it := item.(type) {
		case *engine.Text:
			b.drawText(it.Text)
		case *engine.Shape:
			b.drawShape(it)
		}
	}
	b.renderer.Present()

	if !b.cfg.VSync {
		frame := uint64(1000 / b.rate)
		if next := b.lastPresent + frame; sdl.Ticks() < next {
			sdl.Delay(uint32(next - sdl.Ticks()))
		}
	}
	b.lastPresent = sdl.Ticks()
	return nil
}

func (b *Backend) drawText(s string) {
	lines := wrapText(s, maxLineRunes(b.w, b.cfg.FontSize))
	entries := make([]*textEntry, len(lines))
	var total float32
	for i, l := range lines {
		e, err := b.texts.get(l)
		if err != nil {
			b.log.Warn().Err(err).Str("line", l).Msg("Text render failed")
			return
		}
		entries[i] = e
		total += e.h
	}

	y := textTop(b.h, total)
	for _, e := range entries {
		if e.tex != nil {
			dst := sdl.FRect{X: (float32(b.w) - e.w) / 2, Y: y, W: e.w, H: e.h}
			b.renderer.RenderTexture(e.tex, nil, &dst)
		}
		y += e.h
	}
}

func (b *Backend) drawShape(s *engine.Shape) {
	c := b.cfg.FixationColor
	b.renderer.SetDrawColor(c.R, c.G, c.B, c.A)
	switch s.Form {
	case engine.Cross:
		h, v := crossRects(b.w, b.h, s.Size)
		b.renderer.RenderFillRect(&h)
		b.renderer.RenderFillRect(&v)
	case engine.Rect:
		r := squareRect(b.w, b.h, s.Size)
		b.renderer.RenderRect(&r)
	}
}

// crossRects returns the two bars of a fixation cross centred in a w x h
// window. size is the arm length as a fraction of the window height.
func crossRects(w, h int, size float32) (horiz, vert sdl.FRect) {
	half := size * float32(h) / 2
	mx, my := float32(w)/2, float32(h)/2
	thick := max(2, half/10)
	horiz = sdl.FRect{X: mx - half, Y: my - thick/2, W: 2 * half, H: thick}
	vert = sdl.FRect{X: mx - thick/2, Y: my - half, W: thick, H: 2 * half}
	return horiz, vert
}

func squareRect(w, h int, size float32) sdl.FRect {
	half := size * float32(h) / 2
	return sdl.FRect{X: float32(w)/2 - half, Y: float32(h)/2 - half, W: 2 * half, H: 2 * half}
}

// textTop is the y of the first line of a block of the given height
// centred vertically.
func textTop(h int, total float32) float32 { return (float32(h) - total) / 2 }

func (b *Backend) Close() error {
	if b.mixer != nil {
		b.mixer.StopAll()
	}
	if b.stream != nil {
		b.stream.Destroy()
	}
	if b.texts != nil {
		b.texts.destroy()
	}
	if b.font != nil {
		b.font.Close()
	}
	if b.renderer != nil {
		b.renderer.Destroy()
	}
	if b.window != nil {
		b.window.Destroy()
	}
	ttf.Quit()
	sdl.Quit()
	return nil
}

func sdlColor(c engine.Color) sdl.Color { return sdl.Color{R: c.R, G: c.G, B: c.B, A: c.A} }
