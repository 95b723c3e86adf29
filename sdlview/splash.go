package sdlview

import (
	"fmt"

	"github.com/Zyko0/go-sdl3/img"
	"github.com/Zyko0/go-sdl3/sdl"
)

// ShowSplash shows an image centred on the window until a key is pressed.
// It returns false when the participant pressed escape or closed the window.
// An empty path is a no-op.
func (b *Backend) ShowSplash(path string) (bool, error) {
	if path == "" {
		return true, nil
	}
	tex, err := img.LoadTexture(b.renderer, path)
	if err != nil {
		return true, fmt.Errorf("load splash %s: %w", path, err)
	}
	defer tex.Destroy()

	tw, th, _ := tex.Size()
	scale := b.cfg.ScaleFactor
	dst := sdl.FRect{
		X: (float32(b.w) - tw*scale) / 2.0,
		Y: (float32(b.h) - th*scale) / 2.0,
		W: tw * scale,
		H: th * scale,
	}

	bg := b.cfg.BGColor
	b.renderer.SetDrawColor(bg.R, bg.G, bg.B, bg.A)
	b.renderer.Clear()
	b.renderer.RenderTexture(tex, nil, &dst)
	b.renderer.Present()

	for {
		var event sdl.Event
		if err := sdl.WaitEvent(&event); err != nil {
			return true, nil
		}
		switch event.Type {
		case sdl.EVENT_QUIT:
			return false, nil
		case sdl.EVENT_KEY_DOWN:
			return event.KeyboardEvent().Key != sdl.K_ESCAPE, nil
		}
	}
}
