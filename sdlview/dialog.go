package sdlview

import (
	"errors"
	"fmt"

	"github.com/Zyko0/go-sdl3/sdl"
	"github.com/Zyko0/go-sdl3/ttf"

	"github.com/joctavio287/Dichotic/engine"
)

// ErrSetupCancelled is returned when the setup window is closed without
// pressing START.
var ErrSetupCancelled = errors.New("setup cancelled")

const (
	boxX, boxW = 50, 650
	boxH       = 30
	boxStep    = 70
	boxTop     = 50
)

var setupLabels = []string{"Participant (empty for a random id):", "Session:", "Config file (YAML, optional):"}

// RunSetup asks for participant, session and config file in a small SDL
// window, starting from the values in c. On START the values are written
// back to c.
func RunSetup(c *engine.SetupCache) error {
	if err := sdl.Init(sdl.INIT_VIDEO | sdl.INIT_EVENTS); err != nil {
		return fmt.Errorf("init sdl: %w", err)
	}
	defer sdl.Quit()
	if err := ttf.Init(); err != nil {
		return fmt.Errorf("init ttf: %w", err)
	}
	defer ttf.Quit()

	window, renderer, err := sdl.CreateWindowAndRenderer("Dichotic setup", 800, 420, 0)
	if err != nil {
		return fmt.Errorf("create window: %w", err)
	}
	defer window.Destroy()
	defer renderer.Destroy()

	fontPath := DefaultFontPath()
	if fontPath == "" {
		return errors.New("no font found for the setup window")
	}
	font, err := ttf.OpenFont(fontPath, 18)
	if err != nil {
		return fmt.Errorf("open font: %w", err)
	}
	defer font.Close()

	values := []*string{&c.Participant, &c.Session, &c.ConfigFile}
	focus := 0
	fullscreen := c.Fullscreen

	window.StartTextInput()
	defer window.StopTextInput()

	for {
		var e sdl.Event
		for sdl.PollEvent(&e) {
			switch e.Type {
			case sdl.EVENT_QUIT:
				return ErrSetupCancelled
			case sdl.EVENT_MOUSE_BUTTON_DOWN:
				me := e.MouseButtonEvent()
				mx, my := me.X, me.Y
				focus = -1
				for i := range values {
					top := float32(boxTop + i*boxStep)
					if my >= top && my <= top+boxH {
						if mx >= boxX && mx <= boxX+boxW {
							focus = i
						}
						if i == 2 && mx >= 710 && mx <= 780 {
							filters := []sdl.DialogFileFilter{{Name: "YAML files", Pattern: "yaml;yml"}}
							cb := sdl.NewDialogFileCallback(func(fileList []string, filter int32) {
								if len(fileList) > 0 {
									c.ConfigFile = fileList[0]
								}
							})
							sdl.ShowOpenFileDialog(cb, window, filters, "", false)
						}
					}
				}
				if mx >= 50 && mx <= 300 && my >= 260 && my <= 290 {
					fullscreen = !fullscreen
				}
				if mx >= 350 && mx <= 450 && my >= 340 && my <= 380 && c.Session != "" {
					c.Fullscreen = fullscreen
					return nil
				}
			case sdl.EVENT_TEXT_INPUT:
				if focus >= 0 {
					*values[focus] += e.TextInputEvent().Text
				}
			case sdl.EVENT_KEY_DOWN:
				ke := e.KeyboardEvent()
				switch {
				case ke.Key == sdl.K_ESCAPE:
					return ErrSetupCancelled
				case ke.Key == sdl.K_TAB:
					focus = (focus + 1) % len(values)
				case ke.Key == sdl.K_BACKSPACE && focus >= 0:
					if v := values[focus]; len(*v) > 0 {
						r := []rune(*v)
						*v = string(r[:len(r)-1])
					}
				}
			}
		}

		renderer.SetDrawColor(240, 240, 240, 255)
		renderer.Clear()
		black := sdl.Color{R: 0, G: 0, B: 0, A: 255}

		for i, label := range setupLabels {
			top := float32(boxTop + i*boxStep)
			drawLabel(renderer, font, label, black, boxX, top-30)

			renderer.SetDrawColor(255, 255, 255, 255)
			box := sdl.FRect{X: boxX, Y: top, W: boxW, H: boxH}
			renderer.RenderFillRect(&box)
			if focus == i {
				renderer.SetDrawColor(0, 120, 255, 255)
			} else {
				renderer.SetDrawColor(180, 180, 180, 255)
			}
			renderer.RenderRect(&box)
			drawLabel(renderer, font, *values[i], black, boxX+5, top+5)
		}

		renderer.SetDrawColor(200, 200, 200, 255)
		btn := sdl.FRect{X: 710, Y: float32(boxTop + 2*boxStep), W: 70, H: boxH}
		renderer.RenderFillRect(&btn)
		renderer.SetDrawColor(0, 0, 0, 255)
		renderer.RenderRect(&btn)
		drawLabel(renderer, font, "...", black, 735, btn.Y+5)

		drawCheckbox(renderer, 50, 260, fullscreen)
		drawLabel(renderer, font, "Fullscreen mode", black, 80, 260)

		if c.Session != "" {
			renderer.SetDrawColor(0, 150, 0, 255)
		} else {
			renderer.SetDrawColor(150, 150, 150, 255)
		}
		startBtn := sdl.FRect{X: 350, Y: 340, W: 100, H: 40}
		renderer.RenderFillRect(&startBtn)
		drawLabel(renderer, font, "START", sdl.Color{R: 255, G: 255, B: 255, A: 255}, 375, 350)

		renderer.Present()
		sdl.Delay(10)
	}
}

func drawCheckbox(r *sdl.Renderer, x, y float32, on bool) {
	r.SetDrawColor(255, 255, 255, 255)
	box := sdl.FRect{X: x, Y: y, W: 20, H: 20}
	r.RenderFillRect(&box)
	r.SetDrawColor(0, 0, 0, 255)
	r.RenderRect(&box)
	if on {
		mark := sdl.FRect{X: x + 4, Y: y + 4, W: 12, H: 12}
		r.SetDrawColor(0, 150, 0, 255)
		r.RenderFillRect(&mark)
	}
}

func drawLabel(r *sdl.Renderer, font *ttf.Font, text string, color sdl.Color, x, y float32) {
	if text == "" {
		return
	}
	surf, err := font.RenderTextBlended(text, color)
	if err != nil || surf == nil {
		return
	}
	defer surf.Destroy()
	tex, err := r.CreateTextureFromSurface(surf)
	if err != nil {
		return
	}
	dst := sdl.FRect{X: x, Y: y, W: float32(surf.W), H: float32(surf.H)}
	r.RenderTexture(tex, nil, &dst)
	tex.Destroy()
}
