package sdlview

import (
	"strings"
	"unicode/utf8"

	"github.com/Zyko0/go-sdl3/sdl"
	"github.com/Zyko0/go-sdl3/ttf"
)

type textEntry struct {
	tex  *sdl.Texture
	w, h float32
}

// textCache keeps one texture per rendered line.
type textCache struct {
	renderer *sdl.Renderer
	font     *ttf.Font
	color    sdl.Color
	entries  map[string]*textEntry
}

func newTextCache(r *sdl.Renderer, f *ttf.Font, c sdl.Color) *textCache {
	return &textCache{renderer: r, font: f, color: c, entries: make(map[string]*textEntry)}
}

func (c *textCache) get(line string) (*textEntry, error) {
	if e, ok := c.entries[line]; ok {
		return e, nil
	}
	// An empty line still takes up a line of height.
	src := line
	if strings.TrimSpace(src) == "" {
		src = " "
	}
	surf, err := c.font.RenderTextBlended(src, c.color)
	if err != nil {
		return nil, err
	}
	defer surf.Destroy()

	e := &textEntry{w: float32(surf.W), h: float32(surf.H)}
	if line != src {
		e.w = 0
	} else if e.tex, err = c.renderer.CreateTextureFromSurface(surf); err != nil {
		return nil, err
	}
	c.entries[line] = e
	return e, nil
}

func (c *textCache) destroy() {
	for _, e := range c.entries {
		if e.tex != nil {
			e.tex.Destroy()
		}
	}
	c.entries = nil
}

// maxLineRunes estimates how many characters fit in 80% of the window width.
func maxLineRunes(width, fontSize int) int {
	if fontSize <= 0 {
		return 0
	}
	return max(10, width*8/10*2/fontSize)
}

// wrapText splits s on newlines and word-wraps lines longer than limit runes.
// A limit of zero disables wrapping.
func wrapText(s string, limit int) []string {
	var out []string
	for _, para := range strings.Split(s, "\n") {
		if limit <= 0 || utf8.RuneCountInString(para) <= limit {
			out = append(out, para)
			continue
		}
		var line strings.Builder
		n := 0
		for _, word := range strings.Fields(para) {
			wn := utf8.RuneCountInString(word)
			if n > 0 && n+1+wn > limit {
				out = append(out, line.String())
				line.Reset()
				n = 0
			}
			if n > 0 {
				line.WriteByte(' ')
				n++
			}
			line.WriteString(word)
			n += wn
		}
		out = append(out, line.String())
	}
	return out
}
