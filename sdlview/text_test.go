package sdlview

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/joctavio287/Dichotic/engine"
)

func TestWrapText(t *testing.T) {
	tests := []struct {
		name  string
		in    string
		limit int
		want  []string
	}{
		{"no limit", "one two three", 0, []string{"one two three"}},
		{"fits", "one two", 7, []string{"one two"}},
		{"wraps on words", "one two three four", 9, []string{"one two", "three", "four"}},
		{"keeps newlines", "first\n\nsecond", 20, []string{"first", "", "second"}},
		{"long word alone", "a extraordinarily b", 5, []string{"a", "extraordinarily", "b"}},
		{"counts runes", "ñandú ñandú", 11, []string{"ñandú ñandú"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, wrapText(tt.in, tt.limit))
		})
	}
}

func TestMaxLineRunes(t *testing.T) {
	assert.Equal(t, 0, maxLineRunes(1920, 0))
	assert.Equal(t, 64, maxLineRunes(1920, 48))
	assert.Equal(t, 10, maxLineRunes(100, 48))
}

func TestKeyName(t *testing.T) {
	assert.Equal(t, engine.KeySpace, KeyName("Space"))
	assert.Equal(t, engine.KeyEscape, KeyName("Escape"))
	assert.Equal(t, "return", KeyName("Return"))
	assert.Equal(t, "return", KeyName("Keypad Enter"))
	assert.Equal(t, "a", KeyName("A"))
	assert.Equal(t, "left_shift", KeyName("Left Shift"))
}

func TestLayoutFollowsWindowSize(t *testing.T) {
	for _, size := range [][2]int{{1920, 1080}, {2560, 1440}, {1280, 1024}} {
		w, h := size[0], size[1]
		horiz, vert := crossRects(w, h, 0.1)
		assert.InDelta(t, float32(w)/2, horiz.X+horiz.W/2, 0.01)
		assert.InDelta(t, float32(h)/2, horiz.Y+horiz.H/2, 0.01)
		assert.InDelta(t, float32(w)/2, vert.X+vert.W/2, 0.01)
		assert.InDelta(t, float32(h)/2, vert.Y+vert.H/2, 0.01)
		assert.InDelta(t, 0.1*float32(h), vert.H, 0.01)

		sq := squareRect(w, h, 0.2)
		assert.InDelta(t, float32(w)/2, sq.X+sq.W/2, 0.01)
		assert.InDelta(t, float32(h)/2, sq.Y+sq.H/2, 0.01)

		assert.InDelta(t, float32(h)/2, textTop(h, 100)+50, 0.01)
	}
}
