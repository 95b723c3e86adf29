package engine

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// constBuffer is frames stereo frames of the same sample on both channels.
func constBuffer(name string, frames int, v int16) *SoundBuffer {
	data := make([]byte, frames*BytesPerFrame)
	for i := 0; i < len(data); i += 2 {
		binary.LittleEndian.PutUint16(data[i:], uint16(v))
	}
	return &SoundBuffer{Name: name, Data: data}
}

func sampleAt(buf []byte, i int) int16 {
	return int16(binary.LittleEndian.Uint16(buf[2*i:]))
}

func TestMixerSumsVoices(t *testing.T) {
	m := NewMixer()
	_, err := m.Play(constBuffer("a", 10, 1000))
	require.NoError(t, err)
	_, err = m.Play(constBuffer("b", 5, -300))
	require.NoError(t, err)
	assert.Equal(t, 2, m.Playing())

	out := make([]byte, 20*BytesPerFrame)
	m.Mix(out)
	assert.Equal(t, int16(700), sampleAt(out, 0))
	assert.Equal(t, int16(1000), sampleAt(out, 2*5))
	assert.Equal(t, int16(0), sampleAt(out, 2*10))
	assert.Equal(t, 0, m.Playing())
}

func TestMixerClips(t *testing.T) {
	for _, tc := range []struct {
		v    int16
		want int16
	}{
		{30000, 32767},
		{-30000, -32768},
	} {
		m := NewMixer()
		for range 2 {
			_, err := m.Play(constBuffer("loud", 4, tc.v))
			require.NoError(t, err)
		}
		out := make([]byte, 4*BytesPerFrame)
		m.Mix(out)
		assert.Equal(t, tc.want, sampleAt(out, 0))
		assert.Equal(t, tc.want, sampleAt(out, 7))
	}
}

func TestMixerVoiceLimit(t *testing.T) {
	m := NewMixer()
	for range MaxVoices {
		_, err := m.Play(constBuffer("v", 100, 1))
		require.NoError(t, err)
	}
	_, err := m.Play(constBuffer("v", 100, 1))
	assert.ErrorIs(t, err, ErrNoVoice)

	m.StopAll()
	assert.Equal(t, 0, m.Playing())
}

func TestMixerStopIgnoresStaleVoice(t *testing.T) {
	m := NewMixer()
	old, err := m.Play(constBuffer("short", 1, 1))
	require.NoError(t, err)
	m.Mix(make([]byte, 64))

	// The slot is free again and reused by the next voice.
	cur, err := m.Play(constBuffer("long", 100, 1))
	require.NoError(t, err)
	require.Equal(t, old.Slot, cur.Slot)

	m.Stop(old)
	assert.Equal(t, 1, m.Playing())
	m.Stop(cur)
	assert.Equal(t, 0, m.Playing())
}

func TestMixerLargeRequest(t *testing.T) {
	m := NewMixer()
	frames := 3 * MixChunkBytes / BytesPerFrame
	_, err := m.Play(constBuffer("long", frames, 5))
	require.NoError(t, err)

	out := make([]byte, frames*BytesPerFrame+BytesPerFrame)
	m.Mix(out)
	assert.Equal(t, int16(5), sampleAt(out, 2*frames-1))
	assert.Equal(t, int16(0), sampleAt(out, 2*frames))
}
