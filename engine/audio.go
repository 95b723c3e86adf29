package engine

import (
	"errors"
	"sync"
	"unsafe"
)

const (
	MaxVoices = 16
	// MixChunkBytes bounds the work done under the lock in one pass.
	MixChunkBytes = 4096
)

var ErrNoVoice = errors.New("all voices busy")

type voiceSlot struct {
	buf    *SoundBuffer
	pos    int
	active bool
	gen    uint64
}

// Mixer sums up to MaxVoices S16 stereo buffers with clipping. Play and Stop
// are called from the experiment loop; Mix from the audio device callback.
type Mixer struct {
	mu    sync.Mutex
	slots [MaxVoices]voiceSlot
	gen   uint64
}

func NewMixer() *Mixer { return &Mixer{} }

func (m *Mixer) Play(buf *SoundBuffer) (Voice, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i := range m.slots {
		s := &m.slots[i]
		if s.active {
			continue
		}
		m.gen++
		*s = voiceSlot{buf: buf, active: len(buf.Data) > 0, gen: m.gen}
		return Voice{Slot: i, Gen: m.gen}, nil
	}
	return Voice{}, ErrNoVoice
}

// Stop silences v. A voice that already finished, or whose slot was reused,
// is left alone.
func (m *Mixer) Stop(v Voice) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if v.Slot < 0 || v.Slot >= MaxVoices {
		return
	}
	if s := &m.slots[v.Slot]; s.gen == v.Gen {
		s.active = false
	}
}

func (m *Mixer) StopAll() {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i := range m.slots {
		m.slots[i].active = false
	}
}

// Playing returns the number of active voices.
func (m *Mixer) Playing() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	n := 0
	for i := range m.slots {
		if m.slots[i].active {
			n++
		}
	}
	return n
}

// Mix overwrites dst with the next len(dst) bytes of the mix.
func (m *Mixer) Mix(dst []byte) {
	for len(dst) > 0 {
		chunk := min(len(dst), MixChunkBytes) &^ 1
		if chunk == 0 {
			dst[0] = 0
			return
		}
		m.mixChunk(dst[:chunk])
		dst = dst[chunk:]
	}
}

func (m *Mixer) mixChunk(buf []byte) {
	clear(buf)
	out := unsafe.Slice((*int16)(unsafe.Pointer(&buf[0])), len(buf)/2)

	m.mu.Lock()
	defer m.mu.Unlock()

	for i := range m.slots {
		s := &m.slots[i]
		if !s.active {
			continue
		}
		n := min(len(buf), len(s.buf.Data)-s.pos) &^ 1
		if n > 0 {
			src := unsafe.Slice((*int16)(unsafe.Pointer(&s.buf.Data[s.pos])), n/2)
			for j, v := range src {
				out[j] = clip(int32(out[j]) + int32(v))
			}
		}
		s.pos += n
		if s.pos >= len(s.buf.Data)-1 {
			s.active = false
		}
	}
}

func clip(v int32) int16 {
	switch {
	case v > 32767:
		return 32767
	case v < -32768:
		return -32768
	}
	return int16(v)
}
