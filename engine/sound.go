package engine

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/generators"
	"github.com/gopxl/beep/v2/vorbis"
	"github.com/gopxl/beep/v2/wav"
)

// SampleRateHz is the rate of every SoundBuffer and of the output devices.
const SampleRateHz = 44100

const SampleRate beep.SampleRate = SampleRateHz

// BytesPerFrame is one stereo S16LE sample frame.
const BytesPerFrame = 4

// SoundBuffer is decoded PCM: S16LE, interleaved stereo, SampleRate.
type SoundBuffer struct {
	Name string
	Data []byte
}

func (b *SoundBuffer) Frames() int { return len(b.Data) / BytesPerFrame }

func (b *SoundBuffer) Duration() time.Duration { return SampleRate.D(b.Frames()) }

// Streamer plays the buffer through beep, for backends that output via
// the beep speaker.
func (b *SoundBuffer) Streamer() beep.Streamer {
	pos := 0
	return beep.StreamerFunc(func(samples [][2]float64) (int, bool) {
		n := 0
		for n < len(samples) && pos+BytesPerFrame <= len(b.Data) {
			l := int16(uint16(b.Data[pos]) | uint16(b.Data[pos+1])<<8)
			r := int16(uint16(b.Data[pos+2]) | uint16(b.Data[pos+3])<<8)
			samples[n][0] = float64(l) / 32768
			samples[n][1] = float64(r) / 32768
			pos += BytesPerFrame
			n++
		}
		return n, n > 0
	})
}

// LoadSound decodes a WAV or Ogg Vorbis file and resamples it to SampleRate.
// Mono files are duplicated on both channels.
func LoadSound(path string) (*SoundBuffer, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var (
		s      beep.StreamSeekCloser
		format beep.Format
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".wav":
		s, format, err = wav.Decode(f)
	case ".ogg", ".oga":
		s, format, err = vorbis.Decode(f)
	default:
		return nil, fmt.Errorf("%s: unsupported audio format", path)
	}
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	defer s.Close()

	var src beep.Streamer = s
	if format.SampleRate != SampleRate {
		src = beep.Resample(4, format.SampleRate, SampleRate, s)
	}
	buf, err := Render(filepath.Base(path), src)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return buf, nil
}

// Render drains s into a SoundBuffer.
func Render(name string, s beep.Streamer) (*SoundBuffer, error) {
	var (
		data    []byte
		samples = make([][2]float64, 512)
	)
	for {
		n, ok := s.Stream(samples)
		for _, smp := range samples[:n] {
			l, r := toS16(smp[0]), toS16(smp[1])
			data = append(data, byte(l), byte(l>>8), byte(r), byte(r>>8))
		}
		if !ok {
			break
		}
	}
	if err := s.Err(); err != nil {
		return nil, err
	}
	return &SoundBuffer{Name: name, Data: data}, nil
}

// Tone synthesises a sine of freq Hz with raised-cosine onset and offset
// ramps of 10ms.
func Tone(name string, freq float64, dur time.Duration, volume float64) (*SoundBuffer, error) {
	sine, err := generators.SineTone(SampleRate, freq)
	if err != nil {
		return nil, fmt.Errorf("tone %s: %w", name, err)
	}
	total := SampleRate.N(dur)
	ramp := min(SampleRate.N(10*time.Millisecond), total/2)

	pos := 0
	shaped := beep.StreamerFunc(func(samples [][2]float64) (int, bool) {
		n, ok := sine.Stream(samples)
		for i := range samples[:n] {
			g := volume * envelope(pos+i, total, ramp)
			samples[i][0] *= g
			samples[i][1] *= g
		}
		pos += n
		return n, ok
	})
	return Render(name, beep.Take(total, shaped))
}

func envelope(i, total, ramp int) float64 {
	switch {
	case ramp == 0:
		return 1
	case i < ramp:
		return 0.5 - 0.5*math.Cos(math.Pi*float64(i)/float64(ramp))
	case i >= total-ramp:
		return 0.5 - 0.5*math.Cos(math.Pi*float64(total-1-i)/float64(ramp))
	}
	return 1
}

func toS16(v float64) int16 {
	v = math.Max(-1, math.Min(1, v))
	return int16(v * 32767)
}
