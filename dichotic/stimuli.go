package dichotic

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/joctavio287/Dichotic/engine"
)

// SoundLoader decodes an audio file into a buffer.
type SoundLoader func(path string) (*engine.SoundBuffer, error)

// Stimuli are the decoded sounds of a session, loaded before the window
// opens so that no decoding happens between frames.
type Stimuli struct {
	Bip *engine.SoundBuffer
	// Audiobooks is indexed by block.
	Audiobooks []*engine.SoundBuffer
}

func LoadStimuli(cfg *engine.Config, plan *Plan, load SoundLoader) (*Stimuli, error) {
	if load == nil {
		load = engine.LoadSound
	}
	s := &Stimuli{}

	var err error
	if cfg.Audio.BipFile != "" {
		s.Bip, err = load(cfg.StimulusPath(cfg.Audio.BipFile))
	} else {
		s.Bip, err = engine.Tone("bip", cfg.Audio.BipFrequency, cfg.Audio.BipDuration, cfg.Audio.Volume)
	}
	if err != nil {
		return nil, fmt.Errorf("load bip: %w", err)
	}

	cache := make(map[string]*engine.SoundBuffer)
	for _, b := range plan.Blocks {
		buf, ok := cache[b.AudioPath]
		if !ok {
			if buf, err = load(b.AudioPath); err != nil {
				return nil, fmt.Errorf("block %d: load audiobook: %w", b.N, err)
			}
			cache[b.AudioPath] = buf
		}
		s.Audiobooks = append(s.Audiobooks, buf)
	}
	return s, nil
}

// SilentLoader stands in for real audio files in dry runs: every file is
// d of silence.
func SilentLoader(d time.Duration) SoundLoader {
	return func(path string) (*engine.SoundBuffer, error) {
		n := engine.SampleRate.N(d) * engine.BytesPerFrame
		return &engine.SoundBuffer{Name: filepath.Base(path), Data: make([]byte, n)}, nil
	}
}
