package app

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/joctavio287/Dichotic/engine"
	"github.com/joctavio287/Dichotic/sdlview"
)

// RunSDL opens the SDL window and runs s on it, framed by the optional
// start and end splash images. It must be called from the main thread with
// the SDL libraries loaded.
func RunSDL(ctx context.Context, cfg *engine.Config, s *Session, log zerolog.Logger) (engine.Result, error) {
	b, err := sdlview.Open(cfg.Display, cfg.Experiment.Name, log)
	if err != nil {
		return engine.Result{}, err
	}
	defer b.Close()

	ok, err := b.ShowSplash(cfg.Display.StartSplash)
	if err != nil {
		log.Warn().Err(err).Msg("Start splash skipped")
	}
	if !ok {
		return s.Run(ctx, abortBackend{b})
	}

	res, err := s.Run(ctx, b)
	if err == nil && res.Completed {
		if _, serr := b.ShowSplash(cfg.Display.EndSplash); serr != nil {
			log.Warn().Err(serr).Msg("End splash skipped")
		}
	}
	return res, err
}

// abortBackend reports a closed window on the first poll so the run ends
// through the normal abort path and still writes its results file.
type abortBackend struct {
	engine.Backend
}

func (a abortBackend) Poll() (engine.Input, error) { return engine.Input{Closed: true}, nil }

// Setup shows the setup dialog over the cached values of the previous run
// and saves what was entered. It returns false when the dialog was closed.
func Setup(cachePath string, log zerolog.Logger) (engine.SetupCache, bool, error) {
	cache := engine.LoadCache(cachePath)
	if err := sdlview.RunSetup(&cache); err != nil {
		if errors.Is(err, sdlview.ErrSetupCancelled) {
			return cache, false, nil
		}
		return cache, false, err
	}
	if err := cache.Save(cachePath); err != nil {
		log.Warn().Err(err).Str("path", cachePath).Msg("Could not save setup cache")
	}
	return cache, true, nil
}

// ApplySetup copies the dialog values over cfg.
func ApplySetup(cfg *engine.Config, c engine.SetupCache) {
	cfg.Experiment.Participant = c.Participant
	if c.Session != "" {
		cfg.Experiment.Session = c.Session
	}
	cfg.Display.Fullscreen = c.Fullscreen
}
