// Package app wires a configured session: trigger port, archive, the
// experiment itself and the backend that presents it.
package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/joctavio287/Dichotic/archive"
	"github.com/joctavio287/Dichotic/dichotic"
	"github.com/joctavio287/Dichotic/engine"
)

// Session is a prepared experiment plus the resources it holds open.
type Session struct {
	Exp *dichotic.Experiment

	log     zerolog.Logger
	trigger engine.Trigger
	store   *archive.Store
	writer  *archive.SessionWriter
}

// Options tune OpenSession for dry runs. The zero value opens the real
// trigger port and decodes real audio.
type Options struct {
	Trigger   engine.Trigger
	LoadSound dichotic.SoundLoader
}

// OpenSession loads and resolves everything the session needs, opens the
// trigger port and registers the session in the archive when configured.
func OpenSession(ctx context.Context, cfg *engine.Config, log zerolog.Logger, o Options) (*Session, error) {
	rng := dichotic.NewRand(cfg.Experiment.Seed)
	sess := engine.NewSession(cfg.Experiment.Name, cfg.Experiment.Participant, cfg.Experiment.Session, rng)
	s := &Session{log: log, trigger: o.Trigger}

	exp, err := dichotic.New(dichotic.Options{
		Config:    cfg,
		Session:   sess,
		Rand:      rng,
		Log:       log,
		LoadSound: o.LoadSound,
	})
	if err != nil {
		return nil, fmt.Errorf("prepare session: %w", err)
	}
	s.Exp = exp

	if s.trigger == nil && cfg.Trigger.Device != "" {
		t, err := engine.OpenSerialTrigger(engine.SerialConfig{
			Device:   cfg.Trigger.Device,
			BaudRate: cfg.Trigger.BaudRate,
			DLP:      cfg.Trigger.DLP,
		})
		if err != nil {
			return nil, err
		}
		s.trigger = t
		log.Info().Str("device", cfg.Trigger.Device).Bool("dlp", cfg.Trigger.DLP).Msg("Trigger port opened")
	}
	if s.trigger != nil {
		exp.SetTrigger(s.trigger)
	}

	if cfg.Archive.Path != "" {
		if s.store, err = archive.Open(cfg.Archive.Path); err != nil {
			s.Close()
			return nil, err
		}
		if s.writer, err = s.store.Begin(ctx, sess); err != nil {
			s.Close()
			return nil, err
		}
		exp.Handler.AddSink(s.writer)
	}

	log.Info().
		Str("participant", sess.Participant).
		Str("session", sess.Session).
		Str("run_id", sess.ID.String()).
		Ints("selected_rows", exp.Plan.SelectedRows).
		Msg("Session prepared")
	return s, nil
}

// Run presents the session on b. An abort by the participant is reported in
// the result, not as an error.
func (s *Session) Run(ctx context.Context, b engine.Backend) (engine.Result, error) {
	res, err := s.Exp.Run(ctx, b)
	if s.writer != nil {
		if ferr := s.writer.Finish(res); ferr != nil {
			s.log.Warn().Err(ferr).Msg("Failed to archive session outcome")
		}
	}
	if errors.Is(err, engine.ErrAborted) {
		return res, nil
	}
	return res, err
}

func (s *Session) Close() error {
	var errs []error
	if s.trigger != nil {
		errs = append(errs, s.trigger.Close())
	}
	if s.store != nil {
		errs = append(errs, s.store.Close())
	}
	return errors.Join(errs...)
}
