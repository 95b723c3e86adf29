// Package dichotic is the dichotic listening audiobook experiment: two
// stories play at once, one per ear, the participant attends to the side
// shown in the prompt and answers comprehension questions afterwards.
package dichotic

import (
	"context"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/rs/zerolog"

	"github.com/joctavio287/Dichotic/engine"
)

type Options struct {
	Config  *engine.Config
	Session engine.Session
	Rand    *rand.Rand
	Log     zerolog.Logger
	// Trigger defaults to engine.NopTrigger.
	Trigger engine.Trigger
	// LoadSound defaults to engine.LoadSound.
	LoadSound SoundLoader
	Sinks     []engine.RowSink
}

// Prepared is the load-time state of a session: everything that can fail
// before a window is opened.
type Prepared struct {
	Tables  *Tables
	Plan    *Plan
	Stimuli *Stimuli
	Texts   *Texts
}

// Prepare loads the tables, draws the condition rows, resolves every block
// and decodes the audio.
func Prepare(cfg *engine.Config, rng *rand.Rand, load SoundLoader) (*Prepared, error) {
	if err := checkTriggerCodes(cfg.Experiment.BipReps, cfg.Experiment.Questions); err != nil {
		return nil, err
	}
	texts, err := ParseTexts(cfg.Texts)
	if err != nil {
		return nil, err
	}
	tables, err := LoadTables(cfg)
	if err != nil {
		return nil, err
	}
	if len(tables.Conditions) < cfg.Experiment.ConditionRows {
		return nil, fmt.Errorf("%s: %d rows, need %d", cfg.Experiment.Conditions, len(tables.Conditions), cfg.Experiment.ConditionRows)
	}
	rows := engine.SelectRows(rng, cfg.Experiment.ConditionRows, cfg.Experiment.SelectedRows)
	plan, err := BuildPlan(tables, rows, cfg.StimulusPath)
	if err != nil {
		return nil, err
	}
	stim, err := LoadStimuli(cfg, plan, load)
	if err != nil {
		return nil, err
	}
	return &Prepared{Tables: tables, Plan: plan, Stimuli: stim, Texts: texts}, nil
}

type Experiment struct {
	Config  *engine.Config
	Session engine.Session
	*Prepared

	Handler *engine.ExperimentHandler
	Flow    *engine.Scheduler

	trigger engine.Trigger
	log     zerolog.Logger
	rng     *rand.Rand
	// block is the condition being run, set by the prompt routine.
	block *Block

	instructions *engine.Routine
	prompt       *engine.Routine
	bips         *engine.Routine
	listening    *engine.Routine
	questionVars *engine.Routine
	questionary  *engine.Routine
	goodbye      *engine.Routine
}

func New(opts Options) (*Experiment, error) {
	if opts.Config == nil {
		return nil, fmt.Errorf("no configuration")
	}
	if opts.Rand == nil {
		opts.Rand = NewRand(opts.Config.Experiment.Seed)
	}
	prep, err := Prepare(opts.Config, opts.Rand, opts.LoadSound)
	if err != nil {
		return nil, err
	}
	return NewPrepared(opts, prep), nil
}

// NewPrepared builds the flow over already loaded state.
func NewPrepared(opts Options, prep *Prepared) *Experiment {
	trig := opts.Trigger
	if trig == nil {
		trig = engine.NopTrigger{}
	}
	if opts.Rand == nil {
		opts.Rand = NewRand(opts.Config.Experiment.Seed)
	}
	s := opts.Session
	h := engine.NewExperimentHandler(s.ExpName, s.Info(), s.DataFileName(opts.Config.Experiment.DataDir), opts.Log)
	for _, sink := range opts.Sinks {
		h.AddSink(sink)
	}

	x := &Experiment{
		Config:   opts.Config,
		Session:  s,
		Prepared: prep,
		Handler:  h,
		trigger:  trig,
		log:      opts.Log,
		rng:      opts.Rand,
	}
	x.buildRoutines()
	x.buildFlow()
	return x
}

// Run drives the session on b until it completes or is aborted.
func (x *Experiment) Run(ctx context.Context, b engine.Backend) (engine.Result, error) {
	x.Handler.Info.Set("frameRate", b.FrameRate())
	r := &engine.Runner{Backend: b, Exp: x.Handler, Flow: x.Flow, Log: x.log}
	return r.Run(ctx)
}

// NewRand seeds from the clock when seed is zero.
func NewRand(seed uint64) *rand.Rand {
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

func (x *Experiment) send(code byte) { x.Handler.SendTrigger(x.trigger, code) }

// SetTrigger replaces the marker port. It must be called before Run.
func (x *Experiment) SetTrigger(t engine.Trigger) { x.trigger = t }
