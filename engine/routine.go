package engine

import (
	"time"
)

// Hook runs inside a routine phase. A non-nil error stops the run.
type Hook func(ctx *RoutineContext) error

// Routine is one named phase of the experiment: Begin once, EachFrame until
// it reports Advance, then End once.
type Routine struct {
	Name       string
	Components []Component
	// MaxDuration ends the routine regardless of its components. Zero means
	// unbounded.
	MaxDuration time.Duration

	OnBegin Hook
	OnFrame Hook
	OnEnd   Hook

	exp *ExperimentHandler
	ctx *RoutineContext
}

func NewRoutine(exp *ExperimentHandler, name string, comps ...Component) *Routine {
	return &Routine{Name: name, Components: comps, exp: exp}
}

// Tasks returns the three phases ready to be added to a scheduler.
func (r *Routine) Tasks() []Task {
	return []Task{Once(r.Begin), TaskFunc(r.EachFrame), Once(r.End)}
}

// Context returns the execution context of the current (or last) run.
func (r *Routine) Context() *RoutineContext { return r.ctx }

func (r *Routine) Begin(f *Frame) error {
	r.ctx = &RoutineContext{
		Routine:         r,
		Exp:             r.exp,
		Frame:           f,
		FrameN:          -1,
		continueRoutine: true,
		start:           f.Now,
	}
	for _, c := range r.Components {
		c.reset()
	}
	if r.OnBegin != nil {
		if err := r.OnBegin(r.ctx); err != nil {
			return err
		}
	}
	r.exp.AddData(r.Name+".started", f.Now)
	r.exp.Log.Debug().Str("routine", r.Name).Msg("Routine started")
	return nil
}

func (r *Routine) EachFrame(f *Frame) (Event, error) {
	ctx := r.ctx
	ctx.Frame = f
	ctx.T = f.Now - ctx.start
	ctx.FrameN++

	for _, c := range r.Components {
		l := c.base()
		if l.status == NotStarted && l.shouldStart(ctx) {
			l.status = Started
			l.TStart, l.FrameNStart = ctx.T, ctx.FrameN
			r.exp.AddData(l.name+".started", f.Now)
			c.start(ctx)
			if l.OnStart != nil {
				l.OnStart(ctx)
			}
		}
		if l.status == Started && (l.shouldStop(ctx) || c.done(ctx)) {
			l.status = Finished
			l.TStop, l.FrameNStop = ctx.T, ctx.FrameN
			r.exp.AddData(l.name+".stopped", f.Now)
			c.stop(ctx)
			if l.OnStop != nil {
				l.OnStop(ctx)
			}
		}
	}

	if r.OnFrame != nil {
		if err := r.OnFrame(ctx); err != nil {
			return Advance, err
		}
	}

	if f.Escaped() {
		return Advance, ErrAborted
	}
	if !ctx.continueRoutine {
		ctx.forceEnded = true
		return Advance, nil
	}
	if r.MaxDuration > 0 && ctx.T >= r.MaxDuration-FrameTolerance {
		return Advance, nil
	}
	for _, c := range r.Components {
		if c.Status() != Finished {
			return Continue, nil
		}
	}
	return Advance, nil
}

func (r *Routine) End(f *Frame) error {
	ctx := r.ctx
	ctx.Frame = f
	for _, c := range r.Components {
		if c.Status() == Started {
			c.stop(ctx)
			c.base().status = Finished
		}
	}
	r.exp.AddData(r.Name+".stopped", f.Now)

	for _, c := range r.Components {
		kb, ok := c.(*Keyboard)
		if !ok {
			continue
		}
		resp, ok := kb.Response()
		if !ok {
			r.exp.AddData(kb.name+".keys", "None")
		} else {
			r.exp.AddData(kb.name+".keys", resp.Key)
			r.exp.AddData(kb.name+".rt", resp.RT)
			var held any
			if resp.Duration > 0 {
				held = resp.Duration
			}
			r.exp.AddData(kb.name+".duration", held)
		}
		if kb.Correct != "" {
			corr := 0
			if kb.IsCorrect() {
				corr = 1
			}
			r.exp.AddData(kb.name+".corr", corr)
		}
	}

	if r.OnEnd != nil {
		if err := r.OnEnd(ctx); err != nil {
			return err
		}
	}
	r.exp.Log.Debug().Str("routine", r.Name).Bool("forced", ctx.forceEnded).Msg("Routine ended")
	if !r.exp.InLoop() {
		r.exp.NextEntry()
	}
	return nil
}

// RoutineContext is the per-run state of a routine, handed to components
// and hooks instead of package-level globals.
type RoutineContext struct {
	Routine *Routine
	Exp     *ExperimentHandler
	Frame   *Frame
	// T is the routine clock, zero at Begin.
	T      time.Duration
	FrameN int

	continueRoutine bool
	forceEnded      bool
	start           time.Duration
}

// EndRoutine requests the routine to end after the current frame.
func (c *RoutineContext) EndRoutine() { c.continueRoutine = false }

func (c *RoutineContext) ForceEnded() bool        { return c.forceEnded }
func (c *RoutineContext) AddData(k string, v any) { c.Exp.AddData(k, v) }
func (c *RoutineContext) Loop() *TrialHandler     { return c.Exp.CurrentLoop() }
func (c *RoutineContext) Window() *Window         { return c.Exp.Window }
func (c *RoutineContext) Audio() Audio            { return c.Frame.Audio }
