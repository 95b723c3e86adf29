package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

// ErrAborted is returned when the participant pressed escape or closed the
// window.
var ErrAborted = errors.New("aborted by participant")

const (
	MsgAborted   = "The [Escape] key was pressed. Goodbye!"
	MsgCompleted = "Thank you for your patience."
)

type Result struct {
	Completed bool
	Message   string
	DataFile  string
	Frames    int
	Elapsed   time.Duration
}

// Runner drives the flow at the backend frame rate: poll input, step the
// flow once, present the window.
type Runner struct {
	Backend Backend
	Exp     *ExperimentHandler
	Flow    *Scheduler
	Log     zerolog.Logger
}

// Run blocks until the flow finishes, the participant aborts, ctx is
// cancelled or a task fails. The results file is written in every case.
func (r *Runner) Run(ctx context.Context) (Result, error) {
	start := r.Backend.Now()
	r.Log.Info().Str("experiment", r.Exp.Name).Float64("frame_rate", r.Backend.FrameRate()).Msg("Run started")

	for n := 0; ; n++ {
		if err := ctx.Err(); err != nil {
			return r.quit(false, MsgAborted, n, start, err)
		}
		in, err := r.Backend.Poll()
		if err != nil {
			return r.quit(false, "input failure", n, start, fmt.Errorf("poll input: %w", err))
		}
		f := &Frame{
			N:        n,
			Now:      r.Backend.Now(),
			Keys:     in.Keys,
			Releases: in.Releases,
			Closed:   in.Closed,
			Audio:    r.Backend,
		}

		ev, err := r.Flow.Step(f)
		switch {
		case errors.Is(err, ErrAborted):
			return r.quit(false, MsgAborted, n, start, ErrAborted)
		case err != nil:
			return r.quit(false, err.Error(), n, start, err)
		case ev == Advance:
			return r.quit(true, MsgCompleted, n, start, nil)
		}

		if err := r.Backend.Present(r.Exp.Window.Scene()); err != nil {
			return r.quit(false, "display failure", n, start, fmt.Errorf("present frame: %w", err))
		}
	}
}

func (r *Runner) quit(completed bool, msg string, frames int, start time.Duration, cause error) (Result, error) {
	r.Exp.Window.Clear()
	if !r.Exp.IsEntryEmpty() {
		r.Exp.NextEntry()
	}
	res := Result{
		Completed: completed,
		Message:   msg,
		DataFile:  r.Exp.Path(),
		Frames:    frames,
		Elapsed:   r.Backend.Now() - start,
	}
	if err := r.Exp.Save(); err != nil {
		r.Log.Error().Err(err).Str("path", res.DataFile).Msg("Failed to save results")
		return res, errors.Join(cause, fmt.Errorf("save results: %w", err))
	}
	r.Log.Info().
		Bool("completed", completed).
		Int("rows", len(r.Exp.Rows())).
		Int("frames", frames).
		Str("path", res.DataFile).
		Msg(msg)
	return res, cause
}
