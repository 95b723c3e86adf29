package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func trialsOf(key string, values ...string) []Trial {
	out := make([]Trial, len(values))
	for i, v := range values {
		out[i] = Trial{Index: i, Fields: []string{key}, Values: map[string]string{key: v}}
	}
	return out
}

func stepUntilDone(t *testing.T, s *Scheduler) {
	t.Helper()
	f := &Frame{Audio: NewSimBackend(60)}
	for i := 0; i < 1000; i++ {
		f.N = i
		ev, err := s.Step(f)
		require.NoError(t, err)
		if ev == Advance {
			return
		}
	}
	t.Fatal("flow did not finish")
}

func TestNestedLoopsRestoreContext(t *testing.T) {
	exp := newTestHandler(t)
	flow := NewScheduler("flow")

	var innerSeen, afterInner []string
	trial := NewRoutine(exp, "trial")
	trial.OnBegin = func(ctx *RoutineContext) error {
		innerSeen = append(innerSeen, ctx.Loop().Name)
		ctx.AddData("value", ctx.Loop().ThisN)
		return nil
	}
	inTopLevel := true

	exp.ScheduleLoop(flow, func() (*TrialHandler, error) {
		return NewTrialHandler("outer", trialsOf("cond", "x", "y"), 1, Sequential, nil)
	}, func(s *Scheduler) {
		exp.ScheduleLoop(s, func() (*TrialHandler, error) {
			return NewTrialHandler("inner", nil, 3, Sequential, nil)
		}, func(s *Scheduler) {
			s.Add(trial.Tasks()...)
		})
		s.Add(Once(func(*Frame) error {
			afterInner = append(afterInner, exp.CurrentLoop().Name)
			return nil
		}))
	})
	flow.Add(Once(func(*Frame) error {
		inTopLevel = !exp.InLoop()
		return nil
	}))

	stepUntilDone(t, flow)

	assert.Equal(t, []string{"inner", "inner", "inner", "inner", "inner", "inner"}, innerSeen)
	assert.Equal(t, []string{"outer", "outer"}, afterInner)
	assert.True(t, inTopLevel)

	rows := exp.Rows()
	require.Len(t, rows, 8)
	// Three inner rows, then the outer row, per outer trial.
	assert.Equal(t, "x", rowValue(t, rows[0], "cond"))
	assert.Equal(t, 2, rowValue(t, rows[2], "inner.thisN"))
	_, ok := rows[3].Get("inner.thisN")
	assert.False(t, ok)
	assert.Equal(t, 0, rowValue(t, rows[3], "outer.thisN"))
	assert.Equal(t, "y", rowValue(t, rows[4], "cond"))
	assert.Equal(t, 1, rowValue(t, rows[7], "outer.thisIndex"))
	assert.Equal(t, "p01", rowValue(t, rows[7], "participant"))
}

func TestStoppedLoopFlushesOnce(t *testing.T) {
	exp := newTestHandler(t)
	flow := NewScheduler("flow")

	trial := NewRoutine(exp, "trial")
	runs := 0
	trial.OnBegin = func(ctx *RoutineContext) error {
		runs++
		ctx.AddData("value", ctx.Loop().ThisN)
		if ctx.Loop().ThisN == 2 {
			ctx.Loop().Stop()
		}
		return nil
	}
	exp.ScheduleLoop(flow, func() (*TrialHandler, error) {
		return NewTrialHandler("reps", nil, 5, Sequential, nil)
	}, func(s *Scheduler) {
		s.Add(trial.Tasks()...)
	})

	stepUntilDone(t, flow)

	assert.Equal(t, 3, runs)
	assert.False(t, exp.InLoop())
	assert.True(t, exp.IsEntryEmpty())
	rows := exp.Rows()
	require.Len(t, rows, 3)
	assert.Equal(t, 2, rowValue(t, rows[2], "value"))
	assert.Equal(t, 2, rowValue(t, rows[2], "reps.thisN"))
}

func TestStoppedLoopWithEmptyRowDoesNotFlush(t *testing.T) {
	exp := newTestHandler(t)
	flow := NewScheduler("flow")
	exp.ScheduleLoop(flow, func() (*TrialHandler, error) {
		return NewTrialHandler("reps", nil, 4, Sequential, nil)
	}, func(s *Scheduler) {
		s.Add(Once(func(*Frame) error {
			if h := exp.CurrentLoop(); h.ThisN == 1 {
				h.Stop()
			}
			return nil
		}))
	})

	stepUntilDone(t, flow)
	assert.Len(t, exp.Rows(), 1)
}

func TestLoopHandlerError(t *testing.T) {
	exp := newTestHandler(t)
	flow := NewScheduler("flow")
	exp.ScheduleLoop(flow, func() (*TrialHandler, error) {
		return NewTrialHandler("bad", nil, 2, Random, nil)
	}, func(*Scheduler) {})

	_, err := flow.Step(&Frame{})
	assert.ErrorContains(t, err, "random source")
}
