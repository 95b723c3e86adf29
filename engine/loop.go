package engine

// ScheduleLoop adds a loop to parent. When the loop begins, newHandler
// builds its TrialHandler and body is called once per trial to add that
// iteration's tasks to the loop's own scheduler. Nested loops are scheduled
// by calling ScheduleLoop from body.
func (e *ExperimentHandler) ScheduleLoop(parent *Scheduler, newHandler func() (*TrialHandler, error), body func(s *Scheduler)) {
	var h *TrialHandler
	inner := NewScheduler("loop")

	parent.Add(Once(func(*Frame) error {
		var err error
		if h, err = newHandler(); err != nil {
			return err
		}
		inner.Name = h.Name
		e.AddLoop(h)
		for range h.NTotal {
			inner.Add(Once(func(*Frame) error {
				h.Next()
				return nil
			}))
			body(inner)
			inner.Add(Once(func(*Frame) error {
				e.endIteration(h, inner)
				return nil
			}))
		}
		return nil
	}))
	parent.Add(inner)
	parent.Add(Once(func(*Frame) error {
		e.RemoveLoop(h)
		return nil
	}))
}

func (e *ExperimentHandler) endIteration(h *TrialHandler, s *Scheduler) {
	if h.Stopped() {
		// Flush the orphaned row once; later iterations never run.
		if !e.IsEntryEmpty() {
			e.NextEntry()
		}
		s.Stop()
		return
	}
	e.NextEntry()
}
