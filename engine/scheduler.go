package engine

// Event is the result of one step of a scheduled task.
type Event int

const (
	// Continue asks for the next frame to be presented before the same task
	// is stepped again.
	Continue Event = iota
	// Advance moves on to the next scheduled task within the same frame.
	Advance
)

func (e Event) String() string {
	if e == Continue {
		return "continue"
	}
	return "advance"
}

type Task interface {
	Step(f *Frame) (Event, error)
}

type TaskFunc func(f *Frame) (Event, error)

func (fn TaskFunc) Step(f *Frame) (Event, error) { return fn(f) }

// Once wraps a function that always completes in a single step.
func Once(fn func(f *Frame) error) Task {
	return TaskFunc(func(f *Frame) (Event, error) { return Advance, fn(f) })
}

// Scheduler runs its tasks in order. A Scheduler is itself a Task, so loops
// nest by scheduling a child scheduler inside their parent.
type Scheduler struct {
	Name string

	tasks   []Task
	cur     int
	stopped bool
}

func NewScheduler(name string) *Scheduler {
	return &Scheduler{Name: name}
}

func (s *Scheduler) Add(tasks ...Task) {
	s.tasks = append(s.tasks, tasks...)
}

// Stop makes the scheduler report completion as soon as the running task
// returns. Tasks not yet started are skipped.
func (s *Scheduler) Stop() { s.stopped = true }

func (s *Scheduler) Stopped() bool { return s.stopped }

func (s *Scheduler) Done() bool { return s.stopped || s.cur >= len(s.tasks) }

func (s *Scheduler) Len() int { return len(s.tasks) }

func (s *Scheduler) Step(f *Frame) (Event, error) {
	for !s.Done() {
		ev, err := s.tasks[s.cur].Step(f)
		if err != nil {
			return Advance, err
		}
		if ev == Continue {
			return Continue, nil
		}
		s.cur++
	}
	return Advance, nil
}
