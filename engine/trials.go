package engine

import (
	"fmt"
	"math/rand/v2"
)

// Trial is one row of a condition table. Fields keeps the column order.
type Trial struct {
	// Index is the row position in the source table.
	Index  int
	Fields []string
	Values map[string]string
}

func (t Trial) Get(key string) string { return t.Values[key] }

func (t Trial) Has(key string) bool {
	_, ok := t.Values[key]
	return ok
}

type Method int

const (
	// Sequential presents the trials in list order on every repetition.
	Sequential Method = iota
	// Random shuffles the list independently for every repetition.
	Random
	// FullRandom shuffles all repetitions together.
	FullRandom
)

func (m Method) String() string {
	switch m {
	case Sequential:
		return "sequential"
	case Random:
		return "random"
	case FullRandom:
		return "fullRandom"
	}
	return fmt.Sprintf("Method(%d)", int(m))
}

// TrialHandler iterates a trial list NReps times in the order given by its
// Method. Counters are -1 until the first call to Next.
type TrialHandler struct {
	Name   string
	NReps  int
	Method Method
	NTotal int

	ThisRepN   int
	ThisTrialN int
	ThisN      int
	ThisIndex  int

	trials   []Trial
	sequence []int
	stopped  bool
}

// NewTrialHandler builds the presentation sequence up front. A nil or empty
// trial list stands for a single trial without attributes, which is how a
// plain repetition loop is expressed.
func NewTrialHandler(name string, trials []Trial, nReps int, method Method, rng *rand.Rand) (*TrialHandler, error) {
	if nReps < 0 {
		return nil, fmt.Errorf("loop %s: negative repetition count %d", name, nReps)
	}
	if len(trials) == 0 {
		trials = []Trial{{Values: map[string]string{}}}
	}
	if method != Sequential && rng == nil {
		return nil, fmt.Errorf("loop %s: %s order needs a random source", name, method)
	}

	h := &TrialHandler{
		Name:       name,
		NReps:      nReps,
		Method:     method,
		NTotal:     nReps * len(trials),
		ThisRepN:   -1,
		ThisTrialN: -1,
		ThisN:      -1,
		ThisIndex:  -1,
		trials:     trials,
	}

	h.sequence = make([]int, 0, h.NTotal)
	for range nReps {
		rep := make([]int, len(trials))
		for i := range rep {
			rep[i] = i
		}
		if method == Random {
			rng.Shuffle(len(rep), func(i, j int) { rep[i], rep[j] = rep[j], rep[i] })
		}
		h.sequence = append(h.sequence, rep...)
	}
	if method == FullRandom {
		rng.Shuffle(len(h.sequence), func(i, j int) {
			h.sequence[i], h.sequence[j] = h.sequence[j], h.sequence[i]
		})
	}
	return h, nil
}

// Next moves to the next trial. It returns false once the sequence is
// exhausted or the loop was stopped.
func (h *TrialHandler) Next() (Trial, bool) {
	if h.stopped || h.ThisN+1 >= h.NTotal {
		return Trial{}, false
	}
	h.ThisN++
	h.ThisRepN = h.ThisN / len(h.trials)
	h.ThisTrialN = h.ThisN % len(h.trials)
	h.ThisIndex = h.sequence[h.ThisN]
	return h.trials[h.ThisIndex], true
}

func (h *TrialHandler) Current() Trial {
	if h.ThisN < 0 {
		return Trial{}
	}
	return h.trials[h.ThisIndex]
}

// IsLast reports whether the current trial is the final one of the loop.
func (h *TrialHandler) IsLast() bool { return h.ThisN == h.NTotal-1 }

// Stop ends the loop after the current iteration.
func (h *TrialHandler) Stop()         { h.stopped = true }
func (h *TrialHandler) Stopped() bool { return h.stopped }
func (h *TrialHandler) Len() int      { return len(h.trials) }

// Columns is the position of the loop as recorded in every output row.
func (h *TrialHandler) Columns() []Field {
	return []Field{
		{h.Name + ".thisRepN", h.ThisRepN},
		{h.Name + ".thisTrialN", h.ThisTrialN},
		{h.Name + ".thisN", h.ThisN},
		{h.Name + ".thisIndex", h.ThisIndex},
	}
}
