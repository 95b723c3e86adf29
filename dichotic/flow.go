package dichotic

import (
	"github.com/joctavio287/Dichotic/engine"
)

// buildFlow lays out the session:
//
//	Instructions
//	condition_trials (selected rows, sequential)
//	    ConditionPrompt
//	    bip_trials1 (random) -> Bips
//	    Listening
//	    bip_trials2 (sequential) -> Bips
//	    QuestionaryVariables
//	    questions_trial (sequential) -> Questionary
//	GoodBye
func (x *Experiment) buildFlow() {
	h := x.Handler
	cfg := x.Config.Experiment
	flow := engine.NewScheduler("flow")

	flow.Add(engine.Once(func(*engine.Frame) error {
		h.AddData("selected_rows", x.Plan.SelectedRows)
		return nil
	}))
	flow.Add(x.instructions.Tasks()...)

	h.ScheduleLoop(flow, x.conditionLoop, func(s *engine.Scheduler) {
		s.Add(x.prompt.Tasks()...)
		h.ScheduleLoop(s, x.repLoop(LoopBipsFirst, cfg.BipReps, engine.Random), func(s *engine.Scheduler) {
			s.Add(x.bips.Tasks()...)
		})
		s.Add(x.listening.Tasks()...)
		h.ScheduleLoop(s, x.repLoop(LoopBipsSecond, cfg.BipReps, engine.Sequential), func(s *engine.Scheduler) {
			s.Add(x.bips.Tasks()...)
		})
		s.Add(x.questionVars.Tasks()...)
		h.ScheduleLoop(s, x.repLoop(LoopQuestions, cfg.Questions, engine.Sequential), func(s *engine.Scheduler) {
			s.Add(x.questionary.Tasks()...)
		})
	})

	flow.Add(x.goodbye.Tasks()...)
	x.Flow = flow
}

func (x *Experiment) conditionLoop() (*engine.TrialHandler, error) {
	all := make([]engine.Trial, len(x.Tables.Conditions))
	for i, c := range x.Tables.Conditions {
		all[i] = c.Trial
	}
	trials, err := engine.Subset(all, x.Plan.SelectedRows)
	if err != nil {
		return nil, err
	}
	return engine.NewTrialHandler(LoopConditions, trials, 1, engine.Sequential, nil)
}

// repLoop is a loop without a condition file, repeating its body n times.
func (x *Experiment) repLoop(name string, n int, method engine.Method) func() (*engine.TrialHandler, error) {
	return func() (*engine.TrialHandler, error) {
		return engine.NewTrialHandler(name, nil, n, method, x.rng)
	}
}
