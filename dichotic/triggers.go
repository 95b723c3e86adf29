package dichotic

import "fmt"

// EEG marker codes. Loop-relative codes take the loop's thisN: begin is
// base+3n and end is base+3n+1.
const (
	TrigInstructionsBegin byte = 25
	TrigInstructionsEnd   byte = 30
	TrigPromptBegin       byte = 35
	TrigPromptEnd         byte = 40
	TrigBipsFirstBase     byte = 45
	TrigBipsSecondBase    byte = 150
	TrigAudiobookStart    byte = 100
	TrigAudiobookEnd      byte = 105
	TrigQuestionBase      byte = 200
	TrigGoodByeBegin      byte = 230
	TrigGoodByeEnd        byte = 240
)

// Loop names, also the column prefixes in the results file.
const (
	LoopConditions = "condition_trials"
	LoopBipsFirst  = "bip_trials1"
	LoopBipsSecond = "bip_trials2"
	LoopQuestions  = "questions_trial"
)

func loopTrigger(base byte, n int) byte { return base + byte(3*n) }

func bipBase(loop string) byte {
	if loop == LoopBipsFirst {
		return TrigBipsFirstBase
	}
	return TrigBipsSecondBase
}

// checkTriggerCodes rejects repetition counts whose loop codes leave the
// byte range or land on another marker.
func checkTriggerCodes(bipReps, questions int) error {
	owner := map[int]string{
		int(TrigInstructionsBegin): "Instructions",
		int(TrigInstructionsEnd):   "Instructions",
		int(TrigPromptBegin):       "ConditionPrompt",
		int(TrigPromptEnd):         "ConditionPrompt",
		int(TrigAudiobookStart):    "Listening",
		int(TrigAudiobookEnd):      "Listening",
		int(TrigGoodByeBegin):      "GoodBye",
		int(TrigGoodByeEnd):        "GoodBye",
	}
	loops := []struct {
		name string
		base byte
		reps int
	}{
		{LoopQuestions, TrigQuestionBase, questions},
		{LoopBipsFirst, TrigBipsFirstBase, bipReps},
		{LoopBipsSecond, TrigBipsSecondBase, bipReps},
	}
	for _, l := range loops {
		for n := range l.reps {
			for _, code := range []int{int(l.base) + 3*n, int(l.base) + 3*n + 1} {
				if code > 255 {
					return fmt.Errorf("%s: %d repetitions need trigger code %d, above 255", l.name, l.reps, code)
				}
				if other, ok := owner[code]; ok {
					return fmt.Errorf("%s: %d repetitions reuse trigger code %d of %s", l.name, l.reps, code, other)
				}
				owner[code] = l.name
			}
		}
	}
	return nil
}
