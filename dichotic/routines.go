package dichotic

import (
	"fmt"
	"strings"

	"github.com/joctavio287/Dichotic/engine"
)

func (x *Experiment) buildRoutines() {
	h := x.Handler

	// Instructions
	instrText := engine.NewText("text_instructions", x.Texts.Instructions)
	instrKey := engine.NewKeyboard("key_instructions", true, engine.KeySpace)
	x.instructions = engine.NewRoutine(h, "Instructions", instrKey, instrText)
	x.instructions.OnBegin = x.sendHook(TrigInstructionsBegin)
	x.instructions.OnEnd = x.sendHook(TrigInstructionsEnd)

	// ConditionPrompt
	promptText := engine.NewText("text_prompt", "")
	promptKey := engine.NewKeyboard("key_resp_prompt", true, engine.KeySpace)
	x.prompt = engine.NewRoutine(h, "ConditionPrompt", promptText, promptKey)
	x.prompt.OnBegin = func(ctx *engine.RoutineContext) error {
		loop := h.Loop(LoopConditions)
		if loop == nil || loop.ThisN < 0 || loop.ThisN >= len(x.Plan.Blocks) {
			return fmt.Errorf("condition prompt outside the condition loop")
		}
		x.block = &x.Plan.Blocks[loop.ThisN]
		x.send(TrigPromptBegin)
		txt, err := x.Texts.Prompt(x.block.Condition.Target)
		if err != nil {
			return fmt.Errorf("render prompt: %w", err)
		}
		promptText.SetText(txt)
		return nil
	}
	x.prompt.OnEnd = x.sendHook(TrigPromptEnd)

	// Bips
	bip := engine.NewSound("bip", x.Stimuli.Bip)
	fixBip := engine.NewCross("fixation_bip")
	fixBip.StopWhen = func(*engine.RoutineContext) bool { return bip.HasFinished() }
	silence := engine.NewCross("final_silence")
	silence.StartWhen = func(*engine.RoutineContext) bool { return bip.HasFinished() }
	silence.Duration = x.Config.Audio.FinalSilence
	x.bips = engine.NewRoutine(h, "Bips", bip, fixBip, silence)
	x.bips.OnBegin = func(ctx *engine.RoutineContext) error {
		loop := ctx.Loop()
		x.send(loopTrigger(bipBase(loop.Name), loop.ThisN))
		if loop.IsLast() {
			silence.Skip()
		}
		return nil
	}
	x.bips.OnEnd = func(ctx *engine.RoutineContext) error {
		loop := ctx.Loop()
		x.send(loopTrigger(bipBase(loop.Name), loop.ThisN) + 1)
		return nil
	}

	// Listening
	cross := engine.NewCross("polygon")
	audiobook := engine.NewSound("audiobook", nil)
	audiobook.OnStart = func(ctx *engine.RoutineContext) {
		x.send(TrigAudiobookStart)
		ctx.AddData("time_audiobook_started", ctx.T)
	}
	audiobook.OnStop = func(ctx *engine.RoutineContext) {
		x.send(TrigAudiobookEnd)
		ctx.AddData("time_audiobook_finished", ctx.T)
		ctx.EndRoutine()
	}
	x.listening = engine.NewRoutine(h, "Listening", cross, audiobook)
	x.listening.OnBegin = func(ctx *engine.RoutineContext) error {
		b := x.block
		audiobook.SetBuffer(x.Stimuli.Audiobooks[b.N])
		ctx.AddData("attended_story", b.AttendedStory)
		ctx.AddData("audio_filepath", b.AudioPath)
		ctx.AddData("target_label", b.Condition.Label)
		ctx.AddData("book_name", b.Questionnaire.BookName)
		ctx.AddData("story_L", b.Combination.StoryL)
		ctx.AddData("story_R", b.Combination.StoryR)
		ctx.AddData("voice_L", b.Combination.VoiceL)
		ctx.AddData("voice_R", b.Combination.VoiceR)
		ctx.AddData("target", b.Condition.Target.Code())
		return nil
	}

	// QuestionaryVariables has no components: it only records the block's
	// questions before they are asked.
	x.questionVars = engine.NewRoutine(h, "QuestionaryVariables")
	x.questionVars.OnBegin = func(ctx *engine.RoutineContext) error {
		for i, q := range x.block.Questionnaire.Questions {
			ctx.AddData(fmt.Sprintf("question%d", i), q.Text)
			ctx.AddData(fmt.Sprintf("answer_a%d", i), q.A)
			ctx.AddData(fmt.Sprintf("answer_b%d", i), q.B)
			ctx.AddData(fmt.Sprintf("answer_c%d", i), q.C)
			ctx.AddData(fmt.Sprintf("correct_answer%d", i), q.Correct)
		}
		return nil
	}

	// Questionary
	qKey := engine.NewKeyboard("key_resp_questionary", true, "a", "b", "c")
	qText := engine.NewText("questionary_text", "")
	x.questionary = engine.NewRoutine(h, "Questionary", qKey, qText)
	x.questionary.OnBegin = func(ctx *engine.RoutineContext) error {
		n := ctx.Loop().ThisN
		qs := x.block.Questionnaire.Questions
		if n < 0 || n >= len(qs) {
			return fmt.Errorf("question %d of book %d does not exist", n, x.block.AttendedStory)
		}
		q := qs[n]
		x.send(loopTrigger(TrigQuestionBase, n))
		qKey.Correct = strings.ToLower(strings.TrimSpace(q.Correct))
		txt, err := x.Texts.Question(q)
		if err != nil {
			return fmt.Errorf("render question: %w", err)
		}
		qText.SetText(txt)
		return nil
	}
	x.questionary.OnEnd = func(ctx *engine.RoutineContext) error {
		x.send(loopTrigger(TrigQuestionBase, ctx.Loop().ThisN) + 1)
		return nil
	}

	// GoodBye
	finalKey := engine.NewKeyboard("final_key", true, engine.KeySpace)
	finalText := engine.NewText("final_text", x.Texts.GoodBye)
	x.goodbye = engine.NewRoutine(h, "GoodBye", finalKey, finalText)
	x.goodbye.OnBegin = x.sendHook(TrigGoodByeBegin)
	x.goodbye.OnEnd = x.sendHook(TrigGoodByeEnd)
}

func (x *Experiment) sendHook(code byte) engine.Hook {
	return func(*engine.RoutineContext) error {
		x.send(code)
		return nil
	}
}
