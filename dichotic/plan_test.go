package dichotic

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joctavio287/Dichotic/engine"
)

func table(t *testing.T, src string) *engine.Table {
	t.Helper()
	tbl, err := engine.ReadTable(strings.NewReader(src))
	require.NoError(t, err)
	return tbl
}

func TestBuildPlanResolvesEveryBlock(t *testing.T) {
	cfg := testConfig(t)
	tables, err := LoadTables(cfg)
	require.NoError(t, err)
	require.Len(t, tables.Conditions, 8)

	rows := []int{3, 0, 5}
	plan, err := BuildPlan(tables, rows, cfg.StimulusPath)
	require.NoError(t, err)
	require.Len(t, plan.Blocks, 3)

	b := plan.Blocks[0]
	assert.Equal(t, 0, b.N)
	assert.Equal(t, 3, b.Row)
	assert.Equal(t, 1, b.Pair)
	assert.Equal(t, Right, b.Condition.Target)
	assert.Equal(t, "1", b.Combination.Ordered)
	assert.Equal(t, 2, b.AttendedStory)
	assert.Equal(t, filepath.Join(cfg.Experiment.StimuliDir, "pair01_1.wav"), b.AudioPath)
	assert.Equal(t, "Book 2", b.Questionnaire.BookName)
	require.Len(t, b.Questionnaire.Questions, 3)
	assert.Equal(t, "B", b.Questionnaire.Questions[1].Correct)

	b = plan.Blocks[1]
	assert.Equal(t, 3, b.Pair)
	assert.Equal(t, Left, b.Condition.Target)
	assert.Equal(t, 3, b.AttendedStory)
	assert.Equal(t, "Book 3", b.Questionnaire.BookName)
}

func TestBuildPlanReportsEveryFailure(t *testing.T) {
	conds := table(t, "target,target_label\nL,known\nR,unknown\nL,known\n")
	combs := table(t, "condition_label,story_L,story_R,voice_L,voice_R,filename\nknown,1,2,F,M,a.wav\nknown,5,6,F,M,b.wav\n")
	quests := table(t, "book_number,book_name,question1,answer1a,answer1b,answer1c,correct_answer1\n1,One,q,a,b,c,a\n")
	tables, err := ParseTables(conds, combs, quests, 1)
	require.NoError(t, err)

	_, err = BuildPlan(tables, []int{0, 1, 2, 9}, nil)
	require.Error(t, err)
	msg := err.Error()
	assert.NotContains(t, msg, "block 0")
	assert.Contains(t, msg, `no combination for label "unknown"`)
	assert.Contains(t, msg, "no questionnaire for book 5")
	assert.Contains(t, msg, "condition row 9 out of range")
}

func TestParseTablesErrors(t *testing.T) {
	combs := table(t, "condition_label,story_L,story_R,voice_L,voice_R,filename\nx,1,2,F,M,a.wav\n")
	quests := table(t, "book_number,book_name,question1,answer1a,answer1b,answer1c,correct_answer1\n1,One,q,a,b,c,a\n")

	for name, tc := range map[string]struct {
		conds, combs, quests *engine.Table
	}{
		"bad target":     {table(t, "target,condition_label\nup,x\n"), combs, quests},
		"no label":       {table(t, "target\nL\n"), combs, quests},
		"bad story":      {table(t, "target,condition_label\nL,x\n"), table(t, "condition_label,story_L,story_R,voice_L,voice_R,filename\nx,one,2,F,M,a.wav\n"), quests},
		"duplicate book": {table(t, "target,condition_label\nL,x\n"), combs, table(t, "book_number,book_name,question1,answer1a,answer1b,answer1c,correct_answer1\n1,One,q,a,b,c,a\n1.0,Again,q,a,b,c,a\n")},
		"few questions":  {table(t, "target,condition_label\nL,x\n"), combs, quests},
	} {
		t.Run(name, func(t *testing.T) {
			n := 1
			if name == "few questions" {
				n = 2
			}
			_, err := ParseTables(tc.conds, tc.combs, tc.quests, n)
			assert.Error(t, err)
		})
	}
}

func TestPrepareLoadsStimuli(t *testing.T) {
	cfg := testConfig(t)
	prep, err := Prepare(cfg, NewRand(3), SilentLoader(0))
	require.NoError(t, err)

	assert.Len(t, prep.Plan.SelectedRows, cfg.Experiment.SelectedRows)
	assert.Len(t, prep.Plan.Blocks, cfg.Experiment.SelectedRows)
	assert.Len(t, prep.Stimuli.Audiobooks, cfg.Experiment.SelectedRows)
	assert.Equal(t, "bip", prep.Stimuli.Bip.Name)
	assert.Equal(t, cfg.Audio.BipDuration, prep.Stimuli.Bip.Duration())
}

func TestPrepareFailsOnMissingAudio(t *testing.T) {
	cfg := testConfig(t)
	_, err := Prepare(cfg, NewRand(3), nil)
	assert.ErrorContains(t, err, "load audiobook")
}

func TestCheckTriggerCodes(t *testing.T) {
	tests := []struct {
		name    string
		bipReps int
		wantErr string
	}{
		{"default reps", 10, ""},
		{"largest safe", 17, ""},
		{"second loop reaches questions", 18, "bip_trials2: 18 repetitions reuse trigger code 201 of questions_trial"},
		{"first loop reaches listening", 19, "bip_trials1: 19 repetitions reuse trigger code 100 of Listening"},
		{"out of byte range", 100, "reuse trigger code"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := checkTriggerCodes(tt.bipReps, 3)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
	assert.ErrorContains(t, checkTriggerCodes(0, 10), "questions_trial: 10 repetitions reuse trigger code 230 of GoodBye")
}

func TestPrepareRejectsOverlappingTriggers(t *testing.T) {
	cfg := testConfig(t)
	cfg.Experiment.BipReps = 18
	_, err := Prepare(cfg, NewRand(3), SilentLoader(0))
	assert.ErrorContains(t, err, "trigger code")
}
