package dichotic

import (
	"fmt"
	"strconv"

	"github.com/joctavio287/Dichotic/engine"
)

// Condition is one row of the conditions table.
type Condition struct {
	Target Ear
	Label  string
	// Ordered is empty when the table has no ordered column.
	Ordered string
	Trial   engine.Trial
}

// Combination is one row of the audiobook combinations table: which
// stories and voices play on each ear of an audio file.
type Combination struct {
	Label    string
	Ordered  string
	StoryL   int
	StoryR   int
	VoiceL   string
	VoiceR   string
	Filename string
}

// Story returns the story played on ear.
func (c Combination) Story(ear Ear) int {
	if ear == Left {
		return c.StoryL
	}
	return c.StoryR
}

type Question struct {
	Text    string
	A, B, C string
	Correct string
}

type Questionnaire struct {
	BookNumber int
	BookName   string
	Questions  []Question
}

// Tables are the three input tables in typed form.
type Tables struct {
	Conditions     []Condition
	Combinations   []Combination
	Questionnaires map[int]Questionnaire

	// orderedJoin is set when both conditions and combinations carry an
	// ordered column.
	orderedJoin bool
}

// labelColumns lists the accepted names of the condition label column.
var labelColumns = []string{"condition_label", "target_label"}

func LoadTables(cfg *engine.Config) (*Tables, error) {
	conds, err := engine.LoadTable(cfg.StimulusPath(cfg.Experiment.Conditions))
	if err != nil {
		return nil, fmt.Errorf("load conditions: %w", err)
	}
	combs, err := engine.LoadTable(cfg.StimulusPath(cfg.Experiment.Combinations))
	if err != nil {
		return nil, fmt.Errorf("load combinations: %w", err)
	}
	quests, err := engine.LoadTable(cfg.StimulusPath(cfg.Experiment.Questionary))
	if err != nil {
		return nil, fmt.Errorf("load questionary: %w", err)
	}
	return ParseTables(conds, combs, quests, cfg.Experiment.Questions)
}

func ParseTables(conds, combs, quests *engine.Table, nQuestions int) (*Tables, error) {
	t := &Tables{}
	var err error
	if t.Conditions, err = ParseConditions(conds); err != nil {
		return nil, err
	}
	if t.Combinations, err = ParseCombinations(combs); err != nil {
		return nil, err
	}
	if t.Questionnaires, err = ParseQuestionnaires(quests, nQuestions); err != nil {
		return nil, err
	}
	t.orderedJoin = conds.HasField("ordered") && combs.HasField("ordered")
	return t, nil
}

func ParseConditions(t *engine.Table) ([]Condition, error) {
	if err := t.Require("target"); err != nil {
		return nil, err
	}
	label := ""
	for _, c := range labelColumns {
		if t.HasField(c) {
			label = c
			break
		}
	}
	if label == "" {
		return nil, fmt.Errorf("%s: missing column %q", t.Path, labelColumns[0])
	}

	out := make([]Condition, 0, t.Len())
	for _, tr := range t.Trials {
		ear, err := ParseEar(tr.Get("target"))
		if err != nil {
			return nil, fmt.Errorf("%s row %d: %w", t.Path, tr.Index+1, err)
		}
		out = append(out, Condition{
			Target:  ear,
			Label:   tr.Get(label),
			Ordered: tr.Get("ordered"),
			Trial:   tr,
		})
	}
	return out, nil
}

func ParseCombinations(t *engine.Table) ([]Combination, error) {
	if err := t.Require("condition_label", "story_L", "story_R", "voice_L", "voice_R", "filename"); err != nil {
		return nil, err
	}
	out := make([]Combination, 0, t.Len())
	for _, tr := range t.Trials {
		l, err := atoi(tr, "story_L")
		if err != nil {
			return nil, fmt.Errorf("%s row %d: %w", t.Path, tr.Index+1, err)
		}
		r, err := atoi(tr, "story_R")
		if err != nil {
			return nil, fmt.Errorf("%s row %d: %w", t.Path, tr.Index+1, err)
		}
		out = append(out, Combination{
			Label:    tr.Get("condition_label"),
			Ordered:  tr.Get("ordered"),
			StoryL:   l,
			StoryR:   r,
			VoiceL:   tr.Get("voice_L"),
			VoiceR:   tr.Get("voice_R"),
			Filename: tr.Get("filename"),
		})
	}
	return out, nil
}

// ParseQuestionnaires reads n questions per book, keyed by book number.
func ParseQuestionnaires(t *engine.Table, n int) (map[int]Questionnaire, error) {
	cols := []string{"book_number", "book_name"}
	for i := 1; i <= n; i++ {
		cols = append(cols,
			fmt.Sprintf("question%d", i),
			fmt.Sprintf("answer%da", i),
			fmt.Sprintf("answer%db", i),
			fmt.Sprintf("answer%dc", i),
			fmt.Sprintf("correct_answer%d", i),
		)
	}
	if err := t.Require(cols...); err != nil {
		return nil, err
	}

	out := make(map[int]Questionnaire, t.Len())
	for _, tr := range t.Trials {
		num, err := atoi(tr, "book_number")
		if err != nil {
			return nil, fmt.Errorf("%s row %d: %w", t.Path, tr.Index+1, err)
		}
		if _, dup := out[num]; dup {
			return nil, fmt.Errorf("%s row %d: duplicate book_number %d", t.Path, tr.Index+1, num)
		}
		q := Questionnaire{BookNumber: num, BookName: tr.Get("book_name")}
		for i := 1; i <= n; i++ {
			q.Questions = append(q.Questions, Question{
				Text:    tr.Get(fmt.Sprintf("question%d", i)),
				A:       tr.Get(fmt.Sprintf("answer%da", i)),
				B:       tr.Get(fmt.Sprintf("answer%db", i)),
				C:       tr.Get(fmt.Sprintf("answer%dc", i)),
				Correct: tr.Get(fmt.Sprintf("correct_answer%d", i)),
			})
		}
		out[num] = q
	}
	return out, nil
}

func atoi(tr engine.Trial, col string) (int, error) {
	v := tr.Get(col)
	n, err := strconv.Atoi(v)
	if err != nil {
		// Tables exported from pandas may write integers as 3.0.
		f, ferr := strconv.ParseFloat(v, 64)
		if ferr != nil || f != float64(int(f)) {
			return 0, fmt.Errorf("column %s: %q is not an integer", col, v)
		}
		n = int(f)
	}
	return n, nil
}
