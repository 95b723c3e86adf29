package dichotic

import (
	"errors"
	"fmt"
)

// Block is everything one selected condition needs: the audio file, the
// attended story and its questionnaire.
type Block struct {
	// N is the position in the session, Row the row of the conditions table.
	N   int
	Row int
	// Pair is the first story number of the pair played in this block.
	Pair          int
	Condition     Condition
	Combination   Combination
	AttendedStory int
	AudioPath     string
	Questionnaire Questionnaire
}

type Plan struct {
	SelectedRows []int
	Blocks       []Block
}

// BuildPlan resolves every selected condition row. The n-th block plays the
// story pair 2n+1 and takes the first combination whose label (and ordered
// flag, when both tables have it) match the condition and which contains
// that story on either ear.
func BuildPlan(t *Tables, rows []int, resolve func(string) string) (*Plan, error) {
	p := &Plan{SelectedRows: rows}
	var errs []error
	for n, row := range rows {
		if row < 0 || row >= len(t.Conditions) {
			errs = append(errs, fmt.Errorf("block %d: condition row %d out of range (%d rows)", n, row, len(t.Conditions)))
			continue
		}
		b, err := t.resolve(n, t.Conditions[row])
		if err != nil {
			errs = append(errs, fmt.Errorf("block %d (condition row %d): %w", n, row, err))
			continue
		}
		b.Row = row
		if resolve != nil {
			b.AudioPath = resolve(b.Combination.Filename)
		}
		p.Blocks = append(p.Blocks, b)
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return p, nil
}

func (t *Tables) resolve(n int, c Condition) (Block, error) {
	pair := 2*n + 1
	b := Block{N: n, Pair: pair, Condition: c}

	found := false
	for _, comb := range t.Combinations {
		if comb.Label != c.Label {
			continue
		}
		if t.orderedJoin && comb.Ordered != c.Ordered {
			continue
		}
		if comb.StoryL != pair && comb.StoryR != pair {
			continue
		}
		b.Combination, found = comb, true
		break
	}
	if !found {
		return b, fmt.Errorf("no combination for label %q with story %d", c.Label, pair)
	}

	b.AttendedStory = b.Combination.Story(c.Target)
	b.AudioPath = b.Combination.Filename
	q, ok := t.Questionnaires[b.AttendedStory]
	if !ok {
		return b, fmt.Errorf("no questionnaire for book %d", b.AttendedStory)
	}
	b.Questionnaire = q
	return b, nil
}
