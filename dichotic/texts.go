package dichotic

import (
	"fmt"
	"strings"
	"text/template"

	"github.com/joctavio287/Dichotic/engine"
)

// Texts renders the screen texts of one session.
type Texts struct {
	Instructions string
	GoodBye      string

	prompt   *template.Template
	question *template.Template
}

func ParseTexts(cfg engine.TextsConfig) (*Texts, error) {
	prompt, err := template.New("prompt").Option("missingkey=error").Parse(cfg.Prompt)
	if err != nil {
		return nil, fmt.Errorf("texts.prompt: %w", err)
	}
	question, err := template.New("question").Option("missingkey=error").Parse(cfg.Question)
	if err != nil {
		return nil, fmt.Errorf("texts.question: %w", err)
	}
	return &Texts{
		Instructions: cfg.Instructions,
		GoodBye:      cfg.GoodBye,
		prompt:       prompt,
		question:     question,
	}, nil
}

type promptData struct {
	Side   string
	Arrow  string
	Target string
}

func (t *Texts) Prompt(target Ear) (string, error) {
	var sb strings.Builder
	err := t.prompt.Execute(&sb, promptData{Side: target.Side(), Arrow: target.Arrow(), Target: target.String()})
	return sb.String(), err
}

type questionData struct {
	Question string
	A, B, C  string
}

func (t *Texts) Question(q Question) (string, error) {
	var sb strings.Builder
	err := t.question.Execute(&sb, questionData{Question: q.Text, A: q.A, B: q.B, C: q.C})
	return sb.String(), err
}
