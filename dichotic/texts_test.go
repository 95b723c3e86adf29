package dichotic

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joctavio287/Dichotic/engine"
)

func TestPromptNamesTheTargetSide(t *testing.T) {
	texts, err := ParseTexts(engine.DefaultConfig().Texts)
	require.NoError(t, err)

	left, err := texts.Prompt(Left)
	require.NoError(t, err)
	assert.Contains(t, left, "IZQUIERDO")
	assert.Contains(t, left, "<<<")
	assert.NotContains(t, left, "DERECHO")

	right, err := texts.Prompt(Right)
	require.NoError(t, err)
	assert.Contains(t, right, "DERECHO")
	assert.Contains(t, right, ">>>")
	assert.NotContains(t, right, "<<<")
}

func TestQuestionText(t *testing.T) {
	texts, err := ParseTexts(engine.DefaultConfig().Texts)
	require.NoError(t, err)

	s, err := texts.Question(Question{Text: "Who?", A: "Ana", B: "Beto", C: "Carla"})
	require.NoError(t, err)
	assert.Contains(t, s, "Who?")
	assert.Contains(t, s, "A: Ana")
	assert.Contains(t, s, "B: Beto")
	assert.Contains(t, s, "C: Carla")
}

func TestParseTextsErrors(t *testing.T) {
	cfg := engine.DefaultConfig().Texts
	cfg.Prompt = "{{.Side"
	_, err := ParseTexts(cfg)
	assert.Error(t, err)

	cfg = engine.DefaultConfig().Texts
	cfg.Prompt = "{{.Nope}}"
	texts, err := ParseTexts(cfg)
	require.NoError(t, err)
	_, err = texts.Prompt(Left)
	assert.Error(t, err)
}

func TestParseEar(t *testing.T) {
	for in, want := range map[string]Ear{"L": Left, "left": Left, " Right ": Right, "r": Right} {
		got, err := ParseEar(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := ParseEar("both")
	assert.Error(t, err)

	assert.Equal(t, "L", Left.Code())
	assert.Equal(t, "R", Right.Code())
}
