package dichotic

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/joctavio287/Dichotic/engine"
)

// writeStimuli lays out eight conditions, a combination per story pair and
// a three question form per book in a fresh stimuli directory.
func writeStimuli(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()

	var conds strings.Builder
	conds.WriteString("target,condition_label,ordered\n")
	for i := range 8 {
		target := "L"
		if i%2 == 1 {
			target = "R"
		}
		fmt.Fprintf(&conds, "%s,mixed,%d\n", target, i%2)
	}

	var combs strings.Builder
	combs.WriteString("condition_label,ordered,story_L,story_R,voice_L,voice_R,filename\n")
	for p := 1; p <= 13; p += 2 {
		for ord := range 2 {
			fmt.Fprintf(&combs, "mixed,%d,%d,%d,F1,M1,pair%02d_%d.wav\n", ord, p, p+1, p, ord)
		}
	}

	var quests strings.Builder
	quests.WriteString("book_number,book_name")
	for i := 1; i <= 3; i++ {
		fmt.Fprintf(&quests, ",question%d,answer%da,answer%db,answer%dc,correct_answer%d", i, i, i, i, i)
	}
	quests.WriteString("\n")
	for book := 1; book <= 14; book++ {
		fmt.Fprintf(&quests, "%d.0,Book %d", book, book)
		for i := 1; i <= 3; i++ {
			fmt.Fprintf(&quests, ",Q%d of %d?,yes,no,maybe,%s", i, book, []string{"a", "B", "c"}[i-1])
		}
		quests.WriteString("\n")
	}

	for name, content := range map[string]string{
		"conditions.csv":             conds.String(),
		"audiobook_combinations.csv": combs.String(),
		"audiobook_questionary.csv":  quests.String(),
	} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
	}
	return dir
}

func testConfig(t *testing.T) *engine.Config {
	t.Helper()
	cfg := engine.DefaultConfig()
	cfg.Experiment.StimuliDir = writeStimuli(t)
	cfg.Experiment.DataDir = filepath.Join(t.TempDir(), "data")
	cfg.Experiment.BipReps = 2
	cfg.Experiment.Seed = 7
	cfg.Audio.BipDuration = 100 * time.Millisecond
	cfg.Audio.FinalSilence = 100 * time.Millisecond
	return cfg
}

func newTestExperiment(t *testing.T, cfg *engine.Config, trig engine.Trigger) *Experiment {
	t.Helper()
	rng := NewRand(cfg.Experiment.Seed)
	x, err := New(Options{
		Config:    cfg,
		Session:   engine.NewSession(cfg.Experiment.Name, "p01", "001", rng),
		Rand:      rng,
		Log:       zerolog.Nop(),
		Trigger:   trig,
		LoadSound: SilentLoader(time.Second),
	})
	require.NoError(t, err)
	return x
}
