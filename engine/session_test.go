package engine

import (
	"math/rand/v2"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNewSessionRandomParticipant(t *testing.T) {
	s := NewSession("Exp", "", "001", rand.New(rand.NewPCG(1, 1)))
	assert.Regexp(t, regexp.MustCompile(`^\d{6}$`), s.Participant)

	named := NewSession("Exp", "p01", "001", rand.New(rand.NewPCG(1, 1)))
	assert.Equal(t, "p01", named.Participant)
	assert.NotEqual(t, s.ID, named.ID)
}

func TestSessionInfoAndFileName(t *testing.T) {
	s := NewSession("Exp", "p01", "002", rand.New(rand.NewPCG(1, 1)))
	s.Date = time.Date(2024, 5, 6, 14, 3, 9, 120_000_000, time.UTC)
	s.FrameRate = 60

	assert.Equal(t, "2024-05-06_14h03.09.120", s.DateString())
	assert.Equal(t, filepath.Join("data", "p01_Exp_2024-05-06_14h03.09.120"), s.DataFileName("data"))

	info := s.Info()
	for key, want := range map[string]any{
		"participant": "p01",
		"session":     "002",
		"expName":     "Exp",
		"frameRate":   60.0,
		"run_id":      s.ID.String(),
	} {
		got, ok := info.Get(key)
		assert.True(t, ok, key)
		assert.Equal(t, want, got, key)
	}
}

func TestNewLoggerLevels(t *testing.T) {
	var out strings.Builder
	log := NewLogger(&out, false)
	log.Debug().Msg("hidden")
	log.Info().Msg("shown")
	assert.NotContains(t, out.String(), "hidden")
	assert.Contains(t, out.String(), "shown")

	out.Reset()
	verbose := NewLogger(&out, true)
	verbose.Debug().Msg("hidden")
	assert.Contains(t, out.String(), "hidden")
}
