package engine

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 8, cfg.Experiment.ConditionRows)
	assert.Equal(t, 7, cfg.Experiment.SelectedRows)
	assert.Equal(t, 10, cfg.Experiment.BipReps)
	assert.Equal(t, 500*time.Millisecond, cfg.Audio.FinalSilence)
}

func TestLoadConfigFileAndEnv(t *testing.T) {
	path := writeFile(t, "config.yaml", `
experiment:
  participant: "p07"
  stimuli_dir: /data/stimuli
display:
  fullscreen: false
  bg_color: "0,0,0"
audio:
  bip_duration: 250ms
`)
	t.Setenv("DICHOTIC_EXPERIMENT_SESSION", "002")
	t.Setenv("DICHOTIC_DISPLAY_TEXT_COLOR", "10,20,30,40")
	t.Setenv("DICHOTIC_TRIGGER_DEVICE", "/dev/ttyUSB0")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "p07", cfg.Experiment.Participant)
	assert.Equal(t, "002", cfg.Experiment.Session)
	assert.Equal(t, "DichoticListeningNoProbe", cfg.Experiment.Name)
	assert.False(t, cfg.Display.Fullscreen)
	assert.Equal(t, Color{0, 0, 0, 255}, cfg.Display.BGColor)
	assert.Equal(t, Color{10, 20, 30, 40}, cfg.Display.TextColor)
	assert.Equal(t, 250*time.Millisecond, cfg.Audio.BipDuration)
	assert.Equal(t, "/dev/ttyUSB0", cfg.Trigger.Device)
	assert.Equal(t, "/data/stimuli/story.wav", cfg.StimulusPath("story.wav"))
	assert.Equal(t, "/abs/bip.wav", cfg.StimulusPath("/abs/bip.wav"))
}

func TestLoadConfigWithoutFile(t *testing.T) {
	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig().Experiment, cfg.Experiment)
}

func TestLoadConfigErrors(t *testing.T) {
	_, err := LoadConfig(writeFile(t, "typo.yaml", "experiment:\n  partcipant: x\n"))
	assert.Error(t, err)

	_, err = LoadConfig(writeFile(t, "bad.yaml", "experiment:\n  selected_rows: 9\n"))
	assert.ErrorContains(t, err, "selected_rows")

	_, err = LoadConfig(writeFile(t, "color.yaml", "display:\n  bg_color: grey\n"))
	assert.Error(t, err)

	_, err = LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestConfigYAMLRoundTrip(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Experiment.Seed = 42
	data, err := cfg.YAML()
	require.NoError(t, err)

	back, err := LoadConfig(writeFile(t, "dump.yaml", string(data)))
	require.NoError(t, err)
	assert.Equal(t, cfg, back)
}

func TestParseColor(t *testing.T) {
	c, err := ParseColor(" 1, 2 ,3 ")
	require.NoError(t, err)
	assert.Equal(t, Color{1, 2, 3, 255}, c)
	assert.Equal(t, "1,2,3,255", c.String())

	for _, s := range []string{"", "1,2", "1,2,3,4,5", "256,0,0", "a,b,c"} {
		_, err := ParseColor(s)
		assert.Error(t, err, s)
	}
}

func TestSetupCache(t *testing.T) {
	path := filepath.Join(t.TempDir(), CacheFile)
	assert.Equal(t, SetupCache{}, LoadCache(path))

	c := SetupCache{Participant: "p01", Session: "002", ConfigFile: "lab.yaml", Fullscreen: true}
	require.NoError(t, c.Save(path))
	assert.Equal(t, c, LoadCache(path))
}
