package engine

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment override, e.g.
// DICHOTIC_EXPERIMENT_DATA_DIR.
const EnvPrefix = "DICHOTIC_"

type Config struct {
	Experiment ExperimentConfig `yaml:"experiment" envPrefix:"EXPERIMENT_"`
	Display    DisplayConfig    `yaml:"display" envPrefix:"DISPLAY_"`
	Audio      AudioConfig      `yaml:"audio" envPrefix:"AUDIO_"`
	Trigger    TriggerConfig    `yaml:"trigger" envPrefix:"TRIGGER_"`
	Archive    ArchiveConfig    `yaml:"archive" envPrefix:"ARCHIVE_"`
	Texts      TextsConfig      `yaml:"texts" envPrefix:"TEXTS_"`
}

type ExperimentConfig struct {
	Name string `yaml:"name" env:"NAME"`
	// Participant defaults to a random six digit id.
	Participant string `yaml:"participant" env:"PARTICIPANT"`
	Session     string `yaml:"session" env:"SESSION"`

	DataDir      string `yaml:"data_dir" env:"DATA_DIR"`
	StimuliDir   string `yaml:"stimuli_dir" env:"STIMULI_DIR"`
	Conditions   string `yaml:"conditions" env:"CONDITIONS"`
	Combinations string `yaml:"combinations" env:"COMBINATIONS"`
	Questionary  string `yaml:"questionary" env:"QUESTIONARY"`

	ConditionRows int `yaml:"condition_rows" env:"CONDITION_ROWS"`
	SelectedRows  int `yaml:"selected_rows" env:"SELECTED_ROWS"`
	BipReps       int `yaml:"bip_reps" env:"BIP_REPS"`
	Questions     int `yaml:"questions" env:"QUESTIONS"`
	// Seed fixes the random source. Zero seeds from the clock.
	Seed uint64 `yaml:"seed" env:"SEED"`
}

type DisplayConfig struct {
	Width       int     `yaml:"width" env:"WIDTH"`
	Height      int     `yaml:"height" env:"HEIGHT"`
	Fullscreen  bool    `yaml:"fullscreen" env:"FULLSCREEN"`
	VSync       bool    `yaml:"vsync" env:"VSYNC"`
	FrameRate   float64 `yaml:"frame_rate" env:"FRAME_RATE"`
	FontFile    string  `yaml:"font_file" env:"FONT_FILE"`
	FontSize    int     `yaml:"font_size" env:"FONT_SIZE"`
	ScaleFactor float32 `yaml:"scale_factor" env:"SCALE_FACTOR"`
	StartSplash string  `yaml:"start_splash" env:"START_SPLASH"`
	EndSplash   string  `yaml:"end_splash" env:"END_SPLASH"`

	BGColor       Color `yaml:"bg_color" env:"BG_COLOR"`
	TextColor     Color `yaml:"text_color" env:"TEXT_COLOR"`
	FixationColor Color `yaml:"fixation_color" env:"FIXATION_COLOR"`
}

type AudioConfig struct {
	// BipFile is played instead of the synthesised tone when set.
	BipFile      string        `yaml:"bip_file" env:"BIP_FILE"`
	BipFrequency float64       `yaml:"bip_frequency" env:"BIP_FREQUENCY"`
	BipDuration  time.Duration `yaml:"bip_duration" env:"BIP_DURATION"`
	FinalSilence time.Duration `yaml:"final_silence" env:"FINAL_SILENCE"`
	Volume       float64       `yaml:"volume" env:"VOLUME"`
}

type TriggerConfig struct {
	// Device is the serial port. Empty disables triggers.
	Device   string `yaml:"device" env:"DEVICE"`
	BaudRate int    `yaml:"baud_rate" env:"BAUD_RATE"`
	DLP      bool   `yaml:"dlp" env:"DLP"`
}

type ArchiveConfig struct {
	// Path of the SQLite session archive. Empty disables it.
	Path string `yaml:"path" env:"PATH"`
}

// TextsConfig holds the screen texts. Prompt and Question are text/template
// strings.
type TextsConfig struct {
	Instructions string `yaml:"instructions" env:"INSTRUCTIONS"`
	Prompt       string `yaml:"prompt" env:"PROMPT"`
	Question     string `yaml:"question" env:"QUESTION"`
	GoodBye      string `yaml:"goodbye" env:"GOODBYE"`
}

func DefaultConfig() *Config {
	return &Config{
		Experiment: ExperimentConfig{
			Name:          "DichoticListeningNoProbe",
			Session:       "001",
			DataDir:       "data",
			StimuliDir:    "stimuli",
			Conditions:    "conditions.csv",
			Combinations:  "audiobook_combinations.csv",
			Questionary:   "audiobook_questionary.csv",
			ConditionRows: 8,
			SelectedRows:  7,
			BipReps:       10,
			Questions:     3,
		},
		Display: DisplayConfig{
			Width:         1920,
			Height:        1080,
			Fullscreen:    true,
			VSync:         true,
			FrameRate:     60,
			FontSize:      40,
			ScaleFactor:   1.0,
			BGColor:       Color{R: 128, G: 128, B: 128, A: 255},
			TextColor:     Color{R: 255, G: 255, B: 255, A: 255},
			FixationColor: Color{R: 255, G: 255, B: 255, A: 255},
		},
		Audio: AudioConfig{
			BipFrequency: 440,
			BipDuration:  500 * time.Millisecond,
			FinalSilence: 500 * time.Millisecond,
			Volume:       1.0,
		},
		Trigger: TriggerConfig{BaudRate: 115200},
		Texts: TextsConfig{
			Instructions: DefaultInstructions,
			Prompt:       DefaultPrompt,
			Question:     DefaultQuestion,
			GoodBye:      DefaultGoodBye,
		},
	}
}

const (
	DefaultInstructions = "En cada ensayo escucharás dos historias simultáneas (una en cada oído). Tus tareas son\n\n" +
		"1) Mantenerte quieto/a y mirar la cruz central.\n\n" +
		"2) Prestar atención solo a la historia indicada.\n\n" +
		"3) Responder las preguntas con el teclado.\n\n" +
		"Presioná ESPACIO para continuar..."
	DefaultPrompt   = "Presta atención a la historia del lado {{.Side}} ({{.Arrow}}).\n\n\nApretá ESPACIO para continuar..."
	DefaultQuestion = "{{.Question}}\n\n A: {{.A}}\n\n B: {{.B}}\n\n C: {{.C}}\n\n Presioná la opción que creas correcta (teclas A, B ó C)"
	DefaultGoodBye  = "¡Listo! Terminó el experimento. ¡Gracias por participar!\n\n\n\nApretá ESPACIO para finalizar...\n"
)

// LoadConfig reads the YAML file at path (optional) over the defaults and
// then applies DICHOTIC_* environment overrides.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	if err := env.ParseWithOptions(cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	var errs []error
	e := c.Experiment
	if e.Name == "" {
		errs = append(errs, errors.New("experiment.name is empty"))
	}
	if e.ConditionRows <= 0 || e.SelectedRows <= 0 || e.SelectedRows > e.ConditionRows {
		errs = append(errs, fmt.Errorf("experiment: selected_rows %d must be in 1..condition_rows (%d)", e.SelectedRows, e.ConditionRows))
	}
	if e.BipReps < 0 {
		errs = append(errs, fmt.Errorf("experiment.bip_reps: %d", e.BipReps))
	}
	if e.Questions < 1 || e.Questions > 3 {
		errs = append(errs, fmt.Errorf("experiment.questions: %d not in 1..3", e.Questions))
	}
	if c.Display.FontSize <= 0 {
		errs = append(errs, fmt.Errorf("display.font_size: %d", c.Display.FontSize))
	}
	if c.Display.FrameRate <= 0 {
		errs = append(errs, fmt.Errorf("display.frame_rate: %v", c.Display.FrameRate))
	}
	if c.Audio.BipFile == "" && c.Audio.BipDuration <= 0 {
		errs = append(errs, errors.New("audio.bip_duration must be positive without a bip_file"))
	}
	if c.Trigger.Device != "" && c.Trigger.BaudRate <= 0 {
		errs = append(errs, fmt.Errorf("trigger.baud_rate: %d", c.Trigger.BaudRate))
	}
	return errors.Join(errs...)
}

func (c *Config) YAML() ([]byte, error) { return yaml.Marshal(c) }

// StimulusPath resolves name against the stimuli directory.
func (c *Config) StimulusPath(name string) string {
	if name == "" || filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(c.Experiment.StimuliDir, name)
}

// Color is written "R,G,B" or "R,G,B,A" in config files.
type Color struct {
	R, G, B, A uint8
}

func ParseColor(s string) (Color, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 3 && len(parts) != 4 {
		return Color{}, fmt.Errorf("color %q: want R,G,B or R,G,B,A", s)
	}
	var v [4]uint8
	v[3] = 255
	for i, p := range parts {
		n, err := strconv.ParseUint(strings.TrimSpace(p), 10, 8)
		if err != nil {
			return Color{}, fmt.Errorf("color %q: %w", s, err)
		}
		v[i] = uint8(n)
	}
	return Color{R: v[0], G: v[1], B: v[2], A: v[3]}, nil
}

func (c Color) String() string { return fmt.Sprintf("%d,%d,%d,%d", c.R, c.G, c.B, c.A) }

func (c Color) MarshalText() ([]byte, error) { return []byte(c.String()), nil }

func (c *Color) UnmarshalText(b []byte) error {
	v, err := ParseColor(string(b))
	if err != nil {
		return err
	}
	*c = v
	return nil
}

// CacheFile remembers the last values entered in the setup dialog.
const CacheFile = ".dichotic_cache.yaml"

type SetupCache struct {
	Participant string `yaml:"participant"`
	Session     string `yaml:"session"`
	ConfigFile  string `yaml:"config_file"`
	Fullscreen  bool   `yaml:"fullscreen"`
}

// LoadCache returns the zero cache when the file is missing or unreadable.
func LoadCache(path string) SetupCache {
	var c SetupCache
	data, err := os.ReadFile(path)
	if err != nil {
		return c
	}
	if err := yaml.Unmarshal(data, &c); err != nil {
		return SetupCache{}
	}
	return c
}

func (c SetupCache) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
