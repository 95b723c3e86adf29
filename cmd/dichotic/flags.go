package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/joctavio287/Dichotic/engine"
)

// sessionFlags override the configuration file and environment.
type sessionFlags struct {
	participant string
	session     string
	dataDir     string
	stimuliDir  string
	seed        uint64
	trigger     string
	archive     string
	windowed    bool
}

func (f *sessionFlags) register(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.StringVarP(&f.participant, "participant", "p", "", "Participant id (random when empty)")
	fs.StringVarP(&f.session, "session", "s", "", "Session label")
	fs.StringVar(&f.dataDir, "data-dir", "", "Directory for results files")
	fs.StringVar(&f.stimuliDir, "stimuli-dir", "", "Directory with the tables and audio files")
	fs.Uint64Var(&f.seed, "seed", 0, "Random seed (0 seeds from the clock)")
	fs.StringVar(&f.trigger, "trigger", "", "Serial device for EEG triggers")
	fs.StringVar(&f.archive, "archive", "", "SQLite session archive")
	fs.BoolVar(&f.windowed, "windowed", false, "Run in a window instead of full screen")
}

func (f *sessionFlags) apply(cmd *cobra.Command, cfg *engine.Config) {
	fs := cmd.Flags()
	if fs.Changed("participant") {
		cfg.Experiment.Participant = f.participant
	}
	if fs.Changed("session") {
		cfg.Experiment.Session = f.session
	}
	if fs.Changed("data-dir") {
		cfg.Experiment.DataDir = f.dataDir
	}
	if fs.Changed("stimuli-dir") {
		cfg.Experiment.StimuliDir = f.stimuliDir
	}
	if fs.Changed("seed") {
		cfg.Experiment.Seed = f.seed
	}
	if fs.Changed("trigger") {
		cfg.Trigger.Device = f.trigger
	}
	if fs.Changed("archive") {
		cfg.Archive.Path = f.archive
	}
	if f.windowed {
		cfg.Display.Fullscreen = false
	}
}

// loadConfig reads the configuration file, then environment, then flags.
func loadConfig(cmd *cobra.Command, f *sessionFlags) (*engine.Config, error) {
	cfg, err := engine.LoadConfig(configFile)
	if err != nil {
		return nil, err
	}
	if f != nil {
		f.apply(cmd, cfg)
		if err := cfg.Validate(); err != nil {
			return nil, fmt.Errorf("invalid flags: %w", err)
		}
	}
	return cfg, nil
}

func printResult(cmd *cobra.Command, res engine.Result) {
	fmt.Fprintln(cmd.OutOrStdout(), res.Message)
	if res.DataFile != "" {
		fmt.Fprintf(cmd.OutOrStdout(), "Results: %s\n", res.DataFile)
	}
}
