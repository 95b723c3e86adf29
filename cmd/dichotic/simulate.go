package main

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/joctavio287/Dichotic/dichotic"
	"github.com/joctavio287/Dichotic/engine"
	"github.com/joctavio287/Dichotic/internal/app"
)

var (
	simFlags     sessionFlags
	simFakeAudio time.Duration
	simRT        time.Duration
	simMaxFrames int
)

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Dry run with a synthetic participant",
	Long: `Runs the whole flow headless on a simulated clock. A synthetic participant
answers every keyboard with a random accepted key after --rt. Triggers are
recorded and logged instead of sent. The results file is written as in a
real session.`,
	Args: cobra.NoArgs,
	RunE: runSimulate,
}

func init() {
	simFlags.register(simulateCmd)
	fs := simulateCmd.Flags()
	fs.DurationVar(&simFakeAudio, "fake-audio", 0, "Replace every audio file with this much silence")
	fs.DurationVar(&simRT, "rt", 800*time.Millisecond, "Response time of the synthetic participant")
	fs.IntVar(&simMaxFrames, "max-frames", 0, "Fail after this many frames (0 is unlimited)")
}

func runSimulate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd, &simFlags)
	if err != nil {
		return err
	}
	rec := &engine.RecordingTrigger{}
	opts := app.Options{Trigger: rec}
	if simFakeAudio > 0 {
		opts.LoadSound = dichotic.SilentLoader(simFakeAudio)
	}
	s, err := app.OpenSession(cmd.Context(), cfg, logger, opts)
	if err != nil {
		return err
	}
	defer s.Close()

	b := engine.NewSimBackend(cfg.Display.FrameRate)
	b.MaxFrames = simMaxFrames
	b.ResponseTime = simRT
	b.Responder = engine.RandomKey(dichotic.NewRand(cfg.Experiment.Seed))

	res, err := s.Run(cmd.Context(), b)
	printResult(cmd, res)
	if err != nil {
		return err
	}
	codes := rec.Codes()
	logger.Info().
		Int("frames", res.Frames).
		Dur("simulated", res.Elapsed).
		Int("plays", len(b.Plays)).
		Int("triggers", len(codes)).
		Msg("Simulation finished")
	return nil
}
