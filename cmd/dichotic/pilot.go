package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/joctavio287/Dichotic/engine"
	"github.com/joctavio287/Dichotic/internal/app"
	"github.com/joctavio287/Dichotic/tui"
)

var (
	pilotFlags   sessionFlags
	pilotNoAudio bool
)

var pilotCmd = &cobra.Command{
	Use:   "pilot",
	Short: "Run a session in the terminal",
	Long: `Runs the experiment in the terminal for piloting the flow without a
display. Audio plays through the default output unless --no-audio is set.`,
	Args: cobra.NoArgs,
	RunE: runPilot,
}

func init() {
	pilotFlags.register(pilotCmd)
	pilotCmd.Flags().BoolVar(&pilotNoAudio, "no-audio", false, "Do not open the audio device")
}

func runPilot(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd, &pilotFlags)
	if err != nil {
		return err
	}
	s, err := app.OpenSession(cmd.Context(), cfg, logger, app.Options{})
	if err != nil {
		return err
	}
	defer s.Close()

	var res engine.Result
	opts := tui.Options{Display: cfg.Display, Audio: !pilotNoAudio, Log: logger}
	err = tui.Run(cmd.Context(), opts, func(ctx context.Context, b engine.Backend) error {
		var rerr error
		res, rerr = s.Run(ctx, b)
		return rerr
	})
	printResult(cmd, res)
	return err
}
