package main

import (
	"github.com/Zyko0/go-sdl3/bin/binimg"
	"github.com/Zyko0/go-sdl3/bin/binsdl"
	"github.com/Zyko0/go-sdl3/bin/binttf"
	"github.com/spf13/cobra"

	"github.com/joctavio287/Dichotic/engine"
	"github.com/joctavio287/Dichotic/internal/app"
)

var (
	runFlags sessionFlags
	noDialog bool
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a session in an SDL window",
	Long: `Runs the full experiment on screen. Unless --participant or --no-dialog is
given, a setup dialog asks for the participant, the session and the
configuration file first.`,
	Args: cobra.NoArgs,
	RunE: runSession,
}

func init() {
	runFlags.register(runCmd)
	runCmd.Flags().BoolVar(&noDialog, "no-dialog", false, "Skip the setup dialog")
}

func runSession(cmd *cobra.Command, args []string) error {
	defer binsdl.Load().Unload()
	defer binimg.Load().Unload()
	defer binttf.Load().Unload()

	var (
		setup     engine.SetupCache
		useDialog = !noDialog && !cmd.Flags().Changed("participant")
	)
	if useDialog {
		c, ok, err := app.Setup(engine.CacheFile, logger)
		if err != nil {
			return err
		}
		if !ok {
			logger.Info().Msg("Setup cancelled")
			return nil
		}
		setup = c
		if configFile == "" {
			configFile = c.ConfigFile
		}
	}

	cfg, err := loadConfig(cmd, &runFlags)
	if err != nil {
		return err
	}
	if useDialog {
		app.ApplySetup(cfg, setup)
	}

	s, err := app.OpenSession(cmd.Context(), cfg, logger, app.Options{})
	if err != nil {
		return err
	}
	defer s.Close()

	res, err := app.RunSDL(cmd.Context(), cfg, s, logger)
	printResult(cmd, res)
	return err
}
