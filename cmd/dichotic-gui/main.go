// Command dichotic-gui asks for the session details in a setup window and
// then runs the experiment full screen.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime"

	"github.com/Zyko0/go-sdl3/bin/binimg"
	"github.com/Zyko0/go-sdl3/bin/binsdl"
	"github.com/Zyko0/go-sdl3/bin/binttf"

	"github.com/joctavio287/Dichotic/engine"
	"github.com/joctavio287/Dichotic/internal/app"
)

func init() {
	runtime.LockOSThread()
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func run() error {
	defer binsdl.Load().Unload()
	defer binimg.Load().Unload()
	defer binttf.Load().Unload()

	log := engine.NewLogger(os.Stderr, os.Getenv(engine.EnvPrefix+"VERBOSE") != "")
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	setup, ok, err := app.Setup(engine.CacheFile, log)
	if err != nil || !ok {
		return err
	}
	cfg, err := engine.LoadConfig(setup.ConfigFile)
	if err != nil {
		return err
	}
	app.ApplySetup(cfg, setup)

	s, err := app.OpenSession(ctx, cfg, log, app.Options{})
	if err != nil {
		return err
	}
	defer s.Close()

	res, err := app.RunSDL(ctx, cfg, s, log)
	if err != nil {
		return err
	}
	log.Info().Str("path", res.DataFile).Msg(res.Message)
	return nil
}
