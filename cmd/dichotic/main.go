// Command dichotic runs the dichotic listening experiment.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/joctavio287/Dichotic/engine"
)

func init() {
	// SDL must stay on the main thread.
	runtime.LockOSThread()
}

var (
	configFile string
	verbose    bool
	logger     zerolog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "dichotic",
	Short: "Dichotic listening audiobook experiment",
	Long: `Two audiobooks play at once, one in each ear. The participant attends to
the side shown before each block and answers comprehension questions after it.
Results are written as a tab separated file per session.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		logger = engine.NewLogger(os.Stderr, verbose)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "YAML configuration file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(pilotCmd)
	rootCmd.AddCommand(simulateCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(archiveCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
