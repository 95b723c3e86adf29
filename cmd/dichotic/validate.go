package main

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/joctavio287/Dichotic/dichotic"
)

var (
	validateFlags   sessionFlags
	validateNoAudio bool
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check the tables and audio files and print the plan",
	Long: `Loads the three tables, draws the condition rows with the configured seed,
resolves every block to its audio file and questionnaire, decodes the audio
and prints the resulting plan. Nothing is presented or written.`,
	Args: cobra.NoArgs,
	RunE: runValidate,
}

func init() {
	validateFlags.register(validateCmd)
	validateCmd.Flags().BoolVar(&validateNoAudio, "no-audio", false, "Skip decoding the audio files")
}

func runValidate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd, &validateFlags)
	if err != nil {
		return err
	}
	var load dichotic.SoundLoader
	if validateNoAudio {
		load = dichotic.SilentLoader(time.Millisecond)
	}
	prep, err := dichotic.Prepare(cfg, dichotic.NewRand(cfg.Experiment.Seed), load)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Selected rows: %v\n\n", prep.Plan.SelectedRows)
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "BLOCK\tROW\tLABEL\tTARGET\tSTORY\tBOOK\tDURATION\tAUDIO")
	for i, b := range prep.Plan.Blocks {
		fmt.Fprintf(w, "%d\t%d\t%s\t%s\t%d\t%s\t%s\t%s\n",
			b.N, b.Row, b.Condition.Label, b.Condition.Target, b.AttendedStory,
			b.Questionnaire.BookName, prep.Stimuli.Audiobooks[i].Duration().Round(time.Second), b.AudioPath)
	}
	return w.Flush()
}
