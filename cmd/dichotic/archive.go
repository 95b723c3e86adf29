package main

import (
	"errors"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/joctavio287/Dichotic/archive"
	"github.com/joctavio287/Dichotic/engine"
)

var archivePath string

var archiveCmd = &cobra.Command{
	Use:   "archive",
	Short: "Inspect the session archive",
}

var archiveListCmd = &cobra.Command{
	Use:   "list",
	Short: "List archived sessions",
	Args:  cobra.NoArgs,
	RunE:  runArchiveList,
}

var archiveRowsCmd = &cobra.Command{
	Use:   "rows <session-id>",
	Short: "Print the rows of one session as tab separated values",
	Args:  cobra.ExactArgs(1),
	RunE:  runArchiveRows,
}

func init() {
	archiveCmd.PersistentFlags().StringVar(&archivePath, "db", "", "Archive path (defaults to archive.path)")
	archiveCmd.AddCommand(archiveListCmd)
	archiveCmd.AddCommand(archiveRowsCmd)
}

func openArchive(cmd *cobra.Command) (*archive.Store, error) {
	path := archivePath
	if path == "" {
		cfg, err := loadConfig(cmd, nil)
		if err != nil {
			return nil, err
		}
		path = cfg.Archive.Path
	}
	if path == "" {
		return nil, errors.New("no archive: set --db or archive.path")
	}
	return archive.Open(path)
}

func runArchiveList(cmd *cobra.Command, args []string) error {
	store, err := openArchive(cmd)
	if err != nil {
		return err
	}
	defer store.Close()

	sessions, err := store.Sessions(cmd.Context())
	if err != nil {
		return err
	}
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tPARTICIPANT\tSESSION\tDATE\tCOMPLETED\tMESSAGE")
	for _, s := range sessions {
		status := "no"
		switch {
		case !s.Finished:
			status = "running"
		case s.Completed:
			status = "yes"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n", s.ID, s.Participant, s.Session, s.Date, status, s.Message)
	}
	return w.Flush()
}

func runArchiveRows(cmd *cobra.Command, args []string) error {
	store, err := openArchive(cmd)
	if err != nil {
		return err
	}
	defer store.Close()

	rows, err := store.Rows(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	h := engine.NewExperimentHandler("archive", nil, "", logger)
	for _, r := range rows {
		for _, f := range r {
			h.AddData(f.Key, f.Value)
		}
		h.NextEntry()
	}
	return h.WriteTSV(cmd.OutOrStdout())
}
