package main

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/xaenox/study-bot/internal/notebook"
)

var (
	notesJSON bool
	notesTag  string
	notesSort string
	notesAsc  bool
)

var notesCmd = &cobra.Command{
	Use:   "notes",
	Short: "List notes, optionally filtered by tag",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		key, err := notebook.ParseSortKey(notesSort)
		if err != nil {
			return err
		}

		nb, store, err := openNotebook(cmd.Context())
		if err != nil {
			return err
		}
		defer store.Close()

		q := notebook.NoteQuery{SortKey: key, Ascending: notesAsc}
		if notesTag != "" {
			tag, err := nb.FindTag(notesTag)
			if err != nil {
				return err
			}
			q.TagID = tag.ID
		}

		notes, err := nb.QueryNotes(q)
		if err != nil {
			return err
		}

		if notesJSON {
			encoder := json.NewEncoder(os.Stdout)
			encoder.SetIndent("", "  ")
			return encoder.Encode(notes)
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tTITLE\tLEVEL\tSTUDIED\tCREATED")
		for _, n := range notes {
			fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\n", n.ID, n.Title, n.Level, n.StudyCount, n.CreationDate.Format("2006-01-02"))
		}
		return w.Flush()
	},
}

func init() {
	rootCmd.AddCommand(notesCmd)
	notesCmd.Flags().BoolVar(&notesJSON, "json", false, "Output in JSON format")
	notesCmd.Flags().StringVar(&notesTag, "tag", "", "Filter notes by tag name or ID")
	notesCmd.Flags().StringVar(&notesSort, "sort", "date", "Sort by level, count or date")
	notesCmd.Flags().BoolVar(&notesAsc, "asc", false, "Sort ascending")
}
