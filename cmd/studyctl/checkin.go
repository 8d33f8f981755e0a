package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var checkinCmd = &cobra.Command{
	Use:   "checkin <note-id>",
	Short: "Record a study session for a note",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		nb, store, err := openNotebook(cmd.Context())
		if err != nil {
			return err
		}
		defer store.Close()

		note, err := nb.CheckInNow(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		fmt.Printf("%s checked in, studied %d times\n", note.Title, note.StudyCount)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(checkinCmd)
}
