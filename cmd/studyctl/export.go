package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/xaenox/study-bot/internal/archive"
	"github.com/xaenox/study-bot/internal/notebook"
)

var (
	exportFormat string
	exportOutput string
	importFormat string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Dump the whole notebook",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		format, err := archive.ParseFormat(exportFormat)
		if err != nil {
			return err
		}

		store, _, err := openStorage()
		if err != nil {
			return err
		}
		defer store.Close()

		out := os.Stdout
		if exportOutput != "" && exportOutput != "-" {
			f, err := os.Create(exportOutput)
			if err != nil {
				return err
			}
			defer f.Close()
			out = f
		}

		return archive.Export(cmd.Context(), store, out, format)
	},
}

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Load a notebook dump into storage",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		format, err := archive.ParseFormat(importFormat)
		if err != nil {
			return err
		}

		f, err := os.Open(args[0])
		if err != nil {
			return err
		}
		defer f.Close()

		snap, err := archive.Decode(f, format)
		if err != nil {
			return err
		}

		store, _, err := openStorage()
		if err != nil {
			return err
		}
		defer store.Close()

		if err := archive.Restore(cmd.Context(), store, snap); err != nil {
			return err
		}

		// Reload through the notebook so broken links surface now rather than at bot start
		if err := notebook.New(store, notebook.WithLogger(logger)).Load(cmd.Context()); err != nil {
			return fmt.Errorf("imported data is inconsistent: %w", err)
		}

		fmt.Printf("Imported %d notes, %d tags, %d comments\n", len(snap.Notes), len(snap.Tags), len(snap.Comments))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(importCmd)
	exportCmd.Flags().StringVarP(&exportFormat, "format", "f", "yaml", "Output format: yaml or json")
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "-", "Output file, - for stdout")
	importCmd.Flags().StringVarP(&importFormat, "format", "f", "yaml", "Input format: yaml or json")
}
