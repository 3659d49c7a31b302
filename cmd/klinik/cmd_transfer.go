package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/klinik-dev/klinik-store/internal/seed"
	"github.com/klinik-dev/klinik-store/internal/store"
)

func newImportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import <collection> <file.json>",
		Short: "Bulk-append records from a JSON array file",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			content, err := os.ReadFile(args[1])
			if err != nil {
				return err
			}
			var rows []store.Record
			if err := json.Unmarshal(content, &rows); err != nil {
				return fmt.Errorf("%s is not a JSON array of objects: %w", args[1], err)
			}
			count, err := client().BulkImport(cmd.Context(), args[0], rows)
			if err != nil {
				return err
			}
			fmt.Printf("imported %d records into %s\n", count, args[0])
			return nil
		},
	}
}

func newExportCmd() *cobra.Command {
	var outPath string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Download a snapshot of every collection",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			snapshot, err := client().ExportAll(cmd.Context())
			if err != nil {
				return err
			}
			if outPath == "" {
				return printJSON(snapshot)
			}
			content, err := json.MarshalIndent(snapshot, "", "  ")
			if err != nil {
				return err
			}
			return os.WriteFile(outPath, content, 0644)
		},
	}
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "write snapshot to a file instead of stdout")
	return cmd
}

func newRestoreCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "restore <snapshot.json>",
		Short: "Upload a snapshot, replacing every collection it names",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			content, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			var snapshot map[string][]store.Record
			if err := json.Unmarshal(content, &snapshot); err != nil {
				return fmt.Errorf("%s is not a snapshot: %w", args[0], err)
			}
			if err := client().ImportAll(cmd.Context(), snapshot); err != nil {
				return err
			}
			fmt.Println("restore complete")
			return nil
		},
	}
}

func newSeedCmd() *cobra.Command {
	var dataDir string
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Write a demo dataset into a data directory",
		Long: `seed replaces the contents of a data directory with a small demo
dataset. It writes the collection documents directly, so run it against a
stopped daemon (or a fresh directory).`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			files, err := store.NewFileStore(dataDir, nil)
			if err != nil {
				return err
			}
			if err := seed.Apply(files); err != nil {
				return err
			}
			fmt.Printf("demo data written to %s\n", dataDir)
			return nil
		},
	}
	cmd.Flags().StringVar(&dataDir, "data-dir", "./data", "data directory to seed")
	return cmd
}
