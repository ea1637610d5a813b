// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/pdf-renamer/internal/history"
)

var historyCmd = &cobra.Command{
	Use:   "history [directory]",
	Short: "Show the rename journal of a directory",
	Long: `History lists what previous runs did in a directory, most recent first.
Use --run to show a single run and --json or --yaml for machine-readable
output.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runHistory,
}

func init() {
	historyCmd.Flags().Bool("json", false, "output as JSON")
	historyCmd.Flags().Bool("yaml", false, "output as YAML")
	historyCmd.Flags().String("run", "", "only show entries of this run ID")
	historyCmd.Flags().Int("limit", 50, "maximum entries to show (0 shows all)")

	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, args []string) error {
	jsonOut, _ := cmd.Flags().GetBool("json")
	yamlOut, _ := cmd.Flags().GetBool("yaml")
	runID, _ := cmd.Flags().GetString("run")
	limit, _ := cmd.Flags().GetInt("limit")

	if jsonOut && yamlOut {
		return errors.New("--json and --yaml are mutually exclusive")
	}
	format := history.FormatTable
	switch {
	case jsonOut:
		format = history.FormatJSON
	case yamlOut:
		format = history.FormatYAML
	}

	path := viper.GetString("history-db")
	if path == "" {
		dir := "."
		if len(args) > 0 {
			dir = args[0]
		}
		path = history.DefaultPath(dir)
	}
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("no rename journal at %s", path)
	}

	store, err := history.Open(path)
	if err != nil {
		return err
	}
	defer store.Close()

	entries, err := store.List(context.Background(), history.ListOptions{RunID: runID, Limit: limit})
	if err != nil {
		return err
	}
	if len(entries) == 0 && format == history.FormatTable {
		fmt.Fprintln(cmd.OutOrStdout(), "No entries.")
		return nil
	}
	return history.WriteEntries(cmd.OutOrStdout(), entries, format)
}
