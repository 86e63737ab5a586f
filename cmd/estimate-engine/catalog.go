// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/estimate-engine/internal/catalog"
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Manage the normative-works catalog (import, search, show)",
	Long: `Catalog manages the local SQLite normative-works catalog the pipeline
matches against. Use subcommands to import entries from YAML, search them
with full-text queries, or inspect a single entry.`,
}

// --- import subcommand ---

var catalogImportCmd = &cobra.Command{
	Use:   "import",
	Short: "Import catalog entries from a YAML file",
	RunE:  runCatalogImport,
}

func runCatalogImport(cmd *cobra.Command, args []string) error {
	file, _ := cmd.Flags().GetString("file")

	store, err := openCatalog()
	if err != nil {
		return err
	}
	defer store.Close()

	summary, err := store.ImportYAML(context.Background(), file, os.Stdout)
	if err != nil {
		return err
	}
	if summary.Failed > 0 {
		return fmt.Errorf("%d entry(s) failed to import", summary.Failed)
	}
	return nil
}

// --- search subcommand ---

var catalogSearchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Full-text search over catalog entry names and compositions",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runCatalogSearch,
}

func runCatalogSearch(cmd *cobra.Command, args []string) error {
	limit, _ := cmd.Flags().GetInt("limit")

	store, err := openCatalog()
	if err != nil {
		return err
	}
	defer store.Close()

	entries, err := store.Search(context.Background(), strings.Join(args, " "), limit)
	if err != nil {
		return err
	}

	if len(entries) == 0 {
		fmt.Println("No entries found.")
		return nil
	}
	fmt.Fprintf(os.Stdout, "%-20s  %-60s  %s\n", "Code", "Name", "Unit")
	fmt.Fprintln(os.Stdout, strings.Repeat("-", 90))
	for _, e := range entries {
		fmt.Fprintf(os.Stdout, "%-20s  %-60s  %s\n", e.Code, truncate(e.Name, 60), e.Unit)
	}
	fmt.Fprintf(os.Stdout, "\n%d entries\n", len(entries))
	return nil
}

// --- show subcommand ---

var catalogShowCmd = &cobra.Command{
	Use:   "show [code]",
	Short: "Show one catalog entry with its parameters and resources",
	Args:  cobra.ExactArgs(1),
	RunE:  runCatalogShow,
}

func runCatalogShow(cmd *cobra.Command, args []string) error {
	store, err := openCatalog()
	if err != nil {
		return err
	}
	defer store.Close()

	entry, err := store.GetByCode(context.Background(), args[0])
	if err != nil {
		return err
	}
	if entry == nil {
		return fmt.Errorf("catalog entry %q not found", args[0])
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(entry)
}

func openCatalog() (*catalog.Store, error) {
	return catalog.NewStore(pipelineConfig().Store.DataDir)
}

func init() {
	catalogImportCmd.Flags().String("file", "", "YAML catalog file (required)")
	catalogImportCmd.MarkFlagRequired("file")
	catalogSearchCmd.Flags().Int("limit", 20, "maximum number of results")

	catalogCmd.AddCommand(catalogImportCmd)
	catalogCmd.AddCommand(catalogSearchCmd)
	catalogCmd.AddCommand(catalogShowCmd)
	rootCmd.AddCommand(catalogCmd)
}
