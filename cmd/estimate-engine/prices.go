// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/pdiddy/estimate-engine/internal/pricing"
)

var pricesCmd = &cobra.Command{
	Use:   "prices",
	Short: "Manage the unit-price reference (import, fetch, get)",
	Long: `Prices manages the local SQLite unit-price reference used for cost
aggregation. Price lists are imported from YAML files or fetched from a
mirror URL; lookups are keyed by normalized material name and unit.`,
}

// --- import subcommand ---

var pricesImportCmd = &cobra.Command{
	Use:   "import",
	Short: "Import a YAML price list",
	RunE:  runPricesImport,
}

func runPricesImport(cmd *cobra.Command, args []string) error {
	file, _ := cmd.Flags().GetString("file")

	store, err := openPrices()
	if err != nil {
		return err
	}
	defer store.Close()

	summary, err := store.ImportYAML(context.Background(), file, os.Stdout)
	if err != nil {
		return err
	}
	if summary.Failed > 0 {
		return fmt.Errorf("%d price record(s) failed to import", summary.Failed)
	}
	return nil
}

// --- fetch subcommand ---

var pricesFetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Download and import a YAML price list from a mirror URL",
	RunE:  runPricesFetch,
}

func runPricesFetch(cmd *cobra.Command, args []string) error {
	url, _ := cmd.Flags().GetString("url")

	store, err := openPrices()
	if err != nil {
		return err
	}
	defer store.Close()

	client := &http.Client{Timeout: 60 * time.Second}
	summary, err := store.FetchYAML(context.Background(), client, url, "estimate-engine/"+version, os.Stdout)
	if err != nil {
		return err
	}
	if summary.Failed > 0 {
		return fmt.Errorf("%d price record(s) failed to import", summary.Failed)
	}
	return nil
}

// --- get subcommand ---

var pricesGetCmd = &cobra.Command{
	Use:   "get [material name] [unit]",
	Short: "Look up one unit price by material name and unit",
	Args:  cobra.ExactArgs(2),
	RunE:  runPricesGet,
}

func runPricesGet(cmd *cobra.Command, args []string) error {
	store, err := openPrices()
	if err != nil {
		return err
	}
	defer store.Close()

	price, err := store.GetPrice(context.Background(), args[0], args[1])
	if err != nil {
		return err
	}
	if price == nil {
		return fmt.Errorf("no price for %q (%s)", args[0], args[1])
	}
	fmt.Printf("%s %s per %s\n", price.UnitPrice.StringFixed(2), price.Currency, args[1])
	return nil
}

func openPrices() (*pricing.Store, error) {
	return pricing.NewStore(pipelineConfig().Store.DataDir)
}

func init() {
	pricesImportCmd.Flags().String("file", "", "YAML price list (required)")
	pricesImportCmd.MarkFlagRequired("file")
	pricesFetchCmd.Flags().String("url", "", "price mirror URL (required)")
	pricesFetchCmd.MarkFlagRequired("url")

	pricesCmd.AddCommand(pricesImportCmd)
	pricesCmd.AddCommand(pricesFetchCmd)
	pricesCmd.AddCommand(pricesGetCmd)
	rootCmd.AddCommand(pricesCmd)
}
