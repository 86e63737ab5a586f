// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the estimate-engine CLI.
// The pipeline core is a library; this surface wires the SQLite catalog
// and price stores, the Gemini collaborators, and the estimation run
// into subcommands: estimate, catalog, prices, version.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/pdiddy/estimate-engine/internal/secrets"
	"github.com/pdiddy/estimate-engine/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

// loadedSecrets holds API keys loaded from .secrets/ at startup.
var loadedSecrets map[string]string

// logger is the process-wide structured logger, built in the root
// PersistentPreRunE so every subcommand shares it.
var logger *zap.Logger

// geminiKey returns the Gemini API key from the environment or .secrets/.
func geminiKey() string {
	if v := os.Getenv("GEMINI_API_KEY"); v != "" {
		return v
	}
	return loadedSecrets["gemini-api-key"]
}

// rootCmd is the base command for the estimate-engine CLI.
var rootCmd = &cobra.Command{
	Use:   "estimate-engine",
	Short: "Match, cost, and financially evaluate construction work volumes",
	Long: `estimate-engine turns an extracted work-volume bill into a costed,
labor-estimated, and financially evaluated construction estimate. Line items
are matched against a normative-works catalog by lexical, semantic, unit, and
parameter similarity; an advisory Gemini verification arbitrates between
candidates with a deterministic fallback; cost, labor, and discounted
cash-flow metrics are aggregated into one result.

Each surface is a subcommand: estimate runs the pipeline, catalog and prices
manage the local reference stores.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		s, err := secrets.Load(".secrets/")
		if err != nil {
			return err
		}
		loadedSecrets = s
		if len(s) > 0 {
			keys := make([]string, 0, len(s))
			for k := range s {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			fmt.Fprintf(os.Stderr, "Loaded secrets: %v\n", keys)
		}

		jsonLogs, _ := cmd.Flags().GetBool("log-json")
		if jsonLogs {
			logger, err = zap.NewProduction()
		} else {
			logger, err = zap.NewDevelopment()
		}
		if err != nil {
			return fmt.Errorf("initializing logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			logger.Sync()
		}
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./estimate-engine.yaml or ~/.config/estimate-engine/config.yaml)")
	rootCmd.PersistentFlags().Bool("log-json", false, "emit structured JSON logs")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("estimate-engine")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "estimate-engine"))
		}
	}

	viper.SetDefault("store.data_dir", "data")
	viper.SetDefault("retrieval.top_k", 5)
	viper.SetDefault("embedding.model", "gemini-embedding-001")
	viper.SetDefault("verification.enabled", true)
	viper.SetDefault("verification.model", "gemini-2.0-flash")
	viper.SetDefault("verification.timeout", "30s")
	viper.SetDefault("concurrency", 4)

	viper.SetEnvPrefix("ESTIMATE_ENGINE")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// pipelineConfig assembles the stage configuration from viper.
func pipelineConfig() types.PipelineConfig {
	cfg := types.PipelineConfig{
		Retrieval: types.RetrievalConfig{
			TopK:         viper.GetInt("retrieval.top_k"),
			SectionCodes: viper.GetStringSlice("retrieval.section_codes"),
		},
		Embedding: types.EmbeddingConfig{
			Model:   viper.GetString("embedding.model"),
			Offline: viper.GetBool("embedding.offline"),
		},
		Verification: types.VerificationConfig{
			Enabled: viper.GetBool("verification.enabled"),
			Model:   viper.GetString("verification.model"),
			Timeout: viper.GetDuration("verification.timeout"),
		},
		Finance: types.FinanceConfig{
			OperationMonths:    viper.GetInt("finance.operation_months"),
			ConstructionMonths: viper.GetInt("finance.construction_months"),
			DiscountRateAnnual: viper.GetFloat64("finance.discount_rate_annual"),
			MarginRate:         viper.GetFloat64("finance.margin_rate"),
			OperatingRate:      viper.GetFloat64("finance.operating_rate"),
		},
		Store: types.StoreConfig{
			DataDir: viper.GetString("store.data_dir"),
		},
		Concurrency: viper.GetInt("concurrency"),
	}

	if viper.IsSet("finance.monthly_revenue") {
		v := viper.GetFloat64("finance.monthly_revenue")
		cfg.Finance.MonthlyRevenue = &v
	}
	if viper.IsSet("finance.monthly_operating_cost") {
		v := viper.GetFloat64("finance.monthly_operating_cost")
		cfg.Finance.MonthlyOperatingCost = &v
	}
	if cfg.Verification.Timeout <= 0 {
		cfg.Verification.Timeout = 30 * time.Second
	}
	return cfg
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
