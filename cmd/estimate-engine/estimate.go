// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/estimate-engine/internal/arbitration"
	"github.com/pdiddy/estimate-engine/internal/catalog"
	"github.com/pdiddy/estimate-engine/internal/embedding"
	"github.com/pdiddy/estimate-engine/internal/pipeline"
	"github.com/pdiddy/estimate-engine/internal/pricing"
	"github.com/pdiddy/estimate-engine/internal/retrieval"
	"github.com/pdiddy/estimate-engine/pkg/types"
)

var estimateCmd = &cobra.Command{
	Use:   "estimate",
	Short: "Run the full estimation pipeline over a work-volume bill",
	Long: `Estimate reads a YAML work-volume bill, matches each line item against
the normative catalog, costs it against the price reference, derives labor
hours and crew sizing, and evaluates NPV, IRR, payback, and risk.

The result is always best-effort: unmatched items and missing prices become
warnings, not failures. The command fails only when the input is empty or a
reference store is unusable.`,
	RunE: runEstimate,
}

func init() {
	estimateCmd.Flags().String("input", "", "YAML work-volume bill (required)")
	estimateCmd.Flags().Bool("json", false, "output the full result as JSON")
	estimateCmd.Flags().Int("concurrency", 0, "per-item worker pool size (overrides config)")
	estimateCmd.MarkFlagRequired("input")

	rootCmd.AddCommand(estimateCmd)
}

func runEstimate(cmd *cobra.Command, args []string) error {
	input, _ := cmd.Flags().GetString("input")
	jsonOutput, _ := cmd.Flags().GetBool("json")

	cfg := pipelineConfig()
	if n, _ := cmd.Flags().GetInt("concurrency"); n > 0 {
		cfg.Concurrency = n
	}

	bill, err := loadBill(input)
	if err != nil {
		return err
	}

	catalogStore, err := catalog.NewStore(cfg.Store.DataDir)
	if err != nil {
		return err
	}
	defer catalogStore.Close()

	priceStore, err := pricing.NewStore(cfg.Store.DataDir)
	if err != nil {
		return err
	}
	defer priceStore.Close()

	embedder, err := buildEmbedder(cmd.Context(), cfg.Embedding)
	if err != nil {
		return err
	}

	var verifier arbitration.Client
	if cfg.Verification.Enabled && geminiKey() != "" {
		verifier = arbitration.NewGeminiVerifier(geminiKey(), cfg.Verification.Model, cfg.Verification.Timeout)
	} else if cfg.Verification.Enabled {
		fmt.Fprintln(os.Stderr, "warning: verification enabled but no Gemini key found; using deterministic fallback")
	}

	engine := retrieval.NewEngine(catalogStore, embedder)
	arbiter := arbitration.NewStage(verifier, cfg.Verification.Timeout)
	orch := pipeline.New(catalogStore, priceStore, engine, arbiter, cfg, logger)

	result, err := orch.Run(cmd.Context(), bill)
	if err != nil {
		return err
	}

	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}

	formatResult(result, os.Stdout)
	return nil
}

// buildEmbedder selects the Gemini embedder, or the offline feature-hash
// embedder when configured or when no key is available.
func buildEmbedder(ctx context.Context, cfg types.EmbeddingConfig) (embedding.Embedder, error) {
	if cfg.Offline {
		return embedding.HashEmbedder{}, nil
	}
	key := geminiKey()
	if key == "" {
		fmt.Fprintln(os.Stderr, "warning: no Gemini key found; using offline embedder")
		return embedding.HashEmbedder{}, nil
	}
	return embedding.NewGenAIEngine(ctx, key, cfg.Model)
}

// billFile is the YAML input format. Quantities and money are decimal
// strings so extractor output survives without binary-float rounding.
type billFile struct {
	Items []struct {
		Name       string            `yaml:"name"`
		Quantity   string            `yaml:"quantity"`
		Unit       string            `yaml:"unit"`
		Code       string            `yaml:"code"`
		Category   string            `yaml:"category"`
		SourceLine string            `yaml:"source_line"`
		Metadata   map[string]string `yaml:"metadata"`
	} `yaml:"items"`
	Metadata struct {
		ZoneAllowed *bool `yaml:"zone_allowed"`
		Travel      *struct {
			TotalWithCoefficient string  `yaml:"total_with_coefficient"`
			Coefficient          float64 `yaml:"coefficient"`
		} `yaml:"travel"`
		Timeline *struct {
			DurationDays int `yaml:"duration_days"`
		} `yaml:"timeline"`
	} `yaml:"metadata"`
}

// loadBill reads and validates a YAML work-volume bill.
func loadBill(path string) (types.WorkBill, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return types.WorkBill{}, fmt.Errorf("reading bill: %w", err)
	}

	var file billFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return types.WorkBill{}, fmt.Errorf("parsing bill: %w", err)
	}

	var bill types.WorkBill
	for i, it := range file.Items {
		qty, err := decimal.NewFromString(it.Quantity)
		if err != nil {
			return types.WorkBill{}, fmt.Errorf("item %d (%q): bad quantity %q: %w", i+1, it.Name, it.Quantity, err)
		}
		if !qty.IsPositive() {
			return types.WorkBill{}, fmt.Errorf("item %d (%q): quantity must be positive", i+1, it.Name)
		}
		bill.Items = append(bill.Items, types.LineItem{
			Name:       it.Name,
			Quantity:   qty,
			Unit:       it.Unit,
			Code:       it.Code,
			Category:   it.Category,
			SourceLine: it.SourceLine,
			Metadata:   it.Metadata,
		})
	}

	bill.Metadata.ZoneAllowed = file.Metadata.ZoneAllowed
	if file.Metadata.Travel != nil {
		total, err := decimal.NewFromString(file.Metadata.Travel.TotalWithCoefficient)
		if err != nil {
			return types.WorkBill{}, fmt.Errorf("travel total %q: %w", file.Metadata.Travel.TotalWithCoefficient, err)
		}
		bill.Metadata.Travel = &types.TravelSummary{
			TotalWithCoefficient: total,
			Coefficient:          file.Metadata.Travel.Coefficient,
		}
	}
	if file.Metadata.Timeline != nil {
		bill.Metadata.Timeline = &types.TimelineEstimate{
			DurationDays: file.Metadata.Timeline.DurationDays,
		}
	}

	return bill, nil
}
