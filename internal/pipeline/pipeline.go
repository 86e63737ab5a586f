// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pipeline sequences retrieval, arbitration, cost aggregation,
// labor derivation, and financial evaluation over a work-volume bill.
// Line items are processed by a bounded worker pool; results are
// collected back into input order so concurrent runs stay deterministic.
package pipeline

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/pdiddy/estimate-engine/internal/arbitration"
	"github.com/pdiddy/estimate-engine/internal/catalog"
	"github.com/pdiddy/estimate-engine/internal/costing"
	"github.com/pdiddy/estimate-engine/internal/finance"
	"github.com/pdiddy/estimate-engine/internal/labor"
	"github.com/pdiddy/estimate-engine/internal/pricing"
	"github.com/pdiddy/estimate-engine/internal/retrieval"
	"github.com/pdiddy/estimate-engine/pkg/types"
)

const defaultConcurrency = 4

// Orchestrator owns the read-only collaborators for one pipeline
// configuration and runs estimation over bills.
type Orchestrator struct {
	catalog catalog.Lookup
	prices  pricing.Lookup
	engine  *retrieval.Engine
	arbiter *arbitration.Stage
	cfg     types.PipelineConfig
	log     *zap.Logger
}

// New creates an orchestrator. A nil logger disables logging.
func New(cat catalog.Lookup, prices pricing.Lookup, engine *retrieval.Engine, arbiter *arbitration.Stage, cfg types.PipelineConfig, log *zap.Logger) *Orchestrator {
	if log == nil {
		log = zap.NewNop()
	}
	return &Orchestrator{
		catalog: cat,
		prices:  prices,
		engine:  engine,
		arbiter: arbiter,
		cfg:     cfg,
		log:     log,
	}
}

// itemResult is the per-item outcome, kept at the item's input index.
type itemResult struct {
	match    *types.MatchedItem
	warnings []string
}

// Run estimates the bill and returns a best-effort result with collected
// warnings. It fails only when no meaningful result is possible: the
// input is empty, the catalog is unreachable, or the price reference
// failed for the entire batch.
func (o *Orchestrator) Run(ctx context.Context, bill types.WorkBill) (*types.PipelineResult, error) {
	if len(bill.Items) == 0 {
		return nil, fmt.Errorf("work bill has no line items")
	}

	// One upfront read proves the catalog is reachable before fanning out.
	if _, err := o.catalog.FindBySection(ctx, o.cfg.Retrieval.SectionCodes); err != nil {
		return nil, fmt.Errorf("catalog unavailable: %w", err)
	}

	concurrency := o.cfg.Concurrency
	if concurrency <= 0 {
		concurrency = defaultConcurrency
	}

	results := make([]itemResult, len(bill.Items))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)
	for i, item := range bill.Items {
		g.Go(func() error {
			results[i] = o.processItem(gctx, item)
			return gctx.Err()
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	result := &types.PipelineResult{
		RunID: uuid.NewString(),
		Items: bill.Items,
	}

	for _, r := range results {
		result.Warnings = append(result.Warnings, r.warnings...)
		if r.match != nil {
			result.Matches = append(result.Matches, *r.match)
		}
	}

	costEntries, costSummary, err := costing.Estimate(ctx, bill.Items, o.prices)
	if err != nil {
		return nil, fmt.Errorf("cost aggregation: %w", err)
	}
	if err := priceReferenceDown(costEntries); err != nil {
		return nil, err
	}
	result.CostEntries = costEntries
	result.CostSummary = costSummary
	for _, name := range costSummary.MissingPrices {
		result.Warnings = append(result.Warnings, fmt.Sprintf("price not found for %q", name))
	}

	laborSummary, laborWarnings, err := labor.Calculate(ctx, result.Matches, o.catalog)
	if err != nil {
		return nil, fmt.Errorf("labor aggregation: %w", err)
	}
	result.Labor = laborSummary
	result.Warnings = append(result.Warnings, laborWarnings...)

	for _, w := range result.Warnings {
		o.log.Warn(w, zap.String("run_id", result.RunID))
	}

	result.Financial = finance.Evaluate(finance.Inputs{
		CostSummary: costSummary,
		Timeline:    bill.Metadata.Timeline,
		Travel:      bill.Metadata.Travel,
		ZoneAllowed: bill.Metadata.ZoneAllowed,
		Config:      o.cfg.Finance,
	})

	o.log.Info("pipeline run complete",
		zap.String("run_id", result.RunID),
		zap.Int("items", len(result.Items)),
		zap.Int("matches", len(result.Matches)),
		zap.Int("warnings", len(result.Warnings)),
		zap.String("total_cost", costSummary.TotalCost.String()),
	)

	return result, nil
}

// processItem runs retrieval and arbitration for one line item. All
// failures degrade to warnings; the item still gets its cost entry in
// the aggregation phase.
func (o *Orchestrator) processItem(ctx context.Context, item types.LineItem) itemResult {
	candidates, err := o.engine.Search(ctx, item, item.Unit,
		o.cfg.Retrieval.TopK, o.cfg.Retrieval.SectionCodes)
	if err != nil {
		return itemResult{warnings: []string{
			fmt.Sprintf("retrieval failed for %q: %v", item.Name, err),
		}}
	}
	if len(candidates) == 0 {
		return itemResult{warnings: []string{
			fmt.Sprintf("no catalog candidates for %q", item.Name),
		}}
	}

	match, err := o.arbiter.Choose(ctx, item, candidates)
	if err != nil {
		return itemResult{warnings: []string{
			fmt.Sprintf("arbitration failed for %q: %v", item.Name, err),
		}}
	}

	o.log.Debug("item matched",
		zap.String("item", item.Name),
		zap.String("code", match.ChosenCode),
		zap.String("rationale", match.Rationale),
	)

	var warnings []string
	if strings.HasPrefix(match.Rationale, "fallback:") {
		warnings = append(warnings, fmt.Sprintf("verification fallback for %q", item.Name))
	}
	return itemResult{match: &match, warnings: warnings}
}

// priceReferenceDown detects a price reference that failed for the whole
// batch, which must surface as a top-level error rather than a result
// where every cost is silently zero.
func priceReferenceDown(entries []types.CostEntry) error {
	if len(entries) == 0 {
		return nil
	}
	for _, e := range entries {
		failed := false
		for _, w := range e.Warnings {
			if strings.HasPrefix(w, "price lookup failed") {
				failed = true
				break
			}
		}
		if !failed {
			return nil
		}
	}
	return fmt.Errorf("price reference unavailable: every lookup in the batch failed")
}
