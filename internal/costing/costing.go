// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package costing joins line items against the price reference and folds
// them into cost entries and an immutable summary. Every line item yields
// exactly one entry; unknown prices yield zero cost plus a warning rather
// than an error.
package costing

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/pdiddy/estimate-engine/internal/pricing"
	"github.com/pdiddy/estimate-engine/pkg/types"
)

// DefaultCategory buckets items that carry no category of their own.
const DefaultCategory = "Other"

// Estimate costs every line item via the price lookup. The returned
// summary satisfies: TotalCost equals the exact sum of entry costs, the
// category totals sum to TotalCost, and MissingPrices holds one name per
// zero-cost entry that lacked a price (a reference price of exactly zero
// is an explicit override and does not count as missing).
func Estimate(ctx context.Context, items []types.LineItem, prices pricing.Lookup) ([]types.CostEntry, types.CostSummary, error) {
	entries := make([]types.CostEntry, 0, len(items))
	summary := types.CostSummary{
		ByCategory: make(map[string]decimal.Decimal),
		Currency:   pricing.DefaultCurrency,
	}

	for _, item := range items {
		entry := types.CostEntry{
			Name:     item.Name,
			Quantity: item.Quantity,
			Unit:     item.Unit,
			Cost:     decimal.Zero,
		}

		price, err := prices.GetPrice(ctx, item.Name, item.Unit)
		switch {
		case err != nil:
			entry.Warnings = append(entry.Warnings, fmt.Sprintf("price lookup failed: %v", err))
			summary.MissingPrices = append(summary.MissingPrices, item.Name)
		case price == nil:
			entry.Warnings = append(entry.Warnings, "price not found")
			summary.MissingPrices = append(summary.MissingPrices, item.Name)
		default:
			unitPrice := price.UnitPrice
			entry.UnitPrice = &unitPrice
			entry.Cost = item.Quantity.Mul(unitPrice)
			if price.Currency != "" {
				summary.Currency = price.Currency
			}
		}

		category := item.Category
		if category == "" {
			category = DefaultCategory
		}
		summary.ByCategory[category] = summary.ByCategory[category].Add(entry.Cost)
		summary.TotalCost = summary.TotalCost.Add(entry.Cost)

		entries = append(entries, entry)
	}

	return entries, summary, nil
}
