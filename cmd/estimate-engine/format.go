// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/pdiddy/estimate-engine/pkg/types"
)

// formatResult writes a human-readable estimate summary to w.
func formatResult(result *types.PipelineResult, w io.Writer) {
	fmt.Fprintf(w, "Run %s: %d items, %d matched\n\n", result.RunID, len(result.Items), len(result.Matches))

	fmt.Fprintf(w, "%-40s  %-18s  %10s  %14s\n", "Item", "Code", "Qty", "Cost")
	fmt.Fprintln(w, strings.Repeat("-", 90))

	codeByName := make(map[string]string, len(result.Matches))
	for _, m := range result.Matches {
		codeByName[m.Item.Name] = m.ChosenCode
	}

	for _, e := range result.CostEntries {
		code := codeByName[e.Name]
		if code == "" {
			code = "-"
		}
		fmt.Fprintf(w, "%-40s  %-18s  %10s  %14s\n",
			truncate(e.Name, 40), truncate(code, 18), e.Quantity.String(), e.Cost.StringFixed(2))
	}

	fmt.Fprintf(w, "\nTotal cost: %s %s\n", result.CostSummary.TotalCost.StringFixed(2), result.CostSummary.Currency)
	for category, total := range result.CostSummary.ByCategory {
		fmt.Fprintf(w, "  %-30s %s\n", category, total.StringFixed(2))
	}

	if result.Labor != nil {
		fmt.Fprintf(w, "\nLabor: %.1f man-hours, %.2f worker equivalents, %.1f worker-days\n",
			result.Labor.TotalLaborHours, result.Labor.TotalWorkerEquivalent, result.Labor.WorkerDays)
		for _, rot := range result.Labor.Rotations {
			fmt.Fprintf(w, "  rotation %s: %d crew(s)\n", rot.Name, rot.RequiredCrews)
		}
	}

	fin := result.Financial
	fmt.Fprintf(w, "\nNPV: %.2f", fin.NPV)
	if fin.IRRPercent != nil {
		fmt.Fprintf(w, "  IRR: %.1f%%", *fin.IRRPercent)
	} else {
		fmt.Fprintf(w, "  IRR: n/a")
	}
	if fin.PaybackMonths != nil {
		fmt.Fprintf(w, "  Payback: month %d", *fin.PaybackMonths)
	} else {
		fmt.Fprintf(w, "  Payback: never")
	}
	fmt.Fprintf(w, "\nRisk: %d (%s)\n", fin.Risk.Score, fin.Risk.Level)
	for _, f := range fin.Risk.Factors {
		fmt.Fprintf(w, "  - %s\n", f)
	}

	if len(result.Warnings) > 0 {
		fmt.Fprintf(w, "\n%d warning(s):\n", len(result.Warnings))
		for _, warning := range result.Warnings {
			fmt.Fprintf(w, "  - %s\n", warning)
		}
	}
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
