// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package labor derives labor-hours and crew sizing from the labor-type
// resource lines of matched catalog entries.
package labor

import (
	"context"
	"fmt"
	"math"

	"github.com/pdiddy/estimate-engine/internal/catalog"
	"github.com/pdiddy/estimate-engine/pkg/types"
)

// ShiftHours is the standard shift length used for worker equivalents.
const ShiftHours = 8.0

// rotations are the crew rotation schedules sized for every estimate.
var rotations = []struct {
	name      string
	cycleDays int
	workDays  int
}{
	{"45/15", 60, 45},
	{"30/15", 45, 30},
}

// Calculate aggregates labor across matched items. Items whose catalog
// entry has no labor resources (or zero hours) produce no entry; when
// that holds for every match the summary itself is nil. Catalog lookup
// problems for individual items degrade to warnings.
func Calculate(ctx context.Context, matches []types.MatchedItem, cat catalog.Lookup) (*types.LaborSummary, []string, error) {
	var (
		summary  types.LaborSummary
		warnings []string
	)

	for _, match := range matches {
		entry, err := cat.GetByCode(ctx, match.ChosenCode)
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("labor: catalog lookup for %s failed: %v", match.ChosenCode, err))
			continue
		}
		if entry == nil {
			warnings = append(warnings, fmt.Sprintf("labor: matched code %s not in catalog", match.ChosenCode))
			continue
		}

		laborResources := entry.LaborResources()
		if len(laborResources) == 0 {
			continue
		}

		quantity := match.Item.Quantity.InexactFloat64()
		breakdown := make(map[string]float64, len(laborResources))
		var hours float64
		for _, r := range laborResources {
			h := *r.QuantityPerUnit * quantity
			breakdown[r.Name] += h
			hours += h
		}
		if hours == 0 {
			continue
		}

		summary.Entries = append(summary.Entries, types.LaborEntry{
			LineItemName:     match.Item.Name,
			ChosenCode:       match.ChosenCode,
			LaborHours:       hours,
			WorkerEquivalent: hours / ShiftHours,
			Breakdown:        breakdown,
		})
		summary.TotalLaborHours += hours
		summary.TotalWorkerEquivalent += hours / ShiftHours
	}

	if len(summary.Entries) == 0 {
		return nil, warnings, nil
	}

	summary.WorkerDays = summary.TotalLaborHours / ShiftHours

	for _, rot := range rotations {
		crews := int(math.Ceil(summary.WorkerDays / float64(rot.workDays)))
		if crews < 1 {
			crews = 1
		}
		summary.Rotations = append(summary.Rotations, types.RotationPlan{
			Name:          rot.name,
			CycleDays:     rot.cycleDays,
			WorkDays:      rot.workDays,
			RequiredCrews: crews,
		})
	}

	return &summary, warnings, nil
}
