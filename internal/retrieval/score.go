// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package retrieval

import (
	"strings"

	"github.com/pdiddy/estimate-engine/internal/textutil"
	"github.com/pdiddy/estimate-engine/pkg/types"
)

// parameterTolerance is the relative tolerance for treating a number in
// the line-item text as a match for a declared catalog parameter.
const parameterTolerance = 0.05

// recognizedParameterKeys are the catalog parameter keys the matcher
// knows how to verify against numbers in the line-item text. Matching is
// by substring on the normalized key, so "диаметр трубы" still counts
// as a diameter.
var recognizedParameterKeys = []string{
	"диаметр", "diameter",
	"вес", "масса", "weight",
	"толщина", "thickness",
	"длина", "length",
	"мощность", "power",
}

// lexicalScore is the order- and duplication-insensitive token-set
// similarity between the item name and the entry name.
func lexicalScore(itemName, entryName string) float64 {
	return textutil.TokenSetRatio(itemName, entryName)
}

// unitMatch reports whether the expected unit equals the entry unit after
// aliasing. A missing expected unit counts as no match, not as unknown.
func unitMatch(expectedUnit, entryUnit string) bool {
	return textutil.UnitsEqual(expectedUnit, entryUnit)
}

// parameterScore starts neutral at 0.5. For every recognized parameter
// the entry declares, the score moves +0.25 when the declared numeric
// value appears in the item text within 5% relative tolerance and −0.25
// when it does not, clamped to [0,1]. Entries declaring no parameters
// stay neutral.
func parameterScore(entry types.CatalogEntry, text string) float64 {
	if len(entry.Parameters) == 0 {
		return 0.5
	}

	numbers := textutil.ExtractNumbers(text)
	score := 0.5

	for key, value := range entry.Parameters {
		if !recognizedKey(key) {
			continue
		}
		declaredNums := textutil.ExtractNumbers(value)
		if len(declaredNums) == 0 {
			continue
		}
		if containsWithinTolerance(numbers, declaredNums[0]) {
			score += 0.25
		} else {
			score -= 0.25
		}
	}

	if score < 0 {
		return 0
	}
	if score > 1 {
		return 1
	}
	return score
}

func recognizedKey(key string) bool {
	normalized := textutil.Normalize(key)
	for _, known := range recognizedParameterKeys {
		if strings.Contains(normalized, known) {
			return true
		}
	}
	return false
}

func containsWithinTolerance(numbers []float64, declared float64) bool {
	for _, n := range numbers {
		if declared == 0 {
			if n == 0 {
				return true
			}
			continue
		}
		diff := n - declared
		if diff < 0 {
			diff = -diff
		}
		if diff/declared <= parameterTolerance {
			return true
		}
	}
	return false
}
