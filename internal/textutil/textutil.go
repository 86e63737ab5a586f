// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package textutil normalizes extracted construction text: NFKC folding,
// token sets for lexical similarity, unit-of-measure aliasing, and numeric
// extraction for parameter matching.
package textutil

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// Normalize applies NFKC folding, trims, lowercases, and collapses
// whitespace runs to single spaces.
func Normalize(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	s = norm.NFKC.String(s)
	fields := strings.Fields(strings.ToLower(s))
	if len(fields) == 0 {
		return ""
	}
	return strings.Join(fields, " ")
}

// Tokens splits normalized text into a deduplicated token set. Punctuation
// separates tokens; digits stay attached to their unit suffix ("110мм"
// stays one token so numeric extraction can see it whole).
func Tokens(s string) map[string]struct{} {
	set := make(map[string]struct{})
	var b strings.Builder
	flush := func() {
		if b.Len() > 0 {
			set[b.String()] = struct{}{}
			b.Reset()
		}
	}
	for _, r := range Normalize(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		} else {
			flush()
		}
	}
	flush()
	return set
}

// TokenSetRatio returns a similarity in [0,1] between the token sets of
// two strings. Token order and duplication do not affect the result.
func TokenSetRatio(a, b string) float64 {
	ta, tb := Tokens(a), Tokens(b)
	if len(ta) == 0 || len(tb) == 0 {
		return 0
	}
	common := 0
	for tok := range ta {
		if _, ok := tb[tok]; ok {
			common++
		}
	}
	return 2 * float64(common) / float64(len(ta)+len(tb))
}

// unitAliases maps extractor spellings of units to the canonical normative
// form. Keys and values are in normalized (NFKC, lowercase) form.
var unitAliases = map[string]string{
	"м3":     "м³",
	"м2":     "м²",
	"куб.м":  "м³",
	"кв.м":   "м²",
	"п.м":    "м",
	"пог.м":  "м",
	"чел.ч":  "чел·ч",
	"чел.-ч": "чел·ч",
	"чел-ч":  "чел·ч",
	"маш.ч":  "маш·ч",
	"маш.-ч": "маш·ч",
	"шт.":    "шт",
	"компл.": "компл",
	"т.":     "т",
	"кг.":    "кг",
}

// NormalizeUnit returns the canonical form of a unit of measure. Unknown
// units pass through normalized but otherwise unchanged.
func NormalizeUnit(u string) string {
	// NFKC inside Normalize folds superscripts, so "м³" arrives as "м3"
	// and maps back to the canonical superscript form via the alias table.
	n := Normalize(u)
	n = strings.ReplaceAll(n, " ", "")
	if canonical, ok := unitAliases[n]; ok {
		return canonical
	}
	if trimmed := strings.TrimRight(n, "."); trimmed != n {
		if canonical, ok := unitAliases[trimmed]; ok {
			return canonical
		}
		return trimmed
	}
	return n
}

// UnitsEqual reports whether two units are the same after aliasing.
// An empty expected unit never matches.
func UnitsEqual(a, b string) bool {
	if strings.TrimSpace(a) == "" || strings.TrimSpace(b) == "" {
		return false
	}
	return NormalizeUnit(a) == NormalizeUnit(b)
}

// numberPattern matches integers and decimal fractions with either a dot
// or a comma separator, including digits glued to unit suffixes ("110мм").
var numberPattern = regexp.MustCompile(`\d+(?:[.,]\d+)?`)

// ExtractNumbers returns every numeric value found in the text.
func ExtractNumbers(s string) []float64 {
	var out []float64
	for _, m := range numberPattern.FindAllString(Normalize(s), -1) {
		if v, err := ParseNumber(m); err == nil {
			out = append(out, v)
		}
	}
	return out
}

// ParseNumber parses a number that may use a comma decimal separator.
func ParseNumber(s string) (float64, error) {
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", "."))
	return strconv.ParseFloat(s, 64)
}
