// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package finance builds the monthly cash-flow for an estimate and
// computes NPV, IRR, payback, and a risk score. It runs once per
// pipeline invocation, after all per-item aggregation.
package finance

import (
	"fmt"
	"math"

	"github.com/pdiddy/estimate-engine/pkg/types"
)

// Model defaults, used when the configuration leaves a field zero.
const (
	defaultOperationMonths    = 24
	defaultConstructionMonths = 3
	defaultDiscountRateAnnual = 0.15
	defaultMarginRate         = 1.3
	defaultOperatingRate      = 0.35
)

// Inputs are the resolved collaborator outputs the model consumes.
type Inputs struct {
	CostSummary types.CostSummary
	Timeline    *types.TimelineEstimate
	Travel      *types.TravelSummary

	// ZoneAllowed mirrors the bill metadata: nil unknown, false disallowed.
	ZoneAllowed *bool

	Config types.FinanceConfig
}

// Evaluate resolves the model inputs, builds the monthly cash-flow, and
// returns the financial metrics with a risk assessment. IRR failing to
// converge is not an error; the result simply carries a nil IRR.
func Evaluate(in Inputs) types.FinancialResult {
	cfg := in.Config

	investment := in.CostSummary.TotalCost.InexactFloat64()
	travelCoefficient := 0.0
	if in.Travel != nil {
		investment += in.Travel.TotalWithCoefficient.InexactFloat64()
		travelCoefficient = in.Travel.Coefficient
	}

	constructionMonths := cfg.ConstructionMonths
	if constructionMonths <= 0 {
		constructionMonths = defaultConstructionMonths
	}
	if in.Timeline != nil && in.Timeline.DurationDays > 0 {
		constructionMonths = int(math.Ceil(float64(in.Timeline.DurationDays) / 30))
		if constructionMonths < 1 {
			constructionMonths = 1
		}
	}

	operationMonths := cfg.OperationMonths
	if operationMonths <= 0 {
		operationMonths = defaultOperationMonths
	}
	// Never divide by a zero operation period.
	if operationMonths < 1 {
		operationMonths = 1
	}

	marginRate := cfg.MarginRate
	if marginRate <= 0 {
		marginRate = defaultMarginRate
	}
	operatingRate := cfg.OperatingRate
	if operatingRate <= 0 {
		operatingRate = defaultOperatingRate
	}

	monthlyRevenue := investment * marginRate / float64(operationMonths)
	if cfg.MonthlyRevenue != nil {
		monthlyRevenue = *cfg.MonthlyRevenue
	}
	monthlyOperatingCost := investment * operatingRate / float64(operationMonths)
	if cfg.MonthlyOperatingCost != nil {
		monthlyOperatingCost = *cfg.MonthlyOperatingCost
	}

	discountAnnual := cfg.DiscountRateAnnual
	if discountAnnual <= 0 {
		discountAnnual = defaultDiscountRateAnnual
	}
	discountMonthly := math.Pow(1+discountAnnual, 1.0/12) - 1

	cashflow := buildCashflow(investment, constructionMonths, operationMonths,
		monthlyRevenue-monthlyOperatingCost)

	result := types.FinancialResult{
		NPV:           NPV(cashflow, discountMonthly),
		PaybackMonths: Payback(cashflow),
		Assumptions: types.FinancialAssumptions{
			InitialInvestment:    investment,
			ConstructionMonths:   constructionMonths,
			OperationMonths:      operationMonths,
			MonthlyRevenue:       monthlyRevenue,
			MonthlyOperatingCost: monthlyOperatingCost,
			DiscountRateAnnual:   discountAnnual,
			DiscountRateMonthly:  discountMonthly,
		},
		Risk: assessRisk(riskInputs{
			zoneAllowed:       in.ZoneAllowed,
			missingPrices:     len(in.CostSummary.MissingPrices),
			travelCoefficient: travelCoefficient,
			operationMonths:   operationMonths,
		}),
	}

	if irr, ok := IRR(cashflow); ok {
		annualPercent := (math.Pow(1+irr, 12) - 1) * 100
		result.IRRPercent = &annualPercent
	}

	return result
}

// buildCashflow lays out the monthly flow: the investment leaves at
// period zero, construction months carry nothing, operation months carry
// the net margin.
func buildCashflow(investment float64, constructionMonths, operationMonths int, netMonthly float64) []float64 {
	flow := make([]float64, 0, 1+constructionMonths+operationMonths)
	flow = append(flow, -investment)
	for i := 0; i < constructionMonths; i++ {
		flow = append(flow, 0)
	}
	for i := 0; i < operationMonths; i++ {
		flow = append(flow, netMonthly)
	}
	return flow
}

// NPV is the standard discounted sum of a periodic cash-flow at the
// given per-period rate. Period zero is undiscounted.
func NPV(cashflow []float64, rate float64) float64 {
	var sum float64
	for t, cf := range cashflow {
		sum += cf / math.Pow(1+rate, float64(t))
	}
	return sum
}

// irrIterations bounds the bisection. 200 halvings of the search
// interval put the answer well inside 1e-10.
const irrIterations = 200

// IRR finds the per-period rate at which the NPV of the cash-flow is
// zero, searching (-0.9999, 10) by bisection. The second return is false
// when no sign change exists in the interval, i.e. no real root converges.
func IRR(cashflow []float64) (float64, bool) {
	low, high := -0.9999, 10.0
	fLow, fHigh := NPV(cashflow, low), NPV(cashflow, high)
	if math.IsNaN(fLow) || math.IsNaN(fHigh) || fLow*fHigh > 0 {
		return 0, false
	}

	for i := 0; i < irrIterations; i++ {
		mid := (low + high) / 2
		fMid := NPV(cashflow, mid)
		if fMid == 0 {
			return mid, true
		}
		if fLow*fMid < 0 {
			high = mid
		} else {
			low, fLow = mid, fMid
		}
	}
	return (low + high) / 2, true
}

// Payback returns the first period index (0-based) at which the running
// cumulative cash-flow turns non-negative, or nil if it never does.
func Payback(cashflow []float64) *int {
	var cumulative float64
	for t, cf := range cashflow {
		cumulative += cf
		if cumulative >= 0 {
			period := t
			return &period
		}
	}
	return nil
}

type riskInputs struct {
	zoneAllowed       *bool
	missingPrices     int
	travelCoefficient float64
	operationMonths   int
}

// assessRisk applies the additive risk model: base 40, +25 for a
// disallowed development zone, +10 for missing prices, +5 for a travel
// coefficient above 1.0, +5 for an operation period under a year,
// capped at 100.
func assessRisk(in riskInputs) types.RiskAssessment {
	score := 40
	var factors []string

	if in.zoneAllowed != nil && !*in.zoneAllowed {
		score += 25
		factors = append(factors, "development zone disallowed")
	}
	if in.missingPrices > 0 {
		score += 10
		factors = append(factors, fmt.Sprintf("missing prices for %d items", in.missingPrices))
	}
	if in.travelCoefficient > 1.0 {
		score += 5
		factors = append(factors, "travel coefficient above 1.0")
	}
	if in.operationMonths < 12 {
		score += 5
		factors = append(factors, "operation period under 12 months")
	}
	if score > 100 {
		score = 100
	}

	level := types.RiskHigh
	switch {
	case score < 50:
		level = types.RiskLow
	case score < 70:
		level = types.RiskMedium
	}

	if len(factors) == 0 {
		factors = []string{"no significant risks identified"}
	}

	return types.RiskAssessment{Score: score, Level: level, Factors: factors}
}
