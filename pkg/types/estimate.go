// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "github.com/shopspring/decimal"

// MatchedItem records the arbitration outcome for one line item: exactly
// one chosen catalog code plus the composite scores of every candidate
// that was considered.
type MatchedItem struct {
	Item LineItem `json:"item" yaml:"item"`

	// ChosenCode is the catalog code selected for this item.
	ChosenCode string `json:"chosen_code" yaml:"chosen_code"`

	// Rationale explains the selection: a verifier explanation, or
	// "fallback: ..." when the verifier was unavailable.
	Rationale string `json:"rationale" yaml:"rationale"`

	// CandidateScores maps each considered catalog code to its composite score.
	CandidateScores map[string]float64 `json:"candidate_scores" yaml:"candidate_scores"`
}

// CostEntry is the costed form of one line item. Every line item produces
// exactly one entry; items without a known price carry zero cost and a warning.
type CostEntry struct {
	Name     string          `json:"name" yaml:"name"`
	Quantity decimal.Decimal `json:"quantity" yaml:"quantity"`
	Unit     string          `json:"unit" yaml:"unit"`

	// Cost is quantity × unit price, or zero when no price was found.
	Cost decimal.Decimal `json:"cost" yaml:"cost"`

	// UnitPrice is nil when the price reference had no match.
	UnitPrice *decimal.Decimal `json:"unit_price,omitempty" yaml:"unit_price,omitempty"`

	Warnings []string `json:"warnings,omitempty" yaml:"warnings,omitempty"`
}

// CostSummary aggregates the cost entries of one run.
type CostSummary struct {
	// TotalCost is the exact sum of all entry costs.
	TotalCost decimal.Decimal `json:"total_cost" yaml:"total_cost"`

	// ByCategory breaks the total down by line-item category; items
	// without a category fall under "Other".
	ByCategory map[string]decimal.Decimal `json:"by_category" yaml:"by_category"`

	// MissingPrices lists the names of items that found no unit price.
	MissingPrices []string `json:"missing_prices,omitempty" yaml:"missing_prices,omitempty"`

	Currency string `json:"currency" yaml:"currency"`
}

// LaborEntry is the labor derivation for one matched line item.
type LaborEntry struct {
	LineItemName     string  `json:"line_item_name" yaml:"line_item_name"`
	ChosenCode       string  `json:"chosen_code" yaml:"chosen_code"`
	LaborHours       float64 `json:"labor_hours" yaml:"labor_hours"`
	WorkerEquivalent float64 `json:"worker_equivalent" yaml:"worker_equivalent"`

	// Breakdown maps each labor resource name to its hour contribution.
	Breakdown map[string]float64 `json:"breakdown,omitempty" yaml:"breakdown,omitempty"`
}

// RotationPlan sizes crews for one named shift rotation (e.g. "45/15").
type RotationPlan struct {
	Name          string `json:"name" yaml:"name"`
	CycleDays     int    `json:"cycle_days" yaml:"cycle_days"`
	WorkDays      int    `json:"work_days" yaml:"work_days"`
	RequiredCrews int    `json:"required_crews" yaml:"required_crews"`
}

// LaborSummary aggregates labor across all matched items. It is absent
// from the pipeline result when no matched entry carries labor resources.
type LaborSummary struct {
	Entries               []LaborEntry   `json:"entries" yaml:"entries"`
	TotalLaborHours       float64        `json:"total_labor_hours" yaml:"total_labor_hours"`
	TotalWorkerEquivalent float64        `json:"total_worker_equivalent" yaml:"total_worker_equivalent"`
	WorkerDays            float64        `json:"worker_days" yaml:"worker_days"`
	Rotations             []RotationPlan `json:"rotations" yaml:"rotations"`
}

// RiskLevel buckets the risk score.
type RiskLevel string

const (
	RiskLow    RiskLevel = "low"
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
)

// RiskAssessment is the additive risk score with the reasons that fired.
type RiskAssessment struct {
	Score   int       `json:"score" yaml:"score"`
	Level   RiskLevel `json:"level" yaml:"level"`
	Factors []string  `json:"factors" yaml:"factors"`
}

// FinancialAssumptions echoes the resolved inputs of the financial model
// so the report layer can show what the figures are based on.
type FinancialAssumptions struct {
	InitialInvestment     float64 `json:"initial_investment" yaml:"initial_investment"`
	ConstructionMonths    int     `json:"construction_months" yaml:"construction_months"`
	OperationMonths       int     `json:"operation_months" yaml:"operation_months"`
	MonthlyRevenue        float64 `json:"monthly_revenue" yaml:"monthly_revenue"`
	MonthlyOperatingCost  float64 `json:"monthly_operating_cost" yaml:"monthly_operating_cost"`
	DiscountRateAnnual    float64 `json:"discount_rate_annual" yaml:"discount_rate_annual"`
	DiscountRateMonthly   float64 `json:"discount_rate_monthly" yaml:"discount_rate_monthly"`
}

// FinancialResult holds the discounted-cash-flow metrics for the estimate.
type FinancialResult struct {
	NPV float64 `json:"npv" yaml:"npv"`

	// IRRPercent is nil when the internal rate of return does not converge.
	IRRPercent *float64 `json:"irr_percent" yaml:"irr_percent"`

	// PaybackMonths is the first cash-flow period (0-based) at which the
	// cumulative sum turns non-negative, or nil if it never does.
	PaybackMonths *int `json:"payback_months" yaml:"payback_months"`

	Assumptions FinancialAssumptions `json:"assumptions" yaml:"assumptions"`
	Risk        RiskAssessment       `json:"risk" yaml:"risk"`
}

// PipelineResult is the full outcome of one estimation run. It has no
// persisted identity; the caller decides whether and how to store it.
type PipelineResult struct {
	RunID string `json:"run_id" yaml:"run_id"`

	Items       []LineItem      `json:"items" yaml:"items"`
	Matches     []MatchedItem   `json:"matches" yaml:"matches"`
	CostEntries []CostEntry     `json:"cost_entries" yaml:"cost_entries"`
	CostSummary CostSummary     `json:"cost_summary" yaml:"cost_summary"`
	Labor       *LaborSummary   `json:"labor,omitempty" yaml:"labor,omitempty"`
	Financial   FinancialResult `json:"financial" yaml:"financial"`

	// Warnings collects non-fatal conditions: unmatched items, missing
	// prices, verification fallbacks.
	Warnings []string `json:"warnings,omitempty" yaml:"warnings,omitempty"`
}
