// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the estimate-engine pipeline:
// work-volume line items, normative catalog entries, match and cost records,
// labor and financial summaries, and the stage configuration structs.
package types

import "github.com/shopspring/decimal"

// LineItem is one row of a work-volume bill: a named quantity of work
// produced by an external document extractor. It is immutable for the
// duration of a pipeline run.
type LineItem struct {
	// Name is the work description as extracted (e.g. "Прокладка труб 110мм").
	Name string `json:"name" yaml:"name"`

	// Quantity is the amount of work. Always positive.
	Quantity decimal.Decimal `json:"quantity" yaml:"quantity"`

	// Unit is the unit of measure as extracted (e.g. "м", "м3", "шт").
	Unit string `json:"unit" yaml:"unit"`

	// Code is an optional pre-assigned normative code from the source document.
	Code string `json:"code,omitempty" yaml:"code,omitempty"`

	// Category groups the item for cost roll-ups (e.g. "Земляные работы").
	Category string `json:"category,omitempty" yaml:"category,omitempty"`

	// SourceLine preserves the original document line for traceability.
	SourceLine string `json:"source_line,omitempty" yaml:"source_line,omitempty"`

	// Metadata carries extractor-specific annotations untouched by the pipeline.
	Metadata map[string]string `json:"metadata,omitempty" yaml:"metadata,omitempty"`
}

// TravelSummary carries pre-computed travel and PPE costs supplied by the
// caller. TotalWithCoefficient feeds the initial investment; a regional
// coefficient above 1.0 contributes to the risk score.
type TravelSummary struct {
	TotalWithCoefficient decimal.Decimal `json:"total_with_coefficient" yaml:"total_with_coefficient"`
	Coefficient          float64         `json:"coefficient" yaml:"coefficient"`
}

// TimelineEstimate is the construction schedule supplied by the caller.
type TimelineEstimate struct {
	DurationDays int `json:"duration_days" yaml:"duration_days"`
}

// BillMetadata holds run-level inputs that accompany the line items.
type BillMetadata struct {
	// ZoneAllowed reports whether construction in the site's development
	// zone is permitted. Nil means unknown; an explicit false raises risk.
	ZoneAllowed *bool `json:"zone_allowed,omitempty" yaml:"zone_allowed,omitempty"`

	Travel   *TravelSummary    `json:"travel,omitempty" yaml:"travel,omitempty"`
	Timeline *TimelineEstimate `json:"timeline,omitempty" yaml:"timeline,omitempty"`
}

// WorkBill is the pipeline input: an ordered list of line items plus
// optional run-level metadata.
type WorkBill struct {
	Items    []LineItem   `json:"items" yaml:"items"`
	Metadata BillMetadata `json:"metadata,omitempty" yaml:"metadata,omitempty"`
}
