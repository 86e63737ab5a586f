// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// RetrievalConfig holds settings for catalog candidate retrieval.
type RetrievalConfig struct {
	// TopK is the maximum number of candidates per line item (default 5).
	TopK int `json:"top_k" yaml:"top_k"`

	// SectionCodes restricts retrieval to the named catalog sections.
	// Empty means the whole catalog.
	SectionCodes []string `json:"section_codes,omitempty" yaml:"section_codes,omitempty"`
}

// EmbeddingConfig holds settings for the semantic embedding engine.
type EmbeddingConfig struct {
	// Model is the embedding model identifier (default "gemini-embedding-001").
	Model string `json:"model" yaml:"model"`

	// Offline selects the deterministic local embedder instead of the
	// Gemini API. Used for tests and air-gapped runs.
	Offline bool `json:"offline" yaml:"offline"`
}

// VerificationConfig holds settings for the match verification call.
type VerificationConfig struct {
	// Enabled turns the external verifier on. When false every item takes
	// the deterministic top-score fallback.
	Enabled bool `json:"enabled" yaml:"enabled"`

	// Model is the generative model identifier (default "gemini-2.0-flash").
	Model string `json:"model" yaml:"model"`

	// Timeout bounds one verification call (default 30s).
	Timeout time.Duration `json:"timeout" yaml:"timeout"`
}

// FinanceConfig holds defaults for the financial model. Zero values fall
// back to the package defaults at evaluation time.
type FinanceConfig struct {
	// OperationMonths is the revenue-generating period (default 24,
	// clamped to at least 1).
	OperationMonths int `json:"operation_months" yaml:"operation_months"`

	// ConstructionMonths is used when the bill carries no timeline (default 3).
	ConstructionMonths int `json:"construction_months" yaml:"construction_months"`

	// DiscountRateAnnual is the annual discount rate (default 0.15).
	DiscountRateAnnual float64 `json:"discount_rate_annual" yaml:"discount_rate_annual"`

	// MarginRate sizes default monthly revenue relative to the investment
	// (default 1.3).
	MarginRate float64 `json:"margin_rate" yaml:"margin_rate"`

	// OperatingRate sizes default monthly operating cost relative to the
	// investment (default 0.35).
	OperatingRate float64 `json:"operating_rate" yaml:"operating_rate"`

	// MonthlyRevenue overrides the derived monthly revenue when non-nil.
	MonthlyRevenue *float64 `json:"monthly_revenue,omitempty" yaml:"monthly_revenue,omitempty"`

	// MonthlyOperatingCost overrides the derived operating cost when non-nil.
	MonthlyOperatingCost *float64 `json:"monthly_operating_cost,omitempty" yaml:"monthly_operating_cost,omitempty"`
}

// StoreConfig locates the SQLite-backed catalog and price reference.
type StoreConfig struct {
	// DataDir is the base directory holding catalog.db and prices.db
	// (default "data").
	DataDir string `json:"data_dir" yaml:"data_dir"`
}

// PipelineConfig groups all stage configurations for one estimation run.
type PipelineConfig struct {
	Retrieval    RetrievalConfig    `json:"retrieval" yaml:"retrieval"`
	Embedding    EmbeddingConfig    `json:"embedding" yaml:"embedding"`
	Verification VerificationConfig `json:"verification" yaml:"verification"`
	Finance      FinanceConfig      `json:"finance" yaml:"finance"`
	Store        StoreConfig        `json:"store" yaml:"store"`

	// Concurrency bounds the per-item worker pool (default 4).
	Concurrency int `json:"concurrency" yaml:"concurrency"`
}
