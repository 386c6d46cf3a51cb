package domain

import "time"

type Product struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// InsightReport is the product-level summary produced server-side.
type InsightReport struct {
	ProductID   string             `json:"product_id"`
	Summary     string             `json:"summary,omitempty"`
	Metrics     map[string]float64 `json:"metrics,omitempty"`
	GeneratedAt time.Time          `json:"generated_at"`
}

// ReleaseReport is the per-release rollup variant of the insight report.
type ReleaseReport struct {
	ProductID string             `json:"product_id"`
	Rows      []ReleaseReportRow `json:"rows,omitempty"`
}

type ReleaseReportRow struct {
	ReleaseID    string  `json:"release_id"`
	ReleaseName  string  `json:"release_name"`
	FeatureCount int     `json:"feature_count"`
	DonePercent  float64 `json:"done_percent"`
}
