package domain

import "time"

type EstimateSource string

const (
	SourceDefault        EstimateSource = "default"
	SourceAI             EstimateSource = "ai"
	SourceUserConfigured EstimateSource = "user_configured"
)

type Confidence string

const (
	ConfidenceLow    Confidence = "low"
	ConfidenceMedium Confidence = "medium"
	ConfidenceHigh   Confidence = "high"
)

// TeamMember is one roster line of a budget estimate.
type TeamMember struct {
	Role       string  `json:"role"`
	Count      int     `json:"count"`
	WeeklyRate float64 `json:"weekly_rate"`
}

// BudgetEstimate is the cost picture for a single release.
// Invariant: TotalCost = round(BaseCost * (1 + RiskBufferPercent/100)) and
// BaseCost = sum(member.Count * member.WeeklyRate * TimelineWeeks).
type BudgetEstimate struct {
	ID                string         `json:"id"`
	ReleaseID         string         `json:"release_id"`
	Team              []TeamMember   `json:"team"`
	TimelineWeeks     float64        `json:"timeline_weeks"`
	RiskBufferPercent float64        `json:"risk_buffer_percent"`
	BaseCost          float64        `json:"base_cost"`
	TotalCost         float64        `json:"total_cost"`
	Confidence        Confidence     `json:"confidence"`
	Source            EstimateSource `json:"source"`
	LastUpdated       time.Time      `json:"last_updated"`
}

// ProductBudgetDocument aggregates one estimate per release of a product.
// TeamConfigs carries rosters that older documents persisted apart from
// their cost breakdown; hydration folds them back into Estimates.
type ProductBudgetDocument struct {
	ProductID   string                    `json:"product_id"`
	Estimates   map[string]BudgetEstimate `json:"estimates"`
	TeamConfigs map[string][]TeamMember   `json:"team_configs,omitempty"`
	TotalBudget float64                   `json:"total_budget"`
	SavedLocally bool                     `json:"saved_locally,omitempty"`
	SavedAt      *time.Time               `json:"saved_at,omitempty"`
}
