package domain

import "time"

// Release is a scheduled slice of a product's roadmap. Date fields arrive
// from the API as strings and may be empty or malformed; parsing is deferred
// to the consumers that need real times.
type Release struct {
	ID            string    `json:"id"`
	ProductID     string    `json:"product_id"`
	Name          string    `json:"name"`
	StartDate     string    `json:"start_date,omitempty"`
	EndDate       string    `json:"end_date,omitempty"`
	TargetDate    string    `json:"target_date,omitempty"`
	DurationWeeks float64   `json:"duration_weeks,omitempty"`
	Status        string    `json:"status,omitempty"`
	Features      []Feature `json:"features,omitempty"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// Feature is a child work item of a release.
type Feature struct {
	ID             string `json:"id"`
	ReleaseID      string `json:"release_id,omitempty"`
	Name           string `json:"name"`
	Status         string `json:"status,omitempty"`
	CompletionDate string `json:"completion_date,omitempty"`
}

// Issue is a reported problem against a product.
type Issue struct {
	ID        string    `json:"id"`
	ProductID string    `json:"product_id"`
	Title     string    `json:"title"`
	Severity  string    `json:"severity,omitempty"`
	Status    string    `json:"status,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// StatusOption is one entry of the org-wide status taxonomy.
type StatusOption struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Category string `json:"category,omitempty"`
}
