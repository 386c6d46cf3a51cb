package budget

import (
	"fmt"
	"math"
	"time"

	"github.com/alexanderramin/compass/internal/domain"
	"github.com/google/uuid"
)

const (
	// DefaultTimelineWeeks is used when a release declares no duration.
	DefaultTimelineWeeks = 12
	// DefaultRiskBufferPercent pads default estimates for uncertainty.
	DefaultRiskBufferPercent = 20
)

// DefaultTeam is the baseline roster for a release nobody has estimated yet.
func DefaultTeam() []domain.TeamMember {
	return []domain.TeamMember{
		{Role: "Frontend Engineer", Count: 1, WeeklyRate: 2500},
		{Role: "Backend Engineer", Count: 1, WeeklyRate: 2800},
		{Role: "Product Designer", Count: 1, WeeklyRate: 2200},
	}
}

// BaseCost sums count * weeklyRate * weeks across the roster. Rounding is
// deferred to the final total so per-member rounding error cannot compound.
func BaseCost(team []domain.TeamMember, timelineWeeks float64) float64 {
	var total float64
	for _, m := range team {
		total += float64(m.Count) * m.WeeklyRate * timelineWeeks
	}
	return total
}

// TotalCost applies the risk buffer and rounds to whole currency units.
func TotalCost(baseCost, riskBufferPercent float64) float64 {
	return math.Round(baseCost * (1 + riskBufferPercent/100))
}

// Estimate builds a sourced estimate from a roster and timeline.
// TimelineWeeks must be positive for user- or AI-sourced estimates.
func Estimate(releaseID string, team []domain.TeamMember, timelineWeeks, riskBufferPercent float64, source domain.EstimateSource, confidence domain.Confidence, now time.Time) (domain.BudgetEstimate, error) {
	if timelineWeeks <= 0 {
		return domain.BudgetEstimate{}, fmt.Errorf("timeline weeks must be positive, got %v", timelineWeeks)
	}
	if riskBufferPercent < 0 {
		return domain.BudgetEstimate{}, fmt.Errorf("risk buffer must not be negative, got %v", riskBufferPercent)
	}
	for _, m := range team {
		if m.Count < 0 || m.WeeklyRate < 0 {
			return domain.BudgetEstimate{}, fmt.Errorf("team member %q has negative count or rate", m.Role)
		}
	}

	base := BaseCost(team, timelineWeeks)
	return domain.BudgetEstimate{
		ID:                uuid.New().String(),
		ReleaseID:         releaseID,
		Team:              team,
		TimelineWeeks:     timelineWeeks,
		RiskBufferPercent: riskBufferPercent,
		BaseCost:          base,
		TotalCost:         TotalCost(base, riskBufferPercent),
		Confidence:        confidence,
		Source:            source,
		LastUpdated:       now,
	}, nil
}

// DefaultEstimate synthesizes the placeholder estimate for a release that
// has none persisted. The timeline comes from the release's own declared
// duration when present, else a fixed default.
func DefaultEstimate(release domain.Release, now time.Time) domain.BudgetEstimate {
	weeks := release.DurationWeeks
	if weeks <= 0 {
		weeks = DefaultTimelineWeeks
	}
	team := DefaultTeam()
	base := BaseCost(team, weeks)
	return domain.BudgetEstimate{
		ID:                uuid.New().String(),
		ReleaseID:         release.ID,
		Team:              team,
		TimelineWeeks:     weeks,
		RiskBufferPercent: DefaultRiskBufferPercent,
		BaseCost:          base,
		TotalCost:         TotalCost(base, DefaultRiskBufferPercent),
		Confidence:        domain.ConfidenceLow,
		Source:            domain.SourceDefault,
		LastUpdated:       now,
	}
}

// ProductTotal sums estimated releases and reports the ones contributing
// zero, so a partial total is never misread as complete.
func ProductTotal(releases []domain.Release, estimates map[string]domain.BudgetEstimate) (total float64, unestimated []string) {
	for _, r := range releases {
		est, ok := estimates[r.ID]
		if !ok {
			unestimated = append(unestimated, r.ID)
			continue
		}
		total += est.TotalCost
	}
	return total, unestimated
}
