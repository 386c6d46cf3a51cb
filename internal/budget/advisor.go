package budget

import (
	"context"

	"github.com/alexanderramin/compass/internal/domain"
)

// AdvisorEstimate is the structured draft an external generator returns.
// The store recomputes the cost figures itself; the advisor only proposes
// roster, timeline and buffer.
type AdvisorEstimate struct {
	Team              []domain.TeamMember
	TimelineWeeks     float64
	RiskBufferPercent float64
	Confidence        domain.Confidence
	Rationale         string
}

// Advisor drafts budget estimates for a release. Implementations live
// outside this engine (an AI suggestion service, a heuristics endpoint);
// the engine only consumes the structured result.
type Advisor interface {
	DraftEstimate(ctx context.Context, release domain.Release) (*AdvisorEstimate, error)
}
