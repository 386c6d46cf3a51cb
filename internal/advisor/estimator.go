package advisor

import (
	"context"
	"fmt"
	"strings"

	"github.com/alexanderramin/compass/internal/budget"
	"github.com/alexanderramin/compass/internal/domain"
)

const systemPrompt = `You are a software delivery planning assistant. Given a
release description you propose a team roster, a timeline in weeks, and a risk
buffer percentage. Respond with a single JSON object and nothing else:
{"team":[{"role":"...","count":1,"weekly_rate":2500}],"timeline_weeks":12,"risk_buffer_percent":20,"confidence":"medium","rationale":"..."}`

// draftPayload is the wire shape the model is asked to produce.
type draftPayload struct {
	Team []struct {
		Role       string  `json:"role"`
		Count      int     `json:"count"`
		WeeklyRate float64 `json:"weekly_rate"`
	} `json:"team"`
	TimelineWeeks     float64 `json:"timeline_weeks"`
	RiskBufferPercent float64 `json:"risk_buffer_percent"`
	Confidence        string  `json:"confidence"`
	Rationale         string  `json:"rationale"`
}

// Estimator drafts budget estimates with a local language model.
type Estimator struct {
	client *client
}

// NewEstimator creates an Estimator from config. Returns nil when the
// advisor is disabled, so callers can wire it unconditionally.
func NewEstimator(cfg Config, observer Observer) *Estimator {
	if !cfg.Enabled {
		return nil
	}
	return &Estimator{client: newClient(cfg, observer)}
}

// DraftEstimate proposes roster, timeline and risk buffer for a release.
func (e *Estimator) DraftEstimate(ctx context.Context, release domain.Release) (*budget.AdvisorEstimate, error) {
	raw, err := e.client.generate(ctx, systemPrompt, releasePrompt(release))
	if err != nil {
		return nil, err
	}

	payload, err := extractJSON[draftPayload](raw)
	if err != nil {
		return nil, err
	}
	if err := validateDraft(payload); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidOutput, err)
	}

	team := make([]domain.TeamMember, 0, len(payload.Team))
	for _, m := range payload.Team {
		team = append(team, domain.TeamMember{Role: m.Role, Count: m.Count, WeeklyRate: m.WeeklyRate})
	}

	return &budget.AdvisorEstimate{
		Team:              team,
		TimelineWeeks:     payload.TimelineWeeks,
		RiskBufferPercent: payload.RiskBufferPercent,
		Confidence:        parseConfidence(payload.Confidence),
		Rationale:         payload.Rationale,
	}, nil
}

func releasePrompt(release domain.Release) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Release: %s\n", release.Name)
	if release.StartDate != "" || release.EndDate != "" {
		fmt.Fprintf(&b, "Schedule: %s to %s\n", release.StartDate, release.EndDate)
	}
	if release.DurationWeeks > 0 {
		fmt.Fprintf(&b, "Declared duration: %g weeks\n", release.DurationWeeks)
	}
	if len(release.Features) > 0 {
		b.WriteString("Features:\n")
		for _, f := range release.Features {
			fmt.Fprintf(&b, "- %s (%s)\n", f.Name, f.Status)
		}
	}
	b.WriteString("\nPropose a team, timeline and risk buffer for this release.")
	return b.String()
}

func validateDraft(p draftPayload) error {
	if len(p.Team) == 0 {
		return fmt.Errorf("empty team")
	}
	for _, m := range p.Team {
		if m.Role == "" {
			return fmt.Errorf("team member with empty role")
		}
		if m.Count <= 0 || m.WeeklyRate <= 0 {
			return fmt.Errorf("team member %q has non-positive count or rate", m.Role)
		}
	}
	if p.TimelineWeeks <= 0 {
		return fmt.Errorf("non-positive timeline_weeks")
	}
	if p.RiskBufferPercent < 0 || p.RiskBufferPercent > 100 {
		return fmt.Errorf("risk_buffer_percent out of range: %v", p.RiskBufferPercent)
	}
	return nil
}

func parseConfidence(s string) domain.Confidence {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "high":
		return domain.ConfidenceHigh
	case "low":
		return domain.ConfidenceLow
	default:
		return domain.ConfidenceMedium
	}
}

var _ budget.Advisor = (*Estimator)(nil)
