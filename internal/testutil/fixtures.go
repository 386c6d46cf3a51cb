package testutil

import (
	"time"

	"github.com/alexanderramin/compass/internal/domain"
	"github.com/google/uuid"
)

// Release options
type ReleaseOption func(*domain.Release)

func WithReleaseDates(start, end string) ReleaseOption {
	return func(r *domain.Release) {
		r.StartDate = start
		r.EndDate = end
	}
}

func WithTargetDate(target string) ReleaseOption {
	return func(r *domain.Release) {
		r.TargetDate = target
	}
}

func WithDurationWeeks(weeks float64) ReleaseOption {
	return func(r *domain.Release) {
		r.DurationWeeks = weeks
	}
}

func WithFeatures(features ...domain.Feature) ReleaseOption {
	return func(r *domain.Release) {
		r.Features = features
	}
}

func NewTestRelease(productID, name string, opts ...ReleaseOption) domain.Release {
	r := domain.Release{
		ID:        uuid.New().String(),
		ProductID: productID,
		Name:      name,
		Status:    "planned",
		UpdatedAt: time.Now().UTC(),
	}
	for _, opt := range opts {
		opt(&r)
	}
	return r
}

func NewTestFeature(name, completionDate string) domain.Feature {
	return domain.Feature{
		ID:             uuid.New().String(),
		Name:           name,
		Status:         "in_progress",
		CompletionDate: completionDate,
	}
}

// NewTestTeam returns the two-role roster used across budget tests.
func NewTestTeam() []domain.TeamMember {
	return []domain.TeamMember{
		{Role: "Frontend", Count: 1, WeeklyRate: 2500},
		{Role: "Backend", Count: 1, WeeklyRate: 2800},
	}
}
