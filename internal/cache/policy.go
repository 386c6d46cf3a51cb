package cache

import "time"

// Kind names one independently-lifecycled remote entity tracked by the
// coordinator.
type Kind string

const (
	KindReport        Kind = "report"
	KindReleaseReport Kind = "release_report"
	KindBudget        Kind = "budget"
	KindFeatures      Kind = "features"
	KindIssues        Kind = "issues"
	KindReleases      Kind = "releases"
	KindStatuses      Kind = "statuses"
)

// AllKinds is the fixed set of entity kinds evicted on a context switch.
var AllKinds = []Kind{
	KindReport,
	KindReleaseReport,
	KindBudget,
	KindFeatures,
	KindIssues,
	KindReleases,
	KindStatuses,
}

// Policy is the per-kind freshness configuration. Entities change at
// different rates, so staleness is a policy table rather than a single
// constant.
type Policy struct {
	StaleAfter time.Duration
	EvictAfter time.Duration
	MaxRetries int
}

const defaultMaxRetries = 2

// DefaultPolicies returns the freshness tiers: fast-changing issues go
// stale quickly, the org status taxonomy barely moves.
func DefaultPolicies() map[Kind]Policy {
	tier := func(staleAfter time.Duration) Policy {
		return Policy{
			StaleAfter: staleAfter,
			EvictAfter: 4 * staleAfter,
			MaxRetries: defaultMaxRetries,
		}
	}
	return map[Kind]Policy{
		KindIssues:        tier(1 * time.Minute),
		KindFeatures:      tier(5 * time.Minute),
		KindReport:        tier(5 * time.Minute),
		KindReleaseReport: tier(5 * time.Minute),
		KindBudget:        tier(5 * time.Minute),
		KindReleases:      tier(10 * time.Minute),
		KindStatuses:      tier(1 * time.Hour),
	}
}
